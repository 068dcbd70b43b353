package sass

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Loader maps a logical @import path to source text. The second result
// reports whether a source exists for the path.
type Loader func(path string) (string, bool)

// FileLoader returns a Loader rooted at dir. For a logical path "tools"
// it tries, in order: dir/_tools.scss, dir/tools.scss, then the path as
// written. The underscore-prefixed partial wins when both files exist.
// http:// and https:// paths are fetched over the network.
func FileLoader(dir string) Loader {
	return func(path string) (string, bool) {
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			return fetchURL(path)
		}
		base := filepath.Base(path)
		sub := filepath.Dir(path)
		var candidates []string
		if !strings.HasPrefix(base, "_") {
			if filepath.Ext(base) == "" {
				candidates = append(candidates, filepath.Join(dir, sub, "_"+base+".scss"))
			} else {
				candidates = append(candidates, filepath.Join(dir, sub, "_"+base))
			}
		}
		if filepath.Ext(base) == "" {
			candidates = append(candidates, filepath.Join(dir, sub, base+".scss"))
		}
		candidates = append(candidates, filepath.Join(dir, path))
		for _, c := range candidates {
			if content, err := os.ReadFile(c); err == nil {
				return string(content), true
			}
		}
		return "", false
	}
}

// MapLoader serves imports from an in-memory map, keyed by logical path.
// Underscore-prefixed partial keys take precedence.
func MapLoader(sources map[string]string) Loader {
	return func(path string) (string, bool) {
		if src, ok := sources["_"+path]; ok {
			return src, true
		}
		src, ok := sources[path]
		return src, ok
	}
}

func fetchURL(url string) (string, bool) {
	resp, err := http.Get(url)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	return string(content), true
}

// importResolver expands @import nodes in place. The parse cache is
// scoped to one compile: a diamond import parses once but its bindings
// are re-applied at every import site, which is idempotent.
type importResolver struct {
	loader Loader
	cache  map[string][]Node
}

func newImportResolver(loader Loader) *importResolver {
	return &importResolver{loader: loader, cache: make(map[string][]Node)}
}

func (ir *importResolver) expand(nodes []Node, stack []string) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case *ImportNode:
			if err := ir.resolve(node, stack); err != nil {
				return err
			}
		case *RuleNode:
			if err := ir.expand(node.Body, stack); err != nil {
				return err
			}
		case *MixinNode:
			if err := ir.expand(node.Body, stack); err != nil {
				return err
			}
		case *IfNode:
			for branch := node; branch != nil; branch = branch.Else {
				if err := ir.expand(branch.Then, stack); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (ir *importResolver) resolve(node *ImportNode, stack []string) error {
	for _, on := range stack {
		if on == node.Path {
			return &ImportCycleError{Chain: append(append([]string{}, stack...), node.Path)}
		}
	}
	if cached, ok := ir.cache[node.Path]; ok {
		node.Nodes = cached
		return nil
	}
	if ir.loader == nil {
		return &ImportNotFoundError{Path: node.Path}
	}
	src, ok := ir.loader(node.Path)
	if !ok {
		return &ImportNotFoundError{Path: node.Path}
	}
	parser, err := NewParserFile(src, node.Path)
	if err != nil {
		return err
	}
	sub, err := parser.Parse()
	if err != nil {
		return err
	}
	if err := ir.expand(sub, append(stack, node.Path)); err != nil {
		return err
	}
	ir.cache[node.Path] = sub
	node.Nodes = sub
	return nil
}
