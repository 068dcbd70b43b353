package sass

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// CommentMode selects which block comments survive emission. Line
// comments never do.
type CommentMode int

const (
	// CommentsStrip removes every comment from output (the default).
	CommentsStrip CommentMode = iota
	// CommentsLoud keeps only comments written as /*! ... */.
	CommentsLoud
	// CommentsAll keeps every block comment.
	CommentsAll
)

// Options configures a compile. The zero value compiles without imports,
// strips comments and logs nothing.
type Options struct {
	// Filename is used in error positions. Defaults to "input.scss".
	Filename string
	// Loader resolves @import paths. When nil every import fails with
	// ImportNotFoundError.
	Loader Loader
	// Comments selects the comment pass-through policy.
	Comments CommentMode
	// Logger receives debug traces of the compile phases. Defaults to a
	// no-op logger.
	Logger *zap.Logger
}

func (o *Options) withDefaults() *Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.Filename == "" {
		opts.Filename = "input.scss"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &opts
}

// Compile transpiles extended stylesheet source to flat output text. The
// compile is a pure function of the source and the loader: identical
// input reproduces byte-identical output. On error no output is produced.
func Compile(source string, opts *Options) (string, error) {
	opts = opts.withDefaults()
	r, _, err := compileRules(source, opts)
	if err != nil {
		return "", err
	}
	out := emit(r.rules, r.extends)
	opts.Logger.Debug("emitted stylesheet",
		zap.String("file", opts.Filename),
		zap.Int("rules", len(r.rules)),
		zap.Int("bytes", len(out)))
	return out, nil
}

// CompileFile compiles path, resolving imports relative to its directory
// unless the options carry an explicit loader.
func CompileFile(path string, opts *Options) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	opts = opts.withDefaults()
	if opts.Filename == "input.scss" {
		opts.Filename = path
	}
	if opts.Loader == nil {
		opts.Loader = FileLoader(filepath.Dir(path))
	}
	return Compile(string(content), opts)
}

// compileRules runs parse, import resolution and the resolution walk,
// returning the ordered flat rules and the global scope.
func compileRules(source string, opts *Options) (*resolver, *Environment, error) {
	parser, err := NewParserFile(source, opts.Filename)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}
	opts.Logger.Debug("parsed stylesheet", zap.String("file", opts.Filename), zap.Int("nodes", len(nodes)))

	ir := newImportResolver(opts.Loader)
	if err := ir.expand(nodes, []string{opts.Filename}); err != nil {
		return nil, nil, err
	}

	r := newResolver(opts)
	global := NewEnv(nil)
	if err := r.walk(nodes, global, nil, nil); err != nil {
		return nil, nil, err
	}
	return r, global, nil
}

// FormatAST re-serializes a parsed stylesheet as source text.
func FormatAST(nodes []Node) string {
	var parts []string
	for _, n := range nodes {
		parts = append(parts, n.ToSCSS(""))
	}
	return strings.Join(parts, "\n")
}
