package sass

import (
	"io"

	"github.com/oarkflow/json"
)

// RuleJSON is the machine-readable form of one emitted block.
type RuleJSON struct {
	Selectors    []string   `json:"selectors"`
	Declarations []DeclJSON `json:"declarations"`
}

type DeclJSON struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// ExportJSON compiles source and returns the flat rules as JSON instead
// of stylesheet text. The rule order and extend merging match Compile
// exactly; comments and empty blocks are never exported.
func ExportJSON(source string, opts *Options) ([]byte, error) {
	rules, err := exportRules(source, opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rules)
}

// WriteJSON compiles source and writes the JSON rule list to w.
func WriteJSON(w io.Writer, source string, opts *Options) error {
	data, err := ExportJSON(source, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

func exportRules(source string, opts *Options) ([]RuleJSON, error) {
	opts = opts.withDefaults()
	r, _, err := compileRules(source, opts)
	if err != nil {
		return nil, err
	}
	rules := make([]RuleJSON, 0, len(r.rules))
	for _, fr := range r.rules {
		if fr.comment != "" || len(fr.decls) == 0 {
			continue
		}
		rj := RuleJSON{
			Selectors:    r.extends.apply(fr.selectors),
			Declarations: make([]DeclJSON, 0, len(fr.decls)),
		}
		for _, d := range fr.decls {
			rj.Declarations = append(rj.Declarations, DeclJSON{Property: d.prop, Value: d.val})
		}
		rules = append(rules, rj)
	}
	return rules, nil
}
