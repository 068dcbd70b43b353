package sass

import "slices"

// extendRegistry records @extend relations as edges, consulted only at
// emission. Keeping the relation out of the tree lets an extend appear
// textually before its target.
type extendRegistry struct {
	targets map[string][]string
}

func newExtendRegistry() *extendRegistry {
	return &extendRegistry{targets: make(map[string][]string)}
}

// record registers that target is extended by every compound in
// extenders. A selector extending itself is a no-op.
func (er *extendRegistry) record(target string, extenders []string) {
	for _, e := range extenders {
		if e == target {
			continue
		}
		if !slices.Contains(er.targets[target], e) {
			er.targets[target] = append(er.targets[target], e)
		}
	}
}

// apply widens a resolved selector list with the compounds extending any
// of its members, deduplicated in first-seen order. Matching is exact
// string equality on a single compound.
func (er *extendRegistry) apply(selectors []string) []string {
	out := append([]string{}, selectors...)
	for _, s := range selectors {
		for _, e := range er.targets[s] {
			if !slices.Contains(out, e) {
				out = append(out, e)
			}
		}
	}
	return out
}
