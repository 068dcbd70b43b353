package sass

import "strings"

// emit serializes the ordered flat rules as canonical output: comma-joined
// selectors, two-space indent, one declaration per line, blocks separated
// by a blank line. Blocks whose declarations were merged away entirely
// (extend-only rules) are omitted rather than emitted as {}.
func emit(rules []*flatRule, extends *extendRegistry) string {
	var sb strings.Builder
	sb.Grow(len(rules) * 48)
	first := true
	for _, fr := range rules {
		if fr.comment != "" {
			if !first {
				sb.WriteByte('\n')
			}
			sb.WriteString(fr.comment)
			sb.WriteByte('\n')
			first = false
			continue
		}
		if len(fr.decls) == 0 {
			continue
		}
		if !first {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(extends.apply(fr.selectors), ", "))
		sb.WriteString(" {\n")
		for _, d := range fr.decls {
			sb.WriteString("  ")
			sb.WriteString(d.prop)
			sb.WriteString(": ")
			sb.WriteString(d.val)
			sb.WriteString(";\n")
		}
		sb.WriteString("}\n")
		first = false
	}
	return sb.String()
}
