package preview

import (
	"fmt"
	"strings"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
)

// Summary renders an indented outline of the tree: one line per field with
// its type, configured rules, options and visibility conditions.
func Summary(name string, tree form.Tree) string {
	if name == "" {
		name = "Untitled form"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")

	if len(tree) == 0 {
		b.WriteString(helpStyle.Render("  (no fields)"))
		return boxStyle.Render(b.String())
	}

	labels := map[string]string{}
	tree.Walk(func(n *form.Node, _ int) {
		labels[n.ID()] = labelOf(n)
	})

	tree.Walk(func(n *form.Node, depth int) {
		indent := strings.Repeat("  ", depth+1)

		label := labelStyle.Render(labelOf(n))
		if n.IsSection() {
			label = sectionStyle.Render(labelOf(n))
		}
		fmt.Fprintf(&b, "%s%s %s %s", indent, label, typeStyle.Render("["+string(n.Type())+"]"), typeStyle.Render(n.ID()))

		if rules := describeRules(n.Rules()); rules != "" {
			b.WriteString(" " + ruleStyle.Render(rules))
		}
		b.WriteString("\n")

		if opts, ok := n.Options(); ok && len(opts) > 0 {
			fmt.Fprintf(&b, "%s  %s\n", indent, helpStyle.Render("options: "+strings.Join(opts, ", ")))
		}
		for _, c := range n.Conditions() {
			target := labels[c.TargetFieldID]
			if target == "" {
				target = c.TargetFieldID
			}
			fmt.Fprintf(&b, "%s  %s\n", indent, conditionStyle.Render(fmt.Sprintf("shown when %s %s %q", target, c.Operator, c.Value)))
		}
	})

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// describeRules lists the active rules, skipping those switched off.
func describeRules(r form.Rules) string {
	var parts []string
	r.Each(func(name string, value any) {
		switch v := value.(type) {
		case bool:
			if v {
				parts = append(parts, name)
			}
		case string:
			if v != "" {
				parts = append(parts, fmt.Sprintf("%s=%s", name, v))
			}
		case nil:
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", name, v))
		}
	})
	return strings.Join(parts, " ")
}
