// Package preview renders a field tree as an interactive terminal form and
// as a static outline.
package preview

import (
	"strings"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
)

// Page is one screen of the rendered form: a run of fields that share a
// container and are shown or hidden together.
type Page struct {
	Title     string
	SectionID string
	Fields    []*form.Node
	// Gates are the fields whose conditions decide whether the page shows:
	// the enclosing sections and, for a conditional field, the field itself.
	Gates []*form.Node
}

// Hidden reports whether any gate of the page is hidden for the current values.
func (p Page) Hidden(lookup form.Lookup) bool {
	for _, g := range p.Gates {
		if !form.Visible(g, lookup) {
			return true
		}
	}
	return false
}

// Plan splits tree into pages in document order. Consecutive unconditional
// fields of the same container share a page. A field with conditions gets a
// page of its own so it can be hidden alone. Sections start a new page
// titled by their label path.
func Plan(tree form.Tree) []Page {
	var pages []Page
	planLevel(tree, nil, nil, "", &pages)
	return pages
}

func planLevel(tree form.Tree, titles []string, gates []*form.Node, sectionID string, pages *[]Page) {
	var run []*form.Node

	flush := func() {
		if len(run) == 0 {
			return
		}
		*pages = append(*pages, Page{
			Title:     strings.Join(titles, " / "),
			SectionID: sectionID,
			Fields:    run,
			Gates:     gates,
		})
		run = nil
	}

	for _, n := range tree {
		switch {
		case n.IsSection():
			flush()
			kids, _ := n.Children()
			planLevel(kids, append(clone(titles), labelOf(n)), append(clone(gates), n), n.ID(), pages)
		case len(n.Conditions()) > 0:
			flush()
			*pages = append(*pages, Page{
				Title:     strings.Join(titles, " / "),
				SectionID: sectionID,
				Fields:    []*form.Node{n},
				Gates:     append(clone(gates), n),
			})
		default:
			run = append(run, n)
		}
	}
	flush()
}

func clone[T any](s []T) []T {
	return append([]T(nil), s...)
}

// labelOf returns the display label of a field.
func labelOf(n *form.Node) string {
	if n.Label() != "" {
		return n.Label()
	}
	return "Untitled " + string(n.Type())
}
