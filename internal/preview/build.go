package preview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/entry"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
)

// ErrEmptyForm is returned when there is nothing to render.
var ErrEmptyForm = errors.New("form has no fields")

// Build turns tree into a huh form. Every answer is routed through
// session.SetValue, so the session holds the values and messages afterwards.
func Build(tree form.Tree, session *entry.Session) (*huh.Form, error) {
	pages := Plan(tree)
	if len(pages) == 0 {
		return nil, ErrEmptyForm
	}

	groups := make([]*huh.Group, 0, len(pages))
	for _, p := range pages {
		fields := make([]huh.Field, 0, len(p.Fields))
		for _, n := range p.Fields {
			fields = append(fields, renderField(n, session)...)
		}

		group := huh.NewGroup(fields...)
		if p.Title != "" {
			group = group.Title(p.Title)
		}
		if len(p.Gates) > 0 {
			page := p
			group = group.WithHideFunc(func() bool {
				return page.Hidden(session.Lookup())
			})
		}
		groups = append(groups, group)
	}

	L_debug("preview: built form", "pages", len(pages), "fields", tree.Count())
	return huh.NewForm(groups...).WithShowHelp(true), nil
}

// Run shows the form and then validates every visible field. It returns
// huh.ErrUserAborted when the user cancels.
func Run(ctx context.Context, tree form.Tree, session *entry.Session) (bool, error) {
	f, err := Build(tree, session)
	if err != nil {
		return false, err
	}
	if err := f.RunWithContext(ctx); err != nil {
		return false, err
	}
	return session.ValidateAll(), nil
}

// renderField creates the huh fields for one node. Phone fields get a dial
// code select in front of the number.
func renderField(n *form.Node, s *entry.Session) []huh.Field {
	title := labelOf(n)
	if required(n) {
		title += " *"
	}
	id := n.ID()

	switch n.Type() {
	case form.Checkbox:
		var val bool
		if v, ok := s.Value(id); ok {
			val, _ = v.(bool)
		}
		return []huh.Field{huh.NewConfirm().
			Title(title).
			Value(&val).
			Validate(func(b bool) error {
				return check(s.SetValue(id, b))
			})}

	case form.Dropdown, form.Radio:
		opts, _ := n.Options()
		if len(opts) == 0 {
			break
		}
		val := stringValue(s, id)
		return []huh.Field{huh.NewSelect[string]().
			Title(title).
			Options(huh.NewOptions(opts...)...).
			Value(&val).
			Validate(validator(n, s))}

	case form.Rating:
		options := make([]huh.Option[string], len(form.RatingScale))
		for i, r := range form.RatingScale {
			options[i] = huh.NewOption(strings.Repeat("*", r), strconv.Itoa(r))
		}
		val := stringValue(s, id)
		return []huh.Field{huh.NewSelect[string]().
			Title(title).
			Options(options...).
			Value(&val).
			Validate(validator(n, s))}

	case form.Country:
		options := make([]huh.Option[string], len(form.Countries))
		for i, c := range form.Countries {
			options[i] = huh.NewOption(c.Name, c.Code)
		}
		val := stringValue(s, id)
		return []huh.Field{huh.NewSelect[string]().
			Title(title).
			Options(options...).
			Value(&val).
			Validate(validator(n, s))}

	case form.Phone:
		codeKey := form.PhoneCodeKey(id)
		options := make([]huh.Option[string], len(form.Countries))
		for i, c := range form.Countries {
			options[i] = huh.NewOption(fmt.Sprintf("%s %s", c.PhoneCode, c.Name), c.PhoneCode)
		}
		code := stringValue(s, codeKey)
		number := stringValue(s, id)
		return []huh.Field{
			huh.NewSelect[string]().
				Title(title + " code").
				Options(options...).
				Value(&code).
				Validate(func(v string) error {
					s.SetValue(codeKey, v)
					return nil
				}),
			huh.NewInput().
				Title(title).
				Value(&number).
				Validate(validator(n, s)),
		}

	case form.TextArea:
		val := stringValue(s, id)
		return []huh.Field{huh.NewText().
			Title(title).
			Value(&val).
			Validate(validator(n, s))}
	}

	val := stringValue(s, id)
	input := huh.NewInput().
		Title(title).
		Description(describe(n)).
		Value(&val).
		Validate(validator(n, s))
	if n.Type() == form.Password {
		input = input.EchoMode(huh.EchoModePassword)
	}
	return []huh.Field{input}
}

func validator(n *form.Node, s *entry.Session) func(string) error {
	return func(in string) error {
		return check(s.SetValue(n.ID(), parseInput(n, in)))
	}
}

func check(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, ", "))
}

// parseInput converts typed text to the value stored for the field. Only
// ratings become numbers; number and slider input is stored as typed.
func parseInput(n *form.Node, in string) any {
	if n.Type() == form.Rating {
		if r, err := strconv.Atoi(in); err == nil {
			return r
		}
	}
	return in
}

func describe(n *form.Node) string {
	switch n.Type() {
	case form.Date:
		return "YYYY-MM-DD"
	case form.Time:
		return "HH:MM"
	case form.File:
		return "Path to file"
	}
	if b, ok := n.Bounds(); ok && !b.IsZero() {
		return fmt.Sprintf("Between %g and %g", b.Min, b.Max)
	}
	return ""
}

func required(n *form.Node) bool {
	v, ok := n.Rules().Get(form.RuleRequired)
	b, isBool := v.(bool)
	return ok && isBool && b
}

func stringValue(s *entry.Session, id string) string {
	v, ok := s.Value(id)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}
