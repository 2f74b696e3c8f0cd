package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/editor"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/preview"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/query"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/store"
	"golang.org/x/term"
)

type ListCmd struct{}

func (c *ListCmd) Run(a *app) error {
	ed, err := a.open()
	if err != nil {
		return err
	}
	printList(a, ed.Library().List())
	return nil
}

func printList(a *app, list []store.Summary) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No saved forms.")
		return
	}
	for _, s := range list {
		fmt.Fprintf(a.out, "%3d  %-30s %3d fields  %s\n", s.Index, s.Name, s.FieldCount, s.SavedAt.Local().Format("2006-01-02 15:04"))
	}
}

type ShowCmd struct {
	Form string `arg:"" help:"Form name."`
	JSON bool   `help:"Print the stored structure as JSON."`
}

func (c *ShowCmd) Run(a *app) error {
	ed, err := openForm(a, c.Form)
	if err != nil {
		return err
	}
	if c.JSON {
		data, err := json.MarshalIndent(ed.Tree(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, string(data))
		return nil
	}
	fmt.Fprintln(a.out, preview.Summary(ed.Name(), ed.Tree()))
	return nil
}

type NewCmd struct {
	Form  string `arg:"" help:"Form name."`
	Force bool   `help:"Replace an existing form with the same name."`
}

func (c *NewCmd) Run(a *app) error {
	ed, err := a.open()
	if err != nil {
		return err
	}
	if _, exists := ed.Library().Get(c.Form); exists && !c.Force {
		return fmt.Errorf("form %q already exists (use --force to replace it)", c.Form)
	}
	ed.NewForm()
	if _, err := ed.SaveAs(c.Form); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", c.Form)
	return nil
}

type AddCmd struct {
	Form   string `arg:"" help:"Form name."`
	Type   string `arg:"" help:"Field type (see 'types')."`
	Parent string `help:"Section to add the field to." short:"p"`
	Label  string `help:"Field label." short:"l"`
}

func (c *AddCmd) Run(a *app) error {
	typ, err := form.ParseType(c.Type)
	if err != nil {
		return err
	}
	return edit(a, c.Form, func(ed *editor.Editor) error {
		n, err := ed.AddField(typ, c.Parent)
		if err != nil {
			return err
		}
		if c.Label != "" {
			if err := ed.SetLabel(n.ID(), c.Label); err != nil {
				return err
			}
		}
		fmt.Fprintln(a.out, n.ID())
		return nil
	})
}

type RemoveCmd struct {
	Form string `arg:"" help:"Form name."`
	ID   string `arg:"" help:"Field id."`
}

func (c *RemoveCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		return ed.RemoveField(c.ID)
	})
}

type UpCmd struct {
	Form string `arg:"" help:"Form name."`
	ID   string `arg:"" help:"Field id."`
}

func (c *UpCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		return ed.MoveUp(c.ID)
	})
}

type DownCmd struct {
	Form string `arg:"" help:"Form name."`
	ID   string `arg:"" help:"Field id."`
}

func (c *DownCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		return ed.MoveDown(c.ID)
	})
}

type MoveCmd struct {
	Form  string `arg:"" help:"Form name."`
	ID    string `arg:"" help:"Field id."`
	To    string `help:"Target section id; empty for the top level."`
	After string `help:"Place after this sibling; empty to place first."`
}

func (c *MoveCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		return ed.Move(c.ID, c.To, c.After)
	})
}

type LabelCmd struct {
	Form  string `arg:"" help:"Form name."`
	ID    string `arg:"" help:"Field id."`
	Label string `arg:"" help:"New label."`
}

func (c *LabelCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		return ed.SetLabel(c.ID, c.Label)
	})
}

type RuleCmd struct {
	Form   string `arg:"" help:"Form name."`
	ID     string `arg:"" help:"Field id."`
	Rule   string `arg:"" help:"Rule name: required, minLength, maxLength, pattern, email, url, phone."`
	Value  string `arg:"" optional:"" help:"Rule value; defaults to true."`
	Remove bool   `help:"Remove the rule instead of setting it."`
}

func (c *RuleCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		if c.Remove {
			return ed.RemoveRule(c.ID, c.Rule)
		}
		n, ok := ed.Find(c.ID)
		if !ok {
			return fmt.Errorf("%w: %s", form.ErrNotFound, c.ID)
		}
		if !slices.Contains(form.RulesFor(n.Type()), c.Rule) {
			return fmt.Errorf("%w: rule %s on %s field", form.ErrNotApplicable, c.Rule, n.Type())
		}
		return ed.SetRule(c.ID, c.Rule, parseRuleValue(c.Value))
	})
}

// parseRuleValue reads booleans and integers, keeping anything else as text.
func parseRuleValue(s string) any {
	if s == "" {
		return true
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

type OptionCmd struct {
	Form   string `arg:"" help:"Form name."`
	ID     string `arg:"" help:"Field id."`
	Action string `arg:"" enum:"add,set,remove" help:"add, set or remove."`
	Index  int    `arg:"" optional:"" help:"Option index for set and remove."`
	Value  string `arg:"" optional:"" help:"New option text for set."`
}

func (c *OptionCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		switch c.Action {
		case "add":
			return ed.AddOption(c.ID)
		case "set":
			return ed.SetOption(c.ID, c.Index, c.Value)
		default:
			return ed.RemoveOption(c.ID, c.Index)
		}
	})
}

type ConditionCmd struct {
	Form     string `arg:"" help:"Form name."`
	ID       string `arg:"" help:"Field id."`
	Action   string `arg:"" enum:"add,set,remove" help:"add, set or remove."`
	Index    int    `arg:"" optional:"" help:"Condition index for set and remove."`
	Target   string `help:"Field the condition looks at."`
	Operator string `help:"equals, notEquals, contains, greaterThan or lessThan." default:"equals" enum:"equals,notEquals,contains,greaterThan,lessThan"`
	Value    string `help:"Value to compare with."`
}

func (c *ConditionCmd) Run(a *app) error {
	return edit(a, c.Form, func(ed *editor.Editor) error {
		switch c.Action {
		case "add":
			if err := ed.AddCondition(c.ID); err != nil {
				return err
			}
			if c.Target == "" {
				return nil
			}
			n, _ := ed.Find(c.ID)
			return ed.SetCondition(c.ID, len(n.Conditions())-1, c.condition())
		case "set":
			return ed.SetCondition(c.ID, c.Index, c.condition())
		default:
			return ed.RemoveCondition(c.ID, c.Index)
		}
	})
}

func (c *ConditionCmd) condition() form.Condition {
	return form.Condition{
		TargetFieldID: c.Target,
		Operator:      form.Operator(c.Operator),
		Value:         c.Value,
	}
}

type DeleteCmd struct {
	Form string `arg:"" help:"Form name."`
}

func (c *DeleteCmd) Run(a *app) error {
	ed, err := a.open()
	if err != nil {
		return err
	}
	if err := ed.Library().DeleteByName(c.Form); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", c.Form)
	return nil
}

type PreviewCmd struct {
	Form string `arg:"" help:"Form name."`
}

func (c *PreviewCmd) Run(a *app) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("preview needs an interactive terminal")
	}
	ed, err := openForm(a, c.Form)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ok, err := preview.Run(ctx, ed.Tree(), ed.Entry())
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	values := ed.Entry().Values()
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(a.out, "%s = %v\n", id, values[id])
	}

	if !ok {
		for id, msgs := range ed.Entry().AllErrors() {
			fmt.Fprintf(a.out, "%s: %s\n", id, strings.Join(msgs, ", "))
		}
		return errors.New("form has errors")
	}
	fmt.Fprintln(a.out, "Form is valid.")
	return nil
}

type QueryCmd struct {
	Expr    string `arg:"" help:"jq expression, applied to the list of saved forms."`
	Raw     bool   `help:"Print strings without quotes." short:"r"`
	Compact bool   `help:"One line per result."`
}

func (c *QueryCmd) Run(a *app) error {
	ed, err := a.open()
	if err != nil {
		return err
	}
	results, err := query.Run(context.Background(), ed.Library().Definitions(), c.Expr)
	if err != nil {
		return err
	}
	out, err := query.Format(results, c.Raw, c.Compact)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintln(a.out, out)
	}
	return nil
}

type WatchCmd struct{}

func (c *WatchCmd) Run(a *app) error {
	ed, err := a.open()
	if err != nil {
		return err
	}
	fb, ok := a.backend.(*store.FileBackend)
	if !ok {
		return fmt.Errorf("watch needs the file backend, not %s", a.cfg.Store.Backend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := store.NewWatcher(fb.Path(), ed.Library(), func([]store.Definition) {
		fmt.Fprintln(a.out, "--")
		printList(a, ed.Library().List())
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	printList(a, ed.Library().List())
	<-ctx.Done()
	return nil
}

type BackupsCmd struct{}

func (c *BackupsCmd) Run(a *app) error {
	fb, err := fileBackend(a)
	if err != nil {
		return err
	}
	backups := fb.Backups()
	if len(backups) == 0 {
		fmt.Fprintln(a.out, "No backups.")
	}
	for _, b := range backups {
		forms := "invalid"
		if b.Forms >= 0 {
			forms = fmt.Sprintf("%d forms", b.Forms)
		}
		fmt.Fprintf(a.out, "%3d  %s  %-9s  %6d bytes  %s\n", b.Index, b.ModTime.Format("2006-01-02 15:04:05"), forms, b.Size, b.Path)
	}
	return nil
}

type RestoreCmd struct {
	Index int `arg:"" help:"Backup index (see 'backups')."`
}

func (c *RestoreCmd) Run(a *app) error {
	fb, err := fileBackend(a)
	if err != nil {
		return err
	}
	if err := fb.Restore(c.Index); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored backup %d\n", c.Index)
	return nil
}

func fileBackend(a *app) (*store.FileBackend, error) {
	if _, err := a.open(); err != nil {
		return nil, err
	}
	fb, ok := a.backend.(*store.FileBackend)
	if !ok {
		return nil, fmt.Errorf("backups need the file backend, not %s", a.cfg.Store.Backend)
	}
	return fb, nil
}

type TypesCmd struct{}

func (c *TypesCmd) Run(a *app) error {
	for _, g := range form.TypeGroups() {
		names := make([]string, len(g.Types))
		for i, t := range g.Types {
			names[i] = string(t)
		}
		fmt.Fprintf(a.out, "%-15s %s\n", g.Name, strings.Join(names, ", "))
	}
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	fmt.Fprintf(a.out, "formbuilder %s\n", version)
	return nil
}

// openForm loads the saved form called name into the editor.
func openForm(a *app, name string) (*editor.Editor, error) {
	ed, err := a.open()
	if err != nil {
		return nil, err
	}
	if err := ed.Open(name); err != nil {
		return nil, err
	}
	return ed, nil
}

// edit opens a saved form, applies fn and saves the result.
func edit(a *app, name string, fn func(*editor.Editor) error) error {
	ed, err := openForm(a, name)
	if err != nil {
		return err
	}
	if err := fn(ed); err != nil {
		return err
	}
	if !ed.Dirty() {
		L_debug("nothing changed", "form", name)
		return nil
	}
	_, err = ed.Save()
	return err
}
