package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/config"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
)

func testApp(t *testing.T, backend string) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Store.Backend = backend
	cfg.Store.Path = filepath.Join(t.TempDir(), "forms.json")
	out := &bytes.Buffer{}
	a := &app{cfg: cfg, out: out}
	t.Cleanup(a.close)
	return a, out
}

func TestCommandsBuildForm(t *testing.T) {
	a, out := testApp(t, config.BackendMemory)

	require.NoError(t, (&NewCmd{Form: "Contact"}).Run(a))
	assert.Error(t, (&NewCmd{Form: "Contact"}).Run(a))

	out.Reset()
	require.NoError(t, (&AddCmd{Form: "Contact", Type: "section", Label: "Details"}).Run(a))
	sec := strings.TrimSpace(out.String())

	out.Reset()
	require.NoError(t, (&AddCmd{Form: "Contact", Type: "email", Parent: sec, Label: "Email"}).Run(a))
	email := strings.TrimSpace(out.String())

	require.NoError(t, (&RuleCmd{Form: "Contact", ID: email, Rule: form.RuleRequired}).Run(a))
	assert.ErrorIs(t, (&RuleCmd{Form: "Contact", ID: email, Rule: form.RuleMinLength, Value: "3"}).Run(a), form.ErrNotApplicable)
	assert.Error(t, (&AddCmd{Form: "Contact", Type: "widget"}).Run(a))
	assert.ErrorIs(t, (&RemoveCmd{Form: "Contact", ID: "nope"}).Run(a), form.ErrNotFound)

	out.Reset()
	require.NoError(t, (&ShowCmd{Form: "Contact"}).Run(a))
	assert.Contains(t, out.String(), "Details")
	assert.Contains(t, out.String(), "Email")

	ed, err := a.open()
	require.NoError(t, err)
	def, ok := ed.Library().Get("Contact")
	require.True(t, ok)
	assert.Equal(t, 2, def.Structure.Count())
	n, ok := def.Structure.Find(email)
	require.True(t, ok)
	v, _ := n.Rules().Get(form.RuleRequired)
	assert.Equal(t, true, v)
}

func TestCommandsOptionsAndConditions(t *testing.T) {
	a, out := testApp(t, config.BackendFile)
	require.NoError(t, (&NewCmd{Form: "Survey"}).Run(a))

	out.Reset()
	require.NoError(t, (&AddCmd{Form: "Survey", Type: "radio"}).Run(a))
	kind := strings.TrimSpace(out.String())
	out.Reset()
	require.NoError(t, (&AddCmd{Form: "Survey", Type: "text"}).Run(a))
	vat := strings.TrimSpace(out.String())

	require.NoError(t, (&OptionCmd{Form: "Survey", ID: kind, Action: "add"}).Run(a))
	require.NoError(t, (&OptionCmd{Form: "Survey", ID: kind, Action: "set", Index: 0, Value: "company"}).Run(a))
	require.NoError(t, (&ConditionCmd{Form: "Survey", ID: vat, Action: "add", Target: kind, Operator: "equals", Value: "company"}).Run(a))

	ed, err := a.open()
	require.NoError(t, err)
	require.NoError(t, ed.Open("Survey"))
	n, _ := ed.Find(vat)
	require.Len(t, n.Conditions(), 1)
	assert.Equal(t, kind, n.Conditions()[0].TargetFieldID)

	require.NoError(t, (&UpCmd{Form: "Survey", ID: vat}).Run(a))
	require.NoError(t, ed.Open("Survey"))
	assert.Equal(t, vat, ed.Tree()[0].ID())

	out.Reset()
	require.NoError(t, (&QueryCmd{Expr: ".[].name", Raw: true}).Run(a))
	assert.Equal(t, "Survey\n", out.String())

	out.Reset()
	require.NoError(t, (&BackupsCmd{}).Run(a))
	assert.NotContains(t, out.String(), "No backups.")
	assert.Contains(t, out.String(), "1 forms")

	require.NoError(t, (&DeleteCmd{Form: "Survey"}).Run(a))
	out.Reset()
	require.NoError(t, (&ListCmd{}).Run(a))
	assert.Equal(t, "No saved forms.\n", out.String())
}

func TestBackupsNeedFileBackend(t *testing.T) {
	a, _ := testApp(t, config.BackendMemory)
	assert.ErrorContains(t, (&BackupsCmd{}).Run(a), "file backend")
}

func TestParseRuleValue(t *testing.T) {
	assert.Equal(t, true, parseRuleValue(""))
	assert.Equal(t, false, parseRuleValue("false"))
	assert.Equal(t, 5, parseRuleValue("5"))
	assert.Equal(t, 1, parseRuleValue("1"))
	assert.Equal(t, "^[a-z]+$", parseRuleValue("^[a-z]+$"))
}

func TestVersionAndTypes(t *testing.T) {
	a, out := testApp(t, config.BackendMemory)
	require.NoError(t, (&VersionCmd{}).Run(a))
	assert.Contains(t, out.String(), version)

	out.Reset()
	require.NoError(t, (&TypesCmd{}).Run(a))
	assert.Contains(t, out.String(), "Layout")
	assert.Contains(t, out.String(), "section")
}
