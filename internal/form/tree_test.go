package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insert adds a node with a fixed id so tests can address it.
func insert(t *testing.T, tree Tree, id string, typ FieldType, parentID string) Tree {
	t.Helper()
	n, err := NewNodeWithID(id, typ, parentID)
	require.NoError(t, err)
	out, err := tree.Insert(n, parentID)
	require.NoError(t, err)
	return out
}

// sampleTree builds:
//
//	a (text)
//	s (section)
//	  s1 (email)
//	  inner (section)
//	    i1 (number)
//	b (dropdown)
func sampleTree(t *testing.T) Tree {
	t.Helper()
	var tree Tree
	tree = insert(t, tree, "a", Text, "")
	tree = insert(t, tree, "s", Section, "")
	tree = insert(t, tree, "s1", Email, "s")
	tree = insert(t, tree, "inner", Section, "s")
	tree = insert(t, tree, "i1", Number, "inner")
	tree = insert(t, tree, "b", Dropdown, "")
	require.NoError(t, tree.Check())
	return tree
}

func ids(tree Tree) []string {
	out := make([]string, 0, len(tree))
	for _, n := range tree {
		out = append(out, n.ID())
	}
	return out
}

func childIDs(t *testing.T, tree Tree, parentID string) []string {
	t.Helper()
	p, ok := tree.Find(parentID)
	require.True(t, ok, "parent %s", parentID)
	kids, ok := p.Children()
	require.True(t, ok, "%s is not a section", parentID)
	return ids(kids)
}

func TestNewNodeDefaults(t *testing.T) {
	for _, typ := range AllTypes {
		t.Run(string(typ), func(t *testing.T) {
			n, err := NewNode(typ, "")
			require.NoError(t, err)

			assert.NotEmpty(t, n.ID())
			assert.Equal(t, typ, n.Type())
			assert.Empty(t, n.ParentID())
			assert.Equal(t, []string{RuleRequired}, n.Rules().Keys())
			required, _ := n.Rules().Get(RuleRequired)
			assert.Equal(t, false, required)
			assert.NotNil(t, n.Conditions())
			assert.Empty(t, n.Conditions())

			if typ == Section {
				assert.Equal(t, DefaultSectionLabel, n.Label())
			} else {
				assert.Empty(t, n.Label())
			}

			opts, hasOpts := n.Options()
			assert.Equal(t, typ == Dropdown || typ == Radio, hasOpts)
			if hasOpts {
				assert.NotNil(t, opts)
				assert.Empty(t, opts)
			}

			kids, hasKids := n.Children()
			assert.Equal(t, typ == Section, hasKids)
			if hasKids {
				assert.Empty(t, kids)
			}

			bounds, hasBounds := n.Bounds()
			assert.Equal(t, typ == Number || typ == Slider, hasBounds)
			if typ == Slider {
				assert.Equal(t, DefaultSliderBounds, bounds)
			}
		})
	}
}

func TestNewNodeUnknownType(t *testing.T) {
	_, err := NewNode(FieldType("signature"), "")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAddFieldThenFind(t *testing.T) {
	tree := sampleTree(t)

	out, added, err := tree.AddField(Radio, "inner")
	require.NoError(t, err)
	require.NotNil(t, added)

	found, ok := out.Find(added.ID())
	require.True(t, ok)
	assert.Equal(t, Radio, found.Type())
	assert.Equal(t, "inner", found.ParentID())
	assert.Empty(t, found.Label())
	opts, ok := found.Options()
	assert.True(t, ok)
	assert.Empty(t, opts)

	assert.Equal(t, []string{"i1", added.ID()}, childIDs(t, out, "inner"))
	assert.Equal(t, 7, out.Count())
	assert.Equal(t, 6, tree.Count(), "original tree must not change")
	require.NoError(t, out.Check())
}

func TestAddFieldToRoot(t *testing.T) {
	out, added, err := Tree(nil).AddField(Section, "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, added.ID(), out[0].ID())
	assert.Equal(t, DefaultSectionLabel, out[0].Label())
}

func TestAddFieldUnknownParent(t *testing.T) {
	tree := sampleTree(t)
	out, added, err := tree.AddField(Text, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, added)
	assert.True(t, out.Equal(tree))
}

func TestAddFieldIntoNonSection(t *testing.T) {
	tree := sampleTree(t)
	_, _, err := tree.AddField(Text, "b")
	assert.ErrorIs(t, err, ErrNotContainer)
}

func TestAddFieldSharesUntouchedSubtrees(t *testing.T) {
	tree := sampleTree(t)
	out, _, err := tree.AddField(Text, "")
	require.NoError(t, err)

	assert.Same(t, tree[1], out[1], "section off the edited path is reused")

	out, _, err = tree.AddField(Text, "inner")
	require.NoError(t, err)
	assert.Same(t, tree[0], out[0])
	assert.NotSame(t, tree[1], out[1], "section on the edited path is rebuilt")
	assert.Same(t, tree[2], out[2])
}

func TestRemoveField(t *testing.T) {
	tree := sampleTree(t)

	out, err := tree.RemoveField("s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"inner"}, childIDs(t, out, "s"))

	out, err = tree.RemoveField("s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(out))
	_, ok := out.Find("i1")
	assert.False(t, ok, "removing a section removes its subtree")
	assert.Equal(t, 2, out.Count())
}

func TestRemoveFieldMissingIsNoop(t *testing.T) {
	tree := sampleTree(t)
	out, err := tree.RemoveField("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, out.Equal(tree))

	again, err := out.RemoveField("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, again.Equal(tree))
}

func TestMoveFieldUpDown(t *testing.T) {
	tree := sampleTree(t)

	up, err := tree.MoveFieldUp("b", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "s"}, ids(up))

	back, err := up.MoveFieldDown("b", "")
	require.NoError(t, err)
	assert.True(t, back.Equal(tree))

	nested, err := tree.MoveFieldDown("s1", "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"inner", "s1"}, childIDs(t, nested, "s"))
	restored, err := nested.MoveFieldUp("s1", "s")
	require.NoError(t, err)
	assert.True(t, restored.Equal(tree))
}

func TestMoveFieldUpDownBoundaries(t *testing.T) {
	tree := sampleTree(t)

	out, err := tree.MoveFieldUp("a", "")
	require.NoError(t, err)
	assert.Equal(t, ids(tree), ids(out))

	out, err = tree.MoveFieldDown("b", "")
	require.NoError(t, err)
	assert.Equal(t, ids(tree), ids(out))

	out, err = tree.MoveFieldUp("s1", "s")
	require.NoError(t, err)
	assert.Same(t, tree[1], out[1])

	_, err = tree.MoveFieldUp("s1", "")
	assert.ErrorIs(t, err, ErrNotFound, "s1 is not a root field")
}

func TestMoveField(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		from, to  string
		after     string
		wantRoot  []string
		wantKids  map[string][]string
		wantError error
	}{
		{
			name:     "reorder within root",
			id:       "a",
			after:    "b",
			wantRoot: []string{"s", "b", "a"},
		},
		{
			name:     "root into section",
			id:       "a",
			to:       "s",
			after:    "s1",
			wantRoot: []string{"s", "b"},
			wantKids: map[string][]string{"s": {"s1", "a", "inner"}},
		},
		{
			name:     "nested to root first",
			id:       "i1",
			from:     "inner",
			wantRoot: []string{"i1", "a", "s", "b"},
			wantKids: map[string][]string{"inner": {}},
		},
		{
			name:     "section between levels",
			id:       "inner",
			from:     "s",
			after:    "a",
			wantRoot: []string{"a", "inner", "s", "b"},
			wantKids: map[string][]string{"inner": {"i1"}, "s": {"s1"}},
		},
		{
			name:     "same source and target is a no-op",
			id:       "b",
			after:    "b",
			wantRoot: []string{"a", "s", "b"},
		},
		{name: "into itself", id: "s", to: "s", wantError: ErrCycle},
		{name: "into descendant", id: "s", to: "inner", wantError: ErrCycle},
		{name: "unknown field", id: "zz", wantError: ErrNotFound},
		{name: "wrong source list", id: "s1", wantError: ErrNotFound},
		{name: "unknown target", id: "a", to: "zz", wantError: ErrNotFound},
		{name: "unknown anchor", id: "a", after: "zz", wantError: ErrNotFound},
		{name: "target not a section", id: "a", to: "b", wantError: ErrNotContainer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := sampleTree(t)
			out, err := tree.MoveField(tt.id, tt.from, tt.to, tt.after)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.True(t, out.Equal(tree))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoot, ids(out))
			for parent, want := range tt.wantKids {
				assert.Equal(t, want, childIDs(t, out, parent), parent)
			}
			require.NoError(t, out.Check(), "parentId must follow the move")

			moved, ok := out.Find(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.to, moved.ParentID())
			assert.Equal(t, tree.Count(), out.Count())
		})
	}
}

func TestUpdateField(t *testing.T) {
	tree := sampleTree(t)
	label := "Email address"
	rules := Rules{}.With(RuleRequired, true).With(RuleEmail, true)
	conds := []Condition{{TargetFieldID: "a", Operator: Equals, Value: "x"}}

	out, err := tree.UpdateField("s1", Patch{Label: &label, Rules: &rules, Conditions: conds})
	require.NoError(t, err)

	n, ok := out.Find("s1")
	require.True(t, ok)
	assert.Equal(t, label, n.Label())
	assert.Equal(t, []string{RuleRequired, RuleEmail}, n.Rules().Keys())
	assert.Equal(t, conds, n.Conditions())
	assert.Equal(t, "s", n.ParentID())

	old, _ := tree.Find("s1")
	assert.Empty(t, old.Label(), "update must not touch the previous tree")

	conds[0].Value = "changed"
	n, _ = out.Find("s1")
	assert.Equal(t, "x", n.Conditions()[0].Value, "patch slices are copied")
}

func TestUpdateFieldNotApplicable(t *testing.T) {
	tree := sampleTree(t)

	_, err := tree.UpdateField("a", Patch{Options: []string{"x"}})
	assert.ErrorIs(t, err, ErrNotApplicable)

	_, err = tree.UpdateField("a", Patch{Bounds: &Bounds{Max: 3}})
	assert.ErrorIs(t, err, ErrNotApplicable)

	out, err := tree.UpdateField("i1", Patch{Bounds: &Bounds{Min: 1, Max: 9, Step: 2}})
	require.NoError(t, err)
	n, _ := out.Find("i1")
	b, _ := n.Bounds()
	assert.Equal(t, Bounds{Min: 1, Max: 9, Step: 2}, b)

	_, err = tree.UpdateField("nope", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetRuleKeepsOrder(t *testing.T) {
	tree := sampleTree(t)
	out, err := tree.SetRule("a", RuleMinLength, 3)
	require.NoError(t, err)
	out, err = out.SetRule("a", RuleRequired, true)
	require.NoError(t, err)

	n, _ := out.Find("a")
	assert.Equal(t, []string{RuleRequired, RuleMinLength}, n.Rules().Keys())
	v, _ := n.Rules().Get(RuleRequired)
	assert.Equal(t, true, v)

	out, err = out.RemoveRule("a", RuleMinLength)
	require.NoError(t, err)
	n, _ = out.Find("a")
	assert.Equal(t, []string{RuleRequired}, n.Rules().Keys())
}

func TestOptions(t *testing.T) {
	tree := sampleTree(t)

	out, err := tree.AddOption("b")
	require.NoError(t, err)
	out, err = out.AddOption("b")
	require.NoError(t, err)
	n, _ := out.Find("b")
	opts, _ := n.Options()
	assert.Equal(t, []string{"Option 1", "Option 2"}, opts)

	out, err = out.SetOption("b", 0, "Red")
	require.NoError(t, err)
	out, err = out.RemoveOption("b", 1)
	require.NoError(t, err)
	n, _ = out.Find("b")
	opts, _ = n.Options()
	assert.Equal(t, []string{"Red"}, opts)

	_, err = out.SetOption("b", 5, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = out.AddOption("a")
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestConditions(t *testing.T) {
	tree := sampleTree(t)

	out, err := tree.AddCondition("s1")
	require.NoError(t, err)
	n, _ := out.Find("s1")
	assert.Equal(t, []Condition{NewCondition()}, n.Conditions())

	cond := Condition{TargetFieldID: "a", Operator: Contains, Value: "yes"}
	out, err = out.SetCondition("s1", 0, cond)
	require.NoError(t, err)
	n, _ = out.Find("s1")
	assert.Equal(t, []Condition{cond}, n.Conditions())

	out, err = out.RemoveCondition("s1", 0)
	require.NoError(t, err)
	n, _ = out.Find("s1")
	assert.Empty(t, n.Conditions())

	_, err = out.RemoveCondition("s1", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConditionTargets(t *testing.T) {
	tree := sampleTree(t)
	got := ids(tree.ConditionTargets("s1"))
	assert.Equal(t, []string{"a", "i1", "b"}, got)
}

func TestWalkDepth(t *testing.T) {
	tree := sampleTree(t)
	depths := map[string]int{}
	tree.Walk(func(n *Node, depth int) { depths[n.ID()] = depth })
	assert.Equal(t, map[string]int{"a": 0, "s": 0, "s1": 1, "inner": 1, "i1": 2, "b": 0}, depths)
}

func TestCheckRejectsDuplicates(t *testing.T) {
	a, err := NewNodeWithID("dup", Text, "")
	require.NoError(t, err)
	b, err := NewNodeWithID("dup", Email, "")
	require.NoError(t, err)
	assert.ErrorIs(t, Tree{a, b}.Check(), ErrInvalidStructure)

	_, err = Tree{a}.Insert(b, "")
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestSectionScenario(t *testing.T) {
	tree, s, err := Tree(nil).AddField(Section, "")
	require.NoError(t, err)
	tree, txt, err := tree.AddField(Text, s.ID())
	require.NoError(t, err)
	rules := Rules{}.With(RuleRequired, true)
	tree, err = tree.UpdateField(txt.ID(), Patch{Rules: &rules})
	require.NoError(t, err)

	n, ok := tree.Find(txt.ID())
	require.True(t, ok)
	assert.Equal(t, []string{MsgRequired}, Validate(n, ""))
	assert.Equal(t, []string{}, Validate(n, "ok"))
}
