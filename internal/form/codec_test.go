package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeJSONRoundTrip(t *testing.T) {
	tree := sampleTree(t)
	tree, err := tree.SetRule("a", RuleMaxLength, 20)
	require.NoError(t, err)
	tree, err = tree.SetRule("a", RulePattern, `^[A-Z]`)
	require.NoError(t, err)
	tree, err = tree.AddOption("b")
	require.NoError(t, err)
	tree, err = tree.UpdateField("s1", Patch{Conditions: []Condition{{TargetFieldID: "b", Operator: Equals, Value: "Option 1"}}})
	require.NoError(t, err)
	tree, err = tree.UpdateField("i1", Patch{Bounds: &Bounds{Min: 1, Max: 10, Step: 0.5}})
	require.NoError(t, err)

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded Tree
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(tree))

	a, _ := decoded.Find("a")
	assert.Equal(t, []string{RuleRequired, RuleMaxLength, RulePattern}, a.Rules().Keys())
	limit, _ := a.Rules().Get(RuleMaxLength)
	assert.Equal(t, 20, limit)
}

func TestSliderZeroBoundsRoundTrip(t *testing.T) {
	tree := insert(t, nil, "sl", Slider, "")
	tree, err := tree.UpdateField("sl", Patch{Bounds: &Bounds{}})
	require.NoError(t, err)

	data, err := json.Marshal(tree)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 0.0, raw[0]["min"])
	assert.Equal(t, 0.0, raw[0]["max"])
	assert.Equal(t, 0.0, raw[0]["step"])

	var decoded Tree
	require.NoError(t, json.Unmarshal(data, &decoded))
	b, ok := decoded[0].Bounds()
	require.True(t, ok)
	assert.Equal(t, Bounds{}, b)
	assert.True(t, decoded.Equal(tree))
}

func TestNodeJSONShape(t *testing.T) {
	tree := sampleTree(t)
	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 3)

	text := raw[0]
	assert.Equal(t, "a", text["id"])
	assert.Equal(t, "text", text["type"])
	assert.Nil(t, text["parentId"])
	assert.Contains(t, text, "parentId")
	assert.NotContains(t, text, "options")
	assert.NotContains(t, text, "children")
	assert.Equal(t, map[string]any{"required": false}, text["validations"])
	assert.Equal(t, []any{}, text["conditions"])

	section := raw[1]
	assert.Equal(t, "New Section", section["label"])
	kids, ok := section["children"].([]any)
	require.True(t, ok)
	require.Len(t, kids, 2)
	assert.Equal(t, "s", kids[0].(map[string]any)["parentId"])

	dropdown := raw[2]
	assert.Equal(t, []any{}, dropdown["options"])
}

func TestTreeJSONRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not a list", `{"id":"a"}`},
		{"missing id", `[{"type":"text"}]`},
		{"unknown type", `[{"id":"a","type":"signature"}]`},
		{"children on leaf", `[{"id":"a","type":"dropdown","children":[]}]`},
		{"options on text", `[{"id":"a","type":"text","options":["x"]}]`},
		{"duplicate ids", `[{"id":"a","type":"text"},{"id":"a","type":"email"}]`},
		{"nested duplicate", `[{"id":"a","type":"section","children":[{"id":"a","type":"text"}]}]`},
		{"null field", `[null]`},
		{"bad validations", `[{"id":"a","type":"text","validations":[1]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tree Tree
			err := json.Unmarshal([]byte(tt.data), &tree)
			assert.ErrorIs(t, err, ErrInvalidStructure)
		})
	}
}

func TestTreeJSONFillsDefaultsAndParents(t *testing.T) {
	data := `[{"id":"s","type":"section","label":"Contact","parentId":"bogus","children":[
		{"id":"t","type":"text","parentId":null,"conditions":[{"targetField":"x","operator":"equals","value":1}]}
	]}]`

	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(data), &tree))

	s, _ := tree.Find("s")
	assert.Empty(t, s.ParentID())
	txt, ok := tree.Find("t")
	require.True(t, ok)
	assert.Equal(t, "s", txt.ParentID())
	assert.Equal(t, []string{RuleRequired}, txt.Rules().Keys())
	assert.Equal(t, []Condition{{TargetFieldID: "x", Operator: Equals, Value: "1"}}, txt.Conditions())
}
