package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Operator compares a target field's value with a condition value.
type Operator string

const (
	Equals      Operator = "equals"
	NotEquals   Operator = "notEquals"
	Contains    Operator = "contains"
	GreaterThan Operator = "greaterThan"
	LessThan    Operator = "lessThan"
)

// Operators lists the supported operators.
var Operators = []Operator{Equals, NotEquals, Contains, GreaterThan, LessThan}

// Condition ties the visibility of a field to the current value of another field.
type Condition struct {
	TargetFieldID string   `json:"targetFieldId"`
	Operator      Operator `json:"operator"`
	Value         string   `json:"value"`
}

// NewCondition returns the blank condition a field editor starts with.
func NewCondition() Condition {
	return Condition{Operator: Equals}
}

// UnmarshalJSON also accepts the older "targetField" key.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw struct {
		TargetFieldID string          `json:"targetFieldId"`
		TargetField   string          `json:"targetField"`
		Operator      Operator        `json:"operator"`
		Value         json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: condition: %v", ErrInvalidStructure, err)
	}

	c.TargetFieldID = raw.TargetFieldID
	if c.TargetFieldID == "" {
		c.TargetFieldID = raw.TargetField
	}
	c.Operator = raw.Operator
	c.Value = ""
	if len(raw.Value) > 0 && string(raw.Value) != "null" {
		var v any
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return fmt.Errorf("%w: condition value: %v", ErrInvalidStructure, err)
		}
		c.Value = stringOf(v)
	}
	return nil
}

// Lookup resolves the current value of a field.
type Lookup func(id string) (any, bool)

// Holds reports whether the condition is satisfied by the current values.
// A missing target value compares as the empty string.
func (c Condition) Holds(lookup Lookup) bool {
	var actual any
	if lookup != nil {
		actual, _ = lookup(c.TargetFieldID)
	}

	switch c.Operator {
	case Equals:
		return equalValues(actual, c.Value)
	case NotEquals:
		return !equalValues(actual, c.Value)
	case Contains:
		return containsValue(actual, c.Value)
	case GreaterThan:
		return compareValues(actual, c.Value) > 0
	case LessThan:
		return compareValues(actual, c.Value) < 0
	default:
		return false
	}
}

func equalValues(actual any, want string) bool {
	a, aok := numberOf(actual)
	b, bok := parseNumber(want)
	if aok && bok {
		return a == b
	}
	return stringOf(actual) == want
}

func containsValue(actual any, want string) bool {
	switch v := actual.(type) {
	case []string:
		for _, s := range v {
			if s == want {
				return true
			}
		}
		return false
	case []any:
		for _, s := range v {
			if stringOf(s) == want {
				return true
			}
		}
		return false
	default:
		return strings.Contains(stringOf(actual), want)
	}
}

func compareValues(actual any, want string) int {
	a, aok := numberOf(actual)
	b, bok := parseNumber(want)
	if aok && bok {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(stringOf(actual), want)
}

// numberOf returns the numeric reading of a value, parsing strings.
func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		return parseNumber(n)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// stringOf renders a value the way it is compared and pattern-matched.
func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
