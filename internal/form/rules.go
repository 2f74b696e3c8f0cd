package form

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/elliotchance/orderedmap/v3"
)

// Recognized validation rule names.
const (
	RuleRequired  = "required"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
	RuleEmail     = "email"
	RuleURL       = "url"
	RulePhone     = "phone"
)

// Rules maps rule names to their configuration (bool, int or string) and
// keeps insertion order, which is the order rules are evaluated in.
// Rules is immutable: With and Without return modified copies.
type Rules struct {
	m *orderedmap.OrderedMap[string, any]
}

// DefaultRules returns the rules every new field starts with.
func DefaultRules() Rules {
	return Rules{}.With(RuleRequired, false)
}

// Get returns the configuration of a rule.
func (r Rules) Get(name string) (any, bool) {
	if r.m == nil {
		return nil, false
	}
	return r.m.Get(name)
}

// Len returns the number of configured rules.
func (r Rules) Len() int {
	if r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Keys returns rule names in insertion order.
func (r Rules) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Each(func(name string, _ any) {
		keys = append(keys, name)
	})
	return keys
}

// Each calls fn for every rule in insertion order.
func (r Rules) Each(fn func(name string, value any)) {
	if r.m == nil {
		return
	}
	for el := r.m.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// With returns a copy with the rule set. An existing rule keeps its position.
func (r Rules) With(name string, value any) Rules {
	out := r.copy()
	out.m.Set(name, value)
	return out
}

// Without returns a copy with the rule removed.
func (r Rules) Without(name string) Rules {
	out := r.copy()
	out.m.Delete(name)
	return out
}

// Equal reports whether both rule sets hold the same rules in the same order.
func (r Rules) Equal(o Rules) bool {
	if r.Len() != o.Len() {
		return false
	}
	a, b := r.Keys(), o.Keys()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
		av, _ := r.Get(a[i])
		bv, _ := o.Get(b[i])
		if fmt.Sprint(av) != fmt.Sprint(bv) {
			return false
		}
	}
	return true
}

func (r Rules) copy() Rules {
	m := orderedmap.NewOrderedMap[string, any]()
	r.Each(func(name string, value any) {
		m.Set(name, value)
	})
	return Rules{m: m}
}

// MarshalJSON writes the rules as a JSON object in insertion order.
func (r Rules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	r.Each(func(name string, value any) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var k, v []byte
		if k, err = json.Marshal(name); err != nil {
			return
		}
		if v, err = json.Marshal(value); err != nil {
			return
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rules: %w", err)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order.
// Whole numbers decode to int so length limits compare as integers.
func (r *Rules) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = Rules{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: validations must be an object", ErrInvalidStructure)
	}

	out := Rules{m: orderedmap.NewOrderedMap[string, any]()}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: validation key %v", ErrInvalidStructure, tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out.m.Set(name, normalizeRuleValue(raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

func normalizeRuleValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
