package form

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validation messages
const (
	MsgRequired     = "This field is required"
	MsgMinLength    = "Minimum length not met (%v characters)"
	MsgMaxLength    = "Maximum length exceeded (%v characters)"
	MsgPattern      = "Invalid format"
	MsgInvalidEmail = "Invalid email format"
	MsgInvalidURL   = "Invalid URL format"
	MsgInvalidPhone = "Invalid phone number"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlRegex   = regexp.MustCompile(`^https?://.+\..+`)
	phoneRegex = regexp.MustCompile(`^\+?[\d\s-]+$`)
)

// Validate checks value against the field's rules in rule order and returns
// one message per failed rule. An empty result means the value is valid.
// Unrecognized rules are ignored.
func Validate(n *Node, value any) []string {
	errs := []string{}
	if n == nil {
		return errs
	}

	n.rules.Each(func(rule string, config any) {
		switch rule {
		case RuleRequired:
			if truthy(config) && !truthy(value) {
				errs = append(errs, MsgRequired)
			}
		case RuleMinLength:
			limit, ok := numberOf(config)
			length, hasLength := lengthOf(value)
			if ok && hasLength && float64(length) < limit {
				errs = append(errs, fmt.Sprintf(MsgMinLength, limit))
			}
		case RuleMaxLength:
			limit, ok := numberOf(config)
			length, hasLength := lengthOf(value)
			if ok && hasLength && float64(length) > limit {
				errs = append(errs, fmt.Sprintf(MsgMaxLength, limit))
			}
		case RulePattern:
			if !truthy(config) {
				return
			}
			re, err := regexp.Compile(stringOf(config))
			if err != nil || !re.MatchString(stringOf(value)) {
				errs = append(errs, MsgPattern)
			}
		case RuleEmail:
			if truthy(config) && !emailRegex.MatchString(stringOf(value)) {
				errs = append(errs, MsgInvalidEmail)
			}
		case RuleURL:
			if truthy(config) && !urlRegex.MatchString(stringOf(value)) {
				errs = append(errs, MsgInvalidURL)
			}
		case RulePhone:
			if truthy(config) && !phoneRegex.MatchString(stringOf(value)) {
				errs = append(errs, MsgInvalidPhone)
			}
		}
	})
	return errs
}

// truthy reports whether a value counts as set: non-empty strings, true,
// non-zero numbers and any other non-nil value.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	default:
		return true
	}
}

// numberOf reads a rule limit. Fractional limits are kept as given.
func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		return parseNumber(t)
	default:
		return 0, false
	}
}

// lengthOf returns the length of strings (in characters) and lists.
func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []string:
		return len(t), true
	case []any:
		return len(t), true
	default:
		return 0, false
	}
}
