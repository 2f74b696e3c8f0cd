// Package form provides the field tree model for form definitions.
// A tree is built from typed Nodes and edited only through Tree operations,
// which return a new tree and leave the old one untouched.
package form

import "fmt"

// FieldType defines the type of form field
type FieldType string

const (
	Text     FieldType = "text"     // Single-line text input
	TextArea FieldType = "textarea" // Multi-line text input
	Email    FieldType = "email"    // Email address
	Password FieldType = "password" // Masked input
	Number   FieldType = "number"   // Numeric input
	Dropdown FieldType = "dropdown" // Select one option from a list
	Radio    FieldType = "radio"    // Radio button group
	File     FieldType = "file"     // File picker, value is the file name
	Checkbox FieldType = "checkbox" // Boolean on/off
	Country  FieldType = "country"  // Country picker
	Date     FieldType = "date"
	Time     FieldType = "time"
	Phone    FieldType = "phone" // Phone number with dial code companion
	URL      FieldType = "url"
	Section  FieldType = "section" // Container for child fields
	Rating   FieldType = "rating"  // 1..5 stars
	Slider   FieldType = "slider"  // Bounded numeric range
)

// AllTypes lists every field type in declaration order.
var AllTypes = []FieldType{
	Text, TextArea, Email, Password, Number, Dropdown, Radio, File, Checkbox,
	Country, Date, Time, Phone, URL, Section, Rating, Slider,
}

// ParseType converts a type name to a FieldType.
func ParseType(s string) (FieldType, error) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// HasOptions reports whether fields of this type carry an option list.
func (t FieldType) HasOptions() bool {
	return t == Dropdown || t == Radio
}

// IsContainer reports whether fields of this type own children.
func (t FieldType) IsContainer() bool {
	return t == Section
}

// HasBounds reports whether fields of this type carry min/max/step.
func (t FieldType) HasBounds() bool {
	return t == Number || t == Slider
}

// TypeGroup is a named group of field types, used by field pickers.
type TypeGroup struct {
	Name  string
	Types []FieldType
}

// TypeGroups returns the field picker groups in display order.
func TypeGroups() []TypeGroup {
	return []TypeGroup{
		{Name: "Text Input", Types: []FieldType{Text, TextArea, Email, Password, URL}},
		{Name: "Number Input", Types: []FieldType{Number, Slider, Rating}},
		{Name: "Choice Input", Types: []FieldType{Dropdown, Radio, Checkbox}},
		{Name: "Date & Time", Types: []FieldType{Date, Time}},
		{Name: "Special Input", Types: []FieldType{File, Phone, Country}},
		{Name: "Layout", Types: []FieldType{Section}},
	}
}

// CountryInfo describes a selectable country and its dial code.
type CountryInfo struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	PhoneCode string `json:"phoneCode"`
}

// Countries is the country list offered by country and phone fields.
var Countries = []CountryInfo{
	{Code: "US", Name: "United States", PhoneCode: "+1"},
	{Code: "GB", Name: "United Kingdom", PhoneCode: "+44"},
	{Code: "CA", Name: "Canada", PhoneCode: "+1"},
	{Code: "AU", Name: "Australia", PhoneCode: "+61"},
	{Code: "IN", Name: "India", PhoneCode: "+91"},
	{Code: "DE", Name: "Germany", PhoneCode: "+49"},
	{Code: "FR", Name: "France", PhoneCode: "+33"},
	{Code: "JP", Name: "Japan", PhoneCode: "+81"},
}

// RatingScale is the range of values a rating field accepts.
var RatingScale = []int{1, 2, 3, 4, 5}

// PhoneCodeKey returns the entry key holding the dial code chosen for a phone field.
func PhoneCodeKey(id string) string {
	return id + "-code"
}

// RulesFor returns the validation rules that can be configured on a field type.
func RulesFor(t FieldType) []string {
	rules := []string{RuleRequired}
	switch t {
	case Text, TextArea:
		rules = append(rules, RuleMinLength, RuleMaxLength, RulePattern)
	case Email:
		rules = append(rules, RuleEmail)
	case URL:
		rules = append(rules, RuleURL)
	case Phone:
		rules = append(rules, RulePhone)
	}
	return rules
}
