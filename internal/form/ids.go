package form

import "github.com/google/uuid"

// IDFunc generates field ids.
type IDFunc func() string

// NewID returns a unique, time-ordered field id.
func NewID() string {
	u, err := uuid.NewV7()
	if err != nil {
		return "field-" + uuid.NewString()
	}
	return "field-" + u.String()
}
