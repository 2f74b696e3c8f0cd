package form

import "errors"

var (
	// ErrNotFound is returned when an id does not resolve in the tree.
	ErrNotFound = errors.New("field not found")
	// ErrInvalidStructure is returned when decoded data does not have the shape of a field tree.
	ErrInvalidStructure = errors.New("invalid form structure")
	// ErrCycle is returned when a section would be moved into itself or one of its descendants.
	ErrCycle = errors.New("move would create a cycle")
	// ErrNotContainer is returned when children are addressed on a field that is not a section.
	ErrNotContainer = errors.New("field cannot hold children")
	// ErrNotApplicable is returned when an update sets an attribute the field type does not have.
	ErrNotApplicable = errors.New("attribute not applicable to field type")
	// ErrUnknownType is returned for field type names outside the fixed set.
	ErrUnknownType = errors.New("unknown field type")
)
