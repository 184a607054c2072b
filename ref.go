package niidg

import "github.com/google/uuid"

// Ref is a reference to another entity in the same crate, serialized as
// {"@id": "..."}.
type Ref struct {
	ID string
}

// NewRef wraps an identifier in a Ref.
func NewRef(id string) Ref { return Ref{ID: id} }

// BlankID generates a blank node identifier for entities that have no
// natural one.
func BlankID() string {
	return "#" + uuid.NewString()
}
