package reader

import "fmt"

// EntityName identifies readers in errors and logs.
const EntityName = "reader"

// Reader is a registered library member. ID stays nil until persisted.
type Reader struct {
	ID      *int64  `json:"id,omitempty" db:"id"`
	Name    string  `json:"name" db:"name"`
	Address string  `json:"address" db:"address"`
	Email   string  `json:"email" db:"email"`
	Note    *string `json:"note,omitempty" db:"note"`
}

// Equal compares every field, identifier included.
func (r *Reader) Equal(other *Reader) bool {
	if r == nil || other == nil {
		return r == other
	}
	return equalInt64(r.ID, other.ID) &&
		r.Name == other.Name &&
		r.Address == other.Address &&
		r.Email == other.Email &&
		equalString(r.Note, other.Note)
}

// IsPersistent reports whether the reader has been assigned an identifier.
func (r *Reader) IsPersistent() bool {
	return r != nil && r.ID != nil
}

func (r *Reader) String() string {
	id := "<nil>"
	if r.ID != nil {
		id = fmt.Sprint(*r.ID)
	}
	return fmt.Sprintf("Reader{id: %s, name: %s, email: %s}", id, r.Name, r.Email)
}

func equalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
