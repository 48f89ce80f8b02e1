package book

import (
	"fmt"
)

// EntityName identifies books in errors and logs.
const EntityName = "book"

// Book is a catalogued title. ID stays nil until the book is persisted.
type Book struct {
	ID        *int64  `json:"id,omitempty" db:"id"`
	Author    string  `json:"author" db:"author"`
	Title     string  `json:"title" db:"title"`
	Published int     `json:"published" db:"published"`
	Note      *string `json:"note,omitempty" db:"note"`
}

// Equal compares every field, identifier included.
func (b *Book) Equal(other *Book) bool {
	if b == nil || other == nil {
		return b == other
	}
	return equalInt64(b.ID, other.ID) &&
		b.Author == other.Author &&
		b.Title == other.Title &&
		b.Published == other.Published &&
		equalString(b.Note, other.Note)
}

// IsPersistent reports whether the book has been assigned an identifier.
func (b *Book) IsPersistent() bool {
	return b != nil && b.ID != nil
}

func (b *Book) String() string {
	id := "<nil>"
	if b.ID != nil {
		id = fmt.Sprint(*b.ID)
	}
	return fmt.Sprintf("Book{id: %s, author: %s, title: %s, published: %d}", id, b.Author, b.Title, b.Published)
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
