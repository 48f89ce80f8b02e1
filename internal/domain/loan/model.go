package loan

import (
	"fmt"

	"github.com/go-openapi/strfmt"

	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/reader"
)

// EntityName identifies loans in errors and logs.
const EntityName = "loan"

// Loan records that a reader borrowed a book. Reader and Book are weak
// references: only their identifiers are stored, and they are re-read on load.
type Loan struct {
	ID              *int64           `json:"id,omitempty"`
	Reader          *reader.Reader   `json:"reader"`
	Book            *book.Book       `json:"book"`
	StartDate       *strfmt.Date     `json:"start_date,omitempty"`
	ExpectedEndDate *strfmt.Date     `json:"expected_end_date,omitempty"`
	RealEndTime     *strfmt.DateTime `json:"real_end_time,omitempty"`
}

// Equal compares identity only: the identifier, the reader and the book.
// Dates are not part of a loan's identity.
func (l *Loan) Equal(other *Loan) bool {
	if l == nil || other == nil {
		return l == other
	}
	if (l.ID == nil) != (other.ID == nil) {
		return false
	}
	if l.ID != nil && *l.ID != *other.ID {
		return false
	}
	return l.Reader.Equal(other.Reader) && l.Book.Equal(other.Book)
}

// IsReturned reports whether the book has been brought back.
func (l *Loan) IsReturned() bool {
	return l.RealEndTime != nil
}

func (l *Loan) String() string {
	id := "<nil>"
	if l.ID != nil {
		id = fmt.Sprint(*l.ID)
	}
	return fmt.Sprintf("Loan{id: %s, reader: %v, book: %v, start: %s, expected_end: %s}",
		id, l.Reader, l.Book, formatDate(l.StartDate), formatDate(l.ExpectedEndDate))
}

func formatDate(d *strfmt.Date) string {
	if d == nil {
		return "<nil>"
	}
	return d.String()
}
