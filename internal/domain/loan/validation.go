package loan

import (
	"time"

	"github.com/rpggio/libraryloans/internal/domain"
)

// Validate applies the loan rules in order: reader present, book present,
// expected end not before start, start not after today per clock.
// It performs no I/O.
func Validate(l *Loan, clock Clock) error {
	if l == nil {
		return domain.NewValidationError(EntityName, "", "loan is nil")
	}
	if l.Reader == nil {
		return domain.NewValidationError(EntityName, "reader", "must not be nil")
	}
	if l.Book == nil {
		return domain.NewValidationError(EntityName, "book", "must not be nil")
	}
	if l.StartDate != nil && l.ExpectedEndDate != nil {
		if civilDay(time.Time(*l.ExpectedEndDate)) < civilDay(time.Time(*l.StartDate)) {
			return domain.NewValidationError(EntityName, "expected_end_date", "is before start date")
		}
	}
	if l.StartDate != nil {
		today := civilDay(clock.Now())
		if civilDay(time.Time(*l.StartDate)) > today {
			return domain.NewValidationError(EntityName, "start_date", "is in the future")
		}
	}
	return nil
}

// ValidateReferences checks that the referenced reader and book carry
// identifiers, so they can be stored as foreign keys.
func ValidateReferences(l *Loan) error {
	if !l.Reader.IsPersistent() {
		return domain.NewIllegalEntityError(EntityName, l.ID, "reader is not persisted")
	}
	if !l.Book.IsPersistent() {
		return domain.NewIllegalEntityError(EntityName, l.ID, "book is not persisted")
	}
	return nil
}
