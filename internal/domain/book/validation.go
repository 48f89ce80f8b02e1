package book

import "github.com/rpggio/libraryloans/internal/domain"

// Validate checks the mutable fields of a book. It performs no I/O.
func Validate(b *Book) error {
	if b == nil {
		return domain.NewValidationError(EntityName, "", "book is nil")
	}
	if domain.IsBlank(b.Title) {
		return domain.NewValidationError(EntityName, "title", "must not be empty")
	}
	if domain.IsBlank(b.Author) {
		return domain.NewValidationError(EntityName, "author", "must not be empty")
	}
	if !domain.IsLettersOnly(b.Author) {
		return domain.NewValidationError(EntityName, "author", "must contain at least one letter and no digits")
	}
	return nil
}
