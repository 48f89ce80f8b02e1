package reader

import (
	"strings"

	"github.com/rpggio/libraryloans/internal/domain"
)

// Validate checks the mutable fields of a reader. It performs no I/O.
func Validate(r *Reader) error {
	if r == nil {
		return domain.NewValidationError(EntityName, "", "reader is nil")
	}
	if !domain.IsLettersOnly(r.Name) {
		return domain.NewValidationError(EntityName, "name", "must contain at least one letter and no digits")
	}
	if !strings.Contains(r.Email, "@") {
		return domain.NewValidationError(EntityName, "email", "must contain @")
	}
	return nil
}
