package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestServiceFailure_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("creating book: %w", domain.NewServiceFailure("create book", cause))

	require.ErrorIs(t, err, domain.ErrServiceFailure)
	require.ErrorIs(t, err, cause)
	require.False(t, domain.IsValidation(err))
	require.False(t, domain.IsIllegalEntity(err))

	var failure *domain.ServiceFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, "create book", failure.Op)
}

func TestErrorKinds_AreDistinct(t *testing.T) {
	id := int64(7)
	validation := domain.NewValidationError("book", "title", "must not be empty")
	illegal := domain.NewIllegalEntityError("book", &id, "does not exist")

	require.True(t, domain.IsValidation(validation))
	require.False(t, domain.IsServiceFailure(validation))
	require.True(t, domain.IsIllegalEntity(illegal))
	require.False(t, domain.IsValidation(illegal))

	require.Equal(t, `invalid book: field "title": must not be empty`, validation.Error())
	require.Equal(t, "illegal book 7: does not exist", illegal.Error())
}

func TestIsLettersOnly(t *testing.T) {
	cases := map[string]bool{
		"Eckel Bruce":      true,
		"Plíhal Karel":     true,
		"Petr s Příjmením": true,
		"Pavel":            true,
		"":                 false,
		" Pavel":           false,
		"15648":            false,
		"Agent 007":        false,
		"O'Brien":          false,
	}
	for input, want := range cases {
		require.Equal(t, want, domain.IsLettersOnly(input), "input %q", input)
	}
}
