package reader_test

import (
	"testing"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/rpggio/libraryloans/internal/domain/reader"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := &reader.Reader{Name: "Petr s Příjmením", Address: "Brno 42", Email: "petr@mail.cz"}
	require.NoError(t, reader.Validate(valid))

	tests := []struct {
		name  string
		r     *reader.Reader
		field string
	}{
		{name: "empty name", r: &reader.Reader{Name: "", Email: "a@b.cz"}, field: "name"},
		{name: "digits in name", r: &reader.Reader{Name: "Pavel 2", Email: "a@b.cz"}, field: "name"},
		{name: "leading space", r: &reader.Reader{Name: " Pavel", Email: "a@b.cz"}, field: "name"},
		{name: "email without at", r: &reader.Reader{Name: "Pavel", Email: "pavel.mail.cz"}, field: "email"},
		{name: "empty email", r: &reader.Reader{Name: "Pavel"}, field: "email"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := reader.Validate(tc.r)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}

	require.ErrorIs(t, reader.Validate(nil), domain.ErrValidation)
}

func TestReader_Equal(t *testing.T) {
	note := "Sample note"
	a := &reader.Reader{Name: "Pavel", Email: "pavel@mail.cz", Note: &note}
	b := &reader.Reader{Name: "Pavel", Email: "pavel@mail.cz", Note: &note}
	require.True(t, a.Equal(b))

	b.Address = "Brno 41"
	require.False(t, a.Equal(b))
}
