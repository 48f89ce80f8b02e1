package mcp

import (
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/domain/reader"
)

type IDParams struct {
	ID int64 `json:"id" jsonschema:"Identifier assigned when the record was created"`
}

type ListParams struct{}

type CreateBookParams struct {
	Title     string  `json:"title" jsonschema:"Book title"`
	Author    string  `json:"author" jsonschema:"Author name, letters and spaces only"`
	Published int     `json:"published" jsonschema:"Year of publication"`
	Note      *string `json:"note,omitempty" jsonschema:"Free-form note"`
}

type UpdateBookParams struct {
	ID        int64   `json:"id" jsonschema:"Book identifier"`
	Title     string  `json:"title" jsonschema:"Book title"`
	Author    string  `json:"author" jsonschema:"Author name, letters and spaces only"`
	Published int     `json:"published" jsonschema:"Year of publication"`
	Note      *string `json:"note,omitempty" jsonschema:"Free-form note; omit to clear"`
}

type CreateReaderParams struct {
	Name    string  `json:"name" jsonschema:"Reader name, letters and spaces only"`
	Address string  `json:"address,omitempty" jsonschema:"Postal address"`
	Email   string  `json:"email" jsonschema:"E-mail address"`
	Note    *string `json:"note,omitempty" jsonschema:"Free-form note"`
}

type UpdateReaderParams struct {
	ID      int64   `json:"id" jsonschema:"Reader identifier"`
	Name    string  `json:"name" jsonschema:"Reader name, letters and spaces only"`
	Address string  `json:"address,omitempty" jsonschema:"Postal address"`
	Email   string  `json:"email" jsonschema:"E-mail address"`
	Note    *string `json:"note,omitempty" jsonschema:"Free-form note; omit to clear"`
}

type FindReadersParams struct {
	Name string `json:"name" jsonschema:"Exact reader name"`
}

type CreateLoanParams struct {
	ReaderID        int64  `json:"reader_id" jsonschema:"Borrowing reader"`
	BookID          int64  `json:"book_id" jsonschema:"Borrowed book"`
	StartDate       string `json:"start_date,omitempty" jsonschema:"First day of the loan (YYYY-MM-DD), not after today"`
	ExpectedEndDate string `json:"expected_end_date,omitempty" jsonschema:"Agreed return day (YYYY-MM-DD), not before the start"`
	RealEndTime     string `json:"real_end_time,omitempty" jsonschema:"Actual return instant (RFC 3339)"`
}

type UpdateLoanParams struct {
	ID              int64  `json:"id" jsonschema:"Loan identifier"`
	ReaderID        int64  `json:"reader_id" jsonschema:"Borrowing reader"`
	BookID          int64  `json:"book_id" jsonschema:"Borrowed book"`
	StartDate       string `json:"start_date,omitempty" jsonschema:"First day of the loan (YYYY-MM-DD)"`
	ExpectedEndDate string `json:"expected_end_date,omitempty" jsonschema:"Agreed return day (YYYY-MM-DD)"`
	RealEndTime     string `json:"real_end_time,omitempty" jsonschema:"Actual return instant (RFC 3339)"`
}

type ReaderLoansParams struct {
	ReaderID int64 `json:"reader_id" jsonschema:"Reader whose loans to list"`
}

type BookLoansParams struct {
	BookID int64 `json:"book_id" jsonschema:"Book whose loans to list"`
}

type BookView struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Published int     `json:"published"`
	Note      *string `json:"note,omitempty"`
}

type ReaderView struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Email   string  `json:"email"`
	Note    *string `json:"note,omitempty"`
}

type LoanView struct {
	ID              int64      `json:"id"`
	Reader          ReaderView `json:"reader"`
	Book            BookView   `json:"book"`
	StartDate       string     `json:"start_date,omitempty"`
	ExpectedEndDate string     `json:"expected_end_date,omitempty"`
	RealEndTime     string     `json:"real_end_time,omitempty"`
	Returned        bool       `json:"returned"`
}

type BookList struct {
	Books []BookView `json:"books"`
}

type ReaderList struct {
	Readers []ReaderView `json:"readers"`
}

type LoanList struct {
	Loans []LoanView `json:"loans"`
}

type DeleteResult struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

func newBookView(b *book.Book) BookView {
	return BookView{
		ID:        idValue(b.ID),
		Title:     b.Title,
		Author:    b.Author,
		Published: b.Published,
		Note:      b.Note,
	}
}

func newReaderView(r *reader.Reader) ReaderView {
	return ReaderView{
		ID:      idValue(r.ID),
		Name:    r.Name,
		Address: r.Address,
		Email:   r.Email,
		Note:    r.Note,
	}
}

func newLoanView(l *loan.Loan) LoanView {
	view := LoanView{
		ID:       idValue(l.ID),
		Reader:   newReaderView(l.Reader),
		Book:     newBookView(l.Book),
		Returned: l.IsReturned(),
	}
	if l.StartDate != nil {
		view.StartDate = l.StartDate.String()
	}
	if l.ExpectedEndDate != nil {
		view.ExpectedEndDate = l.ExpectedEndDate.String()
	}
	if l.RealEndTime != nil {
		view.RealEndTime = time.Time(*l.RealEndTime).UTC().Format(time.RFC3339)
	}
	return view
}

func idValue(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func parseDate(field, value string) (*strfmt.Date, error) {
	if value == "" {
		return nil, nil
	}
	var d strfmt.Date
	if err := d.UnmarshalText([]byte(value)); err != nil {
		return nil, invalidInput(field, "must be a date in YYYY-MM-DD form")
	}
	return &d, nil
}

func parseDateTime(field, value string) (*strfmt.DateTime, error) {
	if value == "" {
		return nil, nil
	}
	dt, err := strfmt.ParseDateTime(value)
	if err != nil {
		return nil, invalidInput(field, "must be an RFC 3339 timestamp")
	}
	return &dt, nil
}
