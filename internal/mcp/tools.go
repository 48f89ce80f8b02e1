package mcp

import (
	"context"

	"github.com/go-openapi/strfmt"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/domain/reader"
	"github.com/rpggio/libraryloans/internal/repository"
)

// toolSet adapts the managers to MCP tool handlers.
type toolSet struct {
	books   repository.BookManager
	readers repository.ReaderManager
	loans   repository.LoanManager
	clock   loan.Clock
}

func registerTools(server *sdkmcp.Server, t *toolSet) {
	// Books
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "create_book", Description: "Add a book to the catalogue"}, t.createBook)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "update_book", Description: "Replace every field of a stored book"}, t.updateBook)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "delete_book", Description: "Remove a book that no loan refers to"}, t.deleteBook)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "get_book", Description: "Get a book by id"}, t.getBook)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_books", Description: "List every book ordered by id"}, t.listBooks)

	// Readers
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "create_reader", Description: "Register a reader"}, t.createReader)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "update_reader", Description: "Replace every field of a stored reader"}, t.updateReader)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "delete_reader", Description: "Remove a reader with no loans on record"}, t.deleteReader)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "get_reader", Description: "Get a reader by id"}, t.getReader)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_readers", Description: "List every reader ordered by id"}, t.listReaders)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "find_readers_by_name", Description: "List readers whose name matches exactly"}, t.findReadersByName)

	// Loans
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "create_loan", Description: "Lend a stored book to a stored reader"}, t.createLoan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "update_loan", Description: "Replace the reader, book and dates of a loan"}, t.updateLoan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "delete_loan", Description: "Remove a loan"}, t.deleteLoan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "get_loan", Description: "Get a loan with its reader and book"}, t.getLoan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_loans", Description: "List every loan ordered by id"}, t.listLoans)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_loans_for_reader", Description: "List the loans of one reader"}, t.listLoansForReader)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "list_loans_for_book", Description: "List the loans of one book"}, t.listLoansForBook)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "return_loan", Description: "Record that the book of a loan came back now"}, t.returnLoan)
}

func (t *toolSet) createBook(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateBookParams) (*sdkmcp.CallToolResult, BookView, error) {
	b := &book.Book{Title: in.Title, Author: in.Author, Published: in.Published, Note: in.Note}
	if err := t.books.Create(ctx, b); err != nil {
		return nil, BookView{}, MapError(err)
	}
	return nil, newBookView(b), nil
}

func (t *toolSet) updateBook(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateBookParams) (*sdkmcp.CallToolResult, BookView, error) {
	b := &book.Book{ID: &in.ID, Title: in.Title, Author: in.Author, Published: in.Published, Note: in.Note}
	if err := t.books.Update(ctx, b); err != nil {
		return nil, BookView{}, MapError(err)
	}
	return nil, newBookView(b), nil
}

func (t *toolSet) deleteBook(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDParams) (*sdkmcp.CallToolResult, DeleteResult, error) {
	if err := t.books.Delete(ctx, &book.Book{ID: &in.ID}); err != nil {
		return nil, DeleteResult{}, MapError(err)
	}
	return nil, DeleteResult{ID: in.ID, Deleted: true}, nil
}

func (t *toolSet) getBook(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDParams) (*sdkmcp.CallToolResult, BookView, error) {
	b, err := t.books.GetByID(ctx, in.ID)
	if err != nil {
		return nil, BookView{}, MapError(err)
	}
	if b == nil {
		return nil, BookView{}, notFound(book.EntityName, in.ID)
	}
	return nil, newBookView(b), nil
}

func (t *toolSet) listBooks(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListParams) (*sdkmcp.CallToolResult, BookList, error) {
	books, err := t.books.FindAll(ctx)
	if err != nil {
		return nil, BookList{}, MapError(err)
	}
	out := BookList{Books: make([]BookView, 0, len(books))}
	for i := range books {
		out.Books = append(out.Books, newBookView(&books[i]))
	}
	return nil, out, nil
}

func (t *toolSet) createReader(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateReaderParams) (*sdkmcp.CallToolResult, ReaderView, error) {
	r := &reader.Reader{Name: in.Name, Address: in.Address, Email: in.Email, Note: in.Note}
	if err := t.readers.Create(ctx, r); err != nil {
		return nil, ReaderView{}, MapError(err)
	}
	return nil, newReaderView(r), nil
}

func (t *toolSet) updateReader(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateReaderParams) (*sdkmcp.CallToolResult, ReaderView, error) {
	r := &reader.Reader{ID: &in.ID, Name: in.Name, Address: in.Address, Email: in.Email, Note: in.Note}
	if err := t.readers.Update(ctx, r); err != nil {
		return nil, ReaderView{}, MapError(err)
	}
	return nil, newReaderView(r), nil
}

func (t *toolSet) deleteReader(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDParams) (*sdkmcp.CallToolResult, DeleteResult, error) {
	if err := t.readers.Delete(ctx, &reader.Reader{ID: &in.ID}); err != nil {
		return nil, DeleteResult{}, MapError(err)
	}
	return nil, DeleteResult{ID: in.ID, Deleted: true}, nil
}

func (t *toolSet) getReader(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDParams) (*sdkmcp.CallToolResult, ReaderView, error) {
	r, err := t.lookupReader(ctx, in.ID)
	if err != nil {
		return nil, ReaderView{}, err
	}
	return nil, newReaderView(r), nil
}

func (t *toolSet) listReaders(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListParams) (*sdkmcp.CallToolResult, ReaderList, error) {
	readers, err := t.readers.FindAll(ctx)
	if err != nil {
		return nil, ReaderList{}, MapError(err)
	}
	return nil, newReaderList(readers), nil
}

func (t *toolSet) findReadersByName(ctx context.Context, _ *sdkmcp.CallToolRequest, in FindReadersParams) (*sdkmcp.CallToolResult, ReaderList, error) {
	readers, err := t.readers.FindByName(ctx, in.Name)
	if err != nil {
		return nil, ReaderList{}, MapError(err)
	}
	return nil, newReaderList(readers), nil
}

func (t *toolSet) createLoan(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateLoanParams) (*sdkmcp.CallToolResult, LoanView, error) {
	l, err := t.buildLoan(ctx, in.ReaderID, in.BookID, in.StartDate, in.ExpectedEndDate, in.RealEndTime)
	if err != nil {
		return nil, LoanView{}, err
	}
	if err := t.loans.Create(ctx, l); err != nil {
		return nil, LoanView{}, MapError(err)
	}
	return nil, newLoanView(l), nil
}

func (t *toolSet) updateLoan(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateLoanParams) (*sdkmcp.CallToolResult, LoanView, error) {
	l, err := t.buildLoan(ctx, in.ReaderID, in.BookID, in.StartDate, in.ExpectedEndDate, in.RealEndTime)
	if err != nil {
		return nil, LoanView{}, err
	}
	l.ID = &in.ID
	if err := t.loans.Update(ctx, l); err != nil {
		return nil, LoanView{}, MapError(err)
	}
	return nil, newLoanView(l), nil
}

func (t *toolSet) deleteLoan(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDParams) (*sdkmcp.CallToolResult, DeleteResult, error) {
	if err := t.loans.Delete(ctx, &loan.Loan{ID: &in.ID}); err != nil {
		return nil, DeleteResult{}, MapError(err)
	}
	return nil, DeleteResult{ID: in.ID, Deleted: true}, nil
}

func (t *toolSet) getLoan(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDParams) (*sdkmcp.CallToolResult, LoanView, error) {
	l, err := t.lookupLoan(ctx, in.ID)
	if err != nil {
		return nil, LoanView{}, err
	}
	return nil, newLoanView(l), nil
}

func (t *toolSet) listLoans(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListParams) (*sdkmcp.CallToolResult, LoanList, error) {
	loans, err := t.loans.FindAll(ctx)
	if err != nil {
		return nil, LoanList{}, MapError(err)
	}
	return nil, newLoanList(loans), nil
}

func (t *toolSet) listLoansForReader(ctx context.Context, _ *sdkmcp.CallToolRequest, in ReaderLoansParams) (*sdkmcp.CallToolResult, LoanList, error) {
	r, err := t.lookupReader(ctx, in.ReaderID)
	if err != nil {
		return nil, LoanList{}, err
	}
	loans, err := t.loans.FindAllForReader(ctx, r)
	if err != nil {
		return nil, LoanList{}, MapError(err)
	}
	return nil, newLoanList(loans), nil
}

func (t *toolSet) listLoansForBook(ctx context.Context, _ *sdkmcp.CallToolRequest, in BookLoansParams) (*sdkmcp.CallToolResult, LoanList, error) {
	b, err := t.lookupBook(ctx, in.BookID)
	if err != nil {
		return nil, LoanList{}, err
	}
	loans, err := t.loans.FindAllForBook(ctx, b)
	if err != nil {
		return nil, LoanList{}, MapError(err)
	}
	return nil, newLoanList(loans), nil
}

// returnLoan stamps the real end time from the server clock.
func (t *toolSet) returnLoan(ctx context.Context, _ *sdkmcp.CallToolRequest, in IDParams) (*sdkmcp.CallToolResult, LoanView, error) {
	l, err := t.lookupLoan(ctx, in.ID)
	if err != nil {
		return nil, LoanView{}, err
	}
	if l.IsReturned() {
		return nil, LoanView{}, MapError(domain.NewIllegalEntityError(loan.EntityName, l.ID, "already returned"))
	}

	returned := strfmt.DateTime(t.clock.Now())
	l.RealEndTime = &returned
	if err := t.loans.Update(ctx, l); err != nil {
		return nil, LoanView{}, MapError(err)
	}
	return nil, newLoanView(l), nil
}

func (t *toolSet) buildLoan(ctx context.Context, readerID, bookID int64, start, expectedEnd, realEnd string) (*loan.Loan, error) {
	startDate, err := parseDate("start_date", start)
	if err != nil {
		return nil, MapError(err)
	}
	endDate, err := parseDate("expected_end_date", expectedEnd)
	if err != nil {
		return nil, MapError(err)
	}
	realEndTime, err := parseDateTime("real_end_time", realEnd)
	if err != nil {
		return nil, MapError(err)
	}

	r, err := t.lookupReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	b, err := t.lookupBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	return &loan.Loan{
		Reader:          r,
		Book:            b,
		StartDate:       startDate,
		ExpectedEndDate: endDate,
		RealEndTime:     realEndTime,
	}, nil
}

func (t *toolSet) lookupReader(ctx context.Context, id int64) (*reader.Reader, error) {
	r, err := t.readers.GetByID(ctx, id)
	if err != nil {
		return nil, MapError(err)
	}
	if r == nil {
		return nil, notFound(reader.EntityName, id)
	}
	return r, nil
}

func (t *toolSet) lookupBook(ctx context.Context, id int64) (*book.Book, error) {
	b, err := t.books.GetByID(ctx, id)
	if err != nil {
		return nil, MapError(err)
	}
	if b == nil {
		return nil, notFound(book.EntityName, id)
	}
	return b, nil
}

func (t *toolSet) lookupLoan(ctx context.Context, id int64) (*loan.Loan, error) {
	l, err := t.loans.GetByID(ctx, id)
	if err != nil {
		return nil, MapError(err)
	}
	if l == nil {
		return nil, notFound(loan.EntityName, id)
	}
	return l, nil
}

func newReaderList(readers []reader.Reader) ReaderList {
	out := ReaderList{Readers: make([]ReaderView, 0, len(readers))}
	for i := range readers {
		out.Readers = append(out.Readers, newReaderView(&readers[i]))
	}
	return out
}

func newLoanList(loans []loan.Loan) LoanList {
	out := LoanList{Loans: make([]LoanView, 0, len(loans))}
	for i := range loans {
		out.Loans = append(out.Loans, newLoanView(&loans[i]))
	}
	return out
}
