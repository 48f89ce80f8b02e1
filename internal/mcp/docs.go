package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `libraryloans keeps the books, readers and loans of a small library.

Model:
- Book: title, author (letters and spaces), year published, optional note.
- Reader: name (letters and spaces), address, e-mail, optional note.
- Loan: a reader borrowing a book, with start date, expected end date and the instant it came back.

Every record gets a numeric id when created. Loans point to their reader and book by id and
always come back with both resolved.

Workflow:
1) create_book / create_reader, then create_loan with their ids.
2) return_loan when the book comes back.
3) Books and readers with loans on record cannot be deleted; delete the loans first.

Error codes: VALIDATION_FAILED (fix the field), ILLEGAL_ENTITY (wrong or unknown id),
NOT_FOUND, SERVICE_FAILURE (storage problem, retry later).

Docs: library://docs/rules
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "library://docs/rules",
		Name:        "docs_rules",
		Title:       "Library rules",
		Description: "Validation rules and identifier contract for books, readers and loans.",
		Content: `# Library rules

## Books

- Title must not be blank.
- Author must not be blank and may contain only letters and spaces, starting with a letter.

## Readers

- Name may contain only letters and spaces, starting with a letter.
- E-mail must contain ` + "`@`" + `.

## Loans

- Reader and book are required and must already be stored.
- Expected end date must not be before the start date.
- Start date must not be after today in the library's time zone.

## Identifiers

- Create fails with ILLEGAL_ENTITY when an id is supplied.
- Update and delete fail with ILLEGAL_ENTITY when the id is unknown.
- Get returns NOT_FOUND for unknown ids.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
