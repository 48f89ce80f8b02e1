package mcp

import (
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/repository"
)

// Managers contains the stores exposed as tools.
type Managers struct {
	Books   repository.BookManager
	Readers repository.ReaderManager
	Loans   repository.LoanManager
}

// Config contains server configuration.
type Config struct {
	Managers Managers
	Clock    loan.Clock // stamps returned loans; nil means the UTC system clock
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Clock == nil {
		cfg.Clock = loan.SystemClock(time.UTC)
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "libraryloans",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &toolSet{
		books:   cfg.Managers.Books,
		readers: cfg.Managers.Readers,
		loans:   cfg.Managers.Loans,
		clock:   cfg.Clock,
	})

	return server
}
