// Package lsp implements a Language Server Protocol server for Beacon
// declaration files. It wraps the tooling API and speaks JSON-RPC over
// stdin/stdout: diagnostics, completion, hover, go-to-definition,
// references, and symbol search.
package lsp

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/beacon-lang/beacon/internal/tooling"
)

// Server wires the tooling API to a JSON-RPC connection.
type Server struct {
	api    *tooling.API
	conn   jsonrpc2.Conn
	client protocol.Client

	// logger writes to stderr so stdout stays clean for the protocol
	// stream.
	logger *log.Logger

	workspaceRoot string
	capabilities  protocol.ServerCapabilities

	// cancel ends Run once the client sends exit.
	cancel context.CancelFunc
}

// NewServer creates a new LSP server instance
func NewServer() *Server {
	return &Server{
		api:    tooling.NewAPI(),
		logger: log.New(os.Stderr, "[beacon-lsp] ", log.LstdFlags),
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save: &protocol.SaveOptions{
					IncludeText: false,
				},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{":", "@"},
				ResolveProvider:   false,
			},
			HoverProvider: true,
			DefinitionProvider: &protocol.DefinitionOptions{
				WorkDoneProgressOptions: protocol.WorkDoneProgressOptions{
					WorkDoneProgress: false,
				},
			},
			ReferencesProvider:      true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
		},
	}
}

// Run starts the server on stdin/stdout and blocks until the context is
// cancelled or the client requests exit.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("starting Beacon language server")

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(stdrwc{}))
	s.conn = conn

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		s.logger.Printf("warning: failed to create zap logger: %v", err)
		zapLogger = zap.NewNop()
	}
	s.client = protocol.ClientDispatcher(conn, zapLogger)

	conn.Go(ctx, s.dispatch(s.routes()))

	<-ctx.Done()

	s.logger.Println("shutting down")
	return conn.Close()
}

type rpcHandler func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error

// routes maps JSON-RPC methods to their handlers. Document sync lives
// in documents.go, language features in handlers.go.
func (s *Server) routes() map[string]rpcHandler {
	return map[string]rpcHandler{
		protocol.MethodInitialize:                     s.handleInitialize,
		protocol.MethodInitialized:                    s.handleInitialized,
		protocol.MethodShutdown:                       s.handleShutdown,
		protocol.MethodExit:                           s.handleExit,
		protocol.MethodTextDocumentDidOpen:            s.handleTextDocumentDidOpen,
		protocol.MethodTextDocumentDidChange:          s.handleTextDocumentDidChange,
		protocol.MethodTextDocumentDidClose:           s.handleTextDocumentDidClose,
		protocol.MethodTextDocumentDidSave:            s.handleTextDocumentDidSave,
		protocol.MethodWorkspaceDidChangeWatchedFiles: s.handleWorkspaceDidChangeWatchedFiles,
		protocol.MethodTextDocumentCompletion:         s.handleTextDocumentCompletion,
		protocol.MethodTextDocumentHover:              s.handleTextDocumentHover,
		protocol.MethodTextDocumentDefinition:         s.handleTextDocumentDefinition,
		protocol.MethodTextDocumentReferences:         s.handleTextDocumentReferences,
		protocol.MethodTextDocumentDocumentSymbol:     s.handleTextDocumentDocumentSymbol,
		protocol.MethodWorkspaceSymbol:                s.handleWorkspaceSymbol,
	}
}

// dispatch builds the connection handler from a route table.
func (s *Server) dispatch(routes map[string]rpcHandler) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Printf("<- %s", req.Method())

		if handle, ok := routes[req.Method()]; ok {
			return handle(ctx, reply, req)
		}
		return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
	}
}

// handleInitialize handles the initialize request
func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed initialize params")
	}

	s.logger.Printf("initialize from client: %v", params.ClientInfo)

	// Workspace folders first (LSP 3.6+), then the deprecated rootUri
	// and rootPath fallbacks older clients still send.
	switch {
	case len(params.WorkspaceFolders) > 0:
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI).Filename()
	case params.RootURI != "":
		s.workspaceRoot = params.RootURI.Filename()
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	}

	if s.workspaceRoot != "" {
		s.logger.Printf("workspace root: %s", s.workspaceRoot)
		// Every declaration in the workspace feeds analysis, so capability
		// and plan diagnostics see the whole program, not single buffers.
		if err := s.api.SetWorkspace(s.workspaceRoot); err != nil {
			s.logger.Printf("warning: failed to scan workspace: %v", err)
		}
	}

	return reply(ctx, protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "beacon-lsp",
			Version: "0.1.0",
		},
	}, nil)
}

func (s *Server) handleInitialized(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Println("client initialized")
	return reply(ctx, nil, nil)
}

func (s *Server) handleShutdown(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Println("shutdown requested")
	return reply(ctx, nil, nil)
}

// handleExit replies before cancelling so the acknowledgement still
// reaches the client.
func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Println("exit requested")
	if err := reply(ctx, nil, nil); err != nil {
		s.logger.Printf("replying to exit: %v", err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// replyWithError sends an LSP-compliant error response
func (s *Server) replyWithError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{
		Code:    code,
		Message: message,
	})
}

// stdrwc implements io.ReadWriteCloser over stdin/stdout
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
