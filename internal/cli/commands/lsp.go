package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beacon-lang/beacon/internal/lsp"
)

// NewLSPCommand creates the LSP command
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server",
		Long: `Run the Beacon language server over stdin/stdout.

Editors start this command themselves; it is rarely run by hand. The
server speaks JSON-RPC and provides:

  • Diagnostics as you type, for every declaration error and warning
  • Completion for annotations and declared model types
  • Hover with the generated property and its notification set
  • Go-to-definition and references for models and fields
  • Document and workspace symbols

Point your editor's LSP client at "beacon lsp" to enable it for .bcn
files.`,
		RunE: runLSP,
	}
}

func runLSP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return lsp.NewServer().Run(ctx)
}
