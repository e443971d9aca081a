// Package commands wires the beacon CLI: project scaffolding, the
// generation and check pipelines, introspection, watch mode, and the
// language server.
package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/beacon-lang/beacon/internal/cli/ui"
)

// Build-time version information, overridden via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "beacon",
		Short: "Beacon observable-model compiler and tooling",
		Long: color.CyanString(`Beacon - Observable Model Generator

Beacon turns declarative model files (.bcn) into Go types whose
properties fire change notifications. Fields marked with @notify,
@proxy, and @also_notify become accessors that call Notify through
the runtime's Observable contract.

Features:
  • Change-notifying properties from one annotation
  • Proxy properties forwarding to nested models
  • Dependent notifications for computed properties
  • Deterministic, cache-friendly output
  • Watch mode and LSP diagnostics`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		NewVersionCommand(),
		NewNewCommand(),
		NewGenerateCommand(),
		NewCheckCommand(),
		NewIntrospectCommand(),
		NewWatchCommand(),
		NewLSPCommand(),
	)

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the Beacon generator version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), false)
			kv.AddRow("Version", Version)
			kv.AddRow("Commit", GitCommit)
			kv.AddRow("Built", BuildDate)
			kv.AddRow("Go", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command, rendering any error it surfaces.
// Subcommands silence cobra's own reporting, so this is the one place
// command failures are printed.
func Execute() error {
	rootCmd := NewRootCommand()

	err := rootCmd.Execute()
	if err != nil {
		ui.WriteMessage(rootCmd.ErrOrStderr(), ui.MessageOptions{
			Level:   ui.MessageLevelError,
			Problem: err.Error(),
		})
	}
	return err
}
