package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/beacon-lang/beacon/internal/cli/config"
	"github.com/beacon-lang/beacon/internal/cli/ui"
	"github.com/beacon-lang/beacon/internal/compiler/cache"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
	"github.com/beacon-lang/beacon/internal/tooling"
)

var (
	checkJSON    bool
	checkCompact bool
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dir|-]",
		Short: "Validate model declarations without generating code",
		Long: `Run the full analysis pipeline over the declaration files and report
diagnostics, writing nothing to disk.

Checking covers everything generation would reject: syntax errors, sealed
models with annotated fields, missing Observable capability, generated-name
collisions, invalid proxy targets, and orphaned @also_notify annotations.
Warnings are reported too but never fail the check.`,
		Example: `  # Check the configured source directory
  beacon check

  # Check a specific directory
  beacon check decls

  # Check a single declaration piped from an editor or script
  cat person.bcn | beacon check -

  # One line per diagnostic, editor-friendly
  beacon check --compact

  # Emit diagnostics as JSON
  beacon check --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().BoolVar(&checkJSON, "json", false, "Output diagnostics in JSON format")
	cmd.Flags().BoolVar(&checkCompact, "compact", false, "One file:line:col line per diagnostic")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	analysis, err := checkAnalysis(args)
	if err != nil {
		return err
	}

	diags := analysis.AllDiagnostics()

	if checkJSON {
		outputDiagnosticsJSON(diags)
		if diags.HasErrors() {
			return fmt.Errorf("check failed")
		}
		return nil
	}

	if len(diags) == 0 {
		ui.WriteSuccess(os.Stdout, fmt.Sprintf("%d model(s) in %d file(s), no issues",
			len(analysis.Program.Models), len(analysis.Files)), false)
		return nil
	}

	if checkCompact {
		for _, diag := range diags {
			fmt.Fprintln(os.Stderr, errors.FormatCompact(diag))
		}
	} else {
		fmt.Fprint(os.Stderr, errors.FormatErrorList(diags))
	}

	if diags.HasErrors() {
		errCount, warnCount, _ := diags.ErrorCount()
		return fmt.Errorf("check failed: %d error(s), %d warning(s)", errCount, warnCount)
	}

	_, warnCount, _ := diags.ErrorCount()
	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, ui.Warning(fmt.Sprintf("%d warning(s), no errors", warnCount), nil, false))
	return nil
}

// checkAnalysis analyzes the requested input: standard input when the
// argument is "-", otherwise the given or configured directory.
func checkAnalysis(args []string) (*tooling.Analysis, error) {
	if len(args) > 0 && args[0] == "-" {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading standard input: %w", err)
		}
		return tooling.AnalyzeSource("<stdin>", string(source)), nil
	}

	dir, err := checkDirectory(args)
	if err != nil {
		return nil, err
	}
	return tooling.AnalyzeDirectory(cache.NewCoordinator(), dir)
}

// checkDirectory picks the directory to analyze: the positional argument
// when given, the configured source directory otherwise.
func checkDirectory(args []string) (string, error) {
	if len(args) > 0 {
		if _, err := os.Stat(args[0]); err != nil {
			return "", fmt.Errorf("cannot check %s: %w", args[0], err)
		}
		return args[0], nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.Source.Dir, nil
}
