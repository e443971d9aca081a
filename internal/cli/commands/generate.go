package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/beacon-lang/beacon/internal/cli/config"
	"github.com/beacon-lang/beacon/internal/cli/ui"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
	"github.com/beacon-lang/beacon/internal/tooling/build"
)

var (
	generateJSON    bool
	generateVerbose bool
	generateSource  string
	generateOutput  string
	generatePackage string
	generateNoCache bool
	generateForce   bool
	generateSerial  bool
	generateJobs    int
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate observable accessor code from model declarations",
		Long: `Compile every .bcn file in the source directory and write the generated
Go files plus the introspection metadata to the output directory.

The generation pass:
  1. Lexing and parsing - tokenize .bcn declarations
  2. Planning - resolve property names and notification sets
  3. Validation - check capabilities, name collisions, proxy targets
  4. Emission - render deterministic accessor code

The output directory is replaced atomically on every run; a failing pass
leaves the previous output untouched. Unchanged projects short-circuit to
"up to date" when caching is enabled.`,
		Example: `  # Generate with beacon.yml settings
  beacon generate

  # Generate from a specific directory to a specific output
  beacon generate --source decls --output gen/models

  # Show per-phase progress
  beacon generate --verbose

  # Emit diagnostics as JSON (useful for tooling)
  beacon generate --json

  # Discard cached results and regenerate everything
  beacon generate --force`,
		RunE: runGenerate,
	}

	cmd.Flags().BoolVar(&generateJSON, "json", false, "Output diagnostics in JSON format")
	cmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Show detailed generation output")
	cmd.Flags().StringVarP(&generateSource, "source", "s", "", "Source directory (default from beacon.yml)")
	cmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (default from beacon.yml)")
	cmd.Flags().StringVarP(&generatePackage, "package", "p", "", "Package name for generated files")
	cmd.Flags().BoolVar(&generateNoCache, "no-cache", false, "Disable the generation cache")
	cmd.Flags().BoolVar(&generateForce, "force", false, "Discard cached results before generating")
	cmd.Flags().BoolVar(&generateSerial, "serial", false, "Load declaration files on a single worker")
	cmd.Flags().IntVar(&generateJobs, "jobs", 0, "Maximum parallel loader workers (0 = NumCPU)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	opts, err := generateOptions()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.ConfigError(err.Error(), nil, false))
		return err
	}

	if generateVerbose {
		opts.ProgressFunc = ui.NewPhaseProgress(os.Stdout, false).Update
	}

	system := build.NewSystem(opts)
	if generateForce {
		if err := system.DropCaches(); err != nil {
			return err
		}
	}
	result, err := system.Build()
	if err != nil {
		return err
	}

	if !result.Success {
		if generateJSON {
			outputDiagnosticsJSON(result.Diagnostics)
		} else {
			fmt.Fprint(os.Stderr, errors.FormatErrorList(result.Diagnostics))
		}
		return fmt.Errorf("generation failed")
	}

	if result.Diagnostics.HasWarnings() && !generateJSON {
		for _, diag := range result.Diagnostics {
			if diag.Severity == errors.SeverityWarning {
				warningColor.Fprintf(os.Stderr, "%s\n", errors.FormatCompact(diag))
			}
		}
	}

	if result.UpToDate {
		successColor.Printf("✓ Up to date (%d file(s))\n", len(result.GeneratedFiles))
		return nil
	}

	successColor.Printf("✓ Generated %d file(s) in %.2fs\n", len(result.GeneratedFiles), result.Duration.Seconds())
	if generateVerbose {
		for _, file := range result.GeneratedFiles {
			infoColor.Printf("  %s\n", file)
		}
		if result.CacheHits > 0 {
			infoColor.Printf("  %d of %d declaration(s) served from cache\n", result.CacheHits, result.FilesAnalyzed)
		}
	}

	return nil
}

// generateOptions merges beacon.yml with the command-line flags. Flags win
// where both are set.
func generateOptions() (*build.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := build.DefaultOptions()
	opts.SourceDir = cfg.Source.Dir
	opts.OutputDir = cfg.Generate.OutputDir
	opts.PackageName = cfg.Generate.Package
	opts.RuntimeImport = cfg.Generate.RuntimeImport
	opts.UseCache = cfg.Generate.Cache
	opts.Version = Version

	if generateSource != "" {
		opts.SourceDir = generateSource
	}
	if generateOutput != "" {
		opts.OutputDir = generateOutput
	}
	if generatePackage != "" {
		opts.PackageName = generatePackage
	}
	if generateNoCache {
		opts.UseCache = false
	}
	if generateSerial {
		opts.Parallel = false
	}
	if generateJobs > 0 {
		opts.MaxJobs = generateJobs
	}

	return opts, nil
}

func outputDiagnosticsJSON(diags errors.ErrorList) {
	output := struct {
		Success     bool             `json:"success"`
		Diagnostics errors.ErrorList `json:"diagnostics"`
	}{
		Success:     !diags.HasErrors(),
		Diagnostics: diags,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}
