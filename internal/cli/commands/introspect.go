package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/beacon-lang/beacon/internal/cli/config"
	"github.com/beacon-lang/beacon/internal/cli/ui"
	"github.com/beacon-lang/beacon/internal/compiler/cache"
	"github.com/beacon-lang/beacon/internal/compiler/metadata"
	"github.com/beacon-lang/beacon/internal/tooling"
	"github.com/beacon-lang/beacon/internal/tooling/build"
)

var (
	introspectJSON    bool
	introspectNoColor bool
)

// NewIntrospectCommand creates the introspect command group
func NewIntrospectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Inspect the notification graph of a project",
		Long: `Inspect the models, properties, and notification sets of a Beacon project.

Introspection prefers the metadata artifact a previous generate pass wrote
next to the generated files; when none exists, it analyzes the declaration
sources directly. Either way the answer reflects what the generator would
emit for the current declarations.`,
		Example: `  # List every model with its property counts
  beacon introspect models

  # Show the full notification graph of one model
  beacon introspect model Person

  # Show which files a change to each file forces through analysis again
  beacon introspect files

  # Output in JSON format for tooling
  beacon introspect models --json`,
	}

	cmd.PersistentFlags().BoolVar(&introspectJSON, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&introspectNoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newIntrospectModelsCommand())
	cmd.AddCommand(newIntrospectModelCommand())
	cmd.AddCommand(newIntrospectFilesCommand())

	return cmd
}

func newIntrospectModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List all declared models",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := loadMetadata()
			if err != nil {
				return err
			}

			if introspectJSON {
				return printJSON(meta)
			}

			if len(meta.Models) == 0 {
				fmt.Println(ui.Info("No models declared.", introspectNoColor))
				return nil
			}

			table := ui.NewTable(os.Stdout, []string{"NAME", "FIELDS", "PROPERTIES", "CAPABILITIES"}, &ui.TableOptions{NoColor: introspectNoColor})
			for _, model := range meta.Models {
				table.AddRow(
					model.Name,
					strconv.Itoa(len(model.Fields)),
					strconv.Itoa(len(model.Properties)),
					strings.Join(model.Capabilities, ", "),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newIntrospectModelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model <name>",
		Short: "Show one model's generated properties and notify sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := loadMetadata()
			if err != nil {
				return err
			}

			model := findModel(meta, args[0])
			if model == nil {
				names := make([]string, 0, len(meta.Models))
				for _, m := range meta.Models {
					names = append(names, m.Name)
				}
				suggestions := ui.FindSimilar(args[0], names, nil)
				fmt.Fprint(os.Stderr, ui.ModelNotFoundError(args[0], suggestions, introspectNoColor))
				// The terse error is what scripts and editors capture, so
				// it names the single closest model itself.
				if best := ui.FindBestMatch(args[0], names, nil); best != "" {
					return fmt.Errorf("model %s not found (closest is %s)", args[0], best)
				}
				return fmt.Errorf("model %s not found", args[0])
			}

			if introspectJSON {
				return printJSON(model)
			}

			printModelDetail(model)
			return nil
		},
	}
}

// fileReport is one declaration file's entry in the files listing
type fileReport struct {
	Path       string   `json:"path"`
	Models     []string `json:"models"`
	DependsOn  []string `json:"depends_on"`
	DependedBy []string `json:"depended_by"`
	Clean      bool     `json:"clean"`
}

func newIntrospectFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List declaration files with their models and cross-file dependencies",
		Long: `List every declaration file with the models it declares, the files it
depends on through base or field-type references, and the files that
depend on it. The dependents column is the blast radius of an edit: those
files are re-analyzed whenever this one changes.

The listing always reflects the sources on disk, never a generated
artifact. Files with syntax errors are shown without dependency
information, since a broken file declares nothing reliably.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			reports, err := collectFileReports(cfg.Source.Dir)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println(ui.Info("No declaration files found.", introspectNoColor))
				return nil
			}

			if introspectJSON {
				return printJSON(reports)
			}

			table := ui.NewTable(os.Stdout, []string{"FILE", "MODELS", "DEPENDS ON", "DEPENDED ON BY", "STATUS"}, &ui.TableOptions{NoColor: introspectNoColor})
			for _, report := range reports {
				status := "ok"
				if !report.Clean {
					status = "syntax errors"
				}
				table.AddRow(
					displayPath(cfg.Source.Dir, report.Path),
					strings.Join(report.Models, ", "),
					displayPaths(cfg.Source.Dir, report.DependsOn),
					displayPaths(cfg.Source.Dir, report.DependedBy),
					status,
				)
			}
			table.Render()
			return nil
		},
	}
}

// collectFileReports loads every declaration file under dir and summarizes
// its models and cross-file dependencies. Files that fail to parse come
// back marked unclean with no dependency information.
func collectFileReports(dir string) ([]fileReport, error) {
	paths, err := cache.ScanDirectory(dir)
	if err != nil {
		return nil, err
	}

	coord := cache.NewCoordinator()
	results, _ := coord.LoadFiles(paths)

	graph := coord.Graph()
	reports := make([]fileReport, 0, len(results))
	for _, res := range results {
		reports = append(reports, fileReport{
			Path:       res.Path,
			Models:     graph.ModelsIn(res.Path),
			DependsOn:  graph.GetDependencies(res.Path),
			DependedBy: graph.GetDependents(res.Path),
			Clean:      res.Ok(),
		})
	}
	return reports, nil
}

// displayPath shortens a path for table output, relative to the scanned
// directory when possible.
func displayPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func displayPaths(base string, paths []string) string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = displayPath(base, p)
	}
	return strings.Join(out, ", ")
}

// loadMetadata returns the project's introspection metadata, from the
// generated artifact when one is current on disk, otherwise from a fresh
// analysis of the declaration sources.
func loadMetadata() (*metadata.Metadata, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	artifact := filepath.Join(cfg.Generate.OutputDir, build.MetadataFileName)
	if meta, err := metadata.ReadArtifact(artifact); err == nil {
		return meta, nil
	}
	// A missing or corrupt artifact falls through to live analysis.

	analysis, err := tooling.AnalyzeDirectory(cache.NewCoordinator(), cfg.Source.Dir)
	if err != nil {
		return nil, err
	}

	extractor := metadata.NewExtractor(Version)
	extractor.SetFilePath(cfg.Source.Dir)
	extractor.SetFileResolver(analysis.DeclaringFile)
	return extractor.Extract(analysis.Program, analysis.Plans, analysis.Capabilities), nil
}

func findModel(meta *metadata.Metadata, name string) *metadata.ModelMetadata {
	for i := range meta.Models {
		if meta.Models[i].Name == name {
			return &meta.Models[i]
		}
	}
	return nil
}

func printModelDetail(model *metadata.ModelMetadata) {
	ui.Header(os.Stdout, model.Name, introspectNoColor)

	if model.Documentation != "" {
		fmt.Println(model.Documentation)
		fmt.Println()
	}

	kv := ui.NewKeyValueTable(os.Stdout, introspectNoColor)
	if model.FilePath != "" {
		kv.AddRow("Source", fmt.Sprintf("%s:%d", model.FilePath, model.Line))
	}
	kv.AddRow("Sealed", strconv.FormatBool(model.Sealed))
	if len(model.Bases) > 0 {
		kv.AddRow("Bases", strings.Join(model.Bases, ", "))
	}
	if len(model.Capabilities) > 0 {
		kv.AddRow("Capabilities", strings.Join(model.Capabilities, ", "))
	}
	kv.Render()
	fmt.Println()

	if len(model.Properties) == 0 {
		warningColor := color.New(color.FgYellow)
		if introspectNoColor {
			warningColor.DisableColor()
		}
		warningColor.Println("No properties generated for this model.")
		return
	}

	table := ui.NewTable(os.Stdout, []string{"NAME", "KIND", "TYPE", "BACKING", "NOTIFIES"}, &ui.TableOptions{NoColor: introspectNoColor})
	for _, prop := range model.Properties {
		backing := prop.Field
		if prop.Source != "" {
			backing = fmt.Sprintf("%s.%s", prop.Field, prop.Source)
		}
		table.AddRow(prop.Name, prop.Kind, prop.Type, backing, strings.Join(prop.Notifies, ", "))
	}
	table.Render()
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
