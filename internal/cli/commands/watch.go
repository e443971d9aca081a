package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/beacon-lang/beacon/internal/cli/ui"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
	"github.com/beacon-lang/beacon/internal/tooling/build"
	"github.com/beacon-lang/beacon/internal/watch"
)

var watchVerbose bool

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate automatically when declarations change",
		Long: `Watch the declaration directory and re-run generation whenever a .bcn
file changes. Edits are debounced so a burst of editor writes produces one
pass, and the parse cache keeps unchanged files from being re-analyzed.

A pass that fails leaves the previous output in place; diagnostics are
printed and watching continues.

Examples:
  # Watch with beacon.yml settings
  beacon watch

  # Show per-file detail on each pass
  beacon watch --verbose`,
		RunE: runWatch,
	}

	cmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Show detailed output on each pass")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed, color.Bold)
	infoColor := color.New(color.FgCyan)

	opts, err := generateOptions()
	if err != nil {
		return err
	}
	opts.ProgressFunc = nil

	system := build.NewSystem(opts)

	runPass := func() {
		result, err := system.Build()
		if err != nil {
			fmt.Fprint(os.Stderr, ui.GenerateError(err.Error(), nil, false))
			return
		}
		if !result.Success {
			fmt.Fprint(os.Stderr, errors.FormatErrorList(result.Diagnostics))
			errorColor.Println("✗ Generation failed, keeping previous output")
			return
		}
		if result.UpToDate {
			infoColor.Println("Up to date")
			return
		}
		successColor.Printf("✓ Generated %d file(s) in %.2fs\n", len(result.GeneratedFiles), result.Duration.Seconds())
		if watchVerbose {
			for _, file := range result.GeneratedFiles {
				infoColor.Printf("  %s\n", file)
			}
			metrics := system.Coordinator().GetMetrics()
			infoColor.Printf("  cache: %d of %d declaration(s) reused (%.0f%%)\n",
				metrics.CacheHits, metrics.TotalFiles, metrics.CacheHitRate())
		}
	}

	onChange := func(files []string) error {
		fmt.Println()
		infoColor.Printf("Changed: %d file(s)\n", len(files))
		for _, file := range files {
			if watchVerbose {
				infoColor.Printf("  %s\n", file)
			}
			// A vanished file leaves the dependency graph entirely so its
			// models stop resolving for the files that referenced them.
			if _, err := os.Stat(file); os.IsNotExist(err) {
				system.Coordinator().RemoveFile(file)
			} else {
				system.Coordinator().InvalidateFile(file)
			}
		}
		runPass()
		system.Coordinator().PruneStale(time.Hour)
		return nil
	}

	watcher, err := watch.NewFileWatcher(
		opts.SourceDir,
		[]string{"*.bcn"},
		[]string{"*.swp", "*.swo", "*~", ".DS_Store"},
		onChange,
	)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	banner := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	banner.Println("Beacon watch mode")
	infoColor.Printf("   Watching: %s\n", opts.SourceDir)
	infoColor.Printf("   Output:   %s\n", opts.OutputDir)
	fmt.Println()
	color.New(color.FgYellow).Println("Press Ctrl+C to stop")
	fmt.Println()

	// Initial pass so the output reflects the current sources
	runPass()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n\nShutting down...")

	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}

	if watchVerbose {
		stats := system.Coordinator().Stats()
		infoColor.Printf("Session cache held %d declaration(s) across %d file(s)\n",
			stats.Declarations, stats.GraphNodes)
	}

	color.New(color.FgGreen).Println("Goodbye!")
	return nil
}
