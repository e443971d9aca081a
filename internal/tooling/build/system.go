// Package build orchestrates full generation passes: scan a directory for
// declaration files, analyze them as one program, render accessor code, and
// replace the output directory atomically. The generate command and the
// watcher both drive the same System; incremental behavior comes from the
// shared load coordinator and the on-disk generation cache rather than from
// a separate code path.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beacon-lang/beacon/internal/compiler/cache"
	"github.com/beacon-lang/beacon/internal/compiler/codegen"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
	"github.com/beacon-lang/beacon/internal/compiler/metadata"
	"github.com/beacon-lang/beacon/internal/tooling"
)

// MetadataFileName is the introspection artifact written alongside the
// generated model files.
const MetadataFileName = "beacon.meta.json"

// Options configures a generation run
type Options struct {
	// SourceDir is scanned recursively for .bcn declaration files
	SourceDir string
	// OutputDir receives the generated files. The generator owns this
	// directory and replaces it wholesale on every run; hand-written code
	// placed inside it will be lost.
	OutputDir string
	// PackageName is the package clause of the generated files
	PackageName string
	// RuntimeImport overrides the notification runtime import path
	RuntimeImport string
	// Version stamps the metadata artifact and the state file
	Version string
	// UseCache enables both reuse layers: the up-to-date short circuit and
	// the on-disk generation cache
	UseCache bool
	// CacheDir overrides the on-disk cache location. Empty means the user
	// cache directory.
	CacheDir string
	// Parallel fans source loading out across MaxJobs workers
	Parallel bool
	// MaxJobs caps the loader workers; zero or negative means NumCPU
	MaxJobs int
	// ProgressFunc, when set, receives per-phase updates
	ProgressFunc func(current, total int, message string)
}

// DefaultOptions returns the options the generate command starts from
func DefaultOptions() *Options {
	return &Options{
		SourceDir:   ".",
		OutputDir:   "models",
		PackageName: "models",
		Version:     "dev",
		UseCache:    true,
		Parallel:    true,
		MaxJobs:     runtime.NumCPU(),
	}
}

// Result reports what a generation pass did
type Result struct {
	// Success is true when the pass produced output. False means the
	// sources carry error diagnostics and nothing was written.
	Success bool
	// UpToDate is true when the outputs on disk already matched the
	// sources and the pass stopped before analysis
	UpToDate bool
	// GeneratedFiles lists the written paths in sorted order
	GeneratedFiles []string
	// MetadataPath is the introspection artifact, empty on failure
	MetadataPath string
	// Duration is the wall time of the whole pass
	Duration time.Duration
	// FilesAnalyzed counts the declaration files that went in
	FilesAnalyzed int
	// CacheHits counts files served from the parse cache
	CacheHits int
	// Diagnostics carries everything analysis reported, warnings included
	Diagnostics errors.ErrorList
}

// System runs generation passes over one project
type System struct {
	options *Options
	coord   *cache.Coordinator
	disk    *cache.GenerationCache
}

// NewSystem creates a generation system. A missing or unusable cache
// directory degrades to uncached operation instead of failing the run.
func NewSystem(options *Options) *System {
	if options == nil {
		options = DefaultOptions()
	}
	if options.PackageName == "" {
		options.PackageName = "models"
	}
	if options.Version == "" {
		options.Version = "dev"
	}

	var disk *cache.GenerationCache
	if options.UseCache {
		dir := options.CacheDir
		if dir == "" {
			if d, err := cache.DefaultCacheDir("beacon"); err == nil {
				dir = d
			}
		}
		if dir != "" {
			if gc, err := cache.OpenGenerationCache(dir); err == nil {
				disk = gc
			}
		}
	}

	return &System{
		options: options,
		coord:   cache.NewCoordinator(),
		disk:    disk,
	}
}

// Coordinator exposes the shared loader so a watcher can invalidate paths
// between passes.
func (s *System) Coordinator() *cache.Coordinator {
	return s.coord
}

// DropCaches clears every reuse layer: the in-memory parse cache, the
// on-disk generation cache, and the up-to-date state record. The next
// Build regenerates everything from source.
func (s *System) DropCaches() error {
	s.coord.Clear()
	if err := s.disk.DropAll(); err != nil {
		return fmt.Errorf("clearing generation cache: %w", err)
	}
	if err := os.Remove(filepath.Join(s.stateDir(), stateFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state record: %w", err)
	}
	return nil
}

// Build runs one complete generation pass. Environmental failures such as
// an unreadable source directory come back as an error; problems in the
// declarations themselves come back as a Result carrying diagnostics.
func (s *System) Build() (*Result, error) {
	start := time.Now()
	result := &Result{}

	sourceFiles, err := s.findSourceFiles()
	if err != nil {
		return nil, err
	}
	if len(sourceFiles) == 0 {
		return nil, fmt.Errorf("no .bcn files found in %s", s.options.SourceDir)
	}
	result.FilesAnalyzed = len(sourceFiles)
	s.progress(0, len(sourceFiles), "Loading declarations...")

	results, metrics, err := s.loadFiles(sourceFiles)
	if err != nil {
		return nil, err
	}
	result.CacheHits = metrics.CacheHits

	key := s.generationKey(results)

	if s.options.UseCache {
		if state, err := LoadState(s.stateDir()); err == nil && state.UpToDate(key, s.options) {
			result.Success = true
			result.UpToDate = true
			result.GeneratedFiles = state.OutputFiles
			result.MetadataPath = state.MetadataPath
			result.Duration = time.Since(start)
			s.progress(len(sourceFiles), len(sourceFiles), "Up to date")
			return result, nil
		}
	}

	s.progress(0, len(sourceFiles), "Analyzing program...")
	analysis := tooling.AnalyzeResults(results)
	result.Diagnostics = analysis.AllDiagnostics()
	if analysis.HasErrors() {
		result.Duration = time.Since(start)
		return result, nil
	}

	s.progress(0, len(analysis.Program.Models), "Generating code...")
	outputs, fromDisk, err := s.generate(key, analysis)
	if err != nil {
		return nil, err
	}

	written, err := s.writeOutputs(outputs)
	if err != nil {
		return nil, err
	}

	if !fromDisk {
		// Cache write failures never fail the pass; the next run simply
		// regenerates.
		entry := cache.NewGenerationEntry(key, s.options.PackageName, outputs)
		_ = s.disk.Put(key, entry)
	}

	result.Success = true
	result.GeneratedFiles = written
	result.MetadataPath = filepath.Join(s.options.OutputDir, MetadataFileName)
	result.Duration = time.Since(start)

	state := NewState(key, s.options)
	state.OutputFiles = written
	state.MetadataPath = result.MetadataPath
	if err := state.Save(s.stateDir()); err != nil {
		// Stale state forces a spurious regeneration later, nothing worse.
		return result, nil
	}

	s.progress(len(sourceFiles), len(sourceFiles), "Done")
	return result, nil
}

// findSourceFiles collects the declaration files under SourceDir. Walk
// order is lexical, so the list is already deterministic.
func (s *System) findSourceFiles() ([]string, error) {
	files, err := cache.ScanDirectory(s.options.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.options.SourceDir, err)
	}
	return files, nil
}

// loadFiles runs the frontend over every source file, fanning out across
// workers when Parallel is set. Results stay index-aligned with the input
// paths, so parallelism never reorders the program. Unreadable files abort
// the pass; syntax errors ride inside the results as diagnostics.
func (s *System) loadFiles(paths []string) ([]*cache.LoadResult, *cache.LoadMetrics, error) {
	var results []*cache.LoadResult
	var metrics *cache.LoadMetrics

	if !s.options.Parallel || len(paths) < 2 {
		results, metrics = s.coord.LoadFiles(paths)
	} else {
		s.coord.StartBatch(len(paths))
		results = make([]*cache.LoadResult, len(paths))

		g := new(errgroup.Group)
		g.SetLimit(s.maxJobs())
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				results[i] = s.coord.LoadFile(path)
				return nil
			})
		}
		// Workers never return errors; per-file failures travel in the
		// results so they can be reported against their file.
		_ = g.Wait()
		metrics = s.coord.FinishBatch()
	}

	for _, res := range results {
		if res.Err != nil {
			return nil, nil, fmt.Errorf("loading %s: %w", res.Path, res.Err)
		}
	}
	return results, metrics, nil
}

func (s *System) maxJobs() int {
	if s.options.MaxJobs > 0 {
		return s.options.MaxJobs
	}
	return runtime.NumCPU()
}

// generationKey fingerprints a pass: the tool version, the output shape,
// and every source path with its content hash. Identical keys always mean
// byte-identical output, which is what makes the disk cache safe.
func (s *System) generationKey(results []*cache.LoadResult) string {
	parts := make([]string, 0, 3+2*len(results))
	parts = append(parts, s.options.Version, s.options.PackageName, s.options.RuntimeImport)
	for _, res := range results {
		parts = append(parts, res.Path, res.Hash)
	}
	return cache.NewFileHasher().HashStrings(parts...)
}

// generate produces the output file set, serving it from the disk cache
// when a previous run already rendered this exact key. The metadata
// artifact is part of the set, so cache hits restore it too.
func (s *System) generate(key string, analysis *tooling.Analysis) (map[string]string, bool, error) {
	if entry, ok, err := s.disk.Get(key); err == nil && ok {
		return entry.Files(), true, nil
	}

	gen := codegen.NewGenerator()
	outputs, err := gen.GenerateProgram(analysis.Program, analysis.Plans, codegen.Options{
		PackageName:   s.options.PackageName,
		RuntimeImport: s.options.RuntimeImport,
	})
	if err != nil {
		return nil, false, fmt.Errorf("generating code: %w", err)
	}

	extractor := metadata.NewExtractor(s.options.Version)
	extractor.SetFilePath(s.options.SourceDir)
	extractor.SetFileResolver(analysis.DeclaringFile)
	meta := extractor.Extract(analysis.Program, analysis.Plans, analysis.Capabilities)
	data, err := metadata.Serialize(meta)
	if err != nil {
		return nil, false, fmt.Errorf("serializing metadata: %w", err)
	}
	outputs[MetadataFileName] = string(data)

	return outputs, false, nil
}

// writeOutputs replaces the output directory atomically. Everything lands
// in a temp directory first; only a fully written set is renamed into
// place, so a failed pass leaves the previous output intact.
func (s *System) writeOutputs(outputs map[string]string) ([]string, error) {
	outDir := s.options.OutputDir
	tmpDir := outDir + ".tmp"

	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, fmt.Errorf("cleaning temp directory: %w", err)
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	for name, content := range outputs {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			os.RemoveAll(tmpDir)
			return nil, fmt.Errorf("creating directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			os.RemoveAll(tmpDir)
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := os.RemoveAll(outDir); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("removing old output directory: %w", err)
	}
	if err := os.Rename(tmpDir, outDir); err != nil {
		return nil, fmt.Errorf("moving output into place: %w", err)
	}

	written := make([]string, 0, len(outputs))
	for name := range outputs {
		written = append(written, filepath.Join(outDir, name))
	}
	sort.Strings(written)
	return written, nil
}

// stateDir is where the pass records what it last wrote
func (s *System) stateDir() string {
	return filepath.Join(filepath.Dir(s.options.OutputDir), ".beacon")
}

func (s *System) progress(current, total int, message string) {
	if s.options.ProgressFunc != nil {
		s.options.ProgressFunc(current, total, message)
	}
}
