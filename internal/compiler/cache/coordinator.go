package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/lexer"
	"github.com/beacon-lang/beacon/internal/compiler/parser"
)

// LoadMetrics tracks performance counters for declaration loading
type LoadMetrics struct {
	TotalFiles      int
	CacheHits       int
	CacheMisses     int
	FilesParsed     int
	TotalDuration   time.Duration
	LexingDuration  time.Duration
	ParsingDuration time.Duration
	StartTime       time.Time
	EndTime         time.Time
}

// CacheHitRate returns the cache hit rate as a percentage
func (lm *LoadMetrics) CacheHitRate() float64 {
	if lm.TotalFiles == 0 {
		return 0.0
	}
	return float64(lm.CacheHits) / float64(lm.TotalFiles) * 100.0
}

// LoadResult is the outcome of loading a single declaration file. Syntax
// problems are carried raw; the tooling layer turns them into diagnostics.
// A file with parse errors still carries the models that survived recovery.
// Source holds the raw text so diagnostics can quote the offending lines.
type LoadResult struct {
	Path        string
	Program     *ast.Program
	Hash        string
	Source      string
	LexErrors   []lexer.LexError
	ParseErrors []parser.ParseError
	Err         error
	Cached      bool
}

// Ok reports whether the file loaded cleanly
func (lr *LoadResult) Ok() bool {
	return lr.Err == nil && len(lr.LexErrors) == 0 && len(lr.ParseErrors) == 0
}

// Coordinator manages incremental loading of declaration files with
// content-addressed caching. LoadFile and LoadSource are safe for
// concurrent use, so callers may fan a batch out across workers.
type Coordinator struct {
	declCache *DeclarationCache
	depGraph  *DependencyGraph
	hasher    *FileHasher
	metrics   *LoadMetrics
	mu        sync.Mutex
}

// NewCoordinator creates a new load coordinator
func NewCoordinator() *Coordinator {
	return &Coordinator{
		declCache: NewDeclarationCache(),
		depGraph:  NewDependencyGraph(),
		hasher:    NewFileHasher(),
		metrics:   &LoadMetrics{},
	}
}

// StartBatch resets metrics ahead of a batch of LoadFile calls
func (c *Coordinator) StartBatch(totalFiles int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics = &LoadMetrics{
		TotalFiles: totalFiles,
		StartTime:  time.Now(),
	}
}

// FinishBatch stamps the batch duration and returns a metrics snapshot
func (c *Coordinator) FinishBatch() *LoadMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.EndTime = time.Now()
	c.metrics.TotalDuration = c.metrics.EndTime.Sub(c.metrics.StartTime)
	snapshot := *c.metrics
	return &snapshot
}

// LoadFiles loads the given files in order and returns per-file results
// with the batch metrics
func (c *Coordinator) LoadFiles(paths []string) ([]*LoadResult, *LoadMetrics) {
	c.StartBatch(len(paths))

	results := make([]*LoadResult, len(paths))
	for i, path := range paths {
		results[i] = c.LoadFile(path)
	}

	return results, c.FinishBatch()
}

// LoadFile loads one declaration file, serving it from cache when the
// content hash still matches. The file is read once; hashing and parsing
// both work from the same bytes.
func (c *Coordinator) LoadFile(path string) *LoadResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return &LoadResult{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	source := string(content)
	hash := c.hasher.HashContent(content)

	if cached, exists := c.declCache.Get(path); exists {
		if cached.Hash == hash {
			c.countHit()
			c.declCache.Touch(path)
			return &LoadResult{Path: path, Program: cached.Program, Hash: hash, Source: source, Cached: true}
		}
		c.declCache.Invalidate(path)
	}

	// A hash match under another path means the file moved
	if cached, exists := c.declCache.GetByHash(hash); exists {
		c.countHit()
		c.declCache.Set(path, cached.Program, hash)
		c.depGraph.Record(path, cached.Program)
		return &LoadResult{Path: path, Program: cached.Program, Hash: hash, Source: source, Cached: true}
	}

	c.countMiss()
	return c.parse(path, source, hash)
}

// LoadSource loads a declaration from in-memory content, as the language
// server does for open buffers
func (c *Coordinator) LoadSource(path, source string) *LoadResult {
	hash := c.hasher.HashString(source)

	if cached, exists := c.declCache.Get(path); exists && cached.Hash == hash {
		c.countHit()
		c.declCache.Touch(path)
		return &LoadResult{Path: path, Program: cached.Program, Hash: hash, Source: source, Cached: true}
	}

	c.countMiss()
	return c.parse(path, source, hash)
}

// parse lexes and parses one source, caching the result only when it is
// clean so broken files are retried on the next pass
func (c *Coordinator) parse(path, source, hash string) *LoadResult {
	lexStart := time.Now()
	lex := lexer.New(source)
	tokens, lexErrors := lex.ScanTokens()
	c.addLexTime(time.Since(lexStart))

	if len(lexErrors) > 0 {
		return &LoadResult{Path: path, Hash: hash, Source: source, LexErrors: lexErrors}
	}

	parseStart := time.Now()
	p := parser.New(tokens)
	program, parseErrors := p.Parse()
	c.addParseTime(time.Since(parseStart))

	if len(parseErrors) > 0 {
		return &LoadResult{Path: path, Hash: hash, Source: source, Program: program, ParseErrors: parseErrors}
	}

	c.declCache.Set(path, program, hash)
	c.depGraph.Record(path, program)

	return &LoadResult{Path: path, Program: program, Hash: hash, Source: source}
}

// InvalidateFile drops a file and everything that depends on it from the
// cache, returning the affected paths
func (c *Coordinator) InvalidateFile(path string) []string {
	dependents := c.depGraph.GetTransitiveDependents(path)

	c.declCache.Invalidate(path)
	for _, dep := range dependents {
		c.declCache.Invalidate(dep)
	}

	return append([]string{path}, dependents...)
}

// RemoveFile handles a deleted file: its dependents are invalidated and the
// file leaves the graph. The dependent paths are returned for reloading.
func (c *Coordinator) RemoveFile(path string) []string {
	dependents := c.depGraph.GetTransitiveDependents(path)

	c.declCache.Invalidate(path)
	for _, dep := range dependents {
		c.declCache.Invalidate(dep)
	}
	c.depGraph.RemoveFile(path)

	return dependents
}

// Graph exposes the dependency graph for tooling lookups
func (c *Coordinator) Graph() *DependencyGraph {
	return c.depGraph
}

// GetMetrics returns a copy of the current metrics
func (c *Coordinator) GetMetrics() *LoadMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics := *c.metrics
	return &metrics
}

// CacheStats is a point-in-time summary of the coordinator's caches
type CacheStats struct {
	// Declarations counts cached parse results
	Declarations int
	// GraphNodes counts files tracked by the dependency graph
	GraphNodes int
}

// Stats summarizes the coordinator's current cache occupancy
func (c *Coordinator) Stats() CacheStats {
	return CacheStats{
		Declarations: c.declCache.Size(),
		GraphNodes:   c.depGraph.Size(),
	}
}

// PruneStale evicts parse results that have not been served within maxAge
// and reports how many were dropped. Long watch sessions call this so
// files deleted or moved outside the watcher's view do not accumulate.
func (c *Coordinator) PruneStale(maxAge time.Duration) int {
	return c.declCache.Prune(maxAge)
}

// Clear clears the caches, the graph, and the metrics
func (c *Coordinator) Clear() {
	c.declCache.InvalidateAll()
	c.depGraph.Clear()

	c.mu.Lock()
	c.metrics = &LoadMetrics{}
	c.mu.Unlock()
}

func (c *Coordinator) countHit() {
	c.mu.Lock()
	c.metrics.CacheHits++
	c.mu.Unlock()
}

func (c *Coordinator) countMiss() {
	c.mu.Lock()
	c.metrics.CacheMisses++
	c.metrics.FilesParsed++
	c.mu.Unlock()
}

func (c *Coordinator) addLexTime(d time.Duration) {
	c.mu.Lock()
	c.metrics.LexingDuration += d
	c.mu.Unlock()
}

func (c *Coordinator) addParseTime(d time.Duration) {
	c.mu.Lock()
	c.metrics.ParsingDuration += d
	c.mu.Unlock()
}

// ScanDirectory scans a directory tree for .bcn declaration files
func ScanDirectory(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(path) == ".bcn" {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
