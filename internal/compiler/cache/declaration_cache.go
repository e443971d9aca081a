package cache

import (
	"sync"
	"time"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
)

// CachedDeclaration is a parsed declaration file with cache metadata
type CachedDeclaration struct {
	Program     *ast.Program
	Hash        string
	Path        string
	CachedAt    time.Time
	LastChecked time.Time
}

// DeclarationCache provides in-memory caching of parsed declaration files
// for watch mode and the language server
type DeclarationCache struct {
	entries map[string]*CachedDeclaration
	mu      sync.RWMutex
}

// NewDeclarationCache creates a new declaration cache
func NewDeclarationCache() *DeclarationCache {
	return &DeclarationCache{
		entries: make(map[string]*CachedDeclaration),
	}
}

// Get retrieves a cached declaration by file path.
// LastChecked is not touched here so reads can stay under the shared
// lock; callers that confirmed a hit follow up with Touch.
func (dc *DeclarationCache) Get(path string) (*CachedDeclaration, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	entry, exists := dc.entries[path]
	return entry, exists
}

// Touch marks an entry as recently served so Prune keeps it
func (dc *DeclarationCache) Touch(path string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, exists := dc.entries[path]; exists {
		entry.LastChecked = time.Now()
	}
}

// GetByHash retrieves a cached declaration by content hash, which catches
// files that moved without changing
func (dc *DeclarationCache) GetByHash(hash string) (*CachedDeclaration, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	for _, entry := range dc.entries {
		if entry.Hash == hash {
			return entry, true
		}
	}
	return nil, false
}

// Set stores a parsed declaration in the cache
func (dc *DeclarationCache) Set(path string, program *ast.Program, hash string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	now := time.Now()
	dc.entries[path] = &CachedDeclaration{
		Program:     program,
		Hash:        hash,
		Path:        path,
		CachedAt:    now,
		LastChecked: now,
	}
}

// Invalidate removes an entry from the cache
func (dc *DeclarationCache) Invalidate(path string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	delete(dc.entries, path)
}

// InvalidateAll clears the entire cache
func (dc *DeclarationCache) InvalidateAll() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.entries = make(map[string]*CachedDeclaration)
}

// Size returns the number of cached entries
func (dc *DeclarationCache) Size() int {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	return len(dc.entries)
}

// Prune removes entries that have not been set or served within maxAge.
// Live entries get touched on every cache hit, so only files that left
// the tree age out.
func (dc *DeclarationCache) Prune(maxAge time.Duration) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	now := time.Now()
	pruned := 0

	for path, entry := range dc.entries {
		if now.Sub(entry.LastChecked) > maxAge {
			delete(dc.entries, path)
			pruned++
		}
	}

	return pruned
}
