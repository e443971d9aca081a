package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the entry format changes; older entries then read as misses.
const generationSchemaVersion uint16 = 1

// GenerationEntry stores one generation outcome for reuse across runs.
// Names and contents are parallel slices kept in sorted name order.
type GenerationEntry struct {
	Schema       uint16
	Key          string
	PackageName  string
	FileNames    []string
	FileContents []string
	CreatedAt    int64
}

// NewGenerationEntry builds an entry from generated files
func NewGenerationEntry(key, packageName string, files map[string]string) *GenerationEntry {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	contents := make([]string, len(names))
	for i, name := range names {
		contents[i] = files[name]
	}

	return &GenerationEntry{
		Schema:       generationSchemaVersion,
		Key:          key,
		PackageName:  packageName,
		FileNames:    names,
		FileContents: contents,
		CreatedAt:    time.Now().Unix(),
	}
}

// Files returns the entry's output as a name-to-content map
func (ge *GenerationEntry) Files() map[string]string {
	files := make(map[string]string, len(ge.FileNames))
	for i, name := range ge.FileNames {
		if i < len(ge.FileContents) {
			files[name] = ge.FileContents[i]
		}
	}
	return files
}

// GenerationCache persists generated output on disk keyed by source
// fingerprint. A nil cache is valid and drops every operation, which is
// how callers disable caching.
type GenerationCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenGenerationCache initializes a generation cache rooted at dir
func OpenGenerationCache(dir string) (*GenerationCache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "gen"), 0o755); err != nil {
		return nil, err
	}
	return &GenerationCache{dir: dir}, nil
}

// DefaultCacheDir returns the user-level cache directory for the given
// application name, honoring XDG_CACHE_HOME
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

func (gc *GenerationCache) pathFor(key string) string {
	return filepath.Join(gc.dir, "gen", key+".mp")
}

// Put serializes an entry to the cache. The write lands in a temp file
// first and is renamed into place so readers never see a partial entry.
func (gc *GenerationCache) Put(key string, entry *GenerationEntry) error {
	if gc == nil {
		return nil
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()

	p := gc.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}

	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	return os.Rename(f.Name(), p)
}

// Get reads an entry from the cache. Missing keys and entries written by
// an older schema both come back as misses.
func (gc *GenerationCache) Get(key string) (*GenerationEntry, bool, error) {
	if gc == nil {
		return nil, false, nil
	}
	gc.mu.RLock()
	defer gc.mu.RUnlock()

	f, err := os.Open(gc.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entry GenerationEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != generationSchemaVersion {
		return nil, false, nil
	}

	return &entry, true, nil
}

// DropAll removes every cached entry, useful after format changes
func (gc *GenerationCache) DropAll() error {
	if gc == nil {
		return nil
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(gc.dir, "gen")); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(gc.dir, "gen"), 0o755)
}
