package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const stateFileName = "generate-state.json"

// State records what the last generation pass wrote, so an unchanged
// project can skip straight to "up to date" without re-running analysis.
type State struct {
	// Key fingerprints the sources and output-shaping options of the pass
	Key string `json:"key"`
	// OutputFiles lists every path the pass wrote, sorted
	OutputFiles []string `json:"output_files"`
	// MetadataPath is the introspection artifact from the pass
	MetadataPath string `json:"metadata_path"`
	// Options captures the settings that place and shape the output
	Options OptionsSnapshot `json:"options"`
	// GeneratedAt records when the pass completed
	GeneratedAt time.Time `json:"generated_at"`
	// Version is the tool version that produced the output
	Version string `json:"version"`
}

// OptionsSnapshot holds the option fields a pass must match before its
// recorded output can be trusted. The generation key covers content; the
// snapshot covers placement, which the key deliberately leaves out.
type OptionsSnapshot struct {
	SourceDir     string `json:"source_dir"`
	OutputDir     string `json:"output_dir"`
	PackageName   string `json:"package_name"`
	RuntimeImport string `json:"runtime_import"`
}

func snapshotOf(opts *Options) OptionsSnapshot {
	return OptionsSnapshot{
		SourceDir:     opts.SourceDir,
		OutputDir:     opts.OutputDir,
		PackageName:   opts.PackageName,
		RuntimeImport: opts.RuntimeImport,
	}
}

// NewState starts a state record for a completed pass
func NewState(key string, opts *Options) *State {
	return &State{
		Key:         key,
		Options:     snapshotOf(opts),
		GeneratedAt: time.Now(),
		Version:     opts.Version,
	}
}

// LoadState reads the state file from dir. A missing file is not an
// error; it comes back as an empty state that matches nothing.
func LoadState(dir string) (*State, error) {
	file, err := os.Open(filepath.Join(dir, stateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("opening state file: %w", err)
	}
	defer file.Close()

	var state State
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		return nil, fmt.Errorf("decoding state file: %w", err)
	}
	return &state, nil
}

// Save persists the state to dir atomically
func (st *State) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	path := filepath.Join(dir, stateFileName)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(st); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// UpToDate reports whether the recorded output still stands for the given
// key and options. Every recorded file must still exist on disk; anything
// missing forces a fresh pass.
func (st *State) UpToDate(key string, opts *Options) bool {
	if st == nil || st.Key == "" || st.Key != key {
		return false
	}
	if st.Options != snapshotOf(opts) {
		return false
	}
	if len(st.OutputFiles) == 0 {
		return false
	}
	for _, path := range st.OutputFiles {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}
