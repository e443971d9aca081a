package build

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func stateOptions(root string) *Options {
	return &Options{
		SourceDir:     filepath.Join(root, "src"),
		OutputDir:     filepath.Join(root, "models"),
		PackageName:   "models",
		RuntimeImport: "example.com/app/runtime",
		Version:       "0.0.0-test",
	}
}

func TestLoadState_MissingFile(t *testing.T) {
	state, err := LoadState(t.TempDir())
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if state.Key != "" {
		t.Errorf("Expected empty state, got key %q", state.Key)
	}
	if state.UpToDate("anything", stateOptions(t.TempDir())) {
		t.Error("Empty state should never be up to date")
	}
}

func TestSaveAndLoadState(t *testing.T) {
	dir := t.TempDir()
	opts := stateOptions(dir)

	original := NewState("key-123", opts)
	original.OutputFiles = []string{"models/person.go"}
	original.MetadataPath = "models/beacon.meta.json"

	if err := original.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	if loaded.Key != original.Key {
		t.Errorf("Key mismatch: expected %s, got %s", original.Key, loaded.Key)
	}
	if loaded.Options != original.Options {
		t.Errorf("Options mismatch: expected %+v, got %+v", original.Options, loaded.Options)
	}
	if loaded.Version != "0.0.0-test" {
		t.Errorf("Version mismatch: got %s", loaded.Version)
	}
	if len(loaded.OutputFiles) != 1 || loaded.OutputFiles[0] != "models/person.go" {
		t.Errorf("OutputFiles mismatch: got %v", loaded.OutputFiles)
	}
	if loaded.MetadataPath != original.MetadataPath {
		t.Errorf("MetadataPath mismatch: got %s", loaded.MetadataPath)
	}
	if loaded.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should survive the round trip")
	}
}

func TestSaveState_Overwrites(t *testing.T) {
	dir := t.TempDir()
	opts := stateOptions(dir)

	first := NewState("key-1", opts)
	if err := first.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := NewState("key-2", opts)
	second.GeneratedAt = time.Now().Add(time.Minute)
	if err := second.Save(dir); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if loaded.Key != "key-2" {
		t.Errorf("Expected the later state, got key %s", loaded.Key)
	}
}

func TestUpToDate_Matches(t *testing.T) {
	root := t.TempDir()
	opts := stateOptions(root)

	output := filepath.Join(root, "person.go")
	if err := os.WriteFile(output, []byte("package models\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := NewState("key-abc", opts)
	state.OutputFiles = []string{output}

	if !state.UpToDate("key-abc", opts) {
		t.Error("Matching key, options, and outputs should be up to date")
	}
}

func TestUpToDate_KeyMismatch(t *testing.T) {
	root := t.TempDir()
	opts := stateOptions(root)

	output := filepath.Join(root, "person.go")
	if err := os.WriteFile(output, []byte("package models\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := NewState("key-abc", opts)
	state.OutputFiles = []string{output}

	if state.UpToDate("key-def", opts) {
		t.Error("A different key should force regeneration")
	}
}

func TestUpToDate_MissingOutput(t *testing.T) {
	root := t.TempDir()
	opts := stateOptions(root)

	state := NewState("key-abc", opts)
	state.OutputFiles = []string{filepath.Join(root, "deleted.go")}

	if state.UpToDate("key-abc", opts) {
		t.Error("A deleted output file should force regeneration")
	}
}

func TestUpToDate_OptionsChanged(t *testing.T) {
	root := t.TempDir()
	opts := stateOptions(root)

	output := filepath.Join(root, "person.go")
	if err := os.WriteFile(output, []byte("package models\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := NewState("key-abc", opts)
	state.OutputFiles = []string{output}

	moved := *opts
	moved.OutputDir = filepath.Join(root, "elsewhere")

	if state.UpToDate("key-abc", &moved) {
		t.Error("A relocated output directory should force regeneration")
	}
}

func TestUpToDate_NoRecordedOutputs(t *testing.T) {
	opts := stateOptions(t.TempDir())
	state := NewState("key-abc", opts)

	if state.UpToDate("key-abc", opts) {
		t.Error("A state with no recorded outputs should force regeneration")
	}
}
