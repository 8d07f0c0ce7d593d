package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultEnablesEverything(t *testing.T) {
	s := Default()
	for _, d := range Descriptors {
		if !s.Enabled(d.Toggle) {
			t.Fatalf("%s should default to enabled", d.Key)
		}
	}
	if len(Descriptors) != 22 {
		t.Fatalf("expected 22 toggles, got %d", len(Descriptors))
	}
}

func TestDescriptorsAreIndexedByToggle(t *testing.T) {
	for i, d := range Descriptors {
		if int(d.Toggle) != i {
			t.Fatalf("descriptor %d holds toggle %d", i, d.Toggle)
		}
		if d.Label == "" || d.Key == "" {
			t.Fatalf("descriptor %d is missing a key or label", i)
		}
	}
}

func TestSetIsPerToggle(t *testing.T) {
	s := Default()
	s.Set(Marble2, false)
	for _, d := range Descriptors {
		if want := d.Toggle != Marble2; s.Enabled(d.Toggle) != want {
			t.Fatalf("%s = %v, want %v", d.Key, s.Enabled(d.Toggle), want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if s != Default() {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sonicsplit.yaml")
	body := "green_hill_1: false\nreset: false\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SONICSPLIT_RESET", "true")
	t.Setenv("SONICSPLIT_FINAL_ZONE", "false")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.GreenHill1 {
		t.Fatalf("green_hill_1 should come from the file")
	}
	if !s.Reset {
		t.Fatalf("env should override the file for reset")
	}
	if s.FinalZone {
		t.Fatalf("env should disable final_zone")
	}
	if !s.GreenHill2 {
		t.Fatalf("untouched toggles stay enabled")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sonicsplit.yaml")
	if err := os.WriteFile(path, []byte("green_hil_1: false\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a misspelt key to fail")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sonicsplit.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if s, err := Load(path); err != nil || s != Default() {
		t.Fatalf("empty file = %+v, %v", s, err)
	}
}

func TestYAMLRoundTripKeys(t *testing.T) {
	s := Default()
	s.Set(ScrapBrain3, false)
	data, err := s.YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var back Settings
	if err := back.decodeYAML(data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != s {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, s)
	}
}

func TestStoreRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sonicsplit.yaml")
	if err := os.WriteFile(path, []byte("marble_1: false\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if store.Snapshot().Marble1 {
		t.Fatalf("marble_1 should start disabled")
	}

	if err := os.WriteFile(path, []byte("marble_1: true\nmarble_2: false\n"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	s := store.Refresh()
	if !s.Marble1 || s.Marble2 {
		t.Fatalf("refresh did not pick up the new file: %+v", s)
	}

	// A broken rewrite keeps the last good snapshot
	if err := os.WriteFile(path, []byte("marble_1: [\n"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	later := future.Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if got := store.Refresh(); got != s {
		t.Fatalf("broken file replaced settings: %+v", got)
	}
}
