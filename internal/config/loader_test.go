package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sampleDoc struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func newSampleDoc() *sampleDoc {
	return &sampleDoc{Name: "default", Count: 3}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.yaml")

	if err := SaveYAML(path, &sampleDoc{Name: "a", Count: 7}); err != nil {
		t.Fatal(err)
	}

	var got sampleDoc
	if err := LoadYAML(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "a" || got.Count != 7 {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	got, err := LoadYAMLOrDefault(path, newSampleDoc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "default" || got.Count != 3 {
		t.Fatalf("got %+v, want the defaults", got)
	}
}

func TestLoadOrDefaultKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("name: edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadYAMLOrDefault(path, newSampleDoc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "edited" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.Count != 3 {
		t.Fatalf("count = %d, want the default for the omitted field", got.Count)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")

	if err := SaveYAML(path, newSampleDoc()); err != nil {
		t.Fatal(err)
	}
	if err := SaveYAML(path, &sampleDoc{Name: "b"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".doc.yaml") {
			t.Fatalf("stale temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("dir entries = %d, want just the document", len(entries))
	}
}
