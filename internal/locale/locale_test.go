package locale

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKnownIDs(t *testing.T) {
	tbl, err := NewTable()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		id   int
		want string
	}{
		{1033, "en-US"},
		{1031, "de-DE"},
		{2055, "de-CH"},
		{1036, "fr-FR"},
	}
	for _, tt := range tests {
		if tag, ok := tbl.Tag(tt.id); !ok || tag != tt.want {
			t.Errorf("Tag(%d) = %q, %v; want %q", tt.id, tag, ok, tt.want)
		}
	}
}

func TestResolveUnknownFallsBack(t *testing.T) {
	tbl, err := NewTable()
	if err != nil {
		t.Fatal(err)
	}
	tag, warning := tbl.Resolve(99999)
	if tag != DefaultTag {
		t.Errorf("tag = %q", tag)
	}
	if warning == "" || !strings.Contains(warning, "99999") {
		t.Errorf("warning = %q", warning)
	}
}

func TestResolveKnownNoWarning(t *testing.T) {
	tbl, _ := NewTable()
	tag, warning := tbl.Resolve(1033)
	if tag != "en-US" || warning != "" {
		t.Errorf("got %q, %q", tag, warning)
	}
}

func TestApplyOverridesFile(t *testing.T) {
	tbl, _ := NewTable()
	path := filepath.Join(t.TempDir(), "locales.yaml")
	if err := os.WriteFile(path, []byte("5127: de-CH\n1033: en-XX\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyOverridesFile(path); err != nil {
		t.Fatal(err)
	}
	if tag, _ := tbl.Tag(5127); tag != "de-CH" {
		t.Errorf("new id not applied: %q", tag)
	}
	if tag, _ := tbl.Tag(1033); tag != "en-XX" {
		t.Errorf("override not applied: %q", tag)
	}
}

func TestApplyOverridesMissingFileOK(t *testing.T) {
	tbl, _ := NewTable()
	if err := tbl.ApplyOverridesFile("/nonexistent/locales.yaml"); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}
