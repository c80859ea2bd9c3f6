package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
target: darwin/amd64
out_dir: out
output: prog
skip_link: true
jobs: 4
assembler: /opt/nasm/bin/nasm
min_version: 0.1.0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Target:     "darwin/amd64",
		OutDir:     "out",
		Output:     "prog",
		SkipLink:   true,
		Jobs:       4,
		Assembler:  "/opt/nasm/bin/nasm",
		MinVersion: "0.1.0",
	}
	if cfg != want {
		t.Errorf("got %+v\nwant %+v", cfg, want)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, t.TempDir(), ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "targte: linux/amd64\n", "field targte not found"},
		{"bad target", "target: linux\n", "not of the form os/arch"},
		{"negative jobs", "jobs: -1\n", "must not be negative"},
		{"bad version", "min_version: banana\n", "not a semantic version"},
		{"conflicting flags", "asm_only: true\nkeep_obj: true\n", "cannot both be set"},
		{"bad yaml", "jobs: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, t.TempDir(), tt.content))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Discover(dir); ok {
		t.Fatal("found a project file in an empty directory")
	}
	want := writeFile(t, dir, "jobs: 1\n")
	got, ok := Discover(dir)
	if !ok || got != want {
		t.Errorf("Discover = %q, %v; want %q", got, ok, want)
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		min, current string
		ok           bool
	}{
		{"", "0.1.0", true},
		{"0.1.0", "0.1.0", true},
		{"v0.1.0", "0.2.0", true},
		{"0.3.0", "v0.2.9", false},
		{"1.0.0", "dev", true},
	}
	for _, tt := range tests {
		err := Config{MinVersion: tt.min}.CheckVersion(tt.current)
		if (err == nil) != tt.ok {
			t.Errorf("min %q current %q: err = %v, want ok=%v", tt.min, tt.current, err, tt.ok)
		}
	}
}

func TestWriteTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	cfg := Config{Target: "linux/amd64", OutDir: "build", Jobs: 2}
	if err := WriteTemplate(path, cfg); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("got %+v, want %+v", got, cfg)
	}
	if err := WriteTemplate(path, cfg); err == nil {
		t.Error("second WriteTemplate should refuse to overwrite")
	}
}
