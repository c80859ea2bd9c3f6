// Package config loads the optional letc.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the project file looked up in the working directory.
const DefaultFilename = "letc.yaml"

// Config mirrors the build flags. Zero values mean "not set".
type Config struct {
	Target     string `yaml:"target,omitempty"`
	OutDir     string `yaml:"out_dir,omitempty"`
	Output     string `yaml:"output,omitempty"`
	AsmOnly    bool   `yaml:"asm_only,omitempty"`
	SkipLink   bool   `yaml:"skip_link,omitempty"`
	KeepObj    bool   `yaml:"keep_obj,omitempty"`
	Jobs       int    `yaml:"jobs,omitempty"`
	Assembler  string `yaml:"assembler,omitempty"`
	Linker     string `yaml:"linker,omitempty"`
	MinVersion string `yaml:"min_version,omitempty"`
}

// Load reads and validates the file at path. Unknown keys are rejected. An
// empty file is a valid, empty config.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the project file in dir, if there is one.
func Discover(dir string) (string, bool) {
	path := filepath.Join(dir, DefaultFilename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Validate checks values that do not depend on the running compiler.
func (c Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative (got %d)", c.Jobs)
	}
	if c.Target != "" {
		osName, arch, ok := strings.Cut(c.Target, "/")
		if !ok || osName == "" || arch == "" {
			return fmt.Errorf("target %q is not of the form os/arch", c.Target)
		}
	}
	if c.MinVersion != "" && !semver.IsValid(canonical(c.MinVersion)) {
		return fmt.Errorf("min_version %q is not a semantic version", c.MinVersion)
	}
	if c.AsmOnly && c.KeepObj {
		return fmt.Errorf("asm_only and keep_obj cannot both be set")
	}
	return nil
}

// CheckVersion fails when the project requires a newer compiler than current.
// Development builds satisfy every requirement.
func (c Config) CheckVersion(current string) error {
	if c.MinVersion == "" {
		return nil
	}
	cur := canonical(current)
	if cur == "vdev" || !semver.IsValid(cur) {
		return nil
	}
	if semver.Compare(cur, canonical(c.MinVersion)) < 0 {
		return fmt.Errorf("project requires letc %s or newer (this is %s)", c.MinVersion, current)
	}
	return nil
}

// WriteTemplate writes cfg as YAML to path, refusing to overwrite.
func WriteTemplate(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
