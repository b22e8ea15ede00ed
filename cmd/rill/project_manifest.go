package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

const manifestName = "rill.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Diagnostics diagnosticsConfig `toml:"diagnostics"`
	Trace       traceConfig       `toml:"trace"`
	Cache       cacheConfig       `toml:"cache"`
}

type diagnosticsConfig struct {
	Max   int    `toml:"max"`
	Color string `toml:"color"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// findManifest walks from startDir up to the filesystem root.
func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("diagnostics", "max") {
		if err := validateMaxDiagnostics(cfg.Diagnostics.Max); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [diagnostics].max: %w", path, err)
		}
	}
	if meta.IsDefined("diagnostics", "color") {
		if _, err := readColorMode(cfg.Diagnostics.Color); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [diagnostics].color: %w", path, err)
		}
	}
	return cfg, nil
}

// validateMaxDiagnostics accepts limits in 1..65535.
func validateMaxDiagnostics(n int) error {
	if _, err := safecast.Conv[uint16](n); err != nil || n == 0 {
		return fmt.Errorf("%d is out of range 1..65535", n)
	}
	return nil
}

// resolvePath resolves a relative path from rill.toml against the manifest root.
func (m *projectManifest) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}
