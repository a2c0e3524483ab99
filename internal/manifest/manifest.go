// Package manifest loads the optional nativecfg.toml project file.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "nativecfg.toml"

// ErrInvalid marks a manifest that parsed but holds unusable values.
var ErrInvalid = errors.New("invalid manifest")

// Manifest is a decoded nativecfg.toml and where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest tables. Pointer fields are nil when the key
// is absent.
type Config struct {
	Sources SourcesConfig `toml:"sources"`
	Output  OutputConfig  `toml:"output"`
	Build   BuildConfig   `toml:"build"`
}

type SourcesConfig struct {
	Root string `toml:"root"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type BuildConfig struct {
	Jobs         *int  `toml:"jobs"`
	ExternalSecp *bool `toml:"external_secp"`
}

// Find walks up from startDir and returns the first manifest path.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
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

// Load finds and decodes the manifest. A missing manifest is not an error.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := Decode(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// Decode parses one manifest file. Unknown keys are rejected so a typo
// never silently falls back to a default.
func Decode(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys %s: %w", path, strings.Join(keys, ", "), ErrInvalid)
	}
	if meta.IsDefined("sources", "root") && strings.TrimSpace(cfg.Sources.Root) == "" {
		return Config{}, fmt.Errorf("%s: [sources].root is empty: %w", path, ErrInvalid)
	}
	if meta.IsDefined("output", "dir") && strings.TrimSpace(cfg.Output.Dir) == "" {
		return Config{}, fmt.Errorf("%s: [output].dir is empty: %w", path, ErrInvalid)
	}
	if cfg.Build.Jobs != nil && *cfg.Build.Jobs < 1 {
		return Config{}, fmt.Errorf("%s: [build].jobs must be at least 1, got %d: %w", path, *cfg.Build.Jobs, ErrInvalid)
	}
	return cfg, nil
}

// SourceRoot returns [sources].root resolved against the manifest
// directory, or "" when unset.
func (m *Manifest) SourceRoot() string {
	if m == nil {
		return ""
	}
	return m.resolve(m.Config.Sources.Root)
}

// OutDir returns [output].dir resolved against the manifest directory, or
// "" when unset.
func (m *Manifest) OutDir() string {
	if m == nil {
		return ""
	}
	return m.resolve(m.Config.Output.Dir)
}

func (m *Manifest) resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}
