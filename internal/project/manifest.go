package project

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// Manifest is a decoded wgslln.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Requires is a semver constraint on the tool version, e.g. ">=0.1.0".
	Requires string `toml:"requires"`
}

type BuildConfig struct {
	Sources      []string `toml:"sources"`
	Out          string   `toml:"out"`
	Sigil        string   `toml:"sigil"`
	Preprocessor bool     `toml:"preprocessor"`
	Jobs         int      `toml:"jobs"`
	Go           GoConfig `toml:"go"`
}

// GoConfig enables the generated Go constants file when File is set.
type GoConfig struct {
	Package string `toml:"package"`
	File    string `toml:"file"`
}

// VersionError reports a tool version outside [package].requires.
type VersionError struct {
	Manifest string
	Requires string
	Tool     string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: tool version %s does not satisfy requires = %q", e.Manifest, e.Tool, e.Requires)
}

// LoadManifest finds wgslln.toml above startDir and decodes it.
// ok is false when there is no manifest at all.
func LoadManifest(startDir string) (m *Manifest, ok bool, err error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes and checks one manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if meta.IsDefined("package", "requires") {
		if _, err := semver.NewConstraint(cfg.Package.Requires); err != nil {
			return Config{}, fmt.Errorf("%s: invalid [package].requires: %w", path, err)
		}
	}
	if meta.IsDefined("build", "sigil") {
		if _, err := ParseSigil(cfg.Build.Sigil); err != nil {
			return Config{}, fmt.Errorf("%s: [build].sigil: %w", path, err)
		}
	}
	if cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if meta.IsDefined("build", "go") && strings.TrimSpace(cfg.Build.Go.File) == "" {
		return Config{}, fmt.Errorf("%s: missing [build.go].file", path)
	}
	return cfg, nil
}

// CheckVersion matches the tool version against [package].requires.
// Pre-release tags of the tool are ignored so that "0.2.0-dev" satisfies ">=0.2.0".
func (m *Manifest) CheckVersion(tool string) error {
	req := strings.TrimSpace(m.Config.Package.Requires)
	if req == "" {
		return nil
	}
	c, err := semver.NewConstraint(req)
	if err != nil {
		return fmt.Errorf("%s: invalid [package].requires: %w", m.Path, err)
	}
	v, err := semver.NewVersion(tool)
	if err != nil {
		return fmt.Errorf("tool version %q: %w", tool, err)
	}
	core, err := v.SetPrerelease("")
	if err != nil {
		return err
	}
	if !c.Check(&core) {
		return &VersionError{Manifest: m.Path, Requires: req, Tool: tool}
	}
	return nil
}

// Sigil returns the configured sigil, '#' when unset.
func (m *Manifest) Sigil() rune {
	r, err := ParseSigil(m.Config.Build.Sigil)
	if err != nil || r == 0 {
		return '#'
	}
	return r
}

// SourcePaths resolves [build].sources against the project root.
func (m *Manifest) SourcePaths() []string {
	if len(m.Config.Build.Sources) == 0 {
		return []string{m.Root}
	}
	out := make([]string, 0, len(m.Config.Build.Sources))
	for _, s := range m.Config.Build.Sources {
		out = append(out, m.resolve(s))
	}
	return out
}

// OutDir is the .wgsl output directory; empty disables file output.
func (m *Manifest) OutDir() string {
	if strings.TrimSpace(m.Config.Build.Out) == "" {
		return ""
	}
	return m.resolve(m.Config.Build.Out)
}

// GoFile is the generated Go file path; empty disables it.
func (m *Manifest) GoFile() string {
	if strings.TrimSpace(m.Config.Build.Go.File) == "" {
		return ""
	}
	return m.resolve(m.Config.Build.Go.File)
}

// GoPackage defaults to the package name with dashes replaced.
func (m *Manifest) GoPackage() string {
	if p := strings.TrimSpace(m.Config.Build.Go.Package); p != "" {
		return p
	}
	return strings.ReplaceAll(strings.TrimSpace(m.Config.Package.Name), "-", "_")
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// Sigils lists the characters that can mark a fragment reference: host
// punctuation that WGSL itself never uses.
const Sigils = `#$?\`

// ParseSigil accepts one of Sigils; empty means unset.
func ParseSigil(s string) (rune, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	if !strings.ContainsRune(Sigils, r) {
		return 0, fmt.Errorf("%q cannot be used as a sigil (use one of %s)", s, Sigils)
	}
	return r, nil
}

// DefaultManifest is the starter manifest written by `wgslln init`.
func DefaultManifest(name string) string {
	return fmt.Sprintf(`[package]
name = %q

[build]
sources = ["shaders"]
out = "gen"
sigil = "#"
preprocessor = false
jobs = 0
`, name)
}
