package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file searched for in a workspace.
const ManifestName = "drift.toml"

// ErrManifestNotFound indicates that no drift.toml exists at or above a directory.
var ErrManifestNotFound = errors.New("drift.toml not found")

// LSPSettings are the language-server knobs a project may pin.
type LSPSettings struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// Manifest describes a drift project's drift.toml.
type Manifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	LSP LSPSettings `toml:"lsp"`

	// Root is the directory containing the manifest. Not part of the file.
	Root string `toml:"-"`
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	var manifest Manifest
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if manifest.Package.Name == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if manifest.LSP.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [lsp].max_diagnostics must be non-negative", path)
	}
	manifest.Root = filepath.Dir(path)
	return &manifest, nil
}

// FindManifest walks from dir upward looking for drift.toml.
func FindManifest(dir string) (*Manifest, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(current, ManifestName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return LoadManifest(candidate)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil, fmt.Errorf("%w (searched from %s)", ErrManifestNotFound, dir)
		}
		current = parent
	}
}
