// Package assets carries files compiled into the binary.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Cascades holds the Haar cascade files bundled under cascades/.
//
//go:embed cascades
var Cascades embed.FS

// ErrNoCascade is returned when no cascade of the requested name is bundled.
var ErrNoCascade = errors.New("cascade not bundled")

// Cascade returns the bundled cascade XML called name.
func Cascade(name string) ([]byte, error) {
	if path.Ext(name) != ".xml" {
		return nil, fmt.Errorf("%w: %s", ErrNoCascade, name)
	}
	b, err := Cascades.ReadFile(path.Join("cascades", path.Base(name)))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(b) == 0) {
		return nil, fmt.Errorf("%w: %s", ErrNoCascade, name)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ExtractCascade writes the bundled cascade called name into dir and returns
// the file path. OpenCV only loads cascades from disk.
func ExtractCascade(name, dir string) (string, error) {
	b, err := Cascade(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("extract cascade: %w", err)
	}
	dst := filepath.Join(dir, path.Base(name))
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return "", fmt.Errorf("extract cascade: %w", err)
	}
	return dst, nil
}
