package face

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeCascade(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, DefaultCascadeName)
	if err := os.WriteFile(p, []byte("<opencv_storage/>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestResolveCascade_ExplicitPath(t *testing.T) {
	p := writeCascade(t, t.TempDir())
	got, err := ResolveCascade(p, nil)
	if err != nil || got != p {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveCascade_SearchesDirsByBaseName(t *testing.T) {
	empty, install := t.TempDir(), t.TempDir()
	want := writeCascade(t, install)
	got, err := ResolveCascade("data/"+DefaultCascadeName, []string{"", empty, install})
	if err != nil || got != want {
		t.Fatalf("got %q, %v want %q", got, err, want)
	}
}

func TestResolveCascade_DefaultName(t *testing.T) {
	install := t.TempDir()
	want := writeCascade(t, install)
	if got, err := ResolveCascade("  ", []string{install}); err != nil || got != want {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveCascade_NotFound(t *testing.T) {
	_, err := ResolveCascade(filepath.Join(t.TempDir(), "missing.xml"), []string{t.TempDir()})
	if !errors.Is(err, ErrCascadeLoad) {
		t.Fatalf("expected ErrCascadeLoad, got %v", err)
	}
}

func TestCascadeDirs_EnvFirst(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvCascadeDir, dir)
	dirs := CascadeDirs()
	if len(dirs) < 2 || dirs[0] != dir {
		t.Fatalf("override should be searched first: %v", dirs)
	}
	if !slices.Contains(dirs, "data") {
		t.Fatalf("working-directory data/ missing: %v", dirs)
	}
}
