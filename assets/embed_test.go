package assets

import (
	"errors"
	"testing"
)

func TestCascade_MissingIsReported(t *testing.T) {
	for _, name := range []string{"haarcascade_not_bundled.xml", "README.md"} {
		if _, err := Cascade(name); !errors.Is(err, ErrNoCascade) {
			t.Fatalf("%s: expected ErrNoCascade, got %v", name, err)
		}
	}
	if _, err := ExtractCascade("haarcascade_not_bundled.xml", t.TempDir()); !errors.Is(err, ErrNoCascade) {
		t.Fatalf("extract: expected ErrNoCascade, got %v", err)
	}
}
