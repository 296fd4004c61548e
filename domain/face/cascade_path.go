package face

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultCascadeName is the frontal face cascade distributed with OpenCV.
const DefaultCascadeName = "haarcascade_frontalface_default.xml"

// EnvCascadeDir names a directory searched for cascades before the OpenCV
// install locations.
const EnvCascadeDir = "OPENCV_HAARCASCADES"

// CascadeDirs lists the directories searched for a cascade file: the
// EnvCascadeDir override, data/ next to the executable and in the working
// directory, then the haarcascades directory of common OpenCV installs.
func CascadeDirs() []string {
	var dirs []string
	if d := strings.TrimSpace(os.Getenv(EnvCascadeDir)); d != "" {
		dirs = append(dirs, d)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "data"))
	}
	dirs = append(dirs, "data")
	switch runtime.GOOS {
	case "windows":
		dirs = append(dirs,
			`C:\opencv\build\install\etc\haarcascades`,
			`C:\opencv\build\etc\haarcascades`,
		)
	case "darwin":
		dirs = append(dirs,
			"/opt/homebrew/share/opencv4/haarcascades",
			"/usr/local/share/opencv4/haarcascades",
		)
	default:
		dirs = append(dirs,
			"/usr/local/share/opencv4/haarcascades",
			"/usr/share/opencv4/haarcascades",
			"/usr/share/opencv/haarcascades",
		)
	}
	return dirs
}

// ResolveCascade returns path when it names an existing file. Otherwise it
// looks for a file with the same base name in dirs, in order.
func ResolveCascade(path string, dirs []string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultCascadeName
	}
	if isFile(path) {
		return path, nil
	}
	name := filepath.Base(path)
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if p := filepath.Join(d, name); isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s not found (searched %s)", ErrCascadeLoad, name, strings.Join(dirs, ", "))
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
