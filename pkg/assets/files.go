package assets

import (
	"io/fs"
	"os"
	"strings"
)

// Files is the storage an origin's manifests are read from.
type Files interface {
	// Exists reports whether a regular file exists at name.
	Exists(name string) bool

	// ReadFile returns the full contents of name.
	ReadFile(name string) ([]byte, error)
}

// OSFiles reads from the local filesystem.
type OSFiles struct{}

func (OSFiles) Exists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

func (OSFiles) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// FSFiles reads from an fs.FS, such as an embed.FS or fstest.MapFS.
// Absolute names are made relative to the FS root.
type FSFiles struct {
	FS fs.FS
}

func (f FSFiles) Exists(name string) bool {
	info, err := fs.Stat(f.FS, fsName(name))
	return err == nil && info.Mode().IsRegular()
}

func (f FSFiles) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(f.FS, fsName(name))
}

func fsName(name string) string {
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "."
	}
	return name
}
