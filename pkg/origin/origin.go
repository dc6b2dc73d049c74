// Package origin provides the three asset origins: the parent theme, the
// child theme and an installed extension. Each one delegates to a Host for
// the actual directory and URL of its files.
package origin

import (
	"strings"
	"sync"

	"github.com/vango-dev/themeassets/internal/errors"
	"github.com/vango-dev/themeassets/pkg/assets"
)

// Host is the environment the origins live in. Theme accessors take a file
// relative to the theme root and return its absolute path or URL. Extension
// accessors take an extension's entry-point file and return the directory
// containing it, with a trailing slash.
type Host interface {
	// ParentThemeFilePath and ParentThemeFileURL resolve against the parent
	// theme only.
	ParentThemeFilePath(file string) string
	ParentThemeFileURL(file string) string

	// ThemeFilePath and ThemeFileURL resolve against the active theme,
	// preferring the child theme when it has the file.
	ThemeFilePath(file string) string
	ThemeFileURL(file string) string

	// ChildThemeFilePath and ChildThemeFileURL resolve against the active
	// (child) theme unconditionally.
	ChildThemeFilePath(file string) string
	ChildThemeFileURL(file string) string

	ExtensionDirPath(entryPoint string) string
	ExtensionDirURL(entryPoint string) string
}

// Origin names.
const (
	NameParent    = "parent"
	NameChild     = "child"
	NameExtension = "extension"
)

var (
	_ assets.Origin = (*ParentTheme)(nil)
	_ assets.Origin = (*ChildTheme)(nil)
	_ assets.Origin = (*Extension)(nil)
)

// ParentTheme resolves files in the parent theme.
type ParentTheme struct {
	host Host

	// Inherit makes lookups go through the active theme, so a child theme
	// can override parent files.
	Inherit bool
}

// NewParentTheme creates a parent theme origin.
func NewParentTheme(h Host, inherit bool) *ParentTheme {
	return &ParentTheme{host: h, Inherit: inherit}
}

func (p *ParentTheme) Name() string { return NameParent }

func (p *ParentTheme) Path(file string) string {
	if p.Inherit {
		return p.host.ThemeFilePath(file)
	}
	return p.host.ParentThemeFilePath(file)
}

func (p *ParentTheme) URL(file string) string {
	if p.Inherit {
		return p.host.ThemeFileURL(file)
	}
	return p.host.ParentThemeFileURL(file)
}

// ChildTheme resolves files in the active, overriding theme.
type ChildTheme struct {
	host Host
}

// NewChildTheme creates a child theme origin.
func NewChildTheme(h Host) *ChildTheme {
	return &ChildTheme{host: h}
}

func (c *ChildTheme) Name() string { return NameChild }

func (c *ChildTheme) Path(file string) string {
	return c.host.ChildThemeFilePath(file)
}

func (c *ChildTheme) URL(file string) string {
	return c.host.ChildThemeFileURL(file)
}

// Extension resolves files in an installed extension's directory. The
// extension is identified by its entry-point file, which must be set before
// the first lookup.
type Extension struct {
	host Host

	mu         sync.RWMutex
	entryPoint string
}

// NewExtension creates an extension origin with no entry point.
func NewExtension(h Host) *Extension {
	return &Extension{host: h}
}

// SetEntryPoint sets the extension's entry-point file.
func (e *Extension) SetEntryPoint(file string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entryPoint = file
}

// EntryPoint returns the configured entry-point file.
func (e *Extension) EntryPoint() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.entryPoint
}

func (e *Extension) Name() string { return NameExtension }

// Scope returns the entry point, so manifests cached for one extension are
// not served for another.
func (e *Extension) Scope() string { return e.EntryPoint() }

// Path returns file inside the extension directory, or the directory itself
// for an empty file. It panics if no entry point has been set.
func (e *Extension) Path(file string) string {
	return join(e.host.ExtensionDirPath(e.mustEntryPoint()), file)
}

// URL returns the URL of file inside the extension directory, or the
// directory URL for an empty file. It panics if no entry point has been set.
func (e *Extension) URL(file string) string {
	return join(e.host.ExtensionDirURL(e.mustEntryPoint()), file)
}

func (e *Extension) mustEntryPoint() string {
	entry := e.EntryPoint()
	if entry == "" {
		panic(errors.New("E210").WithSuggestion("Call SetEntryPoint with the extension's main file before resolving assets"))
	}
	return entry
}

func join(dir, file string) string {
	if file == "" {
		return dir
	}
	return dir + strings.TrimLeft(file, "/")
}
