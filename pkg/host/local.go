// Package host provides hosts and storage for the asset origins: Local, a
// host over a directory layout of themes and extensions, and S3Files, which
// reads manifests from an S3 bucket.
package host

import (
	"log/slog"
	"path"
	"strings"

	"github.com/vango-dev/themeassets/pkg/assets"
	"github.com/vango-dev/themeassets/pkg/origin"
)

// LocalConfig describes the directory layout a Local host serves.
type LocalConfig struct {
	// ThemesDir contains one directory per theme.
	ThemesDir string

	// ThemesURL is the public URL of ThemesDir.
	ThemesURL string

	// ParentTheme is the directory name of the parent theme.
	ParentTheme string

	// ChildTheme is the directory name of the active child theme. Empty
	// means the parent theme is active.
	ChildTheme string

	// ExtensionsDir contains installed extensions. Relative entry points are
	// resolved against it.
	ExtensionsDir string

	// ExtensionsURL is the public URL of ExtensionsDir.
	ExtensionsURL string
}

// Local is an origin.Host over a local directory layout:
//
//	<ThemesDir>/<ParentTheme>/...
//	<ThemesDir>/<ChildTheme>/...
//	<ExtensionsDir>/<extension>/<entry point>
type Local struct {
	cfg    LocalConfig
	files  assets.Files
	logger *slog.Logger
}

var _ origin.Host = (*Local)(nil)

// NewLocal creates a Local host. files is used to check the child theme
// when resolving through the active theme; nil means the local filesystem.
func NewLocal(cfg LocalConfig, files assets.Files, logger *slog.Logger) *Local {
	if files == nil {
		files = assets.OSFiles{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ThemesDir = strings.TrimRight(cfg.ThemesDir, "/")
	cfg.ThemesURL = strings.TrimRight(cfg.ThemesURL, "/")
	cfg.ExtensionsDir = strings.TrimRight(cfg.ExtensionsDir, "/")
	cfg.ExtensionsURL = strings.TrimRight(cfg.ExtensionsURL, "/")
	return &Local{cfg: cfg, files: files, logger: logger.With("component", "host")}
}

// Config returns the normalized layout.
func (l *Local) Config() LocalConfig {
	return l.cfg
}

func (l *Local) ParentThemeFilePath(file string) string {
	return appendFile(l.cfg.ThemesDir+"/"+l.cfg.ParentTheme, file)
}

func (l *Local) ParentThemeFileURL(file string) string {
	return appendFile(l.cfg.ThemesURL+"/"+l.cfg.ParentTheme, file)
}

func (l *Local) ChildThemeFilePath(file string) string {
	return appendFile(l.cfg.ThemesDir+"/"+l.activeTheme(), file)
}

func (l *Local) ChildThemeFileURL(file string) string {
	return appendFile(l.cfg.ThemesURL+"/"+l.activeTheme(), file)
}

// ThemeFilePath returns the child theme's copy of file when it exists,
// otherwise the parent theme's.
func (l *Local) ThemeFilePath(file string) string {
	if l.childHas(file) {
		return l.ChildThemeFilePath(file)
	}
	return l.ParentThemeFilePath(file)
}

// ThemeFileURL is the URL counterpart of ThemeFilePath.
func (l *Local) ThemeFileURL(file string) string {
	if l.childHas(file) {
		return l.ChildThemeFileURL(file)
	}
	return l.ParentThemeFileURL(file)
}

// ExtensionDirPath returns the directory containing entryPoint, with a
// trailing slash.
func (l *Local) ExtensionDirPath(entryPoint string) string {
	return path.Dir(l.extensionEntry(entryPoint)) + "/"
}

// ExtensionDirURL returns the URL of the directory containing entryPoint,
// with a trailing slash. Entry points outside ExtensionsDir are addressed
// by their directory name.
func (l *Local) ExtensionDirURL(entryPoint string) string {
	dir := path.Dir(l.extensionEntry(entryPoint))
	rel, ok := strings.CutPrefix(dir, l.cfg.ExtensionsDir+"/")
	if !ok || l.cfg.ExtensionsDir == "" {
		rel = path.Base(dir)
	}
	return l.cfg.ExtensionsURL + "/" + rel + "/"
}

func (l *Local) activeTheme() string {
	if l.cfg.ChildTheme != "" {
		return l.cfg.ChildTheme
	}
	return l.cfg.ParentTheme
}

func (l *Local) childHas(file string) bool {
	if l.cfg.ChildTheme == "" {
		return false
	}
	// An empty file addresses the active theme's root.
	if file == "" {
		return true
	}
	found := l.files.Exists(l.ChildThemeFilePath(file))
	if !found {
		l.logger.Debug("child theme fallback", "file", file, "theme", l.cfg.ParentTheme)
	}
	return found
}

func (l *Local) extensionEntry(entryPoint string) string {
	if path.IsAbs(entryPoint) {
		return path.Clean(entryPoint)
	}
	return path.Join(l.cfg.ExtensionsDir, entryPoint)
}

func appendFile(dir, file string) string {
	if file == "" {
		return dir
	}
	return dir + "/" + strings.TrimLeft(file, "/")
}
