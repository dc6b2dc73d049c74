package server

import (
	"bytes"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/themeassets/pkg/assets"
)

// CacheControl selects the Cache-Control policy for served files.
type CacheControl string

const (
	// CacheControlNone disables caching. Useful in development.
	CacheControlNone CacheControl = "none"

	// CacheControlProduction caches versioned files for a year and
	// everything else for an hour.
	CacheControlProduction CacheControl = "production"
)

// handleFile serves the bytes of a resolved asset.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel, ok := cleanRelPath(chi.URLParam(r, "*"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	res, _, ok := s.resolver(w, chi.URLParam(r, "origin"))
	if !ok {
		return
	}

	manifestDir, ok := s.manifestDir(w, r)
	if !ok {
		return
	}

	file := assets.Normalize(rel)
	versioned := res.Manifest(manifestDir).Has(file)

	// Mix appends the version as a query string; the file on disk has none.
	target, _, _ := strings.Cut(res.AssetPath(file, manifestDir), "?")

	data, err := s.config.Files.ReadFile(target)
	if err != nil {
		s.logger.Debug("asset not found", "file", file, "path", target, "error", err)
		http.NotFound(w, r)
		return
	}

	s.applyCacheHeaders(w, target, versioned)
	http.ServeContent(w, r, path.Base(target), time.Time{}, bytes.NewReader(data))
}

// cleanRelPath returns a sanitized relative path for a file request. It
// rejects traversal and absolute-path tricks so a request cannot escape
// the origin's assets directory.
func cleanRelPath(rel string) (string, bool) {
	if rel == "" {
		return "", false
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	if strings.Contains(rel, "\\") {
		return "", false
	}

	// "/files/child//etc/passwd" leaves a leading slash.
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || strings.HasPrefix(clean, "../") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// cleanManifestDir returns dir rooted with empty segments dropped, so
// "dist/" and "/dist" are the same directory. Like cleanRelPath it rejects
// anything that could leave the origin. An empty dir is valid.
func cleanManifestDir(dir string) (string, bool) {
	if dir == "" {
		return "", true
	}
	if strings.IndexByte(dir, 0) != -1 || strings.Contains(dir, "\\") {
		return "", false
	}

	var segs []string
	for _, seg := range strings.Split(dir, "/") {
		switch seg {
		case "":
		case ".", "..":
			return "", false
		default:
			segs = append(segs, seg)
		}
	}
	if len(segs) == 0 {
		return "", false
	}
	return "/" + strings.Join(segs, "/"), true
}

// applyCacheHeaders sets Cache-Control for a served file. Files rewritten
// by the manifest or with a hash in their name never change and are
// cached as immutable.
func (s *Server) applyCacheHeaders(w http.ResponseWriter, filePath string, versioned bool) {
	switch s.config.CacheControl {
	case CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")

	case CacheControlProduction:
		if versioned || isFingerprinted(filePath) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether a file name carries a hash, e.g.
// "app.a1b2c3d4.css".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}

	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}

	return true
}
