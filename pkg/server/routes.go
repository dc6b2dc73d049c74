package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/vango-dev/themeassets/internal/errors"
	"github.com/vango-dev/themeassets/pkg/assets"
	"github.com/vango-dev/themeassets/pkg/registry"
)

// Resolution is the /resolve response body.
type Resolution struct {
	Origin string `json:"origin"`
	File   string `json:"file"`
	URL    string `json:"url"`
	Path   string `json:"path"`
}

// ManifestEntry is one entry of the /manifest response body.
type ManifestEntry struct {
	Source   string `json:"source"`
	Resolved string `json:"resolved"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	file := q.Get("file")
	if file == "" {
		s.writeError(w, http.StatusBadRequest, apperrors.Newf(apperrors.CategoryCLI, "missing file parameter"))
		return
	}

	res, kind, ok := s.resolver(w, q.Get("origin"))
	if !ok {
		return
	}
	manifestDir, ok := s.manifestDir(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, Resolution{
		Origin: string(kind),
		File:   file,
		URL:    res.AssetURL(file, manifestDir),
		Path:   res.AssetPath(file, manifestDir),
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	res, _, ok := s.resolver(w, chi.URLParam(r, "origin"))
	if !ok {
		return
	}
	manifestDir, ok := s.manifestDir(w, r)
	if !ok {
		return
	}

	all := res.Manifest(manifestDir).All()
	entries := make([]ManifestEntry, 0, len(all))
	for k, v := range all {
		entries = append(entries, ManifestEntry{Source: k, Resolved: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Source < entries[j].Source })

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	res, _, ok := s.resolver(w, chi.URLParam(r, "origin"))
	if !ok {
		return
	}
	manifestDir, ok := s.manifestDir(w, r)
	if !ok {
		return
	}

	file := assets.Normalize(chi.URLParam(r, "*"))
	target := res.AssetURL(file, manifestDir)
	http.Redirect(w, r, target, http.StatusFound)
}

// resolver looks up the resolver for an origin name, writing an error
// response when it cannot be used.
func (s *Server) resolver(w http.ResponseWriter, name string) (*assets.Resolver, registry.Kind, bool) {
	if name == "" {
		name = string(registry.KindChild)
	}
	kind, err := registry.ParseKind(name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, "", false
	}
	if kind == registry.KindExtension && !s.registry.ExtensionConfigured() {
		s.writeError(w, http.StatusServiceUnavailable, apperrors.New("E210"))
		return nil, "", false
	}
	res, err := s.registry.Get(kind)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return nil, "", false
	}
	return res, kind, true
}

// manifestDir returns the request's manifest_dir override, writing a 400
// when it leaves the origin or is not in Config.ManifestDirs.
func (s *Server) manifestDir(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("manifest_dir")
	dir, ok := cleanManifestDir(raw)
	if !ok {
		s.writeError(w, http.StatusBadRequest, apperrors.Newf(apperrors.CategoryCLI, "invalid manifest_dir %q", raw))
		return "", false
	}
	if dir != "" && s.manifestDirs != nil && !s.manifestDirs[dir] {
		s.writeError(w, http.StatusBadRequest, apperrors.Newf(apperrors.CategoryCLI, "manifest_dir %q is not allowed", raw))
		return "", false
	}
	return dir, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	ae := apperrors.FromError(err, "")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(ae.FormatJSON()))
}
