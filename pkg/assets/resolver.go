package assets

import (
	"html/template"
	"strings"
	"sync"
)

const (
	// DefaultAssetsDirectory is the asset root inside an origin. It doubles as
	// the default manifest location.
	DefaultAssetsDirectory = "/public"

	// DefaultManifestName is the manifest filename Laravel Mix writes.
	DefaultManifestName = "mix-manifest.json"
)

// Origin locates files belonging to one asset origin: a parent theme, a
// child theme or an extension.
type Origin interface {
	// Name identifies the origin in logs and metrics.
	Name() string

	// Path returns the absolute filesystem path of file within the origin.
	Path(file string) string

	// URL returns the public URL of file within the origin.
	URL(file string) string
}

// Scoped is implemented by origins whose root can move at runtime. Scope
// names the current root and becomes part of the manifest cache key.
type Scoped interface {
	Scope() string
}

// Settings is the persistent configuration of a Resolver.
type Settings struct {
	// AssetsDirectory is prefixed to every resolved file (default "/public").
	AssetsDirectory string

	// ManifestName is the manifest filename (default "mix-manifest.json").
	ManifestName string

	// ManifestDirectory is where the manifest lives, relative to the origin
	// root. Empty means AssetsDirectory.
	ManifestDirectory string
}

// DefaultSettings returns the settings a new Resolver starts with.
func DefaultSettings() Settings {
	return Settings{
		AssetsDirectory: DefaultAssetsDirectory,
		ManifestName:    DefaultManifestName,
	}
}

// ManifestDir returns the manifest location for a lookup: override if set,
// else the configured manifest directory, else the assets directory.
// A non-empty result is rooted.
func (s Settings) ManifestDir(override string) string {
	dir := override
	if dir == "" {
		dir = s.ManifestDirectory
	}
	if dir == "" {
		dir = s.AssetsDirectory
	}
	if dir != "" && !strings.HasPrefix(dir, Separator) {
		dir = Separator + dir
	}
	return dir
}

// ManifestLocation returns the manifest file relative to the origin root.
func (s Settings) ManifestLocation(override string) string {
	return s.ManifestDir(override) + Separator + s.ManifestName
}

// Resolver resolves asset requests for one origin. It owns the origin's
// manifest cache and is safe for concurrent use.
//
// The manifestDir argument accepted by the resolution methods overrides the
// manifest location for that call only. Pass "" to use the configured one.
type Resolver struct {
	origin Origin
	store  *ManifestStore

	mu       sync.RWMutex
	settings Settings
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStore sets the manifest store. By default the resolver gets its own
// store reading from the local filesystem.
func WithStore(s *ManifestStore) ResolverOption {
	return func(r *Resolver) {
		r.store = s
	}
}

// WithSettings replaces the default settings. Empty fields keep their defaults.
func WithSettings(s Settings) ResolverOption {
	return func(r *Resolver) {
		if s.AssetsDirectory != "" {
			r.settings.AssetsDirectory = s.AssetsDirectory
		}
		if s.ManifestName != "" {
			r.settings.ManifestName = s.ManifestName
		}
		r.settings.ManifestDirectory = s.ManifestDirectory
	}
}

// NewResolver creates a resolver for o.
func NewResolver(o Origin, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		origin:   o,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = NewManifestStore(OSFiles{}, WithStoreName(o.Name()))
	}
	return r
}

// AssetURL returns the public URL of file, rewritten through the manifest.
func (r *Resolver) AssetURL(file, manifestDir string) string {
	return r.origin.URL(r.Prepare(file, manifestDir))
}

// AssetPath returns the absolute filesystem path of file, rewritten through
// the manifest.
func (r *Resolver) AssetPath(file, manifestDir string) string {
	return r.origin.Path(r.Prepare(file, manifestDir))
}

// Prepare returns file relative to the origin root: rooted, rewritten through
// the manifest when it has an entry, and prefixed with the assets directory.
// Mapped values are used verbatim.
func (r *Resolver) Prepare(file, manifestDir string) string {
	file = Normalize(file)
	settings := r.Settings()

	mapped, hit := r.manifest(settings, manifestDir).Lookup(file)
	if hit {
		file = mapped
	}
	r.store.observer.Lookup(r.origin.Name(), hit)

	return settings.AssetsDirectory + file
}

// Manifest returns the manifest consulted for a lookup with manifestDir.
func (r *Resolver) Manifest(manifestDir string) *Manifest {
	return r.manifest(r.Settings(), manifestDir)
}

// ManifestDirectory returns the manifest location, relative to the origin
// root, used for a lookup with manifestDir.
func (r *Resolver) ManifestDirectory(manifestDir string) string {
	return r.Settings().ManifestDir(manifestDir)
}

// ManifestPath returns the manifest file path used for a lookup with manifestDir.
func (r *Resolver) ManifestPath(manifestDir string) string {
	return r.origin.Path(r.Settings().ManifestLocation(manifestDir))
}

func (r *Resolver) manifest(s Settings, manifestDir string) *Manifest {
	location := s.ManifestLocation(manifestDir)
	key := location
	if sc, ok := r.origin.(Scoped); ok {
		key = sc.Scope() + ":" + location
	}
	if m, ok := r.store.Cached(key); ok {
		return m
	}
	return r.store.Load(key, r.origin.Path(location))
}

// SetAssetsDirectory sets the directory prefixed to resolved files.
func (r *Resolver) SetAssetsDirectory(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.AssetsDirectory = dir
}

// SetManifestName sets the manifest filename.
func (r *Resolver) SetManifestName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.ManifestName = name
}

// SetManifestDirectory sets the persistent manifest location.
// Manifests already cached stay cached.
func (r *Resolver) SetManifestDirectory(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.ManifestDirectory = dir
}

// Settings returns a copy of the current settings.
func (r *Resolver) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// Origin returns the origin the resolver resolves against.
func (r *Resolver) Origin() Origin {
	return r.origin
}

// Store returns the resolver's manifest store.
func (r *Resolver) Store() *ManifestStore {
	return r.store
}

// FuncMap returns template helpers bound to the resolver:
//
//	<link rel="stylesheet" href="{{ asset_url "css/app.css" }}">
//	<script src="{{ asset_url "app.js" "/dist" }}"></script>
func (r *Resolver) FuncMap() template.FuncMap {
	return template.FuncMap{
		"asset_url": func(file string, manifestDir ...string) string {
			return r.AssetURL(file, firstOrEmpty(manifestDir))
		},
		"asset_path": func(file string, manifestDir ...string) string {
			return r.AssetPath(file, firstOrEmpty(manifestDir))
		},
	}
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
