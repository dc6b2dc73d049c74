// Package registry holds the process-wide asset resolvers, one per origin
// kind. Build a Registry once at startup and share it:
//
//	reg := registry.New(host, registry.WithLogger(logger))
//	reg.SetExtensionEntryPoint("/srv/extensions/shop/shop.php")
//
//	reg.Child().AssetURL("css/app.css", "")
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/themeassets/internal/errors"
	"github.com/vango-dev/themeassets/pkg/assets"
	"github.com/vango-dev/themeassets/pkg/origin"
)

// Kind identifies an origin kind.
type Kind string

const (
	KindParent    Kind = origin.NameParent
	KindChild     Kind = origin.NameChild
	KindExtension Kind = origin.NameExtension
)

// kinds lists every origin kind in a stable order.
var kinds = []Kind{KindParent, KindChild, KindExtension}

// ParseKind parses an origin kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kinds {
		if k == known {
			return k, nil
		}
	}
	return "", unknownOrigin(s)
}

func unknownOrigin(name string) error {
	return errors.New("E220").WithDetail(fmt.Sprintf("Unknown origin %q; valid origins are parent, child and extension.", name))
}

// Registry owns one resolver per origin kind. Resolvers never share a
// manifest cache.
type Registry struct {
	resolvers map[Kind]*assets.Resolver
	extension *origin.Extension
}

type options struct {
	files         assets.Files
	logger        *slog.Logger
	observer      assets.Observer
	parentInherit bool
	maxManifests  int
	settings      map[Kind]assets.Settings
}

// Option configures a Registry.
type Option func(*options)

// WithFiles sets the storage manifests are read from. Default: local filesystem.
func WithFiles(f assets.Files) Option {
	return func(o *options) {
		o.files = f
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver sets the observer notified of manifest loads and lookups.
func WithObserver(obs assets.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithParentInherit makes the parent origin resolve through the active
// theme so a child theme can override parent files.
func WithParentInherit(inherit bool) Option {
	return func(o *options) {
		o.parentInherit = inherit
	}
}

// WithMaxManifests caps the manifests each origin keeps cached.
// Zero means no limit.
func WithMaxManifests(n int) Option {
	return func(o *options) {
		o.maxManifests = n
	}
}

// WithSettings sets the initial settings of one origin's resolver.
func WithSettings(k Kind, s assets.Settings) Option {
	return func(o *options) {
		o.settings[k] = s
	}
}

// New creates the resolvers for every origin kind on top of h.
func New(h origin.Host, opts ...Option) *Registry {
	o := options{settings: make(map[Kind]assets.Settings)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	ext := origin.NewExtension(h)
	origins := map[Kind]assets.Origin{
		KindParent:    origin.NewParentTheme(h, o.parentInherit),
		KindChild:     origin.NewChildTheme(h),
		KindExtension: ext,
	}

	r := &Registry{
		resolvers: make(map[Kind]*assets.Resolver, len(origins)),
		extension: ext,
	}
	for kind, org := range origins {
		store := assets.NewManifestStore(o.files,
			assets.WithStoreName(org.Name()),
			assets.WithStoreLogger(o.logger),
			assets.WithObserver(o.observer),
			assets.WithMaxEntries(o.maxManifests),
		)
		ropts := []assets.ResolverOption{assets.WithStore(store)}
		if s, ok := o.settings[kind]; ok {
			ropts = append(ropts, assets.WithSettings(s))
		}
		r.resolvers[kind] = assets.NewResolver(org, ropts...)
	}
	return r
}

// Parent returns the parent theme resolver.
func (r *Registry) Parent() *assets.Resolver { return r.resolvers[KindParent] }

// Child returns the child theme resolver.
func (r *Registry) Child() *assets.Resolver { return r.resolvers[KindChild] }

// Extension returns the extension resolver. Its entry point must be set
// with SetExtensionEntryPoint before use.
func (r *Registry) Extension() *assets.Resolver { return r.resolvers[KindExtension] }

// SetExtensionEntryPoint sets the extension origin's entry-point file.
func (r *Registry) SetExtensionEntryPoint(file string) {
	r.extension.SetEntryPoint(file)
}

// ExtensionConfigured reports whether the extension entry point is set.
func (r *Registry) ExtensionConfigured() bool {
	return r.extension.EntryPoint() != ""
}

// Get returns the resolver for kind.
func (r *Registry) Get(kind Kind) (*assets.Resolver, error) {
	res, ok := r.resolvers[kind]
	if !ok {
		return nil, unknownOrigin(string(kind))
	}
	return res, nil
}

// Kinds returns the registered origin kinds in a stable order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}
