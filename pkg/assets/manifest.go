// Package assets resolves asset references to filesystem paths and public URLs,
// rewriting them through a build-tool manifest when one is present.
//
// A build step (Laravel Mix, Vite, esbuild...) writes a manifest mapping rooted,
// unversioned names to their fingerprinted versions:
//
//	{
//	  "/css/app.css": "/css/app.a1b2c3.css",
//	  "/js/app.js": "/js/app.d4e5f6.js"
//	}
//
// A Resolver combines that manifest with an Origin, which knows where an
// origin's files live on disk and under which URL they are served:
//
//	r := assets.NewResolver(origin.NewChildTheme(host))
//	r.AssetURL("css/app.css", "")
//	// https://example.test/themes/child/public/css/app.a1b2c3.css
//
// Resolution never fails. A missing or malformed manifest behaves like an
// empty one and the file is served unversioned.
package assets

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/vango-dev/themeassets/internal/errors"
)

// Separator is the separator every request and manifest key is rooted with.
const Separator = "/"

// Manifest holds the mapping from rooted source paths to fingerprinted paths.
// It is safe for concurrent use.
type Manifest struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// ParseManifest decodes manifest JSON. Comments and trailing commas are
// tolerated. An empty document yields an empty manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	if strings.TrimSpace(string(data)) == "" {
		return NewManifest(), nil
	}

	var entries map[string]string
	if err := json.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
		return nil, errors.New("E202").Wrap(err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Manifest{entries: entries}, nil
}

// LoadManifest reads and parses the manifest at path through files.
// Unlike ManifestStore.Load it reports every failure.
func LoadManifest(files Files, path string) (*Manifest, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return nil, errors.New("E201").WithPath(path).Wrap(err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, errors.FromError(err, "E202").WithPath(path)
	}
	return m, nil
}

// Lookup returns the mapped value for key and whether it was present.
func (m *Manifest) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	return v, ok
}

// Resolve returns the fingerprinted path for key, or key unchanged.
func (m *Manifest) Resolve(key string) string {
	if v, ok := m.Lookup(key); ok {
		return v
	}
	return key
}

// Has returns true if the manifest contains key.
func (m *Manifest) Has(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Set adds or updates an entry in the manifest.
// This is primarily useful for testing or dynamic manifest building.
func (m *Manifest) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// All returns a copy of all manifest entries.
func (m *Manifest) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		result[k] = v
	}
	return result
}

// Normalize roots file with a single leading separator.
func Normalize(file string) string {
	if strings.HasPrefix(file, Separator) {
		return file
	}
	return Separator + file
}
