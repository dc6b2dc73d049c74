package assets

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ManifestStore loads manifests on first use and keeps them for the lifetime
// of the store. Each origin owns one store. It is safe for concurrent use.
type ManifestStore struct {
	files    Files
	name     string
	logger   *slog.Logger
	observer Observer
	max      int

	mu    sync.RWMutex
	cache map[string]*Manifest
	group singleflight.Group
}

// StoreOption configures a ManifestStore.
type StoreOption func(*ManifestStore)

// WithStoreName sets the origin name reported to the observer and in logs.
func WithStoreName(name string) StoreOption {
	return func(s *ManifestStore) {
		s.name = name
	}
}

// WithStoreLogger sets the logger. Default: slog.Default().
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *ManifestStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the observer notified of loads and lookups.
func WithObserver(o Observer) StoreOption {
	return func(s *ManifestStore) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithMaxEntries caps the number of cached manifests. Once full, manifests
// at new keys are read on every call and not kept. Zero means no limit.
func WithMaxEntries(n int) StoreOption {
	return func(s *ManifestStore) {
		if n > 0 {
			s.max = n
		}
	}
}

// NewManifestStore creates an empty store reading through files.
// A nil files reads from the local filesystem.
func NewManifestStore(files Files, opts ...StoreOption) *ManifestStore {
	if files == nil {
		files = OSFiles{}
	}
	s := &ManifestStore{
		files:    files,
		logger:   slog.Default(),
		observer: nopObserver{},
		cache:    make(map[string]*Manifest),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.name != "" {
		s.logger = s.logger.With("origin", s.name)
	}
	return s
}

// Cached returns the manifest cached under key, if any.
func (s *ManifestStore) Cached(key string) (*Manifest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.cache[key]
	return m, ok
}

// Load returns the manifest cached under key, reading it from path on the
// first call. key identifies the cache slot, usually the manifest location
// relative to the origin root; path is where the file lives in storage.
//
// The result is never nil. A missing, unreadable or malformed manifest is
// cached as an empty manifest so storage is checked once per key. Concurrent
// first calls for the same key share a single read. When the store is full
// the manifest is returned without being cached.
func (s *ManifestStore) Load(key, path string) *Manifest {
	if m, ok := s.Cached(key); ok {
		return m
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		if m, ok := s.Cached(key); ok {
			return m, nil
		}

		m := s.read(path)

		s.mu.Lock()
		if s.max == 0 || len(s.cache) < s.max {
			s.cache[key] = m
		} else {
			s.logger.Debug("manifest cache full", "path", path, "max", s.max)
		}
		s.mu.Unlock()
		return m, nil
	})
	return v.(*Manifest)
}

// Len returns the number of cached manifests.
func (s *ManifestStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.cache)
}

func (s *ManifestStore) read(path string) *Manifest {
	start := time.Now()

	if !s.files.Exists(path) {
		s.logger.Debug("no manifest", "path", path)
		s.observer.ManifestLoaded(s.name, path, 0, nil, time.Since(start))
		return NewManifest()
	}

	m, err := LoadManifest(s.files, path)
	if err != nil {
		s.logger.Warn("manifest ignored", "path", path, "error", err)
		s.observer.ManifestLoaded(s.name, path, 0, err, time.Since(start))
		return NewManifest()
	}

	s.logger.Debug("manifest loaded", "path", path, "entries", m.Len())
	s.observer.ManifestLoaded(s.name, path, m.Len(), nil, time.Since(start))
	return m
}
