package assets

import (
	"io/fs"
	"sync"
	"testing/fstest"
	"time"
)

// testOrigin joins files onto a fixed root and base URL.
type testOrigin struct {
	name string
	root string
	base string
}

func (o testOrigin) Name() string {
	if o.name == "" {
		return "test"
	}
	return o.name
}
func (o testOrigin) Path(file string) string { return o.root + file }
func (o testOrigin) URL(file string) string  { return o.base + file }

// countingFiles wraps an fstest.MapFS and counts storage access.
type countingFiles struct {
	fs fstest.MapFS

	mu     sync.Mutex
	reads  map[string]int
	checks map[string]int
}

func newCountingFiles(files map[string]string) *countingFiles {
	m := fstest.MapFS{}
	for name, data := range files {
		m[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return &countingFiles{fs: m, reads: map[string]int{}, checks: map[string]int{}}
}

func (c *countingFiles) Exists(name string) bool {
	c.mu.Lock()
	c.checks[name]++
	c.mu.Unlock()
	return FSFiles{FS: c.fs}.Exists(name)
}

func (c *countingFiles) ReadFile(name string) ([]byte, error) {
	c.mu.Lock()
	c.reads[name]++
	c.mu.Unlock()
	return fs.ReadFile(c.fs, fsName(name))
}

func (c *countingFiles) totalReads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.reads {
		n += v
	}
	return n
}

func (c *countingFiles) readsOf(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[name]
}

func (c *countingFiles) checksOf(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checks[name]
}

type loadEvent struct {
	origin, path string
	entries      int
	err          error
}

type recordingObserver struct {
	mu     sync.Mutex
	loads  []loadEvent
	hits   int
	misses int
}

func (r *recordingObserver) ManifestLoaded(origin, path string, entries int, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, loadEvent{origin, path, entries, err})
}

func (r *recordingObserver) Lookup(_ string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}
