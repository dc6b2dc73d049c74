package registry

import (
	"fmt"
	"path"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/vango-dev/themeassets/internal/errors"
	"github.com/vango-dev/themeassets/pkg/assets"
)

type stubHost struct{}

func (stubHost) ParentThemeFilePath(f string) string { return "/parent" + f }
func (stubHost) ParentThemeFileURL(f string) string  { return "https://x.test/parent" + f }
func (stubHost) ThemeFilePath(f string) string       { return "/child" + f }
func (stubHost) ThemeFileURL(f string) string        { return "https://x.test/child" + f }
func (stubHost) ChildThemeFilePath(f string) string  { return "/child" + f }
func (stubHost) ChildThemeFileURL(f string) string   { return "https://x.test/child" + f }
func (stubHost) ExtensionDirPath(e string) string    { return "/ext/" }
func (stubHost) ExtensionDirURL(e string) string     { return "https://x.test/ext/" }

type countObserver struct{ loads int }

func (c *countObserver) ManifestLoaded(string, string, int, error, time.Duration) { c.loads++ }
func (c *countObserver) Lookup(string, bool)                                       {}

func testFiles() assets.Files {
	return assets.FSFiles{FS: fstest.MapFS{
		"parent/public/mix-manifest.json": {Data: []byte(`{"/app.css": "/app.p.css"}`)},
		"child/public/mix-manifest.json":  {Data: []byte(`{"/app.css": "/app.c.css"}`)},
		"ext/dist/mix-manifest.json":      {Data: []byte(`{"/app.css": "/app.e.css"}`)},
	}}
}

func TestRegistrySingletons(t *testing.T) {
	r := New(stubHost{})

	if r.Parent() != r.Parent() || r.Child() != r.Child() || r.Extension() != r.Extension() {
		t.Error("accessors should return the same resolver every time")
	}
	if r.Parent() == r.Child() || r.Child() == r.Extension() {
		t.Error("origins should have distinct resolvers")
	}
	if r.Parent().Store() == r.Child().Store() {
		t.Error("origins should not share a manifest store")
	}

	for _, k := range r.Kinds() {
		res, err := r.Get(k)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", k, err)
		}
		if res.Origin().Name() != string(k) {
			t.Errorf("Get(%q) origin = %q", k, res.Origin().Name())
		}
	}
}

func TestRegistryResolvesPerOrigin(t *testing.T) {
	obs := &countObserver{}
	r := New(stubHost{},
		WithFiles(testFiles()),
		WithObserver(obs),
		WithSettings(KindExtension, assets.Settings{ManifestDirectory: "/dist"}),
	)
	r.SetExtensionEntryPoint("/ext/shop.php")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"parent", r.Parent().AssetURL("app.css", ""), "https://x.test/parent/public/app.p.css"},
		{"child", r.Child().AssetURL("app.css", ""), "https://x.test/child/public/app.c.css"},
		{"extension", r.Extension().AssetURL("app.css", ""), "https://x.test/ext/public/app.e.css"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	if obs.loads != 3 {
		t.Errorf("manifest loads = %d, want 3", obs.loads)
	}
}

func TestRegistryParentInherit(t *testing.T) {
	r := New(stubHost{}, WithFiles(testFiles()), WithParentInherit(true))

	if got, want := r.Parent().AssetURL("app.css", ""), "https://x.test/child/public/app.c.css"; got != want {
		t.Errorf("AssetURL() = %q, want %q", got, want)
	}
}

func TestRegistryExtensionConfigured(t *testing.T) {
	r := New(stubHost{})
	if r.ExtensionConfigured() {
		t.Error("ExtensionConfigured() = true before SetExtensionEntryPoint")
	}
	r.SetExtensionEntryPoint("/ext/shop.php")
	if !r.ExtensionConfigured() {
		t.Error("ExtensionConfigured() = false after SetExtensionEntryPoint")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"parent", KindParent, false},
		{" Child ", KindChild, false},
		{"EXTENSION", KindExtension, false},
		{"theme", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.HasCode(err, "E220") {
			t.Errorf("ParseKind(%q) error = %v, want E220", tt.in, err)
		}
	}

	if _, err := New(stubHost{}).Get("theme"); !errors.HasCode(err, "E220") {
		t.Errorf("Get(theme) error = %v, want E220", err)
	}
}

func TestUnknownOriginDetailQuotesName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"theme", `"theme"`},
		{`a"b`, `"a\"b"`},
		{"", `""`},
	}
	for _, tt := range tests {
		_, err := ParseKind(tt.in)
		ae, ok := err.(*errors.AssetsError)
		if !ok {
			t.Fatalf("ParseKind(%q) error type = %T", tt.in, err)
		}
		if !strings.HasPrefix(ae.Detail, "Unknown origin "+tt.want+";") {
			t.Errorf("ParseKind(%q) detail = %q", tt.in, ae.Detail)
		}

		_, err = New(stubHost{}).Get(Kind(tt.in))
		if ae, ok := err.(*errors.AssetsError); !ok || !strings.Contains(ae.Detail, tt.want) {
			t.Errorf("Get(%q) error = %v", tt.in, err)
		}
	}
}

// entryHost places each extension beside its entry-point file.
type entryHost struct{ stubHost }

func (entryHost) ExtensionDirPath(e string) string { return path.Dir(e) + "/" }
func (entryHost) ExtensionDirURL(e string) string  { return "https://x.test" + path.Dir(e) + "/" }

func TestExtensionEntryPointChangeLoadsNewManifest(t *testing.T) {
	files := assets.FSFiles{FS: fstest.MapFS{
		"shop/public/mix-manifest.json": {Data: []byte(`{"/app.css": "/app.shop.css"}`)},
		"blog/public/mix-manifest.json": {Data: []byte(`{"/app.css": "/app.blog.css"}`)},
	}}
	r := New(entryHost{}, WithFiles(files))

	r.SetExtensionEntryPoint("/shop/shop.php")
	if got, want := r.Extension().AssetURL("app.css", ""), "https://x.test/shop/public/app.shop.css"; got != want {
		t.Errorf("shop AssetURL() = %q, want %q", got, want)
	}

	r.SetExtensionEntryPoint("/blog/blog.php")
	if got, want := r.Extension().AssetURL("app.css", ""), "https://x.test/blog/public/app.blog.css"; got != want {
		t.Errorf("blog AssetURL() = %q, want %q", got, want)
	}
	if n := r.Extension().Store().Len(); n != 2 {
		t.Errorf("Store().Len() = %d, want 2", n)
	}
}

func TestRegistryMaxManifests(t *testing.T) {
	r := New(stubHost{}, WithFiles(testFiles()), WithMaxManifests(3))

	for i := 0; i < 50; i++ {
		r.Child().AssetURL("app.css", fmt.Sprintf("/x%d", i))
	}
	if n := r.Child().Store().Len(); n != 3 {
		t.Errorf("Store().Len() = %d, want 3", n)
	}
	if n := r.Parent().Store().Len(); n != 0 {
		t.Errorf("parent Store().Len() = %d, want 0", n)
	}
}
