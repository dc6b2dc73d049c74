package assets

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const testBase = "https://example.test"

func newTestResolver(files map[string]string, opts ...ResolverOption) (*Resolver, *countingFiles) {
	cf := newCountingFiles(files)
	o := testOrigin{root: "/site", base: testBase}
	opts = append([]ResolverOption{WithStore(NewManifestStore(cf, WithStoreName(o.Name())))}, opts...)
	return NewResolver(o, opts...), cf
}

func TestAssetURLScenario(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/app.css":"/app.123.css"}`,
	})

	tests := []struct {
		name string
		file string
		want string
	}{
		{"mapped entry", "app.css", "https://example.test/public/app.123.css"},
		{"mapped entry already rooted", "/app.css", "https://example.test/public/app.123.css"},
		{"missing entry", "missing.css", "https://example.test/public/missing.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.AssetURL(tt.file, ""); got != tt.want {
				t.Errorf("AssetURL(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestAssetPathWithoutManifest(t *testing.T) {
	root := t.TempDir()
	o := testOrigin{root: root, base: testBase}
	r := NewResolver(o)

	want := root + "/public/x.js"
	if got := r.AssetPath("x.js", ""); got != want {
		t.Errorf("AssetPath(x.js) = %q, want %q", got, want)
	}
}

func TestAssetPathOnDisk(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "public", "css"), 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"/css/app.css": "/css/app.a1b2c3.css"}`
	if err := os.WriteFile(filepath.Join(root, "public", DefaultManifestName), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(testOrigin{root: root, base: testBase})
	want := root + "/public/css/app.a1b2c3.css"
	if got := r.AssetPath("css/app.css", ""); got != want {
		t.Errorf("AssetPath(css/app.css) = %q, want %q", got, want)
	}
}

func TestNormalizationIsIdempotent(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/a.css":"/a.1.css","/js/b.js":"/js/b.2.js"}`,
	})

	for _, f := range []string{"a.css", "js/b.js", "c.png", "deep/nested/d.svg", ""} {
		if a, b := r.AssetURL(f, ""), r.AssetURL("/"+f, ""); a != b {
			t.Errorf("AssetURL(%q) = %q but AssetURL(%q) = %q", f, a, "/"+f, b)
		}
		if a, b := r.AssetPath(f, ""), r.AssetPath("/"+f, ""); a != b {
			t.Errorf("AssetPath(%q) = %q but AssetPath(%q) = %q", f, a, "/"+f, b)
		}
	}
}

func TestMappedValueUsedVerbatim(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/app.js":"app.js?id=abc"}`,
	})

	if got := r.Prepare("app.js", ""); got != "/publicapp.js?id=abc" {
		t.Errorf("Prepare(app.js) = %q, want /publicapp.js?id=abc", got)
	}
}

func TestManifestReadOncePerResolver(t *testing.T) {
	r, files := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/app.css":"/app.123.css"}`,
	})

	for i := 0; i < 100; i++ {
		r.AssetURL(fmt.Sprintf("file-%d.css", i), "")
		r.AssetPath(fmt.Sprintf("file-%d.css", i), "")
	}

	if got := files.totalReads(); got != 1 {
		t.Errorf("manifest reads = %d, want 1", got)
	}
}

func TestOverrideIsScopedToCall(t *testing.T) {
	r, files := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/x.css":"/x.public.css"}`,
		"site/dist/mix-manifest.json":   `{"/x.css":"/x.dist.css"}`,
	})

	if got, want := r.AssetURL("x.css", "/dist"), testBase+"/public/x.dist.css"; got != want {
		t.Errorf("AssetURL(x.css, /dist) = %q, want %q", got, want)
	}
	if files.readsOf("/site/dist/mix-manifest.json") != 1 {
		t.Error("override manifest was not read")
	}

	if got, want := r.AssetURL("x.css", ""), testBase+"/public/x.public.css"; got != want {
		t.Errorf("AssetURL(x.css) after override = %q, want %q", got, want)
	}
	if files.readsOf("/site/public/mix-manifest.json") != 1 {
		t.Error("default manifest was not read")
	}

	// Cached in both slots now.
	r.AssetURL("x.css", "dist")
	r.AssetURL("x.css", "")
	if files.totalReads() != 2 {
		t.Errorf("reads = %d, want 2", files.totalReads())
	}
}

// movingOrigin is a testOrigin whose root is its scope.
type movingOrigin struct{ *testOrigin }

func (o movingOrigin) Scope() string { return o.root }

func TestScopedOriginCachesPerRoot(t *testing.T) {
	files := newCountingFiles(map[string]string{
		"one/public/mix-manifest.json": `{"/app.css": "/app.1.css"}`,
		"two/public/mix-manifest.json": `{"/app.css": "/app.2.css"}`,
	})
	o := &testOrigin{root: "/one", base: testBase}
	r := NewResolver(movingOrigin{o}, WithStore(NewManifestStore(files)))

	if got, want := r.AssetURL("app.css", ""), testBase+"/public/app.1.css"; got != want {
		t.Errorf("AssetURL() = %q, want %q", got, want)
	}
	o.root = "/two"
	if got, want := r.AssetURL("app.css", ""), testBase+"/public/app.2.css"; got != want {
		t.Errorf("AssetURL() after move = %q, want %q", got, want)
	}
	o.root = "/one"
	r.AssetURL("app.css", "")
	if files.totalReads() != 2 {
		t.Errorf("reads = %d, want 2", files.totalReads())
	}
}

func TestManifestDirectoryPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		override string
		want     string
	}{
		{"assets directory by default", Settings{AssetsDirectory: "/public"}, "", "/public"},
		{"configured directory beats assets directory", Settings{AssetsDirectory: "/public", ManifestDirectory: "/build"}, "", "/build"},
		{"override beats configured directory", Settings{AssetsDirectory: "/public", ManifestDirectory: "/build"}, "/dist", "/dist"},
		{"override beats assets directory", Settings{AssetsDirectory: "/public"}, "/dist", "/dist"},
		{"unrooted override is rooted", Settings{AssetsDirectory: "/public"}, "dist", "/dist"},
		{"unrooted configured directory is rooted", Settings{ManifestDirectory: "build"}, "", "/build"},
		{"unrooted assets directory is rooted", Settings{AssetsDirectory: "public"}, "", "/public"},
		{"everything empty", Settings{}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.ManifestDir(tt.override); got != tt.want {
				t.Errorf("ManifestDir(%q) = %q, want %q", tt.override, got, tt.want)
			}
		})
	}
}

func TestManifestPath(t *testing.T) {
	r, _ := newTestResolver(nil)

	if got := r.ManifestPath(""); got != "/site/public/mix-manifest.json" {
		t.Errorf("ManifestPath() = %q", got)
	}
	if got := r.ManifestPath("/dist"); got != "/site/dist/mix-manifest.json" {
		t.Errorf("ManifestPath(/dist) = %q", got)
	}

	r.SetManifestName("manifest.json")
	r.SetManifestDirectory("build")
	if got := r.ManifestPath(""); got != "/site/build/manifest.json" {
		t.Errorf("ManifestPath() after setters = %q", got)
	}

	r.SetAssetsDirectory("")
	r.SetManifestDirectory("")
	if got := r.ManifestPath(""); got != "/site/manifest.json" {
		t.Errorf("ManifestPath() with empty dirs = %q", got)
	}
}

func TestSettersTakeEffectOnNextLookup(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/app.css":"/app.1.css"}`,
		"site/build/assets.json":        `{"/app.css":"/app.2.css"}`,
	})

	if got := r.Prepare("app.css", ""); got != "/public/app.1.css" {
		t.Fatalf("Prepare() = %q", got)
	}

	r.SetAssetsDirectory("/static")
	r.SetManifestDirectory("/build")
	r.SetManifestName("assets.json")

	if got := r.Prepare("app.css", ""); got != "/static/app.2.css" {
		t.Errorf("Prepare() after setters = %q, want /static/app.2.css", got)
	}

	want := Settings{AssetsDirectory: "/static", ManifestName: "assets.json", ManifestDirectory: "/build"}
	if got := r.Settings(); got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
}

func TestWithSettingsKeepsDefaults(t *testing.T) {
	r := NewResolver(testOrigin{}, WithSettings(Settings{ManifestDirectory: "/dist"}))

	want := Settings{AssetsDirectory: DefaultAssetsDirectory, ManifestName: DefaultManifestName, ManifestDirectory: "/dist"}
	if got := r.Settings(); got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
}

func TestLookupObserved(t *testing.T) {
	obs := &recordingObserver{}
	cf := newCountingFiles(map[string]string{"site/public/mix-manifest.json": `{"/a.css":"/a.1.css"}`})
	r := NewResolver(testOrigin{root: "/site"}, WithStore(NewManifestStore(cf, WithObserver(obs))))

	r.AssetPath("a.css", "")
	r.AssetPath("b.css", "")
	r.AssetPath("b.css", "")

	if obs.hits != 1 || obs.misses != 2 {
		t.Errorf("hits = %d, misses = %d, want 1 and 2", obs.hits, obs.misses)
	}
	if len(obs.loads) != 1 || obs.loads[0].entries != 1 {
		t.Errorf("loads = %+v", obs.loads)
	}
}

func TestResolverConcurrentUse(t *testing.T) {
	r, files := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/app.css":"/app.123.css"}`,
		"site/dist/mix-manifest.json":   `{"/app.css":"/app.dist.css"}`,
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if got := r.AssetURL("app.css", "/dist"); got != testBase+"/public/app.dist.css" {
				t.Errorf("override call = %q", got)
			}
		}()
		go func() {
			defer wg.Done()
			if got := r.AssetURL("app.css", ""); got != testBase+"/public/app.123.css" {
				t.Errorf("default call = %q", got)
			}
		}()
	}
	wg.Wait()

	if files.totalReads() != 2 {
		t.Errorf("reads = %d, want 2", files.totalReads())
	}
}

func TestFuncMap(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"site/public/mix-manifest.json": `{"/app.css":"/app.123.css"}`,
		"site/dist/mix-manifest.json":   `{"/app.js":"/app.9.js"}`,
	})

	tpl := template.Must(template.New("page").Funcs(r.FuncMap()).Parse(
		`{{ asset_url "app.css" }}|{{ asset_url "app.js" "/dist" }}|{{ asset_path "app.css" }}`))

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, nil); err != nil {
		t.Fatal(err)
	}

	want := testBase + "/public/app.123.css|" + testBase + "/public/app.9.js|/site/public/app.123.css"
	if buf.String() != want {
		t.Errorf("rendered %q, want %q", buf.String(), want)
	}
}
