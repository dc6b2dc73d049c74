package origin

import (
	"testing"

	"github.com/vango-dev/themeassets/internal/errors"
	"github.com/vango-dev/themeassets/pkg/assets"
)

// fakeHost tags every result with the accessor that produced it.
type fakeHost struct{}

func (fakeHost) ParentThemeFilePath(f string) string { return "/themes/parent" + f }
func (fakeHost) ParentThemeFileURL(f string) string  { return "https://cdn.test/parent" + f }
func (fakeHost) ThemeFilePath(f string) string       { return "/themes/active" + f }
func (fakeHost) ThemeFileURL(f string) string        { return "https://cdn.test/active" + f }
func (fakeHost) ChildThemeFilePath(f string) string  { return "/themes/child" + f }
func (fakeHost) ChildThemeFileURL(f string) string   { return "https://cdn.test/child" + f }
func (fakeHost) ExtensionDirPath(e string) string    { return "/ext/" + e + "/" }
func (fakeHost) ExtensionDirURL(e string) string     { return "https://cdn.test/ext/" + e + "/" }

func TestParentTheme(t *testing.T) {
	tests := []struct {
		name     string
		inherit  bool
		wantPath string
		wantURL  string
	}{
		{"parent only", false, "/themes/parent/public/app.css", "https://cdn.test/parent/public/app.css"},
		{"inherit through active theme", true, "/themes/active/public/app.css", "https://cdn.test/active/public/app.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParentTheme(fakeHost{}, tt.inherit)
			if got := p.Path("/public/app.css"); got != tt.wantPath {
				t.Errorf("Path() = %q, want %q", got, tt.wantPath)
			}
			if got := p.URL("/public/app.css"); got != tt.wantURL {
				t.Errorf("URL() = %q, want %q", got, tt.wantURL)
			}
		})
	}
}

func TestChildTheme(t *testing.T) {
	c := NewChildTheme(fakeHost{})
	if got := c.Path("/public/app.css"); got != "/themes/child/public/app.css" {
		t.Errorf("Path() = %q", got)
	}
	if got := c.URL("/public/app.css"); got != "https://cdn.test/child/public/app.css" {
		t.Errorf("URL() = %q", got)
	}
}

func TestExtension(t *testing.T) {
	e := NewExtension(fakeHost{})
	e.SetEntryPoint("shop")

	tests := []struct {
		file     string
		wantPath string
		wantURL  string
	}{
		{"/public/app.css", "/ext/shop/public/app.css", "https://cdn.test/ext/shop/public/app.css"},
		{"public/app.css", "/ext/shop/public/app.css", "https://cdn.test/ext/shop/public/app.css"},
		{"", "/ext/shop/", "https://cdn.test/ext/shop/"},
	}

	for _, tt := range tests {
		if got := e.Path(tt.file); got != tt.wantPath {
			t.Errorf("Path(%q) = %q, want %q", tt.file, got, tt.wantPath)
		}
		if got := e.URL(tt.file); got != tt.wantURL {
			t.Errorf("URL(%q) = %q, want %q", tt.file, got, tt.wantURL)
		}
	}
}

func TestExtensionScope(t *testing.T) {
	e := NewExtension(fakeHost{})
	var sc assets.Scoped = e

	if got := sc.Scope(); got != "" {
		t.Errorf("Scope() before SetEntryPoint = %q, want empty", got)
	}
	e.SetEntryPoint("shop")
	if got := sc.Scope(); got != "shop" {
		t.Errorf("Scope() = %q, want %q", got, "shop")
	}
	e.SetEntryPoint("blog")
	if got := sc.Scope(); got != "blog" {
		t.Errorf("Scope() after change = %q, want %q", got, "blog")
	}
}

func TestExtensionWithoutEntryPointPanics(t *testing.T) {
	for name, call := range map[string]func(*Extension){
		"Path": func(e *Extension) { e.Path("/public/app.css") },
		"URL":  func(e *Extension) { e.URL("/public/app.css") },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				rec := recover()
				err, ok := rec.(error)
				if !ok || !errors.HasCode(err, "E210") {
					t.Errorf("recovered %v, want E210 error", rec)
				}
			}()
			call(NewExtension(fakeHost{}))
		})
	}
}

func TestOriginsWithResolver(t *testing.T) {
	e := NewExtension(fakeHost{})
	e.SetEntryPoint("shop")

	tests := []struct {
		origin assets.Origin
		want   string
	}{
		{NewParentTheme(fakeHost{}, false), "https://cdn.test/parent/public/app.css"},
		{NewChildTheme(fakeHost{}), "https://cdn.test/child/public/app.css"},
		{e, "https://cdn.test/ext/shop/public/app.css"},
	}

	for _, tt := range tests {
		t.Run(tt.origin.Name(), func(t *testing.T) {
			// No manifest exists under the fake roots, so the file is unmapped.
			r := assets.NewResolver(tt.origin)
			if got := r.AssetURL("app.css", ""); got != tt.want {
				t.Errorf("AssetURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
