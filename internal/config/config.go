package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/themeassets/internal/errors"
	"github.com/vango-dev/themeassets/pkg/assets"
	"github.com/vango-dev/themeassets/pkg/host"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "themeassets.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "themeassets.yaml"

	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = ":8080"

	// DefaultMaxManifests is the default number of manifests each origin caches.
	DefaultMaxManifests = 64

	// DefaultRegion is the default S3 region.
	DefaultRegion = "us-east-1"

	DriverOS = "os"
	DriverS3 = "s3"
)

// configFileNames lists the file names Load looks for, in order.
var configFileNames = []string{ConfigFileName, YAMLConfigFileName, "themeassets.yml"}

// Config represents a themeassets configuration file.
type Config struct {
	// Host describes where themes and extensions live.
	Host HostConfig `json:"host" yaml:"host"`

	// Origins holds per-origin resolver settings.
	Origins OriginsConfig `json:"origins" yaml:"origins"`

	// Storage selects where manifests are read from.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Server configures `themeassets serve`.
	Server ServerConfig `json:"server" yaml:"server"`

	// Log configures logging.
	Log LogConfig `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// HostConfig describes the directory layout of themes and extensions.
type HostConfig struct {
	ThemesDir     string `json:"themesDir,omitempty" yaml:"themesDir,omitempty"`
	ThemesURL     string `json:"themesURL,omitempty" yaml:"themesURL,omitempty"`
	ParentTheme   string `json:"parentTheme,omitempty" yaml:"parentTheme,omitempty"`
	ChildTheme    string `json:"childTheme,omitempty" yaml:"childTheme,omitempty"`
	ExtensionsDir string `json:"extensionsDir,omitempty" yaml:"extensionsDir,omitempty"`
	ExtensionsURL string `json:"extensionsURL,omitempty" yaml:"extensionsURL,omitempty"`
}

// OriginConfig holds the resolver settings for one origin.
type OriginConfig struct {
	// AssetsDir is prefixed to every resolved file (default: "/public").
	AssetsDir string `json:"assetsDir,omitempty" yaml:"assetsDir,omitempty"`

	// ManifestName is the manifest file name (default: "mix-manifest.json").
	ManifestName string `json:"manifestName,omitempty" yaml:"manifestName,omitempty"`

	// ManifestDir overrides the directory holding the manifest.
	ManifestDir string `json:"manifestDir,omitempty" yaml:"manifestDir,omitempty"`
}

// Settings converts the origin config to resolver settings.
func (o OriginConfig) Settings() assets.Settings {
	return assets.Settings{
		AssetsDirectory:   o.AssetsDir,
		ManifestName:      o.ManifestName,
		ManifestDirectory: o.ManifestDir,
	}
}

// ParentConfig adds theme inheritance to the parent origin.
type ParentConfig struct {
	OriginConfig `yaml:",inline"`

	// Inherit resolves parent files through the active theme.
	Inherit bool `json:"inherit,omitempty" yaml:"inherit,omitempty"`
}

// ExtensionConfig adds the entry point to the extension origin.
type ExtensionConfig struct {
	OriginConfig `yaml:",inline"`

	// EntryPoint is the extension's main file.
	EntryPoint string `json:"entryPoint,omitempty" yaml:"entryPoint,omitempty"`
}

// OriginsConfig holds the settings of every origin.
type OriginsConfig struct {
	Parent    ParentConfig    `json:"parent" yaml:"parent"`
	Child     OriginConfig    `json:"child" yaml:"child"`
	Extension ExtensionConfig `json:"extension" yaml:"extension"`
}

// StorageConfig selects the manifest storage.
type StorageConfig struct {
	// Driver is "os" or "s3".
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`

	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config configures manifest reads from S3.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`

	// Timeout bounds each request, as a Go duration ("5s"). Default: 10s.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// RequestTimeout returns Timeout parsed, or zero when unset or invalid.
func (s S3Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Metrics exposes /metrics.
	Metrics bool `json:"metrics" yaml:"metrics"`

	// CacheControl is "production" or "none".
	CacheControl string `json:"cacheControl,omitempty" yaml:"cacheControl,omitempty"`

	// ManifestDirs restricts the manifest_dir query parameter. Empty allows any.
	ManifestDirs []string `json:"manifestDirs,omitempty" yaml:"manifestDirs,omitempty"`

	// MaxManifests caps the manifests each origin caches.
	MaxManifests int `json:"maxManifests,omitempty" yaml:"maxManifests,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// SlogLevel returns the configured level. Unknown levels map to info.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Origins: OriginsConfig{
			Parent:    ParentConfig{OriginConfig: defaultOrigin()},
			Child:     defaultOrigin(),
			Extension: ExtensionConfig{OriginConfig: defaultOrigin()},
		},
		Storage: StorageConfig{
			Driver: DriverOS,
			S3:     S3Config{Region: DefaultRegion},
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			Metrics:      true,
			CacheControl: "production",
			MaxManifests: DefaultMaxManifests,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultOrigin() OriginConfig {
	return OriginConfig{
		AssetsDir:    assets.DefaultAssetsDirectory,
		ManifestName: assets.DefaultManifestName,
	}
}

// Load reads configuration from the specified directory. It looks for
// themeassets.json, then themeassets.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E141").
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir).
		WithSuggestion("Run 'themeassets init' to create one")
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension: .yaml/.yml is YAML, anything else is JSON with comments.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithPath(path).
				WithSuggestion("Run 'themeassets init' to create one")
		}
		return nil, errors.New("E120").WithPath(path).Wrap(err)
	}

	cfg := New()
	if err := cfg.decode(path, data); err != nil {
		return nil, errors.New("E120").
			WithPath(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.expandVariables()
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, c)
	}
	return json.Unmarshal(jsonc.ToJSON(data), c)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// SaveTo writes the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").WithPath(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// expandVariables expands ${VAR} references in path settings.
func (c *Config) expandVariables() {
	c.Host.ThemesDir = os.ExpandEnv(c.Host.ThemesDir)
	c.Host.ExtensionsDir = os.ExpandEnv(c.Host.ExtensionsDir)
	c.Origins.Extension.EntryPoint = os.ExpandEnv(c.Origins.Extension.EntryPoint)
	c.Storage.S3.Bucket = os.ExpandEnv(c.Storage.S3.Bucket)
	c.Storage.S3.Endpoint = os.ExpandEnv(c.Storage.S3.Endpoint)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	for _, o := range []*OriginConfig{
		&c.Origins.Parent.OriginConfig,
		&c.Origins.Child,
		&c.Origins.Extension.OriginConfig,
	} {
		if o.AssetsDir == "" {
			o.AssetsDir = assets.DefaultAssetsDirectory
		}
		if o.ManifestName == "" {
			o.ManifestName = assets.DefaultManifestName
		}
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverOS
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.S3.Region == "" {
		c.Storage.S3.Region = DefaultRegion
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.CacheControl == "" {
		c.Server.CacheControl = "production"
	}
	if c.Server.MaxManifests == 0 {
		c.Server.MaxManifests = DefaultMaxManifests
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var merr *multierror.Error

	if c.Host.ThemesDir == "" {
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "host.themesDir is required"))
	}
	if c.Host.ThemesURL == "" {
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "host.themesURL is required"))
	}
	if c.Host.ParentTheme == "" {
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "host.parentTheme is required"))
	}
	if c.Origins.Extension.EntryPoint != "" && c.Host.ExtensionsURL == "" {
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "host.extensionsURL is required when origins.extension.entryPoint is set"))
	}

	switch c.Storage.Driver {
	case DriverOS:
	case DriverS3:
		if c.Storage.S3.Bucket == "" {
			merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "storage.s3.bucket is required with the s3 driver"))
		}
		if t := c.Storage.S3.Timeout; t != "" && c.Storage.S3.RequestTimeout() <= 0 {
			merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "storage.s3.timeout %q is not a positive duration", t))
		}
	default:
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "storage.driver %q is not one of os, s3", c.Storage.Driver))
	}

	switch c.Server.CacheControl {
	case "production", "none":
	default:
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "server.cacheControl %q is not one of production, none", c.Server.CacheControl))
	}
	if c.Server.MaxManifests < 0 {
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "server.maxManifests must not be negative"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		merr = multierror.Append(merr, errors.Newf(errors.CategoryConfig, "log.format %q is not one of text, json", c.Log.Format))
	}

	if err := merr.ErrorOrNil(); err != nil {
		return errors.New("E121").WithPath(c.configPath).Wrap(err)
	}
	return nil
}

// ThemesPath returns the absolute themes directory. Relative paths are
// resolved against the config file's directory.
func (c *Config) ThemesPath() string {
	return c.resolve(c.Host.ThemesDir)
}

// ExtensionsPath returns the absolute extensions directory.
func (c *Config) ExtensionsPath() string {
	return c.resolve(c.Host.ExtensionsDir)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// LocalHost returns the host layout described by the config.
func (c *Config) LocalHost() host.LocalConfig {
	return host.LocalConfig{
		ThemesDir:     c.ThemesPath(),
		ThemesURL:     c.Host.ThemesURL,
		ParentTheme:   c.Host.ParentTheme,
		ChildTheme:    c.Host.ChildTheme,
		ExtensionsDir: c.ExtensionsPath(),
		ExtensionsURL: c.Host.ExtensionsURL,
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindRoot walks up from startDir to the first directory holding a config file.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'themeassets init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the working directory or
// the nearest parent holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
