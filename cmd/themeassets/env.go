package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/themeassets/internal/config"
	"github.com/vango-dev/themeassets/pkg/assets"
	"github.com/vango-dev/themeassets/pkg/host"
	"github.com/vango-dev/themeassets/pkg/registry"
	"github.com/vango-dev/themeassets/pkg/telemetry"
)

// env is everything a command needs to resolve assets.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	files    assets.Files
	registry *registry.Registry
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
}

// newEnv wires storage, host, telemetry and the registry from cfg.
func newEnv(cfg *config.Config, logw io.Writer) (*env, error) {
	logger := newLogger(cfg.Log, logw)

	files, err := newFiles(cfg)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(promReg))
	tracer := telemetry.NewTracer()

	h := host.NewLocal(cfg.LocalHost(), files, logger)
	reg := registry.New(h,
		registry.WithFiles(files),
		registry.WithLogger(logger),
		registry.WithObserver(assets.Observers{metrics, tracer}),
		registry.WithParentInherit(cfg.Origins.Parent.Inherit),
		registry.WithMaxManifests(cfg.Server.MaxManifests),
		registry.WithSettings(registry.KindParent, cfg.Origins.Parent.Settings()),
		registry.WithSettings(registry.KindChild, cfg.Origins.Child.Settings()),
		registry.WithSettings(registry.KindExtension, cfg.Origins.Extension.Settings()),
	)
	if entry := cfg.Origins.Extension.EntryPoint; entry != "" {
		reg.SetExtensionEntryPoint(entry)
	}

	logger.Debug("registry ready",
		"storage", cfg.Storage.Driver,
		"themes", cfg.ThemesPath(),
		"parent", cfg.Host.ParentTheme,
		"child", cfg.Host.ChildTheme,
	)

	return &env{
		cfg:      cfg,
		logger:   logger,
		files:    files,
		registry: reg,
		metrics:  metrics,
		gatherer: promReg,
	}, nil
}

// newFiles returns the manifest storage selected by the config.
func newFiles(cfg *config.Config) (assets.Files, error) {
	switch cfg.Storage.Driver {
	case config.DriverS3:
		s3cfg := cfg.Storage.S3
		client := host.NewS3Client(host.S3Options{
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
		})
		root := commonDir(cfg.ThemesPath(), cfg.ExtensionsPath())
		files := host.NewS3Files(client, s3cfg.Bucket, s3cfg.Prefix, root)
		if d := s3cfg.RequestTimeout(); d > 0 {
			files.WithTimeout(d)
		}
		return files, nil
	default:
		return assets.OSFiles{}, nil
	}
}

// commonDir returns the deepest directory containing every non-empty dir.
func commonDir(dirs ...string) string {
	var common []string
	first := true
	for _, d := range dirs {
		if d == "" {
			continue
		}
		parts := strings.Split(filepath.ToSlash(filepath.Clean(d)), "/")
		if first {
			common, first = parts, false
			continue
		}
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 1 && common[0] == "" {
		return "/"
	}
	return strings.Join(common, "/")
}
