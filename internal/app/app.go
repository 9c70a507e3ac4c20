// Package app implements the application layer for anvil.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/anvil/internal/adapters/detector"
	"go.trai.ch/anvil/internal/adapters/download"
	"go.trai.ch/anvil/internal/adapters/java"
	"go.trai.ch/anvil/internal/adapters/mojang"
	"go.trai.ch/anvil/internal/adapters/telemetry"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports"
	"go.trai.ch/anvil/internal/engine/classpatch"
	"go.trai.ch/anvil/internal/engine/installer"
	"go.trai.ch/anvil/internal/engine/neoforge"
	"go.trai.ch/zerr"
)

// Version aliases accepted by Install.
const (
	AliasLatest      = "latest"
	AliasRecommended = "recommended"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	store        ports.VersionStore
	tracer       ports.Tracer
	locks        *dirLocks

	downloader       ports.Downloader
	runner           ports.InstallerRunner
	upstream         ports.UpstreamProvider
	detectFormat     func() detector.LogFormat
	disableTelemetry bool
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, log ports.Logger, store ports.VersionStore, tracer ports.Tracer) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		store:        store,
		tracer:       tracer,
		locks:        newDirLocks(),
		detectFormat: detector.DetectEnvironment,
	}
}

// WithDownloader replaces the HTTP downloader built from the configuration.
func (a *App) WithDownloader(d ports.Downloader) *App {
	a.downloader = d
	return a
}

// WithRunner replaces the java runner built from the configuration.
func (a *App) WithRunner(r ports.InstallerRunner) *App {
	a.runner = r
	return a
}

// WithUpstream replaces the vanilla upstream provider.
func (a *App) WithUpstream(u ports.UpstreamProvider) *App {
	a.upstream = u
	return a
}

// WithFormatDetector replaces terminal and CI detection of the log format.
func (a *App) WithFormatDetector(detect func() detector.LogFormat) *App {
	a.detectFormat = detect
	return a
}

// WithDisableTelemetry keeps the global tracer provider untouched.
// This is primarily used for testing.
func (a *App) WithDisableTelemetry() *App {
	a.disableTelemetry = true
	return a
}

// Options are the settings shared by every command.
type Options struct {
	// ConfigPath is the optional YAML configuration file.
	ConfigPath string
	// GameDir overrides the configured game directory.
	GameDir string
	// Java overrides the configured java executable.
	Java string
	// JSON switches the logger to JSON output.
	JSON bool
	// LogFormat is "auto", "pretty" or "json". It is ignored when JSON is set.
	LogFormat string
}

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	Options
	// Version is a loader version name ("neoforge-21.1.5"), a raw release
	// ("21.1.5") or one of the aliases "latest" and "recommended".
	Version string
	// Base restricts the aliases to releases targeting one game version.
	Base string
}

// Install installs a loader version into the game directory and returns the
// installed version name. Installs into the same directory are serialized.
func (a *App) Install(ctx context.Context, opts InstallOptions) (string, error) {
	if strings.TrimSpace(opts.Version) == "" {
		return "", domain.ErrNoVersionSpecified
	}

	cfg, shutdown, err := a.prepare(opts.Options)
	if err != nil {
		return "", err
	}
	defer func() { _ = shutdown(ctx) }()

	provider, err := a.provider(cfg)
	if err != nil {
		return "", err
	}

	name, err := a.versionName(ctx, provider, opts.Version, opts.Base)
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrInstallFailed, err), "version", opts.Version)
	}

	dir, err := filepath.Abs(cfg.GameDir)
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrInstallFailed, err), "dir", cfg.GameDir)
	}
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", zerr.With(errors.Join(domain.ErrInstallFailed, err), "dir", dir)
	}

	unlock := a.locks.lock(dir)
	defer unlock()

	a.logger.Info(fmt.Sprintf("installing %s into %s", name, dir))
	installed, err := provider.Install(ctx, dir, name)
	if err != nil {
		failure := zerr.With(errors.Join(domain.ErrInstallFailed, err), "version", name)
		return "", zerr.With(failure, "dir", dir)
	}
	a.logger.Info(fmt.Sprintf("installed %s", installed))
	return installed, nil
}

// versionName turns user input into a loader version name.
func (a *App) versionName(ctx context.Context, provider *neoforge.Provider, input, base string) (string, error) {
	input = strings.TrimSpace(input)
	switch input {
	case AliasLatest, AliasRecommended:
		catalog, err := provider.Catalog(ctx)
		if err != nil {
			return "", err
		}
		v, ok := pick(catalog, input, base)
		if !ok {
			return "", zerr.With(zerr.Wrap(domain.ErrVersionNotFound, "no "+input+" release"), "base", base)
		}
		return v.VersionName(), nil
	}

	if strings.HasPrefix(input, domain.LoaderVersionPrefix) {
		return input, nil
	}
	return domain.LoaderVersionPrefix + input, nil
}

func pick(c *domain.Catalog, alias, base string) (domain.LoaderVersion, bool) {
	switch {
	case alias == AliasLatest && base == "":
		return c.Latest(), true
	case alias == AliasLatest:
		return c.LatestFor(base)
	case base == "":
		return c.Recommended()
	default:
		return c.RecommendedFor(base)
	}
}

// VersionsOptions configuration for the Versions method.
type VersionsOptions struct {
	Options
	// Base lists every release targeting one game version instead of the summary.
	Base string
}

// BaseSummary describes the releases targeting one game version.
type BaseSummary struct {
	Base        string
	Count       int
	Latest      domain.LoaderVersion
	Recommended domain.LoaderVersion
}

// VersionsReport is the result of Versions.
type VersionsReport struct {
	Latest      domain.LoaderVersion
	Recommended domain.LoaderVersion
	// Bases summarizes every game version, newest first. Empty when a base was requested.
	Bases []BaseSummary
	// Releases lists the requested base's releases, newest first.
	Releases []domain.LoaderVersion
}

// Versions lists the published loader releases.
func (a *App) Versions(ctx context.Context, opts VersionsOptions) (VersionsReport, error) {
	cfg, shutdown, err := a.prepare(opts.Options)
	if err != nil {
		return VersionsReport{}, err
	}
	defer func() { _ = shutdown(ctx) }()

	provider, err := a.provider(cfg)
	if err != nil {
		return VersionsReport{}, err
	}
	catalog, err := provider.Catalog(ctx)
	if err != nil {
		return VersionsReport{}, err
	}

	report := VersionsReport{Latest: catalog.Latest()}
	report.Recommended, _ = catalog.Recommended()

	if opts.Base != "" {
		releases := catalog.Versions(opts.Base)
		if len(releases) == 0 {
			return VersionsReport{}, zerr.With(zerr.Wrap(domain.ErrVersionNotFound, "no releases for base"), "base", opts.Base)
		}
		for i := len(releases) - 1; i >= 0; i-- {
			report.Releases = append(report.Releases, releases[i])
		}
		return report, nil
	}

	bases := catalog.Bases()
	for i := len(bases) - 1; i >= 0; i-- {
		base := bases[i]
		latest, _ := catalog.LatestFor(base)
		recommended, _ := catalog.RecommendedFor(base)
		report.Bases = append(report.Bases, BaseSummary{
			Base:        base,
			Count:       len(catalog.Versions(base)),
			Latest:      latest,
			Recommended: recommended,
		})
	}
	return report, nil
}

// PatchOptions configuration for the Patch method.
type PatchOptions struct {
	// Input is the installer entry point class file.
	Input string
	// Output is where the patched class is written. Empty means Input.
	Output string
	// ServerMeansClient redirects the server action to the client action.
	ServerMeansClient bool
}

// Patch rewrites a single installer class file in place of running a full install.
func (a *App) Patch(_ context.Context, opts PatchOptions) (classpatch.Report, error) {
	//nolint:gosec // the class file is chosen by the user
	class, err := os.ReadFile(opts.Input)
	if err != nil {
		return classpatch.Report{}, zerr.With(errors.Join(domain.ErrPackageReadFailed, err), "path", opts.Input)
	}

	patched, report, err := classpatch.Patch(class, classpatch.Options{ServerMeansClient: opts.ServerMeansClient})
	if err != nil {
		return classpatch.Report{}, zerr.With(err, "path", opts.Input)
	}
	for _, edit := range report.Edits {
		a.logger.Info(fmt.Sprintf("applied %s in %s at %d", edit.Rule, edit.Method, edit.Offset))
	}
	for _, missed := range report.Missed {
		a.logger.Warn(fmt.Sprintf("pattern %s not found", missed))
	}

	output := opts.Output
	if output == "" {
		output = opts.Input
	}
	if err := os.WriteFile(output, patched, domain.FilePerm); err != nil {
		return classpatch.Report{}, zerr.With(errors.Join(domain.ErrPackageWriteFailed, err), "path", output)
	}
	return report, nil
}

// Clean removes the download cache.
func (a *App) Clean(_ context.Context, opts Options) error {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("removing download cache %s...", cfg.CacheDir))
	if err := os.RemoveAll(cfg.CacheDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove download cache"), "path", cfg.CacheDir)
	}
	a.logger.Info("removed download cache")
	return nil
}

func (a *App) loadConfig(opts Options) (domain.Config, error) {
	cfg, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return domain.Config{}, zerr.Wrap(err, "failed to load configuration")
	}
	if opts.GameDir != "" {
		cfg.GameDir = opts.GameDir
	}
	if opts.Java != "" {
		cfg.JavaPath = opts.Java
	}
	cfg.JSONLogs = a.logFormat(opts, cfg) == detector.FormatJSON
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(cfg.JSONLogs)
	}
	return cfg, nil
}

// logFormat resolves the log format: --json first, then --log-format, then
// the configured jsonLogs, then the environment.
func (a *App) logFormat(opts Options, cfg domain.Config) detector.LogFormat {
	if opts.JSON {
		return detector.FormatJSON
	}
	if format := detector.ResolveFormat(detector.FormatAuto, opts.LogFormat); format != detector.FormatAuto {
		return format
	}
	if cfg.JSONLogs {
		return detector.FormatJSON
	}
	return a.detectFormat()
}

// prepare loads the configuration and routes finished spans to the logger.
func (a *App) prepare(opts Options) (domain.Config, func(context.Context) error, error) {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return domain.Config{}, nil, err
	}
	if a.disableTelemetry {
		return cfg, func(context.Context) error { return nil }, nil
	}
	return cfg, telemetry.Setup(telemetry.NewBridge(a.logger)), nil
}

// provider builds the per-invocation install pipeline from cfg.
func (a *App) provider(cfg domain.Config) (*neoforge.Provider, error) {
	downloader := a.downloader
	if downloader == nil {
		client, err := download.New(download.Options{
			CacheDir:    cfg.CacheDir,
			Timeout:     cfg.HTTPTimeout,
			Retries:     cfg.Retries,
			MetadataTTL: cfg.MetadataTTL,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		downloader = client
	}

	runner := a.runner
	if runner == nil {
		runner = java.NewRunner(cfg.JavaPath, a.logger)
	}

	upstream := a.upstream
	if upstream == nil {
		upstream = mojang.NewProvider(downloader, a.store, a.logger, cfg.VersionManifestURL)
	}

	transformer := installer.NewTransformer(runner, a.store, a.logger, a.tracer)
	source := neoforge.NewMirrorSource(cfg.MetadataURL, cfg.Repositories...)
	return neoforge.NewProvider(source, downloader, a.store, upstream, transformer, a.logger, a.tracer), nil
}
