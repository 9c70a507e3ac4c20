// Package neoforge resolves NeoForge loader versions and installs them into a
// game directory, falling back to a version derived from vanilla when the
// installer route fails.
package neoforge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports"
	"go.trai.ch/anvil/internal/engine/tasks"
	"go.trai.ch/zerr"
)

// MainClass is the entry point of version definitions derived from vanilla.
const MainClass = "net.minecraft.client.Minecraft"

// PackageTransformer installs an installer package into a game directory.
type PackageTransformer interface {
	Transform(ctx context.Context, pkg []byte, targetDir string) (domain.InstallResult, error)
}

// Provider installs NeoForge versions.
type Provider struct {
	source      Source
	downloader  ports.Downloader
	store       ports.VersionStore
	upstream    ports.UpstreamProvider
	transformer PackageTransformer
	logger      ports.Logger
	tracer      ports.Tracer
}

// NewProvider creates a Provider. A nil source means DefaultSource.
func NewProvider(
	source Source,
	downloader ports.Downloader,
	store ports.VersionStore,
	upstream ports.UpstreamProvider,
	transformer PackageTransformer,
	logger ports.Logger,
	tracer ports.Tracer,
) *Provider {
	if source == nil {
		source = DefaultSource()
	}
	return &Provider{
		source:      source,
		downloader:  downloader,
		store:       store,
		upstream:    upstream,
		transformer: transformer,
		logger:      logger,
		tracer:      tracer,
	}
}

type metadata struct {
	Versions []string `json:"versions"`
}

// Catalog fetches the published loader releases.
func (p *Provider) Catalog(ctx context.Context) (*domain.Catalog, error) {
	url := p.source.MetadataURL()
	body, err := p.downloader.Fetch(ctx, url, domain.PoolVersionMeta)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrMetadataRequestFailed, err), "url", url)
	}

	var meta metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrMetadataParseFailed, err), "url", url)
	}

	versions := make([]domain.LoaderVersion, 0, len(meta.Versions))
	for _, raw := range meta.Versions {
		v, err := domain.ParseLoaderVersion(raw)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrMetadataParseFailed, err), "url", url)
		}
		versions = append(versions, v)
	}
	return domain.NewCatalog(versions)
}

// Resolve checks that name is a published loader version.
func (p *Provider) Resolve(ctx context.Context, name string) (domain.LoaderVersion, error) {
	requested, err := resolve(name)
	if err != nil {
		return domain.LoaderVersion{}, err
	}

	catalog, err := p.Catalog(ctx)
	if err != nil {
		return domain.LoaderVersion{}, err
	}
	found, ok := catalog.Lookup(requested.Raw())
	if !ok {
		return domain.LoaderVersion{}, zerr.With(zerr.Wrap(domain.ErrVersionNotFound, "unknown release"), "version", name)
	}
	return found, nil
}

// GameVersionJSON installs the version definition of the loader version name
// into dir and returns the name of the installed version.
func (p *Provider) GameVersionJSON(ctx context.Context, dir, name string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "neoforge.version_json", ports.WithAttribute("version", name))
	defer span.End()

	v, err := p.Resolve(ctx, name)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	installed, err := tasks.Fallback(ctx, p.fromInstaller(dir, v, p.downloadInstaller(v)), p.fromUpstream(dir, v))
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttribute("installed", installed)
	return installed, nil
}

// GameJar installs the game jar of the loader version name into dir.
func (p *Provider) GameJar(ctx context.Context, dir, name string) (string, error) {
	v, err := resolve(name)
	if err != nil {
		return "", err
	}
	return p.gameJar(ctx, dir, v, name)
}

// Install installs the version definition and the game jar of name into dir
// and returns the installed version name. The installer package and the
// vanilla game jar are fetched concurrently; a failed installer download
// leaves the vanilla route to produce the definition.
func (p *Provider) Install(ctx context.Context, dir, name string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "neoforge.install", ports.WithAttribute("version", name))
	defer span.End()

	v, err := p.Resolve(ctx, name)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	var installerErr error
	var fetchInstaller tasks.Task[string] = func(ctx context.Context) (string, error) {
		path, err := p.downloadInstaller(v)(ctx)
		if err != nil {
			installerErr = err
			return "", nil
		}
		return path, nil
	}
	fetched, err := tasks.FanOut(ctx, 0, fetchInstaller, p.vanillaJar(dir, v))
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	installerPath, vanilla := fetched[0], fetched[1]

	var installed string
	err = tasks.Chain(ctx,
		func(ctx context.Context) (err error) {
			var prepared tasks.Task[string] = func(context.Context) (string, error) {
				return installerPath, installerErr
			}
			installed, err = tasks.Fallback(ctx, p.fromInstaller(dir, v, prepared), p.fromUpstream(dir, v))
			return err
		},
		func(context.Context) error {
			return PurgeMetaInf(vanilla, p.store.JarPath(dir, installed))
		},
	)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttribute("installed", installed)
	return installed, nil
}

func (p *Provider) gameJar(ctx context.Context, dir string, v domain.LoaderVersion, target string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "neoforge.game_jar", ports.WithAttribute("version", target))
	defer span.End()

	jar, err := p.vanillaJar(dir, v)(ctx)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	targetJar := p.store.JarPath(dir, target)
	if err := PurgeMetaInf(jar, targetJar); err != nil {
		span.RecordError(err)
		return "", err
	}
	return targetJar, nil
}

// vanillaJar installs the game version v targets and returns its jar.
func (p *Provider) vanillaJar(dir string, v domain.LoaderVersion) tasks.Task[string] {
	var baseVersion tasks.Task[string] = func(ctx context.Context) (string, error) {
		return p.upstream.GameVersionJSON(ctx, dir, v.BaseVersion())
	}
	return tasks.Then(baseVersion, func(ctx context.Context, base string) (string, error) {
		return p.upstream.GameJar(ctx, dir, base)
	})
}

func (p *Provider) fromInstaller(dir string, v domain.LoaderVersion, fetch tasks.Task[string]) tasks.Task[string] {
	return tasks.Then(fetch, func(ctx context.Context, path string) (string, error) {
		pkg, err := os.ReadFile(path) //nolint:gosec // path comes from the download cache
		if err != nil {
			return "", zerr.With(errors.Join(domain.ErrPackageReadFailed, err), "path", path)
		}
		result, err := p.transformer.Transform(ctx, pkg, dir)
		if err != nil {
			p.logger.Warn(fmt.Sprintf("installer for %s failed, deriving from %s", v.VersionName(), v.BaseVersion()))
			return "", err
		}
		return result.VersionName(), nil
	})
}

func (p *Provider) downloadInstaller(v domain.LoaderVersion) tasks.Task[string] {
	return func(ctx context.Context) (string, error) {
		urls := p.source.InstallerURLs(v)
		mirrors := make([]tasks.Task[string], 0, len(urls))
		for _, url := range urls {
			mirrors = append(mirrors, func(ctx context.Context) (string, error) {
				return p.downloader.Download(ctx, url, domain.PoolInstaller)
			})
		}
		return tasks.Any(ctx, mirrors...)
	}
}

func (p *Provider) fromUpstream(dir string, v domain.LoaderVersion) tasks.Task[string] {
	return func(ctx context.Context) (string, error) {
		base, err := p.upstream.GameVersionJSON(ctx, dir, v.BaseVersion())
		if err != nil {
			return "", err
		}
		definition, err := p.store.Read(dir, base)
		if err != nil {
			return "", err
		}
		derived, err := DeriveVersionJSON(definition, v.VersionName())
		if err != nil {
			return "", err
		}
		return p.store.Materialize(ctx, dir, derived)
	}
}

// DeriveVersionJSON turns a vanilla version definition into one for the loader
// version called name: download and asset references are dropped and the
// vanilla client entry point is launched directly.
func DeriveVersionJSON(definition []byte, name string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(definition, &fields); err != nil || fields == nil {
		return nil, zerr.With(errors.Join(domain.ErrVersionJSONParseFailed, err), "version", name)
	}

	delete(fields, "downloads")
	delete(fields, "assets")
	delete(fields, "assetIndex")

	id, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}
	mainClass, err := json.Marshal(MainClass)
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	fields["mainClass"] = mainClass
	return json.Marshal(fields)
}

func resolve(name string) (domain.LoaderVersion, error) {
	v, ok, err := domain.ResolveLoaderVersion(name)
	if err != nil {
		return domain.LoaderVersion{}, err
	}
	if !ok {
		return domain.LoaderVersion{}, zerr.With(zerr.Wrap(domain.ErrNotLoaderVersion, "unrecognized version name"), "version", name)
	}
	return v, nil
}
