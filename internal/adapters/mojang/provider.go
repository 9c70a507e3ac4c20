// Package mojang installs vanilla game versions from the upstream version manifest.
package mojang

import (
	"context"
	"crypto/sha1" //nolint:gosec // upstream publishes sha1 digests
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Provider implements ports.UpstreamProvider.
type Provider struct {
	downloader  ports.Downloader
	store       ports.VersionStore
	logger      ports.Logger
	manifestURL string
}

// NewProvider creates a Provider reading the version manifest at manifestURL.
// An empty manifestURL means domain.DefaultVersionManifestURL.
func NewProvider(downloader ports.Downloader, store ports.VersionStore, logger ports.Logger, manifestURL string) *Provider {
	if manifestURL == "" {
		manifestURL = domain.DefaultVersionManifestURL
	}
	return &Provider{
		downloader:  downloader,
		store:       store,
		logger:      logger,
		manifestURL: manifestURL,
	}
}

type versionManifest struct {
	Versions []manifestEntry `json:"versions"`
}

type manifestEntry struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
}

type artifact struct {
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
}

type versionDownloads struct {
	Downloads struct {
		Client *artifact `json:"client"`
	} `json:"downloads"`
}

// GameVersionJSON installs the definition of id into gameDir and returns the
// installed version name.
func (p *Provider) GameVersionJSON(ctx context.Context, gameDir, id string) (string, error) {
	entry, err := p.lookup(ctx, id)
	if err != nil {
		return "", err
	}

	definition, err := p.downloader.Fetch(ctx, entry.URL, domain.PoolGameJSON)
	if err != nil {
		return "", zerr.With(err, "version", id)
	}
	if err := verify(definition, entry.SHA1); err != nil {
		return "", zerr.With(zerr.With(err, "url", entry.URL), "version", id)
	}

	name, err := p.store.Materialize(ctx, gameDir, definition)
	if err != nil {
		return "", err
	}
	p.logger.Info(fmt.Sprintf("installed game version %s", name))
	return name, nil
}

// GameJar installs the client jar of id next to its definition and returns the
// jar path. The definition is installed first when it is missing.
func (p *Provider) GameJar(ctx context.Context, gameDir, id string) (string, error) {
	if !p.store.Exists(gameDir, id) {
		if _, err := p.GameVersionJSON(ctx, gameDir, id); err != nil {
			return "", err
		}
	}
	definition, err := p.store.Read(gameDir, id)
	if err != nil {
		return "", err
	}

	var dl versionDownloads
	if err := json.Unmarshal(definition, &dl); err != nil {
		return "", zerr.With(errors.Join(domain.ErrVersionJSONParseFailed, err), "version", id)
	}
	client := dl.Downloads.Client
	if client == nil || client.URL == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrVersionJSONParseFailed, "no client download"), "version", id)
	}

	cached, err := p.downloader.Download(ctx, client.URL, domain.PoolGameJar)
	if err != nil {
		return "", zerr.With(err, "version", id)
	}
	if err := verifyFile(cached, client.SHA1); err != nil {
		_ = os.Remove(cached)
		return "", zerr.With(zerr.With(err, "url", client.URL), "version", id)
	}

	target := p.store.JarPath(gameDir, id)
	if err := copyFile(cached, target); err != nil {
		return "", zerr.With(err, "path", target)
	}
	return target, nil
}

func (p *Provider) lookup(ctx context.Context, id string) (manifestEntry, error) {
	body, err := p.downloader.Fetch(ctx, p.manifestURL, domain.PoolGameManifest)
	if err != nil {
		return manifestEntry{}, err
	}

	var manifest versionManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return manifestEntry{}, zerr.With(errors.Join(domain.ErrMetadataParseFailed, err), "url", p.manifestURL)
	}
	for _, v := range manifest.Versions {
		if v.ID == id {
			return v, nil
		}
	}
	return manifestEntry{}, zerr.With(zerr.Wrap(domain.ErrUpstreamVersionNotFound, id), "version", id)
}

func verify(data []byte, want string) error {
	if want == "" {
		return nil
	}
	sum := sha1.Sum(data) //nolint:gosec // upstream publishes sha1 digests
	return compare(hex.EncodeToString(sum[:]), want)
}

func verifyFile(path, want string) error {
	if want == "" {
		return nil
	}
	//nolint:gosec // path comes from the download cache
	f, err := os.Open(path)
	if err != nil {
		return errors.Join(domain.ErrDownloadFailed, err)
	}
	defer func() { _ = f.Close() }()

	h := sha1.New() //nolint:gosec // upstream publishes sha1 digests
	if _, err := io.Copy(h, f); err != nil {
		return errors.Join(domain.ErrDownloadFailed, err)
	}
	return compare(hex.EncodeToString(h.Sum(nil)), want)
}

func compare(got, want string) error {
	if got == want {
		return nil
	}
	err := zerr.Wrap(domain.ErrDownloadFailed, "checksum mismatch")
	return zerr.With(zerr.With(err, "want", want), "got", got)
}

// copyFile replaces target with a copy of src.
func copyFile(src, target string) (err error) {
	//nolint:gosec // path comes from the download cache
	in, err := os.Open(src)
	if err != nil {
		return errors.Join(domain.ErrVersionStoreFailed, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return errors.Join(domain.ErrVersionStoreFailed, err)
	}
	tmp := target + ".tmp"
	//nolint:gosec // target is inside the game directory
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return errors.Join(domain.ErrVersionStoreFailed, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Join(domain.ErrVersionStoreFailed, err)
	}
	if err := out.Close(); err != nil {
		return errors.Join(domain.ErrVersionStoreFailed, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return errors.Join(domain.ErrVersionStoreFailed, err)
	}
	return nil
}
