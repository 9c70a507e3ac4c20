package neoforge

import (
	"strings"

	"go.trai.ch/anvil/internal/core/domain"
)

const (
	groupPath   = "net/neoforged"
	artifactID  = "neoforge"
	classifier  = "installer"
	packageType = "jar"
)

// Source locates loader metadata and installer packages.
type Source interface {
	// MetadataURL returns the endpoint listing all published loader releases.
	MetadataURL() string
	// InstallerURLs returns every location the installer of v can be fetched from.
	InstallerURLs(v domain.LoaderVersion) []string
}

// MirrorSource serves metadata from one endpoint and installers from one or
// more repositories holding identical artifacts.
type MirrorSource struct {
	metadataURL  string
	repositories []string
}

// NewMirrorSource creates a MirrorSource. Repository URLs are bases such as
// "https://maven.neoforged.net/releases/".
func NewMirrorSource(metadataURL string, repositories ...string) MirrorSource {
	return MirrorSource{
		metadataURL:  metadataURL,
		repositories: repositories,
	}
}

// DefaultSource returns the official NeoForged endpoints.
func DefaultSource() MirrorSource {
	return NewMirrorSource(domain.DefaultMetadataURL, domain.DefaultRepositoryURL)
}

// MetadataURL implements Source.
func (s MirrorSource) MetadataURL() string {
	return s.metadataURL
}

// InstallerURLs implements Source.
func (s MirrorSource) InstallerURLs(v domain.LoaderVersion) []string {
	path := InstallerPath(v)
	urls := make([]string, 0, len(s.repositories))
	for _, repo := range s.repositories {
		urls = append(urls, strings.TrimSuffix(repo, "/")+"/"+path)
	}
	return urls
}

// InstallerPath returns the repository path of the installer package of v.
func InstallerPath(v domain.LoaderVersion) string {
	raw := v.Raw()
	return groupPath + "/" + artifactID + "/" + raw + "/" +
		artifactID + "-" + raw + "-" + classifier + "." + packageType
}
