package domain

import "time"

// Well-known remote endpoints.
const (
	// DefaultMetadataURL lists every published loader release.
	DefaultMetadataURL = "https://maven.neoforged.net/api/maven/versions/releases/net%2Fneoforged%2Fneoforge"

	// DefaultRepositoryURL is the maven repository hosting installer packages.
	DefaultRepositoryURL = "https://maven.neoforged.net/releases/"

	// DefaultVersionManifestURL lists the upstream game versions.
	DefaultVersionManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
)

// Config is the resolved runtime configuration.
type Config struct {
	// GameDir is the game directory installations are written into.
	GameDir string
	// JavaPath is the java executable used to run installer packages.
	JavaPath string
	// MetadataURL is the loader release metadata endpoint.
	MetadataURL string
	// Repositories are maven repository bases tried for installer packages.
	Repositories []string
	// VersionManifestURL is the upstream game version manifest.
	VersionManifestURL string
	// CacheDir holds downloaded artifacts.
	CacheDir string
	// HTTPTimeout bounds a single HTTP request.
	HTTPTimeout time.Duration
	// Retries is the number of retries for a failed download.
	Retries int
	// MetadataTTL is how long fetched metadata stays in the in-memory cache.
	MetadataTTL time.Duration
	// JSONLogs switches the logger to JSON output.
	JSONLogs bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		GameDir:            DefaultGameDir(),
		JavaPath:           "java",
		MetadataURL:        DefaultMetadataURL,
		Repositories:       []string{DefaultRepositoryURL},
		VersionManifestURL: DefaultVersionManifestURL,
		CacheDir:           DefaultCachePath(),
		HTTPTimeout:        30 * time.Second,
		Retries:            3,
		MetadataTTL:        10 * time.Minute,
	}
}
