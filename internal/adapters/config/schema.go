package config

import (
	"time"

	"go.trai.ch/anvil/internal/core/domain"
)

// File is the structure of the anvil.yaml configuration file. Every field can
// also be set through an ANVIL_ prefixed environment variable.
type File struct {
	GameDir            string        `yaml:"gameDir" env:"GAME_DIR"`
	Java               string        `yaml:"java" env:"JAVA"`
	MetadataURL        string        `yaml:"metadataURL" env:"METADATA_URL"`
	Repositories       []string      `yaml:"repositories" env:"REPOSITORIES" envSeparator:","`
	VersionManifestURL string        `yaml:"versionManifestURL" env:"VERSION_MANIFEST_URL"`
	CacheDir           string        `yaml:"cacheDir" env:"CACHE_DIR"`
	HTTPTimeout        time.Duration `yaml:"httpTimeout" env:"HTTP_TIMEOUT"`
	Retries            int           `yaml:"retries" env:"RETRIES"`
	MetadataTTL        time.Duration `yaml:"metadataTTL" env:"METADATA_TTL"`
	JSONLogs           bool          `yaml:"jsonLogs" env:"JSON_LOGS"`
}

func fromDomain(c domain.Config) File {
	return File{
		GameDir:            c.GameDir,
		Java:               c.JavaPath,
		MetadataURL:        c.MetadataURL,
		Repositories:       c.Repositories,
		VersionManifestURL: c.VersionManifestURL,
		CacheDir:           c.CacheDir,
		HTTPTimeout:        c.HTTPTimeout,
		Retries:            c.Retries,
		MetadataTTL:        c.MetadataTTL,
		JSONLogs:           c.JSONLogs,
	}
}

func (f File) toDomain() domain.Config {
	return domain.Config{
		GameDir:            f.GameDir,
		JavaPath:           f.Java,
		MetadataURL:        f.MetadataURL,
		Repositories:       f.Repositories,
		VersionManifestURL: f.VersionManifestURL,
		CacheDir:           f.CacheDir,
		HTTPTimeout:        f.HTTPTimeout,
		Retries:            f.Retries,
		MetadataTTL:        f.MetadataTTL,
		JSONLogs:           f.JSONLogs,
	}
}
