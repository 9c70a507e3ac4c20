package domain

import (
	"os"
	"path/filepath"
)

const (
	// AnvilDirName is the name of the per-user anvil directory.
	AnvilDirName = ".anvil"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "anvil.yaml"

	// InstallerPackageName is the temporary rewritten installer written into the game directory.
	InstallerPackageName = "neoforge-installer.jar"

	// ProfileRegistryName is the launcher profile registry the installer expects to exist.
	ProfileRegistryName = "launcher_profiles.json"

	// VersionsDirName is the directory holding version definitions inside the game directory.
	VersionsDirName = "versions"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Cache pool names.
const (
	// PoolVersionMeta holds loader version metadata documents.
	PoolVersionMeta = "neoforge_version_meta"

	// PoolInstaller holds downloaded installer packages.
	PoolInstaller = "forge_installer"

	// PoolGameManifest holds the upstream game version manifest.
	PoolGameManifest = "game_version_manifest"

	// PoolGameJSON holds upstream game version definitions.
	PoolGameJSON = "game_version_json"

	// PoolGameJar holds upstream game client jars.
	PoolGameJar = "game_jar"
)

// DefaultAnvilPath returns the per-user anvil directory, falling back to the
// system temp directory when the home directory cannot be determined.
func DefaultAnvilPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AnvilDirName)
	}
	return filepath.Join(home, AnvilDirName)
}

// DefaultCachePath returns the default path for the download cache.
// It joins the anvil directory and cache.
func DefaultCachePath() string {
	return filepath.Join(DefaultAnvilPath(), CacheDirName)
}

// DefaultGameDir returns the conventional game directory for the current user.
func DefaultGameDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minecraft"
	}
	return filepath.Join(home, ".minecraft")
}
