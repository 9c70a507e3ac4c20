package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidLoaderVersion is returned when a loader release string has fewer than two dot components.
	ErrInvalidLoaderVersion = zerr.New("invalid loader version")

	// ErrNotLoaderVersion is returned when a version name does not belong to the loader.
	ErrNotLoaderVersion = zerr.New("not a neoforge version")

	// ErrEmptyCatalog is returned when a version catalog is built from no versions.
	ErrEmptyCatalog = zerr.New("version catalog is empty")

	// ErrVersionNotFound is returned when a requested loader version is absent from the catalog.
	ErrVersionNotFound = zerr.New("neoforge version not found")

	// ErrMetadataRequestFailed is returned when the version metadata cannot be fetched.
	ErrMetadataRequestFailed = zerr.New("failed to fetch version metadata")

	// ErrMetadataParseFailed is returned when the version metadata cannot be parsed.
	ErrMetadataParseFailed = zerr.New("failed to parse version metadata")

	// ErrManifestParseFailed is returned when the installer manifest cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse installer manifest")

	// ErrProfileParseFailed is returned when the install profile cannot be parsed.
	ErrProfileParseFailed = zerr.New("failed to parse install profile")

	// ErrClassFormat is returned when a class file is malformed.
	ErrClassFormat = zerr.New("malformed class file")

	// ErrPackageReadFailed is returned when the installer package cannot be read.
	ErrPackageReadFailed = zerr.New("failed to read installer package")

	// ErrPackageWriteFailed is returned when the rewritten installer package cannot be written.
	ErrPackageWriteFailed = zerr.New("failed to write installer package")

	// ErrInstallerFailed is returned when the installer entry point exits unsuccessfully.
	ErrInstallerFailed = zerr.New("installer execution failed")

	// ErrDownloadFailed is returned when a remote artifact cannot be downloaded.
	ErrDownloadFailed = zerr.New("download failed")

	// ErrCacheCreateFailed is returned when a cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create cache directory")

	// ErrVersionStoreFailed is returned when a version definition cannot be read or written.
	ErrVersionStoreFailed = zerr.New("failed to access version store")

	// ErrVersionJSONInvalid is returned when a version definition has no usable id.
	ErrVersionJSONInvalid = zerr.New("version definition has no id")

	// ErrVersionJSONParseFailed is returned when a version definition is not a JSON object.
	ErrVersionJSONParseFailed = zerr.New("failed to parse version definition")

	// ErrUpstreamVersionNotFound is returned when the base game version is unknown upstream.
	ErrUpstreamVersionNotFound = zerr.New("game version not found upstream")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInstallFailed is returned by the app layer when an installation attempt fails.
	ErrInstallFailed = zerr.New("installation failed")

	// ErrNoTasks is returned when a task combinator is given nothing to run.
	ErrNoTasks = zerr.New("no tasks to run")

	// ErrAllTasksFailed is returned when every alternative of a race or fallback failed.
	ErrAllTasksFailed = zerr.New("all alternatives failed")

	// ErrNoVersionSpecified is returned when the install command has no version argument.
	ErrNoVersionSpecified = zerr.New("no version specified")
)
