package ports

import "context"

// VersionStore persists game version definitions inside a game directory.
//
//go:generate mockgen -source=version_store.go -destination=mocks/mock_version_store.go -package=mocks
type VersionStore interface {
	// Materialize writes a version definition and returns the version name taken from its id.
	Materialize(ctx context.Context, gameDir string, definition []byte) (string, error)

	// Exists reports whether a definition for the named version is stored.
	Exists(gameDir, name string) bool

	// Read returns the stored definition of the named version.
	Read(gameDir, name string) ([]byte, error)

	// JarPath returns where the named version's game jar lives.
	JarPath(gameDir, name string) string
}
