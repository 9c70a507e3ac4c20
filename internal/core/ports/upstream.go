package ports

import "context"

// UpstreamProvider installs vanilla game versions into a game directory.
//
//go:generate mockgen -source=upstream.go -destination=mocks/mock_upstream.go -package=mocks
type UpstreamProvider interface {
	// GameVersionJSON installs the vanilla definition of id into gameDir and
	// returns the installed version name.
	GameVersionJSON(ctx context.Context, gameDir, id string) (string, error)

	// GameJar installs the vanilla client jar of id into gameDir and returns its path.
	GameJar(ctx context.Context, gameDir, id string) (string, error)
}
