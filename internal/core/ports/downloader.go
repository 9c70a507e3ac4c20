package ports

import "context"

// Downloader fetches remote resources through named cache pools.
//
//go:generate mockgen -source=downloader.go -destination=mocks/mock_downloader.go -package=mocks
type Downloader interface {
	// Fetch returns the body of a small document such as metadata JSON.
	// Documents are kept in memory for the pool's lifetime.
	Fetch(ctx context.Context, url, pool string) ([]byte, error)

	// Download stores an artifact in the on-disk pool and returns its local path.
	// A cached artifact is returned without contacting the remote.
	Download(ctx context.Context, url, pool string) (string, error)
}
