// Package download fetches remote resources through named cache pools: small
// documents are kept in memory, artifacts on disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/cenkalti/backoff/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
	"go.trai.ch/anvil/internal/build"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultMetadataTTL     = 10 * time.Minute
	defaultInitialInterval = 500 * time.Millisecond

	// maxDocumentSize bounds documents kept in memory.
	maxDocumentSize = 32 << 20
)

// Options configures a Client. Zero values other than Retries select defaults.
type Options struct {
	// CacheDir is the root of the on-disk pools.
	CacheDir string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// Retries is the number of retries after a failed attempt; zero disables them.
	Retries int
	// MetadataTTL is how long fetched documents stay in memory.
	MetadataTTL time.Duration
	// InitialInterval is the first retry delay.
	InitialInterval time.Duration
	// HTTPClient overrides the HTTP client.
	HTTPClient *http.Client
}

// Client implements ports.Downloader.
type Client struct {
	http            *http.Client
	grab            *grab.Client
	memory          *cache.Cache[[]byte]
	dir             string
	retries         uint64
	ttl             time.Duration
	initialInterval time.Duration
	logger          ports.Logger
}

// New creates a Client.
func New(opts Options, logger ports.Logger) (*Client, error) {
	if opts.CacheDir == "" {
		opts.CacheDir = domain.DefaultCachePath()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.MetadataTTL <= 0 {
		opts.MetadataTTL = defaultMetadataTTL
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = defaultInitialInterval
	}

	if err := os.MkdirAll(opts.CacheDir, domain.DirPerm); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrCacheCreateFailed, err), "path", opts.CacheDir)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	g := grab.NewClient()
	g.HTTPClient = httpClient
	g.UserAgent = userAgent()

	return &Client{
		http:            httpClient,
		grab:            g,
		memory:          cache.New[[]byte](gocache_store.NewGoCache(gocache.New(opts.MetadataTTL, 2*opts.MetadataTTL))),
		dir:             opts.CacheDir,
		retries:         uint64(opts.Retries),
		ttl:             opts.MetadataTTL,
		initialInterval: opts.InitialInterval,
		logger:          logger,
	}, nil
}

func userAgent() string {
	return "anvil/" + build.Version
}

// Fetch implements ports.Downloader.
func (c *Client) Fetch(ctx context.Context, rawURL, pool string) ([]byte, error) {
	key := pool + "|" + rawURL
	if body, err := c.memory.Get(ctx, key); err == nil {
		return body, nil
	}

	body, err := backoff.RetryWithData(func() ([]byte, error) {
		return c.get(ctx, rawURL)
	}, c.policy(ctx))
	if err != nil {
		return nil, c.failure(err, rawURL, pool)
	}

	if err := c.memory.Set(ctx, key, body, store.WithExpiration(c.ttl)); err != nil {
		c.logger.Warn(fmt.Sprintf("could not cache %s: %v", rawURL, err))
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", userAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxDocumentSize {
		return nil, backoff.Permanent(zerr.With(zerr.New("document too large"), "limit", maxDocumentSize))
	}
	return body, nil
}

// Download implements ports.Downloader.
func (c *Client) Download(ctx context.Context, rawURL, pool string) (string, error) {
	dst, err := c.Path(rawURL, pool)
	if err != nil {
		return "", c.failure(backoff.Permanent(err), rawURL, pool)
	}
	if info, err := os.Stat(dst); err == nil && info.Size() > 0 {
		return dst, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return "", zerr.With(errors.Join(domain.ErrCacheCreateFailed, err), "path", filepath.Dir(dst))
	}

	c.logger.Info("downloading " + rawURL)
	_, err = backoff.RetryWithData(func() (string, error) {
		return dst, c.fetchFile(ctx, rawURL, dst)
	}, c.policy(ctx))
	if err != nil {
		return "", c.failure(err, rawURL, pool)
	}
	return dst, nil
}

func (c *Client) fetchFile(ctx context.Context, rawURL, dst string) error {
	tmp := dst + "." + strconv.FormatInt(time.Now().UnixNano(), 36) + ".part"
	req, err := grab.NewRequest(tmp, rawURL)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.NoResume = true
	req = req.WithContext(ctx)

	resp := c.grab.Do(req)
	if err := resp.Err(); err != nil {
		_ = os.Remove(tmp)
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		var status grab.StatusCodeError
		if errors.As(err, &status) {
			return checkStatus(int(status))
		}
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return backoff.Permanent(err)
	}
	return nil
}

// Path returns where the artifact at rawURL is kept in pool.
func (c *Client) Path(rawURL, pool string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := strconv.FormatUint(xxhash.Sum64String(rawURL), 16)
	if base := path.Base(u.Path); base != "." && base != "/" {
		name += "-" + base
	}
	return filepath.Join(c.dir, pool, name), nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx)
}

func (c *Client) failure(err error, rawURL, pool string) error {
	return zerr.With(zerr.With(errors.Join(domain.ErrDownloadFailed, err), "url", rawURL), "pool", pool)
}

// checkStatus turns an unsuccessful HTTP status into an error. Client errors
// other than rate limiting are not retried.
func checkStatus(code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	err := zerr.With(zerr.New("unexpected status "+strconv.Itoa(code)+" "+http.StatusText(code)), "status", code)
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}
