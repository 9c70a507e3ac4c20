package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/anvil/internal/adapters/download"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newClient(t *testing.T, retries int) (*download.Client, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	c, err := download.New(download.Options{
		CacheDir:        dir,
		Retries:         retries,
		InitialInterval: time.Millisecond,
	}, logger)
	require.NoError(t, err)
	return c, dir
}

// flaky serves body after failing the first failures requests with status.
func flaky(failures int32, status int, body string) (*httptest.Server, *atomic.Int32) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := hits.Add(1)
		if n <= failures {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	return srv, &hits
}

func TestFetch_CachesInMemory(t *testing.T) {
	srv, hits := flaky(0, 0, `{"versions":["21.1.5"]}`)
	defer srv.Close()
	c, _ := newClient(t, 0)

	for range 3 {
		body, err := c.Fetch(context.Background(), srv.URL+"/versions", domain.PoolVersionMeta)
		require.NoError(t, err)
		assert.JSONEq(t, `{"versions":["21.1.5"]}`, string(body))
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err := c.Fetch(context.Background(), srv.URL+"/versions", "other_pool")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "pools are separate")
}

func TestFetch_SendsUserAgent(t *testing.T) {
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()
	c, _ := newClient(t, 0)

	_, err := c.Fetch(context.Background(), srv.URL, domain.PoolVersionMeta)
	require.NoError(t, err)
	assert.Contains(t, agent.Load(), "anvil/")
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	srv, hits := flaky(2, http.StatusBadGateway, "ok")
	defer srv.Close()
	c, _ := newClient(t, 3)

	body, err := c.Fetch(context.Background(), srv.URL, domain.PoolVersionMeta)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetch_GivesUp(t *testing.T) {
	t.Run("client errors are not retried", func(t *testing.T) {
		srv, hits := flaky(100, http.StatusNotFound, "")
		defer srv.Close()
		c, _ := newClient(t, 3)

		_, err := c.Fetch(context.Background(), srv.URL, domain.PoolVersionMeta)
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("retries are bounded", func(t *testing.T) {
		srv, hits := flaky(100, http.StatusServiceUnavailable, "")
		defer srv.Close()
		c, _ := newClient(t, 2)

		_, err := c.Fetch(context.Background(), srv.URL, domain.PoolVersionMeta)
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		assert.Equal(t, int32(3), hits.Load())
	})
}

func TestDownload_StoresInPool(t *testing.T) {
	srv, hits := flaky(0, 0, "installer-bytes")
	defer srv.Close()
	c, dir := newClient(t, 0)

	url := srv.URL + "/net/neoforged/neoforge/21.1.5/neoforge-21.1.5-installer.jar"
	path, err := c.Download(context.Background(), url, domain.PoolInstaller)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, domain.PoolInstaller), filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "neoforge-21.1.5-installer.jar")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "installer-bytes", string(data))

	again, err := c.Download(context.Background(), url, domain.PoolInstaller)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int32(1), hits.Load(), "cached artifact is not downloaded again")
}

func TestDownload_FailureLeavesNoFiles(t *testing.T) {
	srv, _ := flaky(100, http.StatusNotFound, "")
	defer srv.Close()
	c, dir := newClient(t, 1)

	_, err := c.Download(context.Background(), srv.URL+"/missing.jar", domain.PoolInstaller)
	require.ErrorIs(t, err, domain.ErrDownloadFailed)

	entries, err := os.ReadDir(filepath.Join(dir, domain.PoolInstaller))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownload_Cancelled(t *testing.T) {
	srv, _ := flaky(0, 0, "x")
	defer srv.Close()
	c, _ := newClient(t, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Download(ctx, srv.URL+"/a.jar", domain.PoolInstaller)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
}

func TestPath_IsStablePerURL(t *testing.T) {
	c, _ := newClient(t, 0)

	a, err := c.Path("https://maven.example/a/installer.jar", domain.PoolInstaller)
	require.NoError(t, err)
	b, err := c.Path("https://mirror.example/a/installer.jar", domain.PoolInstaller)
	require.NoError(t, err)
	again, err := c.Path("https://maven.example/a/installer.jar", domain.PoolInstaller)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}
