// Package download fetches granule payloads into an on-disk cache.
package download

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

const (
	downloadTimeout = 60 * time.Second
	copyChunkSize   = 1 << 20 // 1 MiB per write keeps memory flat for any payload size
)

// Client downloads granule files with Earthdata basic auth and caches them
// under an explicit cache root. A file's presence under the root means
// "already fetched"; no staleness or integrity re-validation happens.
type Client struct {
	cacheRoot string
	creds     aod.Credentials
	client    *http.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewClient creates a downloader writing into cacheRoot.
func NewClient(client *http.Client, cacheRoot string, creds aod.Credentials) *Client {
	return &Client{
		cacheRoot: cacheRoot,
		creds:     creds,
		client:    client,
		locks:     make(map[string]*sync.Mutex),
	}
}

// CacheKey derives the cache filename for a URL: the path basename with any
// query string stripped.
func CacheKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Fall back to treating the whole string as a path.
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}

// Fetch returns the local path of the granule payload, downloading it if it
// is not already cached. Concurrent fetches of the same URL serialize on a
// per-key lock so the cache sees at most one writer per file.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	key := CacheKey(rawURL)
	dest := filepath.Join(c.cacheRoot, key)

	unlock := c.lockKey(key)
	defer unlock()

	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	if err := os.MkdirAll(c.cacheRoot, 0o755); err != nil {
		return "", aod.WrapErr(aod.KindConfiguration, "download.Fetch", err)
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", aod.WrapErr(aod.KindTransport, "download.Fetch", err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", aod.WrapErr(aod.KindTransport, "download.Fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", aod.Errorf(aod.KindAuth, "download.Fetch",
			"earthdata authentication failed (401) for %s", key)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", aod.Errorf(aod.KindTransport, "download.Fetch",
			"unexpected status code %d for %s", resp.StatusCode, key)
	}

	if err := c.writeAtomic(dest, resp.Body); err != nil {
		return "", aod.WrapErr(aod.KindTransport, "download.Fetch", err)
	}

	return dest, nil
}

// writeAtomic streams body to a temporary file in the cache directory and
// renames it into place, so an interrupted download never leaves a partial
// file under the final name.
func (c *Client) writeAtomic(dest string, body io.Reader) error {
	tmp, err := os.CreateTemp(c.cacheRoot, filepath.Base(dest)+".part*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	buf := make([]byte, copyChunkSize)
	if _, err := io.CopyBuffer(tmp, body, buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (c *Client) lockKey(key string) func() {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
