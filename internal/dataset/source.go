package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/bikeshare/internal/httputil"
	"github.com/lox/bikeshare/internal/metrics"
)

// Fetcher reads raw CSV bytes from a local path, an http(s) URL or an ftp URL.
type Fetcher struct {
	client         *http.Client
	maxElapsedTime time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client:         httputil.NewClient(),
		maxElapsedTime: 2 * time.Minute,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths (and Windows drive letters) are read from disk.
		return os.ReadFile(src)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return os.ReadFile(u.Path)
	case "http", "https":
		return f.fetchHTTP(ctx, src)
	case "ftp":
		return f.fetchFTP(ctx, u)
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		start := time.Now()
		resp, err := f.client.Do(req)
		metrics.SourceFetchLatency.WithLabelValues("http").Observe(time.Since(start).Seconds())
		if err != nil {
			return fmt.Errorf("fetch %s: %w", src, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", src, resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = f.maxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetchFTP(ctx context.Context, u *url.URL) ([]byte, error) {
	host := u.Host
	if u.Port() == "" {
		host += ":21"
	}

	var body []byte
	operation := func() error {
		conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
		if err != nil {
			return fmt.Errorf("ftp dial: %w", err)
		}
		defer conn.Quit()

		user, pass := "anonymous", "anonymous"
		if u.User != nil {
			user = u.User.Username()
			if p, ok := u.User.Password(); ok {
				pass = p
			}
		}
		if err := conn.Login(user, pass); err != nil {
			return backoff.Permanent(fmt.Errorf("ftp login: %w", err))
		}

		resp, err := conn.Retr(u.Path)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("ftp retr %s: %w", u.Path, err))
		}
		defer resp.Close()

		body, err = io.ReadAll(resp)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = f.maxElapsedTime
	start := time.Now()
	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))
	metrics.SourceFetchLatency.WithLabelValues("ftp").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return body, nil
}
