package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ImageFetcher retrieves image bytes over HTTP
type ImageFetcher struct {
	client    *http.Client
	userAgent string
}

// NewImageFetcher creates a fetcher from the download settings
func NewImageFetcher(cfg DownloadSettings) *ImageFetcher {
	return &ImageFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Fetch issues a GET for url and copies the body to w, returning the byte count
func (f *ImageFetcher) Fetch(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request for %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading response body: %w", err)
	}
	return n, nil
}
