package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newImageServer serves the body "image:<path>" for every path except those in missing
func newImageServer(t *testing.T, missing ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range missing {
			if r.URL.Path == m {
				http.NotFound(w, r)
				return
			}
		}
		fmt.Fprintf(w, "image:%s", r.URL.Path)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestDownloader(metrics *RunMetrics) *Downloader {
	return NewDownloader(DownloadSettings{}, metrics, zap.NewNop().Sugar())
}

func TestDownloadImages(t *testing.T) {
	server := newImageServer(t)
	dest := filepath.Join(t.TempDir(), "out")
	urls := []string{
		server.URL + "/puzzle/p-bbjb-bbia.jpg",
		server.URL + "/puzzle/p-bbja-bbib.jpg",
		server.URL + "/puzzle/p-baaa-bbic.jpg",
	}

	results, err := newTestDownloader(nil).DownloadImages(context.Background(), urls, dest)
	require.NoError(t, err)
	require.Len(t, results, len(urls))

	for i, url := range urls {
		name := fmt.Sprintf("img%d", i)
		data, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err, name)
		assert.Equal(t, "image:"+url[len(server.URL):], string(data))

		assert.Equal(t, StatusSuccess, results[i].Status)
		assert.Equal(t, url, results[i].URL)
		assert.Equal(t, int64(len(data)), results[i].Bytes)
	}

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, len(urls)+1, "expected img files plus index.html only")

	page, err := os.ReadFile(filepath.Join(dest, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, []string{"img0", "img1", "img2"}, imageSources(t, string(page)))
}

func TestDownloadImagesExistingDirectory(t *testing.T) {
	server := newImageServer(t)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "index.html"), []byte("stale"), 0644))

	d := newTestDownloader(nil)
	urls := []string{server.URL + "/a.jpg"}

	_, err := d.DownloadImages(context.Background(), urls, dest)
	require.NoError(t, err)

	// A second run into the same directory succeeds as well
	urls = append(urls, server.URL+"/b.jpg")
	_, err = d.DownloadImages(context.Background(), urls, dest)
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(dest, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, RenderIndex(2), string(page))
}

func TestDownloadImagesTransferError(t *testing.T) {
	server := newImageServer(t, "/missing.jpg")
	dest := filepath.Join(t.TempDir(), "out")
	urls := []string{
		server.URL + "/first.jpg",
		server.URL + "/missing.jpg",
		server.URL + "/third.jpg",
	}

	results, err := newTestDownloader(nil).DownloadImages(context.Background(), urls, dest)
	require.ErrorIs(t, err, ErrTransfer)

	var transferErr *TransferError
	require.True(t, errors.As(err, &transferErr))
	assert.Equal(t, 1, transferErr.Index)
	assert.Equal(t, urls[1], transferErr.URL)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)

	require.Len(t, results, 2)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusError, results[1].Status)

	assert.FileExists(t, filepath.Join(dest, "img0"))
	assert.NoFileExists(t, filepath.Join(dest, "img1"))
	assert.NoFileExists(t, filepath.Join(dest, "img2"))
	assert.NoFileExists(t, filepath.Join(dest, "index.html"))
}

func TestDownloadImagesMissingParent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "no", "such", "dir")

	_, err := newTestDownloader(nil).DownloadImages(context.Background(), nil, dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDirectoryExists)
}

func TestDownloadImagesMarkdown(t *testing.T) {
	server := newImageServer(t)
	dest := filepath.Join(t.TempDir(), "out")

	d := NewDownloader(DownloadSettings{Markdown: true}, nil, zap.NewNop().Sugar())
	_, err := d.DownloadImages(context.Background(), []string{server.URL + "/a.jpg"}, dest)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dest, "index.html"))
	assert.FileExists(t, filepath.Join(dest, "index.md"))
}

func TestDownloadImagesRecordsMetrics(t *testing.T) {
	server := newImageServer(t, "/missing.jpg")
	dest := filepath.Join(t.TempDir(), "out")
	metrics := NewRunMetrics()

	urls := []string{server.URL + "/a.jpg", server.URL + "/missing.jpg"}
	_, err := newTestDownloader(metrics).DownloadImages(context.Background(), urls, dest)
	require.ErrorIs(t, err, ErrTransfer)

	path := filepath.Join(t.TempDir(), "logpuzzle.prom")
	require.NoError(t, metrics.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "logpuzzle_images_downloaded_total 1")
	assert.Contains(t, content, "logpuzzle_download_errors_total 1")
	assert.Contains(t, content, fmt.Sprintf("logpuzzle_download_bytes_total %d", len("image:/a.jpg")))
	assert.Contains(t, content, "logpuzzle_download_duration_seconds_count 2")
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()

	dir := filepath.Join(base, "new")
	require.NoError(t, ensureDir(dir))
	assert.DirExists(t, dir)

	assert.ErrorIs(t, ensureDir(dir), ErrDirectoryExists)

	file := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	err := ensureDir(file)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDirectoryExists)
}
