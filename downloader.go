package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Downloader retrieves images one after another into a directory
type Downloader struct {
	fetcher *ImageFetcher
	index   *IndexWriter
	metrics *RunMetrics
	log     *zap.SugaredLogger
}

// NewDownloader creates a downloader from the download settings
func NewDownloader(cfg DownloadSettings, metrics *RunMetrics, log *zap.SugaredLogger) *Downloader {
	return &Downloader{
		fetcher: NewImageFetcher(cfg),
		index:   NewIndexWriter(cfg.Markdown),
		metrics: metrics,
		log:     log,
	}
}

// DownloadImages fetches each URL into destDir as img0, img1, ... and writes
// an index.html showing them in order. The first failed transfer aborts the
// remaining downloads; results gathered so far are returned with the error.
func (d *Downloader) DownloadImages(ctx context.Context, urls []string, destDir string) ([]DownloadResult, error) {
	if err := ensureDir(destDir); err != nil {
		if !errors.Is(err, ErrDirectoryExists) {
			return nil, err
		}
		d.log.Warnf("%v", err)
	}

	results := make([]DownloadResult, 0, len(urls))

	for i, url := range urls {
		d.log.Infof("Retrieving... %s", url)
		result := d.downloadOne(ctx, i, url, destDir)
		results = append(results, result)

		if result.Error != nil {
			return results, &TransferError{URL: url, Index: i, Err: result.Error}
		}
		d.log.Debugf("Saved %s (%d bytes)", result.Filename, result.Bytes)
	}

	written, err := d.index.Write(destDir, len(urls))
	if err != nil {
		return results, err
	}
	for _, path := range written {
		d.log.Infof("Wrote %s", path)
	}

	return results, nil
}

func (d *Downloader) downloadOne(ctx context.Context, i int, url, destDir string) DownloadResult {
	filename := filepath.Join(destDir, imageName(i))
	start := time.Now()

	n, err := d.saveTo(ctx, url, filename)
	d.metrics.ObserveDownload(n, time.Since(start), err)
	if err != nil {
		return DownloadResult{URL: url, Filename: filename, Bytes: n, Status: StatusError, Error: err}
	}
	return DownloadResult{URL: url, Filename: filename, Bytes: n, Status: StatusSuccess}
}

func (d *Downloader) saveTo(ctx context.Context, url, filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", filename, err)
	}

	n, err := d.fetcher.Fetch(ctx, url, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %w", filename, cerr)
	}
	if err != nil {
		os.Remove(filename)
		return n, err
	}
	return n, nil
}

// ensureDir creates dir. An existing directory is reported as ErrDirectoryExists.
func ensureDir(dir string) error {
	err := os.Mkdir(dir, 0755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return fmt.Errorf("%w: %s", ErrDirectoryExists, dir)
		}
	}
	return fmt.Errorf("creating directory %s: %w", dir, err)
}
