package main

// PuzzleURL is a relative puzzle path found in the log
type PuzzleURL struct {
	Path string
	Key  string // trailing sort key, empty when the path has none
}

// DownloadStatus represents the outcome status of retrieving an image
type DownloadStatus string

const (
	StatusSuccess DownloadStatus = "success"
	StatusError   DownloadStatus = "error"
)

// DownloadResult tracks the outcome of retrieving each URL
type DownloadResult struct {
	URL      string
	Filename string
	Bytes    int64
	Status   DownloadStatus
	Error    error
}
