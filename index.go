package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

const (
	indexHTMLName     = "index.html"
	indexMarkdownName = "index.md"
)

// imageName returns the local file name for the image at position i
func imageName(i int) string {
	return fmt.Sprintf("img%d", i)
}

// RenderIndex builds the viewer page for n images named img0..img(n-1)
func RenderIndex(n int) string {
	var b strings.Builder
	b.WriteString("<html>\n<body>\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<img src="%s">`, imageName(i))
	}
	b.WriteString("\n</body>\n</html>")
	return b.String()
}

// IndexWriter writes the index page and, optionally, a Markdown companion
type IndexWriter struct {
	converter *md.Converter
}

// NewIndexWriter creates a writer. A Markdown copy is produced when markdown is set.
func NewIndexWriter(markdown bool) *IndexWriter {
	w := &IndexWriter{}
	if markdown {
		w.converter = md.NewConverter("", true, nil)
	}
	return w
}

// Write renders the index for n images into dir and returns the written paths
func (w *IndexWriter) Write(dir string, n int) ([]string, error) {
	page := RenderIndex(n)

	htmlPath := filepath.Join(dir, indexHTMLName)
	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", htmlPath, err)
	}
	written := []string{htmlPath}

	if w.converter == nil {
		return written, nil
	}

	markdown, err := w.converter.ConvertString(page)
	if err != nil {
		return written, fmt.Errorf("converting index to markdown: %w", err)
	}
	mdPath := filepath.Join(dir, indexMarkdownName)
	if err := os.WriteFile(mdPath, []byte(markdown+"\n"), 0644); err != nil {
		return written, fmt.Errorf("writing %s: %w", mdPath, err)
	}
	return append(written, mdPath), nil
}
