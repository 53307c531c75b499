package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var imagePattern = regexp.MustCompile(`^img(\d+)$`)

// image is a downloaded file and its position in the index
type image struct {
	Name  string
	Index int
}

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: puzzledir <rebuild-index|duplicates> <download-directory>")
	}

	command := os.Args[1]
	dir := os.Args[2]

	switch command {
	case "rebuild-index":
		n, err := rebuildIndex(dir)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Wrote index.html with %d images", n)
	case "duplicates":
		groups, err := findDuplicates(dir)
		if err != nil {
			log.Fatal(err)
		}
		printDuplicates(os.Stdout, groups)
	default:
		log.Fatalf("Unknown command %q", command)
	}
}

// listImages returns the img<N> files in dir ordered by N
func listImages(dir string) ([]image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var images []image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := imagePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			log.Printf("Skipping %s: %v", entry.Name(), err)
			continue
		}
		images = append(images, image{Name: entry.Name(), Index: idx})
	}

	slices.SortFunc(images, func(a, b image) int { return a.Index - b.Index })
	return images, nil
}

// renderIndex matches the page logpuzzle writes after a download
func renderIndex(images []image) string {
	var b strings.Builder
	b.WriteString("<html>\n<body>\n")
	for _, img := range images {
		fmt.Fprintf(&b, `<img src="%s">`, img.Name)
	}
	b.WriteString("\n</body>\n</html>")
	return b.String()
}

func rebuildIndex(dir string) (int, error) {
	images, err := listImages(dir)
	if err != nil {
		return 0, err
	}

	// Gaps mean a download was interrupted part way
	for i, img := range images {
		if img.Index != i {
			log.Printf("Warning: expected img%d, found %s", i, img.Name)
			break
		}
	}

	indexPath := filepath.Join(dir, "index.html")
	if err := os.WriteFile(indexPath, []byte(renderIndex(images)), 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", indexPath, err)
	}
	return len(images), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:8], nil
}

// duplicateGroup is a set of images with identical content
type duplicateGroup struct {
	Hash  string
	Names []string
}

func findDuplicates(dir string) ([]duplicateGroup, error) {
	images, err := listImages(dir)
	if err != nil {
		return nil, err
	}

	hashToNames := make(map[string][]string)
	var order []string
	for _, img := range images {
		hash, err := hashFile(filepath.Join(dir, img.Name))
		if err != nil {
			log.Printf("Error hashing %s: %v", img.Name, err)
			continue
		}
		if _, ok := hashToNames[hash]; !ok {
			order = append(order, hash)
		}
		hashToNames[hash] = append(hashToNames[hash], img.Name)
	}

	var groups []duplicateGroup
	for _, hash := range order {
		if names := hashToNames[hash]; len(names) > 1 {
			groups = append(groups, duplicateGroup{Hash: hash, Names: names})
		}
	}
	return groups, nil
}

func printDuplicates(w io.Writer, groups []duplicateGroup) {
	for _, g := range groups {
		fmt.Fprintf(w, "\nFound %d identical images with hash %s:\n", len(g.Names), g.Hash)
		for _, name := range g.Names {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	fmt.Fprintf(w, "\n%d duplicate groups\n", len(groups))
}
