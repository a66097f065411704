package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	_ "golang.org/x/image/webp"
)

// ImageSource reads panels from an explicit, ordered list of image files.
type ImageSource struct {
	paths []string
}

// NewImageSource builds a source from a directory (panels in filename
// order) or from a single image file.
func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch filepath.Ext(entry.Name()) {
			case ".jpg", ".jpeg", ".png", ".webp":
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no panel images in %s", path)
	}

	return &ImageSource{paths: paths}, nil
}

// NewImageListSource builds a source from explicit paths, keeping the
// caller's order. Used for web uploads, where upload order is panel order.
func NewImageListSource(paths []string) (*ImageSource, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no panel images given")
	}
	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) Count() int {
	return len(s.paths)
}

func (s *ImageSource) Panel(i int) (image.Image, error) {
	f, err := os.Open(s.paths[i])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding panel %s: %w", s.paths[i], err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}
