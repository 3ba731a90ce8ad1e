// Package media derives display variants of project images.
package media

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ThumbWidth is the width of generated thumbnails in pixels.
const ThumbWidth = 480

// ThumbDir is the thumbnails subdirectory of the media root.
const ThumbDir = "thumbs"

// ThumbPath maps an image path relative to the media root to its thumbnail
// path, "projects/crm.png" becomes "thumbs/projects/crm.jpg".
func ThumbPath(image string) string {
	if image == "" {
		return ""
	}
	clean := path.Clean("/" + filepath.ToSlash(image))[1:]
	ext := path.Ext(clean)
	return path.Join(ThumbDir, strings.TrimSuffix(clean, ext)+".jpg")
}

// Thumbnail writes a JPEG thumbnail of root/image into root/ThumbPath(image).
// Images narrower than width are copied without upscaling.
func Thumbnail(root, image string, width int) (string, error) {
	rel := ThumbPath(image)
	if rel == "" {
		return "", fmt.Errorf("thumbnail: empty image path")
	}
	src := filepath.Join(root, filepath.FromSlash(path.Clean("/" + filepath.ToSlash(image))[1:]))
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("thumbnail open %s: %w", src, err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	dst := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("thumbnail mkdir: %w", err)
	}
	if err := imaging.Save(img, dst, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("thumbnail save %s: %w", dst, err)
	}
	return rel, nil
}

// Exists reports whether the thumbnail of image has been generated.
func Exists(root, image string) bool {
	rel := ThumbPath(image)
	if rel == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
