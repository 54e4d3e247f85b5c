package thumbnail

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"securestream/internal/logging"
)

// MaxWidth is the widest a cover image is stored at. Anything wider gets
// downscaled before upload; players never render covers larger than this.
const MaxWidth = 1280

// Normalize prepares a custom cover image for upload. JPEG and PNG covers
// wider than MaxWidth are downscaled into workDir and the new path is
// returned; smaller images and formats imaging cannot write (WebP) pass
// through untouched.
func Normalize(srcPath, workDir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(srcPath))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return srcPath, nil
	}

	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open cover image %s: %w", srcPath, err)
	}

	if img.Bounds().Dx() <= MaxWidth {
		return srcPath, nil
	}

	resized := imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	outPath := filepath.Join(workDir, "cover"+ext)
	if err := imaging.Save(resized, outPath); err != nil {
		return "", fmt.Errorf("save normalized cover: %w", err)
	}

	logging.Debug("Normalized cover %s: %dpx -> %dpx wide", srcPath, img.Bounds().Dx(), MaxWidth)
	return outPath, nil
}
