package uploader

import (
	"path/filepath"
	"strings"
)

// contentTypes maps the file extensions the transcoder produces to their
// MIME types. Anything else is uploaded as a generic binary.
var contentTypes = map[string]string{
	".m3u8": "application/vnd.apple.mpegurl",
	".ts":   "video/MP2T",
	".mp4":  "video/mp4",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ContentTypeFor infers the upload content type from a file name.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ThumbnailKey returns the object key for a job's thumbnail. The extension
// is normalized: png and webp survive, everything else becomes jpg.
func ThumbnailKey(jobID, localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".png":
		return "thumbnails/" + jobID + ".png"
	case ".webp":
		return "thumbnails/" + jobID + ".webp"
	default:
		return "thumbnails/" + jobID + ".jpg"
	}
}
