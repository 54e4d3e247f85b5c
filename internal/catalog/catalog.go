package catalog

import (
	"context"
	"time"
)

// StatusReady marks a video whose streaming assets are fully uploaded.
const StatusReady = "ready"

// Video is one catalog record. AssetPrefix is the object-store path root
// (videos/{jobID}) the delivery gateway scopes playback tokens to.
// ThumbnailURL is empty when thumbnail generation or upload failed.
type Video struct {
	ID           string
	Title        string
	PlaylistID   string
	Status       string
	AssetPrefix  string
	ThumbnailURL string
	CreatedAt    time.Time
}

// Writer records catalog entries for successfully ingested videos. The
// production catalog lives in an external document database; this interface
// is the only surface the pipeline needs from it.
type Writer interface {
	Create(ctx context.Context, v Video) (string, error)
}
