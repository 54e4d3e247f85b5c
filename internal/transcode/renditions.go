package transcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Rendition is one output quality variant of the HLS ladder.
type Rendition struct {
	Name       string
	Scale      string // ffmpeg -vf value, width follows aspect ratio
	Bitrate    string // target video bitrate, e.g. "2500k"
	Bandwidth  int    // EXT-X-STREAM-INF BANDWIDTH
	Resolution string // EXT-X-STREAM-INF RESOLUTION
}

var ladder = map[string]Rendition{
	"1080p": {Name: "1080p", Scale: "scale=-2:1080", Bitrate: "4500k", Bandwidth: 5000000, Resolution: "1920x1080"},
	"720p":  {Name: "720p", Scale: "scale=-2:720", Bitrate: "2500k", Bandwidth: 2800000, Resolution: "1280x720"},
	"480p":  {Name: "480p", Scale: "scale=-2:480", Bitrate: "1250k", Bandwidth: 1400000, Resolution: "854x480"},
	"360p":  {Name: "360p", Scale: "scale=-2:360", Bitrate: "800k", Bandwidth: 900000, Resolution: "640x360"},
}

// Resolve maps a quality label to its ladder entry. Unknown labels fall
// back to the 720p profile under the requested name so a typo still yields
// a playable rendition.
func Resolve(quality string) Rendition {
	if r, ok := ladder[quality]; ok {
		return r
	}
	r := ladder["720p"]
	r.Name = quality
	return r
}

// ResolveAll resolves an ordered list of quality labels, defaulting to a
// single 720p rendition when the list is empty.
func ResolveAll(qualities []string) []Rendition {
	if len(qualities) == 0 {
		return []Rendition{ladder["720p"]}
	}
	out := make([]Rendition, 0, len(qualities))
	for _, q := range qualities {
		out = append(out, Resolve(q))
	}
	return out
}

// BufSize returns the rate-control buffer for a rendition, 2x its bitrate.
func (r Rendition) BufSize() string {
	kbps, err := strconv.Atoi(strings.TrimSuffix(r.Bitrate, "k"))
	if err != nil {
		kbps = 2500
	}
	return fmt.Sprintf("%dk", kbps*2)
}

// MasterPlaylist renders the top-level manifest referencing each rendition's
// variant playlist at {name}/playlist.m3u8.
func MasterPlaylist(renditions []Rendition) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n")
	for _, r := range renditions {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s\n%s/playlist.m3u8\n",
			r.Bandwidth, r.Resolution, r.Name)
	}
	return b.String()
}
