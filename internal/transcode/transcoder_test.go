package transcode

import (
	"strings"
	"testing"
)

func TestResolveKnownQualities(t *testing.T) {
	tests := []struct {
		quality    string
		bitrate    string
		bandwidth  int
		resolution string
	}{
		{"1080p", "4500k", 5000000, "1920x1080"},
		{"720p", "2500k", 2800000, "1280x720"},
		{"480p", "1250k", 1400000, "854x480"},
		{"360p", "800k", 900000, "640x360"},
	}

	for _, tt := range tests {
		r := Resolve(tt.quality)
		if r.Name != tt.quality {
			t.Errorf("Resolve(%s).Name = %s", tt.quality, r.Name)
		}
		if r.Bitrate != tt.bitrate || r.Bandwidth != tt.bandwidth || r.Resolution != tt.resolution {
			t.Errorf("Resolve(%s) = %+v", tt.quality, r)
		}
	}
}

func TestResolveUnknownFallsBackTo720p(t *testing.T) {
	r := Resolve("4320p")
	if r.Name != "4320p" {
		t.Errorf("fallback rendition kept name %q, want requested label", r.Name)
	}
	if r.Bitrate != "2500k" || r.Resolution != "1280x720" {
		t.Errorf("fallback rendition = %+v, want 720p profile", r)
	}
}

func TestResolveAllDefaults(t *testing.T) {
	rs := ResolveAll(nil)
	if len(rs) != 1 || rs[0].Name != "720p" {
		t.Errorf("ResolveAll(nil) = %+v, want single 720p", rs)
	}

	rs = ResolveAll([]string{"1080p", "360p"})
	if len(rs) != 2 || rs[0].Name != "1080p" || rs[1].Name != "360p" {
		t.Errorf("ResolveAll order not preserved: %+v", rs)
	}
}

func TestBufSize(t *testing.T) {
	if got := Resolve("720p").BufSize(); got != "5000k" {
		t.Errorf("720p BufSize = %s, want 5000k", got)
	}
	if got := Resolve("360p").BufSize(); got != "1600k" {
		t.Errorf("360p BufSize = %s, want 1600k", got)
	}
}

func TestMasterPlaylist(t *testing.T) {
	m := MasterPlaylist(ResolveAll([]string{"720p", "360p"}))

	if !strings.HasPrefix(m, "#EXTM3U\n#EXT-X-VERSION:3\n") {
		t.Errorf("master playlist missing header: %q", m)
	}
	for _, want := range []string{
		"#EXT-X-STREAM-INF:BANDWIDTH=2800000,RESOLUTION=1280x720\n720p/playlist.m3u8\n",
		"#EXT-X-STREAM-INF:BANDWIDTH=900000,RESOLUTION=640x360\n360p/playlist.m3u8\n",
	} {
		if !strings.Contains(m, want) {
			t.Errorf("master playlist missing %q:\n%s", want, m)
		}
	}
}

func TestRenditionArgs(t *testing.T) {
	tr := New(Config{SegmentDuration: 6})
	args := tr.renditionArgs("/in.mp4", Resolve("480p"), "/out/480p")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /in.mp4",
		"-c:v libx264",
		"-crf 20",
		"-hls_time 6",
		"-g 72 -keyint_min 72",
		"-hls_playlist_type vod",
		"-vf scale=-2:480",
		"-b:v 1250k",
		"-maxrate 1250k",
		"-bufsize 2500k",
		"-progress pipe:1",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}
}

func TestRenditionArgsHardwareEncoders(t *testing.T) {
	nvenc := New(Config{Encoder: "h264_nvenc"})
	joined := strings.Join(nvenc.renditionArgs("/in.mp4", Resolve("720p"), "/out/720p"), " ")
	if !strings.Contains(joined, "-cq 20") || !strings.Contains(joined, "-preset p4") {
		t.Errorf("nvenc args missing rate-control flags:\n%s", joined)
	}
	if strings.Contains(joined, "-crf") {
		t.Errorf("nvenc args must not carry -crf:\n%s", joined)
	}

	vt := New(Config{Encoder: "h264_videotoolbox"})
	joined = strings.Join(vt.renditionArgs("/in.mp4", Resolve("720p"), "/out/720p"), " ")
	if !strings.Contains(joined, "-q:v 60") {
		t.Errorf("videotoolbox args missing quality flag:\n%s", joined)
	}
}

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		line     string
		duration float64
		pct      int
		ok       bool
	}{
		{"out_time_us=5000000", 10, 50, true},
		{"out_time_ms=5000000", 10, 50, true},
		{"out_time_us=20000000", 10, 100, true}, // clamped
		{"out_time_us=0", 10, 0, true},
		{"frame=120", 10, 0, false},
		{"progress=end", 10, 0, false},
		{"out_time_us=garbage", 10, 0, false},
		{"out_time_us=5000000", 0, 0, false}, // unknown duration
		{"no separator", 10, 0, false},
	}

	for _, tt := range tests {
		pct, ok := parseProgressLine(tt.line, tt.duration)
		if pct != tt.pct || ok != tt.ok {
			t.Errorf("parseProgressLine(%q, %v) = (%d, %v), want (%d, %v)",
				tt.line, tt.duration, pct, ok, tt.pct, tt.ok)
		}
	}
}

func TestSeekString(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.00"},
		{90.5, "00:01:30.50"},
		{3723.25, "01:02:03.25"},
	}

	for _, tt := range tests {
		if got := seekString(tt.seconds); got != tt.want {
			t.Errorf("seekString(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestNewFillsDefaults(t *testing.T) {
	tr := New(Config{})
	if tr.cfg.FFmpegPath != "ffmpeg" || tr.cfg.FFprobePath != "ffprobe" {
		t.Errorf("default binary paths = %q, %q", tr.cfg.FFmpegPath, tr.cfg.FFprobePath)
	}
	if tr.cfg.SegmentDuration != 4 {
		t.Errorf("default segment duration = %d, want 4", tr.cfg.SegmentDuration)
	}
	if tr.cfg.Encoder != "libx264" {
		t.Errorf("default encoder = %q, want libx264", tr.cfg.Encoder)
	}
}
