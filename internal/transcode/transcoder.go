package transcode

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"securestream/internal/logging"
	"securestream/internal/metrics"
)

// Config controls how the external ffmpeg/ffprobe binaries are invoked.
type Config struct {
	FFmpegPath      string
	FFprobePath     string
	SegmentDuration int    // HLS segment length in seconds
	Encoder         string // "libx264", "h264_nvenc", "h264_videotoolbox", ...
}

// Transcoder wraps the external ffmpeg binary as an opaque
// input-to-output-directory operation with periodic progress callbacks.
type Transcoder struct {
	cfg Config
}

// Request describes one transcode invocation.
type Request struct {
	ID         string
	InputPath  string
	OutputDir  string
	Renditions []string
}

// New creates a Transcoder, filling in defaults for unset config fields.
func New(cfg Config) *Transcoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.SegmentDuration <= 0 {
		cfg.SegmentDuration = 4
	}
	if cfg.Encoder == "" {
		cfg.Encoder = "libx264"
	}
	return &Transcoder{cfg: cfg}
}

// Probe returns the media duration in seconds.
func (t *Transcoder) Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	durationStr := strings.TrimSpace(string(output))
	if durationStr == "" {
		return 0, fmt.Errorf("ffprobe %s: empty duration", path)
	}
	return strconv.ParseFloat(durationStr, 64)
}

// Transcode runs the rendition ladder for the request and writes the master
// playlist into the output directory. Progress is delivered as an overall
// 0..100 percentage across all renditions.
func (t *Transcoder) Transcode(ctx context.Context, req Request, progress func(int)) error {
	duration, err := t.Probe(ctx, req.InputPath)
	if err != nil {
		logging.Warn("duration probe failed for %s, progress will be coarse: %v", req.InputPath, err)
		duration = 0
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	renditions := ResolveAll(req.Renditions)
	total := len(renditions)

	for i, r := range renditions {
		qualityDir := filepath.Join(req.OutputDir, r.Name)
		if err := os.MkdirAll(qualityDir, 0o755); err != nil {
			return fmt.Errorf("create rendition directory %s: %w", qualityDir, err)
		}

		logging.Info("Transcoding %s -> %s (%s)", req.InputPath, r.Name, r.Bitrate)

		args := t.renditionArgs(req.InputPath, r, qualityDir)
		started := time.Now()
		err := t.run(ctx, args, duration, func(pct int) {
			if progress != nil {
				progress((i*100 + pct) / total)
			}
		})
		if err != nil {
			return fmt.Errorf("rendition %s: %w", r.Name, err)
		}
		metrics.RenditionDuration.WithLabelValues(r.Name).Observe(time.Since(started).Seconds())

		if progress != nil {
			progress((i + 1) * 100 / total)
		}
	}

	master := filepath.Join(req.OutputDir, "master.m3u8")
	if err := os.WriteFile(master, []byte(MasterPlaylist(renditions)), 0o644); err != nil {
		return fmt.Errorf("write master playlist: %w", err)
	}

	return nil
}

// renditionArgs builds the ffmpeg argument list for one rendition.
// Keyframes are pinned to segment boundaries so HLS segments cut cleanly.
func (t *Transcoder) renditionArgs(input string, r Rendition, qualityDir string) []string {
	segDur := strconv.Itoa(t.cfg.SegmentDuration)
	gop := strconv.Itoa(t.cfg.SegmentDuration * 12)

	args := []string{
		"-y",
		"-i", input,
		"-c:a", "aac", "-ar", "48000", "-b:a", "128k",
		"-c:v", t.cfg.Encoder,
		"-profile:v", "main",
	}

	switch {
	case strings.Contains(t.cfg.Encoder, "nvenc"):
		args = append(args, "-cq", "20", "-preset", "p4")
	case strings.Contains(t.cfg.Encoder, "videotoolbox"):
		args = append(args, "-q:v", "60")
	default:
		args = append(args, "-crf", "20")
	}

	args = append(args,
		"-sc_threshold", "0",
		"-g", gop, "-keyint_min", gop,
		"-hls_time", segDur,
		"-hls_playlist_type", "vod",
		"-vf", r.Scale,
		"-b:v", r.Bitrate,
		"-maxrate", r.Bitrate,
		"-bufsize", r.BufSize(),
		"-hls_segment_filename", filepath.Join(qualityDir, "%03d.ts"),
		"-progress", "pipe:1",
		"-nostats",
		filepath.Join(qualityDir, "playlist.m3u8"),
	)

	return args
}

// GenerateThumbnail extracts a single frame at 25% of the media duration,
// scaled to 640px wide, and writes it as a JPEG to outputPath.
func (t *Transcoder) GenerateThumbnail(ctx context.Context, inputPath, outputPath string) error {
	duration, err := t.Probe(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("probe for thumbnail: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create thumbnail directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.cfg.FFmpegPath,
		"-ss", seekString(duration*0.25),
		"-i", inputPath,
		"-vframes", "1",
		"-vf", "scale=640:-1",
		"-q:v", "2",
		"-y",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail: %w: %s", err, tail(stderr.String(), 500))
	}
	return nil
}

// run executes ffmpeg, feeding -progress output through the callback.
func (t *Transcoder) run(ctx context.Context, args []string, duration float64, onPct func(int)) error {
	cmd := exec.CommandContext(ctx, t.cfg.FFmpegPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	last := -1
	for scanner.Scan() {
		pct, ok := parseProgressLine(scanner.Text(), duration)
		if ok && pct > last {
			last = pct
			if onPct != nil {
				onPct(pct)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg exited: %w: %s", err, tail(stderr.String(), 2000))
	}
	return nil
}

// parseProgressLine turns one "-progress pipe:1" key=value line into a
// percentage of the given duration. ffmpeg reports out_time_ms in
// microseconds (it mirrors out_time_us), so both keys divide by 1e6.
func parseProgressLine(line string, duration float64) (int, bool) {
	if duration <= 0 {
		return 0, false
	}
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		pct := int(math.Min(100, math.Max(0, us/1e6/duration*100)))
		return pct, true
	}
	return 0, false
}

// seekString formats seconds as HH:MM:SS.ss for ffmpeg's -ss flag.
func seekString(seconds float64) string {
	h := int(seconds / 3600)
	m := int(seconds/60) % 60
	s := math.Mod(seconds, 60)
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
