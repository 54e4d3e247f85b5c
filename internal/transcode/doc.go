// Package transcode wraps the external ffmpeg binary to turn a source video
// into a segmented HLS directory: one variant playlist plus transport-stream
// segments per rendition, a top-level master playlist, and an optional JPEG
// thumbnail extracted at a quarter of the runtime.
//
// The binary is treated as a black box with a success/failure outcome;
// progress is surfaced by parsing ffmpeg's -progress key=value stream
// against the ffprobe'd duration.
package transcode
