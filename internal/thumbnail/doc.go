// Package thumbnail normalizes operator-supplied cover images before they
// are uploaded alongside a video's streaming assets.
package thumbnail
