// Package gateway is the HTTP front door for transcoded assets.
//
// It serves objects straight out of the bucket with two access tiers:
// /thumbnails/ keys are public and cacheable, every other key requires a
// playback token scoped to one video's folder. Tokens arrive as a query
// parameter on the first request and ride a cookie afterwards, so HLS
// playlists can reference segments with plain relative URLs.
package gateway
