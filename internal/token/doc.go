// Package token implements the scoped playback credential: a short-lived
// HS256 JWT carrying the object key of one video's manifest. The scope
// check widens the manifest key to its containing folder so a player can
// fetch variant playlists and segments with the same token.
package token
