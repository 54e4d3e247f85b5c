// Command gateway serves transcoded video assets from the object store.
//
// Thumbnails under /thumbnails/ are public and cacheable. Every other
// bucket key requires a playback token: an HS256 JWT scoped to one video's
// folder, accepted as a ?token= query parameter or a token cookie. The
// gateway promotes query tokens to an HttpOnly cookie so HLS players can
// fetch segments with plain relative URLs.
//
// The gateway is stateless; it holds no database and can be scaled
// horizontally behind a load balancer. Configuration is environment-driven
// (JWT_SECRET, ALLOWED_ORIGIN, S3_*; see internal/startup).
package main
