// Package objectstore abstracts the S3-compatible bucket that holds
// transcoded assets. The uploader and the delivery gateway share one Store
// interface; the production implementation is backed by the MinIO client,
// which speaks to MinIO, Cloudflare R2 and AWS S3 alike.
package objectstore
