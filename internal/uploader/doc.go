// Package uploader pushes a transcoded output directory into the object
// store under the job's key prefix, preserving relative paths, inferring
// content types by extension and aggregating per-file progress into one
// monotonically non-decreasing percentage.
//
// Failures are classified into network/CORS, credential/signature and
// unknown categories so the operator-facing diagnostic suggests the right
// fix.
package uploader
