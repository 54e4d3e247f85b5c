// Package middleware provides HTTP middleware for the delivery gateway.
//
// It includes:
//   - Access logging with token redaction and log-injection sanitization
//   - Prometheus request metrics with low-cardinality path normalization
package middleware
