// Package middleware holds the gin middleware shared by every route group:
// CORS, per-client rate limiting and response compression.
package middleware
