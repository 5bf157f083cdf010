// Package middleware provides HTTP middleware for the gallery server.
//
// It includes:
//   - Access logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - Per-request context deadlines
package middleware
