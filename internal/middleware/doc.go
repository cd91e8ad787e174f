// Package middleware provides HTTP middleware for the media fetcher service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics
//   - Response compression (gzip) for API responses
//   - Global request rate limiting
package middleware
