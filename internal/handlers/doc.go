// Package handlers provides HTTP request handlers for the media fetcher API.
//
// It includes handlers for:
//   - Format listing with size estimates
//   - Download jobs that stream the merged file back to the caller
//   - API key authentication
//   - Health checks and version information
package handlers
