// Package formats builds the quality catalog for a source URL.
//
// The catalog is derived from one metadata probe: site formats are filtered
// down to variants the download pipeline can render as mp4, annotated with
// an estimated size of the final merged file, sorted by resolution, and
// de-duplicated per height. Estimates model the pipeline's own output
// (video stream copy plus re-encoded audio at the target bitrate, scaled
// by an empirical correction factor), not the raw source size.
//
// Nothing here is cached: every listing is computed fresh from the probe,
// and the computation is a pure function of the metadata and the
// configured constants.
package formats
