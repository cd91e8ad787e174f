package formats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"media-fetcher/internal/extractor"
	"media-fetcher/internal/logging"
)

// defaultFPS is reported for variants whose frame rate the site omits.
const defaultFPS = 30

// Prober supplies site metadata for a URL.
type Prober interface {
	Probe(ctx context.Context, url string) (*extractor.MediaInfo, error)
}

// Listing is the format catalog returned for one URL.
type Listing struct {
	Title     string    `json:"title"`
	Duration  float64   `json:"duration"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Formats   []Variant `json:"formats"`
}

// Variant is one selectable quality option with its estimated final
// download size.
type Variant struct {
	FormatID   string  `json:"format_id"`
	Resolution string  `json:"resolution"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	Filesize   int64   `json:"filesize"`
	Ext        string  `json:"ext"`
	Vcodec     string  `json:"vcodec"`
	Acodec     string  `json:"acodec"`
}

// Catalog computes the downloadable quality options for a URL, sized for
// the merged output the download pipeline actually produces.
type Catalog struct {
	prober           Prober
	audioBitrateKbps int
	sizeFactor       float64
}

// NewCatalog creates a Catalog. audioBitrateKbps is the merge-time target
// audio bitrate; sizeFactor is the empirical correction applied to every
// estimate. Both have calibrated defaults in the configuration layer.
func NewCatalog(prober Prober, audioBitrateKbps int, sizeFactor float64) *Catalog {
	return &Catalog{
		prober:           prober,
		audioBitrateKbps: audioBitrateKbps,
		sizeFactor:       sizeFactor,
	}
}

// List probes url and returns its catalog of downloadable variants. An
// empty variant list is a valid result; only metadata failure is an error.
func (c *Catalog) List(ctx context.Context, url string) (*Listing, error) {
	info, err := c.prober.Probe(ctx, url)
	if err != nil {
		return nil, err
	}

	listing := c.build(info)
	logging.Debug("Catalog for %q: %d of %d formats survive", info.Title, len(listing.Formats), len(info.Formats))
	return listing, nil
}

// build derives the variant list from a descriptor. Pure: the same
// metadata always yields the same listing and estimates.
func (c *Catalog) build(info *extractor.MediaInfo) *Listing {
	audioBytes := estimateAudioBytes(c.audioBitrateKbps, info.Duration)

	variants := make([]Variant, 0, len(info.Formats))
	for _, f := range info.Formats {
		if !downloadable(f) {
			continue
		}

		// Merged output size: adaptive variants gain the audio track the
		// pipeline muxes in, progressive ones already carry their audio.
		size := videoSizeBytes(f, info.Duration)
		if f.Acodec == "none" {
			size += audioBytes
		}
		size = int64(math.Round(float64(size) * c.sizeFactor))

		fps := f.FPS
		if fps == 0 {
			fps = defaultFPS
		}

		variants = append(variants, Variant{
			FormatID:   f.FormatID,
			Resolution: fmt.Sprintf("%dp", f.Height),
			Height:     f.Height,
			FPS:        fps,
			Filesize:   size,
			Ext:        f.Ext,
			Vcodec:     f.Vcodec,
			Acodec:     f.Acodec,
		})
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Height < variants[j].Height
	})

	// One entry per height, first wins
	seen := make(map[int]bool, len(variants))
	deduped := make([]Variant, 0, len(variants))
	for _, v := range variants {
		if seen[v.Height] {
			continue
		}
		seen[v.Height] = true
		deduped = append(deduped, v)
	}

	return &Listing{
		Title:     info.Title,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Formats:   deduped,
	}
}

// estimateAudioBytes is the size of the audio track the merge step encodes
// at the target bitrate, zero when the site reports no duration.
func estimateAudioBytes(bitrateKbps int, duration float64) int64 {
	if duration <= 0 {
		return 0
	}
	return int64(math.Round(float64(bitrateKbps) * 1000 / 8 * duration))
}

// downloadable reports whether a format can be rendered into the mp4
// output: it must carry video at a known height and either already sit in
// an mp4 container or use an AVC-family codec that stream-copies into one.
func downloadable(f extractor.Format) bool {
	if f.Vcodec == "" || f.Vcodec == "none" {
		return false
	}
	if f.Height <= 0 {
		return false
	}
	return f.Ext == "mp4" || strings.Contains(f.Vcodec, "avc")
}

// videoSizeBytes picks the best available size signal for the video stream
// alone: exact size, then approximate size, then bitrate math, then zero.
// Adaptive variants are sized from their video-only bitrate, progressive
// ones from their total bitrate.
func videoSizeBytes(f extractor.Format, duration float64) int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	if f.FilesizeApprox > 0 {
		return f.FilesizeApprox
	}

	br := f.TBR
	if f.Acodec == "none" {
		br = f.VBR
	}
	if br <= 0 || duration <= 0 {
		return 0
	}
	return int64(math.Round(br * 1000 / 8 * duration))
}
