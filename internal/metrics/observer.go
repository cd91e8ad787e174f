package metrics

import "media-fetcher/internal/streaming"

// streamObserver implements streaming.Observer using the Prometheus
// metrics declared in this package.
type streamObserver struct{}

// NewStreamObserver creates an observer that records delivery progress
// into the Prometheus counters declared in metrics.go.
func NewStreamObserver() streaming.Observer {
	return &streamObserver{}
}

func (o *streamObserver) ObserveBytes(n int64) {
	StreamBytesTotal.Add(float64(n))
}

func (o *streamObserver) ObserveOutcome(status string) {
	StreamsTotal.WithLabelValues(status).Inc()
}
