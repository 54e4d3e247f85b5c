package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"queued", "processing", "uploading", "completed", "error"} {
		JobsByStatus.WithLabelValues(status)
	}

	for _, outcome := range []string{"ok", "missing", "invalid", "scope_denied"} {
		TokenVerificationsTotal.WithLabelValues(outcome)
	}

	for _, kind := range []string{"thumbnail", "protected"} {
		ObjectsServedTotal.WithLabelValues(kind)
	}

	for _, status := range []string{"success", "error"} {
		UploadedFiles.WithLabelValues(status)
	}

	for _, rendition := range []string{"1080p", "720p", "480p", "360p"} {
		RenditionDuration.WithLabelValues(rendition)
	}
}
