package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyscribe_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Submission Metrics
	MediaSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_media_submissions_total",
			Help: "Total number of media submissions",
		},
		[]string{"kind"},
	)

	MediaUploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studyscribe_media_upload_size_bytes",
			Help:    "Size of uploaded media files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024*1024, 2, 12), // 1MB to 2GB
		},
	)

	// Job Metrics
	JobsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyscribe_jobs_started_total",
			Help: "Total number of transcription jobs claimed by workers",
		},
	)

	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_jobs_completed_total",
			Help: "Total number of finished transcription jobs",
		},
		[]string{"status"},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyscribe_jobs_in_progress",
			Help: "Number of jobs currently being processed",
		},
	)

	JobsQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyscribe_jobs_queue_depth",
			Help: "Number of jobs waiting in queue",
		},
	)

	JobsDLQDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyscribe_jobs_dlq_depth",
			Help: "Number of failed jobs parked in the dead letter queue",
		},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyscribe_job_duration_seconds",
			Help:    "Job processing duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		},
		[]string{"status"},
	)

	// Provider Metrics
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_provider_calls_total",
			Help: "Total number of transcription provider calls",
		},
		[]string{"provider", "status"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyscribe_provider_call_duration_seconds",
			Help:    "Transcription provider call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"provider"},
	)

	ChunksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_chunks_processed_total",
			Help: "Total number of audio chunks transcribed",
		},
		[]string{"provider"},
	)

	// Study Content Metrics
	GenerationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_generation_requests_total",
			Help: "Total number of study content generation requests",
		},
		[]string{"status"},
	)

	GenerationFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_generation_fallbacks_total",
			Help: "Total number of artifact generations served by the local fallback",
		},
		[]string{"artifact"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studyscribe_generation_duration_seconds",
			Help:    "Study content generation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// Export Metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_exports_total",
			Help: "Total number of transcript exports",
		},
		[]string{"format"},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyscribe_storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageBytesTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_storage_bytes_transferred_total",
			Help: "Total bytes transferred to/from storage",
		},
		[]string{"operation"},
	)

	// Database Metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyscribe_database_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyscribe_errors_total",
			Help: "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordMediaSubmission records a media submission
func RecordMediaSubmission(kind string, size int64) {
	MediaSubmissionsTotal.WithLabelValues(kind).Inc()
	if size > 0 {
		MediaUploadSizeBytes.Observe(float64(size))
	}
}

// RecordJobStarted records a claimed transcription job
func RecordJobStarted() {
	JobsStartedTotal.Inc()
	JobsInProgress.Inc()
}

// RecordJobCompleted records a finished transcription job
func RecordJobCompleted(status string, duration float64) {
	JobsCompletedTotal.WithLabelValues(status).Inc()
	JobDuration.WithLabelValues(status).Observe(duration)
	JobsInProgress.Dec()
}

// UpdateQueueDepth updates the queue depth gauge
func UpdateQueueDepth(depth int) {
	JobsQueueDepth.Set(float64(depth))
}

// UpdateDLQDepth updates the dead letter queue depth gauge
func UpdateDLQDepth(depth int) {
	JobsDLQDepth.Set(float64(depth))
}

// RecordProviderCall records one transcription provider call
func RecordProviderCall(provider, status string, duration float64) {
	ProviderCallsTotal.WithLabelValues(provider, status).Inc()
	ProviderCallDuration.WithLabelValues(provider).Observe(duration)
}

// RecordChunkProcessed records one transcribed audio chunk
func RecordChunkProcessed(provider string) {
	ChunksProcessedTotal.WithLabelValues(provider).Inc()
}

// RecordGenerationRequest records a study content generation request
func RecordGenerationRequest(status string, duration float64) {
	GenerationRequestsTotal.WithLabelValues(status).Inc()
	GenerationDuration.Observe(duration)
}

// RecordGenerationFallback records an artifact produced by the local fallback
func RecordGenerationFallback(artifact string) {
	GenerationFallbacksTotal.WithLabelValues(artifact).Inc()
}

// RecordExport records a transcript export
func RecordExport(format string) {
	ExportsTotal.WithLabelValues(format).Inc()
}

// RecordStorageOperation records a storage operation
func RecordStorageOperation(operation, status string, duration float64, bytesTransferred int64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration)
	if bytesTransferred > 0 {
		StorageBytesTransferred.WithLabelValues(operation).Add(float64(bytesTransferred))
	}
}

// RecordDatabaseOperation records a database operation
func RecordDatabaseOperation(operation, status string, duration float64) {
	DatabaseOperationsTotal.WithLabelValues(operation, status).Inc()
	DatabaseOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// RecordError records an error occurrence
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
