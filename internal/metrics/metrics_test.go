package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Reset metrics
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/api/v1/media", "200", 0.123)

	// Verify counter incremented
	counter := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/media", "200"))
	if counter != 1.0 {
		t.Errorf("Expected counter to be 1.0, got %f", counter)
	}
}

func TestRecordMediaSubmission(t *testing.T) {
	MediaSubmissionsTotal.Reset()

	RecordMediaSubmission("audio", 1048576)
	RecordMediaSubmission("video", 2097152)
	RecordMediaSubmission("audio", 524288)

	audio := testutil.ToFloat64(MediaSubmissionsTotal.WithLabelValues("audio"))
	if audio != 2.0 {
		t.Errorf("Expected audio counter to be 2.0, got %f", audio)
	}

	video := testutil.ToFloat64(MediaSubmissionsTotal.WithLabelValues("video"))
	if video != 1.0 {
		t.Errorf("Expected video counter to be 1.0, got %f", video)
	}
}

func TestRecordJobLifecycle(t *testing.T) {
	JobsCompletedTotal.Reset()
	JobsInProgress.Set(0)

	RecordJobStarted()
	RecordJobStarted()

	inProgress := testutil.ToFloat64(JobsInProgress)
	if inProgress != 2.0 {
		t.Errorf("Expected jobs in progress to be 2.0, got %f", inProgress)
	}

	RecordJobCompleted("completed", 120.5)
	RecordJobCompleted("failed", 30.2)

	completed := testutil.ToFloat64(JobsCompletedTotal.WithLabelValues("completed"))
	if completed != 1.0 {
		t.Errorf("Expected completed counter to be 1.0, got %f", completed)
	}

	failed := testutil.ToFloat64(JobsCompletedTotal.WithLabelValues("failed"))
	if failed != 1.0 {
		t.Errorf("Expected failed counter to be 1.0, got %f", failed)
	}

	inProgress = testutil.ToFloat64(JobsInProgress)
	if inProgress != 0.0 {
		t.Errorf("Expected jobs in progress to be 0.0, got %f", inProgress)
	}
}

func TestUpdateQueueDepth(t *testing.T) {
	UpdateQueueDepth(10)

	queueDepth := testutil.ToFloat64(JobsQueueDepth)
	if queueDepth != 10.0 {
		t.Errorf("Expected queue depth to be 10.0, got %f", queueDepth)
	}
}

func TestUpdateDLQDepth(t *testing.T) {
	UpdateDLQDepth(3)

	dlqDepth := testutil.ToFloat64(JobsDLQDepth)
	if dlqDepth != 3.0 {
		t.Errorf("Expected DLQ depth to be 3.0, got %f", dlqDepth)
	}
}

func TestRecordProviderCall(t *testing.T) {
	ProviderCallsTotal.Reset()

	RecordProviderCall("remote", "success", 4.5)
	RecordProviderCall("remote", "error", 0.8)
	RecordProviderCall("whisper", "success", 12.0)

	remoteSuccess := testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("remote", "success"))
	if remoteSuccess != 1.0 {
		t.Errorf("Expected remote success counter to be 1.0, got %f", remoteSuccess)
	}

	remoteError := testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("remote", "error"))
	if remoteError != 1.0 {
		t.Errorf("Expected remote error counter to be 1.0, got %f", remoteError)
	}
}

func TestRecordChunkProcessed(t *testing.T) {
	ChunksProcessedTotal.Reset()

	RecordChunkProcessed("whisper")
	RecordChunkProcessed("whisper")

	chunks := testutil.ToFloat64(ChunksProcessedTotal.WithLabelValues("whisper"))
	if chunks != 2.0 {
		t.Errorf("Expected chunk counter to be 2.0, got %f", chunks)
	}
}

func TestRecordGenerationFallback(t *testing.T) {
	GenerationFallbacksTotal.Reset()

	RecordGenerationFallback("summary")
	RecordGenerationFallback("quiz")
	RecordGenerationFallback("summary")

	summary := testutil.ToFloat64(GenerationFallbacksTotal.WithLabelValues("summary"))
	if summary != 2.0 {
		t.Errorf("Expected summary fallback counter to be 2.0, got %f", summary)
	}
}

func TestRecordExport(t *testing.T) {
	ExportsTotal.Reset()

	RecordExport("srt")
	RecordExport("vtt")
	RecordExport("srt")

	srt := testutil.ToFloat64(ExportsTotal.WithLabelValues("srt"))
	if srt != 2.0 {
		t.Errorf("Expected srt export counter to be 2.0, got %f", srt)
	}
}

func TestRecordStorageOperation(t *testing.T) {
	StorageOperationsTotal.Reset()
	StorageBytesTransferred.Reset()

	RecordStorageOperation("upload", "success", 1.234, 1048576)

	counter := testutil.ToFloat64(StorageOperationsTotal.WithLabelValues("upload", "success"))
	if counter != 1.0 {
		t.Errorf("Expected storage operation counter to be 1.0, got %f", counter)
	}

	bytes := testutil.ToFloat64(StorageBytesTransferred.WithLabelValues("upload"))
	if bytes != 1048576.0 {
		t.Errorf("Expected bytes transferred to be 1048576.0, got %f", bytes)
	}
}

func TestRecordDatabaseOperation(t *testing.T) {
	DatabaseOperationsTotal.Reset()

	RecordDatabaseOperation("select", "success", 0.05)
	RecordDatabaseOperation("insert", "error", 0.02)

	success := testutil.ToFloat64(DatabaseOperationsTotal.WithLabelValues("select", "success"))
	if success != 1.0 {
		t.Errorf("Expected select success counter to be 1.0, got %f", success)
	}

	error := testutil.ToFloat64(DatabaseOperationsTotal.WithLabelValues("insert", "error"))
	if error != 1.0 {
		t.Errorf("Expected insert error counter to be 1.0, got %f", error)
	}
}

func TestRecordCacheAccess(t *testing.T) {
	CacheHitsTotal.Reset()
	CacheMissesTotal.Reset()

	RecordCacheAccess("asset_status", true)
	RecordCacheAccess("asset_status", true)
	RecordCacheAccess("asset_status", false)

	hits := testutil.ToFloat64(CacheHitsTotal.WithLabelValues("asset_status"))
	if hits != 2.0 {
		t.Errorf("Expected cache hits to be 2.0, got %f", hits)
	}

	misses := testutil.ToFloat64(CacheMissesTotal.WithLabelValues("asset_status"))
	if misses != 1.0 {
		t.Errorf("Expected cache misses to be 1.0, got %f", misses)
	}
}

func TestRecordError(t *testing.T) {
	ErrorsTotal.Reset()

	RecordError("api", "validation")
	RecordError("worker", "ffmpeg")
	RecordError("api", "validation")

	apiErrors := testutil.ToFloat64(ErrorsTotal.WithLabelValues("api", "validation"))
	if apiErrors != 2.0 {
		t.Errorf("Expected API validation errors to be 2.0, got %f", apiErrors)
	}

	workerErrors := testutil.ToFloat64(ErrorsTotal.WithLabelValues("worker", "ffmpeg"))
	if workerErrors != 1.0 {
		t.Errorf("Expected worker FFmpeg errors to be 1.0, got %f", workerErrors)
	}
}

func BenchmarkRecordHTTPRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordHTTPRequest("GET", "/api/v1/media", "200", 0.123)
	}
}
