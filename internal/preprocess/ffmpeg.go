package preprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// FFmpeg wraps ffmpeg/ffprobe subprocess operations used to normalize
// arbitrary media into chunked 16 kHz mono audio for transcription.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpeg creates a new FFmpeg instance
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// probeOutput holds the subset of ffprobe JSON output we read
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// probe runs ffprobe and parses its JSON output.
func (f *FFmpeg) probe(ctx context.Context, inputPath string) (*probeOutput, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	return &out, nil
}

// ProbeDuration returns the media duration in seconds. An unparsable duration
// yields 0, which callers must treat as "unknown" rather than an error.
func (f *FFmpeg) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	out, err := f.probe(ctx, inputPath)
	if err != nil {
		return 0, &models.PreprocessingError{Stage: "probe", Cause: err}
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, nil
	}

	return duration, nil
}

// ExtractAudio produces a 16 kHz mono PCM wav at outputPath. Audio inputs
// already in that shape are returned unchanged to avoid a useless re-encode.
// A missing decoder surfaces as ErrUnsupportedMedia.
func (f *FFmpeg) ExtractAudio(ctx context.Context, inputPath, outputPath, sourceKind string) (string, error) {
	if sourceKind != models.AssetKindVideo {
		if ok, err := f.isTranscribableAudio(ctx, inputPath); err == nil && ok {
			return inputPath, nil
		}
	}

	args := []string{
		"-i", inputPath,
		"-vn", // No video
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "Invalid data found") ||
			strings.Contains(stderr.String(), "could not find codec") ||
			strings.Contains(stderr.String(), "Decoder not found") {
			return "", fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, stderr.String())
		}
		return "", &models.PreprocessingError{
			Stage: "extract",
			Cause: fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String()),
		}
	}

	return outputPath, nil
}

// isTranscribableAudio reports whether the input is already 16 kHz mono PCM.
func (f *FFmpeg) isTranscribableAudio(ctx context.Context, inputPath string) (bool, error) {
	out, err := f.probe(ctx, inputPath)
	if err != nil {
		return false, err
	}

	for _, stream := range out.Streams {
		if stream.CodecType == "audio" {
			return stream.CodecName == "pcm_s16le" &&
				stream.SampleRate == "16000" &&
				stream.Channels == 1, nil
		}
	}

	return false, nil
}

// Chunk holds one bounded-duration audio slice.
type Chunk struct {
	Index    int
	Path     string
	Start    float64
	Duration float64
}

// ChunkPlan describes the split of a recording into bounded slices.
type ChunkPlan struct {
	Count         int
	ChunkDuration float64
	Total         float64
}

// PlanChunks computes how a recording of the given total duration splits into
// slices of at most maxChunkSeconds. The nominal slice duration is
// total/ceil(total/max) so all slices are equal length except possibly the last.
func PlanChunks(totalSeconds, maxChunkSeconds float64) ChunkPlan {
	if maxChunkSeconds <= 0 || totalSeconds <= maxChunkSeconds {
		return ChunkPlan{Count: 1, ChunkDuration: totalSeconds, Total: totalSeconds}
	}

	count := int(math.Ceil(totalSeconds / maxChunkSeconds))
	return ChunkPlan{
		Count:         count,
		ChunkDuration: totalSeconds / float64(count),
		Total:         totalSeconds,
	}
}

// SplitChunks splits the input into sequential, non-overlapping chunks under
// outputDir, named deterministically. When the duration fits in one chunk the
// input itself is returned. Output files are owned by the caller and must be
// removed after use on every exit path.
func (f *FFmpeg) SplitChunks(ctx context.Context, inputPath, outputDir string, maxChunkSeconds float64) ([]Chunk, error) {
	duration, err := f.ProbeDuration(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	plan := PlanChunks(duration, maxChunkSeconds)
	if plan.Count <= 1 {
		return []Chunk{{Index: 0, Path: inputPath, Start: 0, Duration: duration}}, nil
	}

	chunks := make([]Chunk, 0, plan.Count)
	for i := 0; i < plan.Count; i++ {
		start := float64(i) * plan.ChunkDuration
		length := plan.ChunkDuration
		if i == plan.Count-1 {
			length = duration - start
		}

		outputPath := filepath.Join(outputDir, fmt.Sprintf("chunk_%03d.wav", i))
		args := []string{
			"-i", inputPath,
			"-ss", fmt.Sprintf("%.3f", start),
			"-t", fmt.Sprintf("%.3f", length),
			"-c", "copy",
			"-y",
			outputPath,
		}

		cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, &models.PreprocessingError{
				Stage: "chunk",
				Cause: fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String()),
			}
		}

		chunks = append(chunks, Chunk{Index: i, Path: outputPath, Start: start, Duration: length})
	}

	return chunks, nil
}

// CleanupStale removes temp job directories older than maxAge. Failures are
// reported but a partially cleaned directory is not an error: the sweep is
// best-effort recovery after abnormal termination.
func CleanupStale(tempDir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read temp dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(tempDir, entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}
