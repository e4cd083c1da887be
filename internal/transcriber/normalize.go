package transcriber

import (
	"sort"
	"strings"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// NormalizeOptions bounds segment durations during normalization.
type NormalizeOptions struct {
	// MinSegmentSeconds merges a segment shorter than this into its successor.
	MinSegmentSeconds float64
	// MaxSegmentSeconds splits a segment longer than this proportionally by
	// word count across its original time span.
	MaxSegmentSeconds float64
}

// DefaultNormalizeOptions returns the standard duration bounds.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		MinSegmentSeconds: 2,
		MaxSegmentSeconds: 30,
	}
}

// Normalize applies the provider-agnostic segment cleanup: sort by start
// time, drop empty segments, merge ultra-short fragments, split overlong
// spans and reindex. It runs once, centrally, after provider output is
// received.
func Normalize(segments []models.Segment, opts NormalizeOptions) []models.Segment {
	out := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		seg.Text = strings.TrimSpace(seg.Text)
		out = append(out, seg)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	if opts.MinSegmentSeconds > 0 {
		out = mergeShort(out, opts.MinSegmentSeconds)
	}
	if opts.MaxSegmentSeconds > 0 {
		out = splitLong(out, opts.MaxSegmentSeconds)
	}

	for i := range out {
		out[i].Index = i
	}

	return out
}

// mergeShort folds segments shorter than minSeconds into the following
// segment so fragment noise does not survive into the transcript.
func mergeShort(segments []models.Segment, minSeconds float64) []models.Segment {
	if len(segments) < 2 {
		return segments
	}

	out := make([]models.Segment, 0, len(segments))
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		for seg.End-seg.Start < minSeconds && i+1 < len(segments) {
			next := segments[i+1]
			seg.Text = seg.Text + " " + next.Text
			seg.End = next.End
			if seg.Confidence != nil && next.Confidence != nil {
				avg := (*seg.Confidence + *next.Confidence) / 2
				seg.Confidence = &avg
			}
			i++
		}
		out = append(out, seg)
	}

	return out
}

// splitLong breaks segments longer than maxSeconds into pieces, distributing
// words proportionally across the original time span.
func splitLong(segments []models.Segment, maxSeconds float64) []models.Segment {
	out := make([]models.Segment, 0, len(segments))

	for _, seg := range segments {
		duration := seg.End - seg.Start
		if duration <= maxSeconds {
			out = append(out, seg)
			continue
		}

		words := strings.Fields(seg.Text)
		pieces := int(duration/maxSeconds) + 1
		if pieces > len(words) {
			pieces = len(words)
		}
		if pieces < 2 {
			out = append(out, seg)
			continue
		}

		wordsPer := len(words) / pieces
		pieceDuration := duration / float64(pieces)

		for p := 0; p < pieces; p++ {
			lo := p * wordsPer
			hi := lo + wordsPer
			if p == pieces-1 {
				hi = len(words)
			}

			piece := seg
			piece.Text = strings.Join(words[lo:hi], " ")
			piece.Start = seg.Start + float64(p)*pieceDuration
			piece.End = piece.Start + pieceDuration
			if p == pieces-1 {
				piece.End = seg.End
			}
			out = append(out, piece)
		}
	}

	return out
}

// OffsetSegments shifts all segment timestamps by offsetSeconds. Used to make
// per-chunk timings globally monotonic when concatenating chunk results.
func OffsetSegments(segments []models.Segment, offsetSeconds float64) []models.Segment {
	out := make([]models.Segment, len(segments))
	for i, seg := range segments {
		seg.Start += offsetSeconds
		seg.End += offsetSeconds
		out[i] = seg
	}
	return out
}
