package transcriber

import (
	"strings"
	"testing"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSortsAndDropsEmpty(t *testing.T) {
	segments := []models.Segment{
		{Start: 10, End: 15, Text: "second"},
		{Start: 0, End: 5, Text: "first"},
		{Start: 5, End: 10, Text: "   "},
		{Start: 15, End: 20, Text: ""},
	}

	out := Normalize(segments, NormalizeOptions{})

	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Text)
	assert.Equal(t, "second", out[1].Text)
	assert.Equal(t, 0, out[0].Index)
	assert.Equal(t, 1, out[1].Index)
}

func TestNormalizeMergesShortSegments(t *testing.T) {
	segments := []models.Segment{
		{Start: 0, End: 0.5, Text: "Uh"},
		{Start: 0.5, End: 1.2, Text: "so"},
		{Start: 1.2, End: 8, Text: "today we talk about concurrency"},
	}

	out := Normalize(segments, NormalizeOptions{MinSegmentSeconds: 2})

	require.Len(t, out, 1)
	assert.Equal(t, "Uh so today we talk about concurrency", out[0].Text)
	assert.Equal(t, 0.0, out[0].Start)
	assert.Equal(t, 8.0, out[0].End)
}

func TestNormalizeSplitsLongSegments(t *testing.T) {
	segments := []models.Segment{
		{
			Start: 0,
			End:   90,
			Text:  "one two three four five six seven eight nine ten eleven twelve",
		},
	}

	out := Normalize(segments, NormalizeOptions{MaxSegmentSeconds: 30})

	require.Greater(t, len(out), 1)

	// Pieces cover the original span without gaps.
	assert.Equal(t, 0.0, out[0].Start)
	assert.Equal(t, 90.0, out[len(out)-1].End)
	for i := 1; i < len(out); i++ {
		assert.InDelta(t, out[i-1].End, out[i].Start, 0.001)
	}

	// All words survive the split.
	var allWords int
	for _, seg := range out {
		allWords += len(strings.Fields(seg.Text))
	}
	assert.Equal(t, 12, allWords)
}

func TestNormalizeKeepsWellFormedSegments(t *testing.T) {
	segments := []models.Segment{
		{Start: 0, End: 5, Text: "hello there"},
		{Start: 5, End: 12, Text: "general remarks"},
	}

	out := Normalize(segments, DefaultNormalizeOptions())

	require.Len(t, out, 2)
	assert.Equal(t, "hello there", out[0].Text)
	assert.Equal(t, "general remarks", out[1].Text)
}

func TestOffsetSegments(t *testing.T) {
	segments := []models.Segment{
		{Index: 0, Start: 0, End: 5, Text: "a"},
		{Index: 1, Start: 5, End: 10, Text: "b"},
	}

	out := OffsetSegments(segments, 500)

	assert.Equal(t, 500.0, out[0].Start)
	assert.Equal(t, 505.0, out[0].End)
	assert.Equal(t, 505.0, out[1].Start)
	assert.Equal(t, 510.0, out[1].End)

	// Input is not mutated.
	assert.Equal(t, 0.0, segments[0].Start)
}
