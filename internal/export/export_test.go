package export

import (
	"strings"
	"testing"

	"github.com/anshulkhatri/studyscribe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTranscript() *models.Transcript {
	return &models.Transcript{
		ID: "t1",
		Segments: models.Segments{
			{Index: 0, Start: 0, End: 2.5, Text: "hello there"},
			{Index: 1, Start: 2.5, End: 3661.25, Text: "general remarks"},
		},
	}
}

func TestRenderSRT(t *testing.T) {
	rendering, err := Render(sampleTranscript(), FormatSRT)
	require.NoError(t, err)

	assert.Equal(t, "application/x-subrip", rendering.ContentType)
	assert.Equal(t, "transcript_t1.srt", rendering.Filename)

	body := string(rendering.Data)
	assert.Contains(t, body, "1\n00:00:00,000 --> 00:00:02,500\nhello there")
	assert.Contains(t, body, "2\n00:00:02,500 --> 01:01:01,250\ngeneral remarks")
}

func TestRenderVTT(t *testing.T) {
	rendering, err := Render(sampleTranscript(), FormatVTT)
	require.NoError(t, err)

	body := string(rendering.Data)
	assert.True(t, strings.HasPrefix(body, "WEBVTT\n\n"))
	assert.Contains(t, body, "00:00:00.000 --> 00:00:02.500\nhello there")
	assert.Equal(t, "text/vtt", rendering.ContentType)
}

func TestRenderTXT(t *testing.T) {
	rendering, err := Render(sampleTranscript(), FormatTXT)
	require.NoError(t, err)

	assert.Equal(t, "[00:00:00] hello there\n[00:00:03] general remarks\n", string(rendering.Data))
}

func TestRenderTSV(t *testing.T) {
	transcript := sampleTranscript()
	transcript.Segments[0].Text = "has\ttab"

	rendering, err := Render(transcript, FormatTSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(rendering.Data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "start\tend\ttext", lines[0])
	assert.Equal(t, "0.000\t2.500\thas tab", lines[1])
	assert.Equal(t, "2.500\t3661.250\tgeneral remarks", lines[2])
}

func TestRenderEditedTextWins(t *testing.T) {
	transcript := sampleTranscript()
	require.NoError(t, transcript.EditSegment(0, "corrected text"))

	rendering, err := Render(transcript, FormatTXT)
	require.NoError(t, err)

	body := string(rendering.Data)
	assert.Contains(t, body, "corrected text")
	assert.NotContains(t, body, "hello there")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(sampleTranscript(), "docx")
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}
