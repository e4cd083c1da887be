package export

import (
	"fmt"
	"strings"

	"github.com/anshulkhatri/studyscribe/pkg/models"
)

// Supported export formats.
const (
	FormatSRT = "srt"
	FormatVTT = "vtt"
	FormatTXT = "txt"
	FormatTSV = "tsv"
)

// Rendering is one exported transcript document.
type Rendering struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ContentType returns the MIME type served for a format, or an error for an
// unsupported one.
func ContentType(format string) (string, error) {
	switch format {
	case FormatSRT:
		return "application/x-subrip", nil
	case FormatVTT:
		return "text/vtt", nil
	case FormatTXT:
		return "text/plain; charset=utf-8", nil
	case FormatTSV:
		return "text/tab-separated-values", nil
	default:
		return "", &models.ValidationError{Field: "format", Reason: "unsupported export format: " + format}
	}
}

// Filename returns the download filename for a transcript export.
func Filename(transcriptID, format string) string {
	return fmt.Sprintf("transcript_%s.%s", transcriptID, format)
}

// Render serializes the transcript's current segments in the requested
// format. Edited text is always what renders; highlights do not affect
// export output.
func Render(transcript *models.Transcript, format string) (*Rendering, error) {
	contentType, err := ContentType(format)
	if err != nil {
		return nil, err
	}

	var body string
	switch format {
	case FormatSRT:
		body = renderSRT(transcript.Segments)
	case FormatVTT:
		body = renderVTT(transcript.Segments)
	case FormatTXT:
		body = renderTXT(transcript.Segments)
	case FormatTSV:
		body = renderTSV(transcript.Segments)
	}

	return &Rendering{
		Data:        []byte(body),
		ContentType: contentType,
		Filename:    Filename(transcript.ID, format),
	}, nil
}

// renderSRT writes numbered cues with comma-separated milliseconds.
func renderSRT(segments []models.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, ","), formatTimestamp(seg.End, ","))
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderVTT writes a WEBVTT document with dot-separated milliseconds.
func renderVTT(segments []models.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, "."), formatTimestamp(seg.End, "."))
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderTXT writes one segment per line, prefixed with its start time.
func renderTXT(segments []models.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "[%s] %s\n", clockTimestamp(seg.Start), seg.Text)
	}
	return b.String()
}

// renderTSV writes start, end and text columns with a header row. Tabs in
// segment text are replaced so they cannot break the column layout.
func renderTSV(segments []models.Segment) string {
	var b strings.Builder
	b.WriteString("start\tend\ttext\n")
	for _, seg := range segments {
		text := strings.ReplaceAll(seg.Text, "\t", " ")
		fmt.Fprintf(&b, "%.3f\t%.3f\t%s\n", seg.Start, seg.End, text)
	}
	return b.String()
}

// clockTimestamp renders seconds as HH:MM:SS.
func clockTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	total := int64(seconds + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm.
func formatTimestamp(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}

	millis := int64(seconds*1000 + 0.5)
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000

	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}
