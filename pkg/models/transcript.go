package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Transcript represents the durable, versioned text record produced by a
// successful transcription job.
type Transcript struct {
	ID          string      `json:"id" db:"id"`
	AssetID     string      `json:"asset_id" db:"asset_id"`
	OwnerID     *string     `json:"owner_id,omitempty" db:"owner_id"`
	FullText    string      `json:"full_text" db:"full_text"`
	Language    string      `json:"language" db:"language"`
	Confidence  *float64    `json:"confidence,omitempty" db:"confidence"`
	Segments    Segments    `json:"segments" db:"segments"`
	Version     int         `json:"version" db:"version"`
	EditHistory EditHistory `json:"edit_history" db:"edit_history"`
	RenderedAt  RenderedAt  `json:"rendered_at,omitempty" db:"rendered_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// Segment is one timestamped span of transcript text.
type Segment struct {
	Index          int      `json:"index"`
	Start          float64  `json:"start"`
	End            float64  `json:"end"`
	Text           string   `json:"text"`
	Confidence     *float64 `json:"confidence,omitempty"`
	IsEdited       bool     `json:"is_edited,omitempty"`
	OriginalText   string   `json:"original_text,omitempty"`
	IsHighlighted  bool     `json:"is_highlighted,omitempty"`
	HighlightColor string   `json:"highlight_color,omitempty"`
	HighlightNote  string   `json:"highlight_note,omitempty"`
}

// Segments is the ordered segment list, stored as a JSONB column.
type Segments []Segment

// Value implements driver.Valuer for database storage
func (s Segments) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *Segments) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// EditEntry records one segment edit in the append-only history log.
type EditEntry struct {
	SegmentIndex int       `json:"segment_index"`
	PreviousText string    `json:"previous_text"`
	NewText      string    `json:"new_text"`
	EditedAt     time.Time `json:"edited_at"`
}

// EditHistory is the append-only edit log, stored as a JSONB column.
type EditHistory []EditEntry

// Value implements driver.Valuer for database storage
func (h EditHistory) Value() (driver.Value, error) {
	return json.Marshal(h)
}

// Scan implements sql.Scanner for database retrieval
func (h *EditHistory) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, h)
}

// RenderedAt tracks the last export time per render format.
type RenderedAt map[string]time.Time

// Value implements driver.Valuer for database storage
func (r RenderedAt) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for database retrieval
func (r *RenderedAt) Scan(value interface{}) error {
	if value == nil {
		*r = make(RenderedAt)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// JoinFullText rebuilds the full transcript text by joining segment texts
// with single spaces.
func JoinFullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// EditSegment replaces the text of one segment, preserving the pre-edit text
// in OriginalText on the first edit only, bumping the version and appending
// one entry to the edit history.
func (t *Transcript) EditSegment(segmentIndex int, newText string) error {
	i, err := t.findSegment(segmentIndex)
	if err != nil {
		return err
	}

	seg := &t.Segments[i]
	previous := seg.Text

	if !seg.IsEdited {
		seg.OriginalText = previous
		seg.IsEdited = true
	}
	seg.Text = newText

	t.EditHistory = append(t.EditHistory, EditEntry{
		SegmentIndex: segmentIndex,
		PreviousText: previous,
		NewText:      newText,
		EditedAt:     time.Now().UTC(),
	})
	t.Version++
	t.FullText = JoinFullText(t.Segments)

	return nil
}

// SetHighlight sets or clears the highlight on one segment.
func (t *Transcript) SetHighlight(segmentIndex int, highlighted bool, color, note string) error {
	i, err := t.findSegment(segmentIndex)
	if err != nil {
		return err
	}

	seg := &t.Segments[i]
	seg.IsHighlighted = highlighted
	if highlighted {
		seg.HighlightColor = color
		seg.HighlightNote = note
	} else {
		seg.HighlightColor = ""
		seg.HighlightNote = ""
	}

	return nil
}

// Search returns the segments whose text contains the query, matched
// case-insensitively.
func (t *Transcript) Search(query string) []Segment {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []Segment
	for _, seg := range t.Segments {
		if strings.Contains(strings.ToLower(seg.Text), query) {
			matches = append(matches, seg)
		}
	}
	return matches
}

// findSegment locates a segment by its stable index field.
func (t *Transcript) findSegment(segmentIndex int) (int, error) {
	for i := range t.Segments {
		if t.Segments[i].Index == segmentIndex {
			return i, nil
		}
	}
	return 0, fmt.Errorf("segment %d: %w", segmentIndex, ErrNotFound)
}
