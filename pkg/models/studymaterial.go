package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StudyMaterial holds flashcards and quiz items derived from a transcript.
// It is not authoritative: every generation call creates a new record and
// older ones remain queryable.
type StudyMaterial struct {
	ID           string     `json:"id" db:"id"`
	TranscriptID string     `json:"transcript_id" db:"transcript_id"`
	AssetID      string     `json:"asset_id" db:"asset_id"`
	Language     string     `json:"language" db:"language"`
	Flashcards   Flashcards `json:"flashcards" db:"flashcards"`
	QuizItems    QuizItems  `json:"quiz_items" db:"quiz_items"`
	Summary      string     `json:"summary,omitempty" db:"summary"`
	FallbackUsed bool       `json:"fallback_used" db:"fallback_used"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Flashcard is a single front/back study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Flashcards is stored as a JSONB column.
type Flashcards []Flashcard

// Value implements driver.Valuer for database storage
func (f Flashcards) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for database retrieval
func (f *Flashcards) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, f)
}

// QuizItem is one multiple-choice question.
type QuizItem struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation,omitempty"`
}

// QuizItems is stored as a JSONB column.
type QuizItems []QuizItem

// Value implements driver.Valuer for database storage
func (q QuizItems) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner for database retrieval
func (q *QuizItems) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, q)
}

// CorrectAnswer returns the text of the correct option, or "" when the
// index is out of range.
func (q *QuizItem) CorrectAnswer() string {
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectOptionIndex]
}

// AnalysisInsight holds scoring and topic analysis derived from a transcript.
type AnalysisInsight struct {
	ID             string      `json:"id" db:"id"`
	TranscriptID   string      `json:"transcript_id" db:"transcript_id"`
	AssetID        string      `json:"asset_id" db:"asset_id"`
	OverallScore   int         `json:"overall_score" db:"overall_score"`
	AgendaCoverage int         `json:"agenda_coverage" db:"agenda_coverage"`
	Explanation    string      `json:"explanation" db:"explanation"`
	ActionItems    ActionItems `json:"action_items" db:"action_items"`
	Topics         Topics      `json:"topics" db:"topics"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// ActionItem is one follow-up task extracted from the transcript.
type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee,omitempty"`
}

// ActionItems is stored as a JSONB column.
type ActionItems []ActionItem

// Value implements driver.Valuer for database storage
func (a ActionItems) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *ActionItems) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Topic is one detected topic with a 0-100 relevance.
type Topic struct {
	Topic     string `json:"topic"`
	Relevance int    `json:"relevance"`
}

// Topics is stored as a JSONB column.
type Topics []Topic

// Value implements driver.Valuer for database storage
func (t Topics) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for database retrieval
func (t *Topics) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, t)
}
