package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteBackendEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lecture text", req.Text)
		assert.Equal(t, "en", req.Language)

		switch r.URL.Path {
		case "/generate/summary":
			json.NewEncoder(w).Encode(map[string]string{"summary": "short summary"})
		case "/generate/flashcards":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"flashcards": []map[string]string{{"front": "f", "back": "b"}},
			})
		case "/generate/quiz":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"quiz_items": []map[string]interface{}{
					{"question": "q", "options": []string{"a", "b"}, "correct_option_index": 1},
				},
			})
		case "/generate/analysis":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"overall_score": 90, "agenda_coverage": 85, "explanation": "good",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	backend := NewRemoteBackend(server.URL, time.Second)
	ctx := context.Background()

	summary, err := backend.GenerateSummary(ctx, "lecture text", "en")
	require.NoError(t, err)
	assert.Equal(t, "short summary", summary)

	cards, err := backend.GenerateFlashcards(ctx, "lecture text", "en")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "f", cards[0].Front)

	quiz, err := backend.GenerateQuiz(ctx, "lecture text", "en")
	require.NoError(t, err)
	require.Len(t, quiz, 1)
	assert.Equal(t, 1, quiz[0].CorrectOptionIndex)

	insight, err := backend.GenerateAnalysis(ctx, "lecture text", "en")
	require.NoError(t, err)
	assert.Equal(t, 90, insight.OverallScore)
}

func TestRemoteBackendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	backend := NewRemoteBackend(server.URL, time.Second)

	_, err := backend.GenerateSummary(context.Background(), "lecture text", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestDecodeCompletionWithCodeFence(t *testing.T) {
	var out struct {
		Summary string `json:"summary"`
	}

	err := decodeCompletion("```json\n{\"summary\": \"fenced\"}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, "fenced", out.Summary)
}
