package generator

import "fmt"

// Artifact names, used across backends, metrics and logs.
const (
	ArtifactSummary    = "summary"
	ArtifactFlashcards = "flashcards"
	ArtifactQuiz       = "quiz"
	ArtifactAnalysis   = "analysis"
)

func summaryPrompt(text, language string) string {
	return fmt.Sprintf(`Summarize the following transcript in %s. Keep the summary under 300 words and focus on the key concepts a student should remember.

Respond in JSON format with a single key "summary".

Transcript:
%s`, languageOrEnglish(language), text)
}

func flashcardsPrompt(text, language string) string {
	return fmt.Sprintf(`Create 8 to 12 study flashcards in %s from the following transcript. Each card has a "front" (a term or question) and a "back" (the answer or definition).

Respond in JSON format with a single key "flashcards" holding an array of {"front", "back"} objects.

Transcript:
%s`, languageOrEnglish(language), text)
}

func quizPrompt(text, language string) string {
	return fmt.Sprintf(`Create 5 multiple-choice quiz questions in %s from the following transcript. Each question has exactly 4 options and one correct answer.

Respond in JSON format with a single key "quiz_items" holding an array of {"question", "options", "correct_option_index", "explanation"} objects. "correct_option_index" is the zero-based index of the correct option.

Transcript:
%s`, languageOrEnglish(language), text)
}

func analysisPrompt(text, language string) string {
	return fmt.Sprintf(`Analyze the following transcript and respond in %s.

Respond in JSON format with keys "overall_score" (0-100 content quality), "agenda_coverage" (0-100), "explanation", "action_items" (array of {"task", "assignee"}) and "topics" (array of {"topic", "relevance"} with relevance 0-100).

Transcript:
%s`, languageOrEnglish(language), text)
}

func languageOrEnglish(language string) string {
	if language == "" || language == "auto" {
		return "English"
	}
	return language
}
