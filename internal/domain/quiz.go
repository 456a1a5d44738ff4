package domain

import (
	"fmt"
	"strings"
)

// ChoicesPerQuestion is the number of answer options every parsed question carries.
const ChoicesPerQuestion = 4

// Question is one multiple-choice item parsed from model output.
type Question struct {
	Text          string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
	// AnswerMarked is false when no choice carried the sentinel and the
	// first choice was assumed correct.
	AnswerMarked bool `json:"answer_marked"`
}

// HasChoice reports whether answer is one of the question's choices.
func (q Question) HasChoice(answer string) bool {
	for _, c := range q.Choices {
		if c == answer {
			return true
		}
	}
	return false
}

// DiagnosticKind classifies a problem found while parsing quiz text.
type DiagnosticKind string

const (
	DiagnosticTooShort        DiagnosticKind = "too_short"
	DiagnosticUnmarked        DiagnosticKind = "unmarked"
	DiagnosticMultipleMarkers DiagnosticKind = "multiple_markers"
)

// ParseDiagnostic points at a quiz block that was dropped or parsed with a fallback.
type ParseDiagnostic struct {
	Block   int            `json:"block"`
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

// AnswerStatus is the outcome of grading one answer.
type AnswerStatus string

const (
	StatusCorrect   AnswerStatus = "Correct"
	StatusIncorrect AnswerStatus = "Incorrect"
)

// Feedback is the graded result of a single question.
type Feedback struct {
	Index            int          `json:"index"`
	Question         string       `json:"question"`
	UserAnswer       string       `json:"user_answer"`
	CorrectAnswer    string       `json:"correct_answer"`
	Status           AnswerStatus `json:"status"`
	Explanation      string       `json:"explanation,omitempty"`
	ExplanationError *ErrorInfo   `json:"explanation_error,omitempty"`
}

// GradeResult aggregates feedback for a whole quiz.
type GradeResult struct {
	Items        []Feedback `json:"items"`
	CorrectCount int        `json:"correct_count"`
	Total        int        `json:"total"`
}

// ScoreLine renders the aggregate score the way it is shown to quiz takers.
func (r *GradeResult) ScoreLine() string {
	return fmt.Sprintf("Your total score is %d out of %d", r.CorrectCount, r.Total)
}

// SourceKind tells where a transcript came from.
type SourceKind string

const (
	SourceYouTube SourceKind = "youtube"
	SourceUpload  SourceKind = "upload"
)

// Source identifies the media a quiz was generated from.
type Source struct {
	Kind     SourceKind `json:"kind"`
	URL      string     `json:"url,omitempty"`
	VideoID  string     `json:"video_id,omitempty"`
	FileName string     `json:"file_name,omitempty"`
}

func (s Source) String() string {
	switch s.Kind {
	case SourceYouTube:
		return "youtube:" + s.VideoID
	case SourceUpload:
		return "upload:" + s.FileName
	default:
		return string(s.Kind)
	}
}

// QuizResult is the output of a full transcript -> summary -> quiz run.
type QuizResult struct {
	Source      Source            `json:"source"`
	Transcript  string            `json:"transcript"`
	Summary     string            `json:"summary"`
	Questions   []Question        `json:"questions"`
	Diagnostics []ParseDiagnostic `json:"diagnostics,omitempty"`
}

// SummaryResult is the output of a summary-only run.
type SummaryResult struct {
	Source     Source `json:"source"`
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}

// NormalizeAnswer trims surrounding whitespace from a submitted answer.
func NormalizeAnswer(answer string) string {
	return strings.TrimSpace(answer)
}
