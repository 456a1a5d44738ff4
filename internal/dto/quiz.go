package dto

import (
	"time"

	"tubequiz/internal/domain"
)

// CreateSessionRequest starts a quiz session from a YouTube video.
type CreateSessionRequest struct {
	URL string `json:"url"`
}

// SummaryRequest asks for a summary only.
type SummaryRequest struct {
	URL string `json:"url"`
}

// SubmitAnswersRequest maps question index to the chosen answer.
// JSON object keys are decoded into ints by encoding/json.
type SubmitAnswersRequest struct {
	Answers map[int]string `json:"answers"`
}

// AskRequest is a follow-up question about the session's video.
type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type SummaryResponse struct {
	Source          domain.Source `json:"source"`
	TranscriptChars int           `json:"transcript_chars"`
	Summary         string        `json:"summary"`
}

// QuestionResponse is a question as shown to the quiz taker. CorrectAnswer
// is only filled after grading.
type QuestionResponse struct {
	Index         int      `json:"index"`
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

// SessionResponse is the client view of a session.
type SessionResponse struct {
	ID        string                   `json:"id"`
	Source    domain.Source            `json:"source"`
	Summary   string                   `json:"summary"`
	Questions []QuestionResponse       `json:"questions"`
	Warnings  []domain.ParseDiagnostic `json:"warnings,omitempty"`
	Result    *GradeResponse           `json:"result,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// GradeResponse is the graded outcome of a submission.
type GradeResponse struct {
	Items        []domain.Feedback `json:"items"`
	CorrectCount int               `json:"correct_count"`
	Total        int               `json:"total"`
	Score        string            `json:"score"`
}

func NewSessionResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID,
		Source:    s.Source,
		Summary:   s.Summary,
		Questions: make([]QuestionResponse, len(s.Questions)),
		Warnings:  s.Warnings,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for i, q := range s.Questions {
		resp.Questions[i] = QuestionResponse{Index: i, Question: q.Text, Choices: q.Choices}
		if s.Graded() {
			resp.Questions[i].CorrectAnswer = q.CorrectAnswer
		}
	}
	if s.Graded() {
		g := NewGradeResponse(s.Result)
		resp.Result = &g
	}
	return resp
}

func NewGradeResponse(r *domain.GradeResult) GradeResponse {
	return GradeResponse{
		Items:        r.Items,
		CorrectCount: r.CorrectCount,
		Total:        r.Total,
		Score:        r.ScoreLine(),
	}
}

func NewSummaryResponse(r *domain.SummaryResult) SummaryResponse {
	return SummaryResponse{
		Source:          r.Source,
		TranscriptChars: len([]rune(r.Transcript)),
		Summary:         r.Summary,
	}
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse lists every invalid field of a request.
type ValidationErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Errors  []domain.ValidationError `json:"errors"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
}
