package domain

import (
	"context"
	"time"
)

// Session holds one quiz-taking interaction. It is created per generation
// request and lives in the cache until it expires or is deleted.
type Session struct {
	ID         string            `json:"id"`
	Source     Source            `json:"source"`
	Transcript string            `json:"transcript"`
	Summary    string            `json:"summary"`
	Questions  []Question        `json:"questions"`
	Warnings   []ParseDiagnostic `json:"warnings,omitempty"`
	Answers    map[int]string    `json:"answers,omitempty"`
	Result     *GradeResult      `json:"result,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Graded reports whether answers were submitted for the session.
func (s *Session) Graded() bool {
	return s.Result != nil
}

// SessionRepository persists sessions.
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	// Get returns a SESSION_NOT_FOUND DomainError when the session is missing or expired.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
