package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
	"tubequiz/internal/util"
)

// SessionService manages quiz sessions from creation through grading.
type SessionService interface {
	Create(ctx context.Context, result *domain.QuizResult) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	// SubmitAnswers grades the answers and stores them with the result.
	// Resubmitting replaces the previous result.
	SubmitAnswers(ctx context.Context, id string, answers map[int]string) (*domain.Session, error)
	Ask(ctx context.Context, id, question string) (string, error)
	Delete(ctx context.Context, id string) error
}

type sessionService struct {
	repo    domain.SessionRepository
	grading GradingService
	tutor   TutorService
	now     func() time.Time
}

func NewSessionService(repo domain.SessionRepository, grading GradingService, tutor TutorService) SessionService {
	return &sessionService{
		repo:    repo,
		grading: grading,
		tutor:   tutor,
		now:     time.Now,
	}
}

func (s *sessionService) Create(ctx context.Context, result *domain.QuizResult) (*domain.Session, error) {
	if result == nil || len(result.Questions) == 0 {
		return nil, domain.NewInvalidInputError("a session needs at least one question")
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:         util.NewULID(),
		Source:     result.Source,
		Transcript: result.Transcript,
		Summary:    result.Summary,
		Questions:  result.Questions,
		Warnings:   result.Diagnostics,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	logger.Get().Info("Session created",
		zap.String("session_id", session.ID),
		zap.Stringer("source", session.Source),
		zap.Int("questions", len(session.Questions)))
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *sessionService) SubmitAnswers(ctx context.Context, id string, answers map[int]string) (*domain.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	for idx := range answers {
		if idx < 0 || idx >= len(session.Questions) {
			return nil, domain.NewInvalidInputError(
				fmt.Sprintf("answer index %d is out of range [0, %d)", idx, len(session.Questions))).
				WithContext("index", idx)
		}
	}

	session.Answers = answers
	session.Result = s.grading.Grade(ctx, session.Questions, answers)
	session.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	logger.Get().Info("Answers graded",
		zap.String("session_id", id),
		zap.Int("correct", session.Result.CorrectCount),
		zap.Int("total", session.Result.Total))
	return session, nil
}

func (s *sessionService) Ask(ctx context.Context, id, question string) (string, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.tutor.Ask(ctx, session.Transcript, question)
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
