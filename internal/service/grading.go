package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
	"tubequiz/internal/metrics"
)

// GradingService grades submitted answers against parsed questions.
type GradingService interface {
	// Grade never fails. Explanation failures are recorded on the affected item.
	Grade(ctx context.Context, questions []domain.Question, answers map[int]string) *domain.GradeResult
}

type gradingService struct {
	explainer      domain.Explainer
	maxConcurrency int
}

// NewGradingService creates a GradingService that requests at most
// maxConcurrency explanations at a time.
func NewGradingService(explainer domain.Explainer, maxConcurrency int) GradingService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &gradingService{explainer: explainer, maxConcurrency: maxConcurrency}
}

func (s *gradingService) Grade(ctx context.Context, questions []domain.Question, answers map[int]string) *domain.GradeResult {
	result := &domain.GradeResult{
		Items: make([]domain.Feedback, len(questions)),
		Total: len(questions),
	}

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)

	for i, q := range questions {
		userAnswer := domain.NormalizeAnswer(answers[i])
		result.Items[i] = domain.Feedback{
			Index:         i,
			Question:      q.Text,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
		}

		// An empty answer never matches, even against an empty choice.
		if userAnswer != "" && userAnswer == q.CorrectAnswer {
			result.Items[i].Status = domain.StatusCorrect
			result.CorrectCount++
			metrics.AnswersGraded.WithLabelValues(string(domain.StatusCorrect)).Inc()
			continue
		}

		result.Items[i].Status = domain.StatusIncorrect
		metrics.AnswersGraded.WithLabelValues(string(domain.StatusIncorrect)).Inc()

		item := &result.Items[i]
		question := q
		g.Go(func() error {
			explanation, err := s.explainer.Explain(ctx, question, userAnswer)
			if err != nil {
				logger.Get().Warn("Failed to explain incorrect answer",
					zap.Int("index", item.Index),
					zap.Error(err))
				item.ExplanationError = domain.ToErrorInfo(err)
				return nil
			}
			item.Explanation = explanation
			return nil
		})
	}

	_ = g.Wait()
	return result
}
