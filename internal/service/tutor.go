package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
	"tubequiz/internal/util"
)

// TutorService answers follow-up questions about a transcript.
type TutorService interface {
	Ask(ctx context.Context, transcript, question string) (string, error)
}

// TutorOptions control how much of the transcript is handed to the model.
type TutorOptions struct {
	ChunkWords      int
	TopK            int
	MaxContextChars int
}

type tutorService struct {
	answerer   domain.Answerer
	embeddings domain.EmbeddingService
	opts       TutorOptions
}

// NewTutorService creates a TutorService. embeddings may be nil, in which
// case the whole (truncated) transcript is used as context.
func NewTutorService(answerer domain.Answerer, embeddings domain.EmbeddingService, opts TutorOptions) TutorService {
	if opts.ChunkWords <= 0 {
		opts.ChunkWords = 200
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 12000
	}
	return &tutorService{answerer: answerer, embeddings: embeddings, opts: opts}
}

func (s *tutorService) Ask(ctx context.Context, transcript, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.NewInvalidInputError("question must not be empty")
	}
	if strings.TrimSpace(transcript) == "" {
		return "", domain.NewInvalidInputError("there is no transcript to answer from")
	}

	excerpts := s.selectContext(ctx, transcript, question)
	return s.answerer.Answer(ctx, excerpts, question)
}

// selectContext returns the transcript chunks most similar to question,
// in transcript order.
func (s *tutorService) selectContext(ctx context.Context, transcript, question string) string {
	chunks := chunkWords(transcript, s.opts.ChunkWords)
	if s.embeddings == nil || len(chunks) <= s.opts.TopK {
		return truncateRunes(strings.Join(chunks, " "), s.opts.MaxContextChars)
	}

	l := logger.Get()
	chunkVecs, err := s.embeddings.GenerateBatch(ctx, chunks)
	if err != nil {
		l.Warn("Falling back to full transcript: chunk embedding failed", zap.Error(err))
		return truncateRunes(strings.Join(chunks, " "), s.opts.MaxContextChars)
	}
	queryVec, err := s.embeddings.Generate(ctx, question)
	if err != nil {
		l.Warn("Falling back to full transcript: question embedding failed", zap.Error(err))
		return truncateRunes(strings.Join(chunks, " "), s.opts.MaxContextChars)
	}
	top, err := util.TopKBySimilarity(queryVec, chunkVecs, s.opts.TopK)
	if err != nil {
		l.Warn("Falling back to full transcript: similarity ranking failed", zap.Error(err))
		return truncateRunes(strings.Join(chunks, " "), s.opts.MaxContextChars)
	}

	sort.Ints(top)
	selected := make([]string, 0, len(top))
	for _, i := range top {
		selected = append(selected, chunks[i])
	}
	l.Debug("Selected transcript excerpts", zap.Ints("chunks", top), zap.Int("of", len(chunks)))
	return truncateRunes(strings.Join(selected, "\n\n"), s.opts.MaxContextChars)
}

func chunkWords(text string, size int) []string {
	words := strings.Fields(text)
	var chunks []string
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
