package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tubequiz/internal/adapter/youtube"
	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
	"tubequiz/internal/metrics"
	"tubequiz/internal/quiztext"
)

// PipelineService runs transcript acquisition, summarization and quiz
// generation for a single source.
type PipelineService interface {
	FromURL(ctx context.Context, rawURL string) (*domain.QuizResult, error)
	FromMedia(ctx context.Context, upload domain.MediaUpload) (*domain.QuizResult, error)
	// Summarize only fetches the transcript and summarizes it.
	Summarize(ctx context.Context, rawURL string) (*domain.SummaryResult, error)
}

// PipelineOptions tune quiz generation.
type PipelineOptions struct {
	NumQuestions int
	Parse        quiztext.Options
}

type pipelineService struct {
	transcripts domain.TranscriptSource
	transcriber domain.Transcriber
	summarizer  domain.Summarizer
	generator   domain.QuizGenerator
	opts        PipelineOptions
}

// NewPipelineService wires the pipeline. transcriber may be nil when media
// uploads are disabled.
func NewPipelineService(
	transcripts domain.TranscriptSource,
	transcriber domain.Transcriber,
	summarizer domain.Summarizer,
	generator domain.QuizGenerator,
	opts PipelineOptions,
) PipelineService {
	if opts.NumQuestions <= 0 {
		opts.NumQuestions = 10
	}
	return &pipelineService{
		transcripts: transcripts,
		transcriber: transcriber,
		summarizer:  summarizer,
		generator:   generator,
		opts:        opts,
	}
}

func (s *pipelineService) FromURL(ctx context.Context, rawURL string) (*domain.QuizResult, error) {
	source, transcript, err := s.fetchURL(ctx, rawURL)
	if err != nil {
		recordRun(domain.SourceYouTube, err)
		return nil, err
	}
	result, err := s.buildQuiz(ctx, source, transcript)
	recordRun(domain.SourceYouTube, err)
	return result, err
}

func (s *pipelineService) FromMedia(ctx context.Context, upload domain.MediaUpload) (*domain.QuizResult, error) {
	if s.transcriber == nil {
		err := domain.NewError(domain.CodeUnsupportedMedia, "Media uploads are disabled on this server", nil)
		recordRun(domain.SourceUpload, err)
		return nil, err
	}

	source := domain.Source{Kind: domain.SourceUpload, FileName: upload.FileName}
	transcript, err := s.transcriber.Transcribe(ctx, upload)
	if err != nil {
		recordRun(domain.SourceUpload, err)
		return nil, err
	}
	result, err := s.buildQuiz(ctx, source, transcript)
	recordRun(domain.SourceUpload, err)
	return result, err
}

func (s *pipelineService) Summarize(ctx context.Context, rawURL string) (*domain.SummaryResult, error) {
	source, transcript, err := s.fetchURL(ctx, rawURL)
	if err == nil {
		var summary string
		summary, err = s.summarizer.Summarize(ctx, transcript)
		if err == nil {
			recordRun(domain.SourceYouTube, nil)
			return &domain.SummaryResult{Source: source, Transcript: transcript, Summary: summary}, nil
		}
	}
	recordRun(domain.SourceYouTube, err)
	return nil, err
}

func (s *pipelineService) fetchURL(ctx context.Context, rawURL string) (domain.Source, string, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return domain.Source{}, "", err
	}
	source := domain.Source{Kind: domain.SourceYouTube, URL: strings.TrimSpace(rawURL), VideoID: videoID}

	transcript, err := s.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return source, "", err
	}
	if strings.TrimSpace(transcript) == "" {
		return source, "", domain.NewTranscriptUnavailableError(videoID, nil)
	}
	return source, transcript, nil
}

// buildQuiz summarizes the transcript and generates the quiz concurrently,
// then parses the quiz text.
func (s *pipelineService) buildQuiz(ctx context.Context, source domain.Source, transcript string) (*domain.QuizResult, error) {
	l := logger.Get().With(zap.Stringer("source", source))

	if strings.TrimSpace(transcript) == "" {
		return nil, domain.NewError(domain.CodeTranscriptUnavailable, "The transcript is empty", nil)
	}

	var summary, rawQuiz string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.summarizer.Summarize(gctx, transcript)
		return err
	})
	g.Go(func() error {
		var err error
		rawQuiz, err = s.generator.GenerateQuiz(gctx, transcript, s.opts.NumQuestions)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parsed := quiztext.Parse(rawQuiz, s.opts.Parse)
	metrics.ParsedQuestions.Observe(float64(len(parsed.Questions)))

	for _, d := range parsed.Diagnostics {
		l.Warn("Quiz block parsed with problems", zap.Int("block", d.Block), zap.String("kind", string(d.Kind)))
	}
	if len(parsed.Questions) == 0 {
		l.Error("No questions parsed from model output", zap.Int("blocks", parsed.Blocks))
		return nil, domain.NewQuizParseError(parsed.Blocks).WithContext("diagnostics", parsed.Diagnostics)
	}

	l.Info("Quiz generated",
		zap.Int("questions", len(parsed.Questions)),
		zap.Int("requested", s.opts.NumQuestions),
		zap.Int("diagnostics", len(parsed.Diagnostics)))

	return &domain.QuizResult{
		Source:      source,
		Transcript:  transcript,
		Summary:     summary,
		Questions:   parsed.Questions,
		Diagnostics: parsed.Diagnostics,
	}, nil
}

func recordRun(kind domain.SourceKind, err error) {
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(domain.CodeOf(err)))
	}
	metrics.PipelineRuns.WithLabelValues(string(kind), outcome).Inc()
}
