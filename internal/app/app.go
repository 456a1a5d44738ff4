// Package app assembles the services shared by the HTTP server and the CLI.
package app

import (
	"net/http"

	yt "github.com/kkdai/youtube/v2"
	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"

	"tubequiz/internal/adapter/embedding"
	"tubequiz/internal/adapter/llm"
	"tubequiz/internal/adapter/transcriber"
	"tubequiz/internal/adapter/youtube"
	"tubequiz/internal/config"
	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
	"tubequiz/internal/quiztext"
	"tubequiz/internal/service"
)

// Services are the wired application services.
type Services struct {
	Pipeline service.PipelineService
	Grading  service.GradingService
	Tutor    service.TutorService
}

// NewServices builds every service from cfg. cache may be nil, in which
// case transcripts and embeddings are not cached.
func NewServices(cfg *config.Config, cache domain.Cache) (*Services, error) {
	l := logger.Get()

	model, err := llm.NewModel(cfg)
	if err != nil {
		return nil, domain.NewError(domain.CodeConfig, "failed to create LLM model", err)
	}
	client := llm.NewClient(model, llm.Options{
		Timeout:           cfg.LLM.Timeout,
		Temperature:       cfg.LLM.Temperature,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		MaxInputChars:     cfg.LLM.MaxInputChars,
		Sentinel:          cfg.Quiz.Sentinel,
	})
	l.Info("LLM client ready", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.ModelName()))

	transcripts := youtube.NewTranscriptSource(
		&yt.Client{HTTPClient: &http.Client{Timeout: cfg.LLM.Timeout}},
		cache,
		cfg.Transcript.CacheTTL,
		cfg.Transcript.Languages,
	)

	var media domain.Transcriber
	if cfg.Transcription.Provider == config.TranscriptionWhisper {
		var converter transcriber.MediaConverter
		if cfg.Transcription.Convert {
			converter = transcriber.FFmpegConverter{}
		}
		media = transcriber.NewWhisperTranscriber(
			transcriber.NewOpenAIClient(cfg.OpenAI.APIKey),
			converter,
			transcriber.Options{
				Model:    cfg.Transcription.Model,
				TempDir:  cfg.Transcription.TempDir,
				MaxBytes: cfg.MaxUploadBytes(),
			},
		)
	} else {
		l.Info("Media transcription disabled")
	}

	embeddings, err := newEmbeddingService(cfg, cache)
	if err != nil {
		return nil, err
	}

	pipeline := service.NewPipelineService(transcripts, media, client, client, service.PipelineOptions{
		NumQuestions: cfg.Quiz.NumQuestions,
		Parse: quiztext.Options{
			Sentinel:      cfg.Quiz.Sentinel,
			RequireMarker: cfg.Quiz.RequireMarker,
		},
	})

	return &Services{
		Pipeline: pipeline,
		Grading:  service.NewGradingService(client, cfg.LLM.MaxConcurrency),
		Tutor: service.NewTutorService(client, embeddings, service.TutorOptions{
			ChunkWords:      cfg.Tutor.ChunkWords,
			TopK:            cfg.Tutor.TopK,
			MaxContextChars: cfg.Tutor.MaxContextChars,
		}),
	}, nil
}

func newEmbeddingService(cfg *config.Config, cache domain.Cache) (domain.EmbeddingService, error) {
	var (
		embedder lcembeddings.Embedder
		err      error
	)
	switch cfg.Embedding.Source {
	case config.ProviderOpenAI:
		embedder, err = embedding.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.Embedding.Model)
	case config.ProviderOllama:
		embedder, err = embedding.NewOllamaEmbedder(cfg.Ollama.ServerURL, cfg.Embedding.Model)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewError(domain.CodeConfig, "failed to create embedder", err)
	}

	logger.Get().Info("Embedding-based excerpt selection enabled", zap.String("source", cfg.Embedding.Source))
	return embedding.NewService(embedder, cache, cfg.Embedding.Source, cfg.Embedding.Model, cfg.Embedding.CacheTTL), nil
}
