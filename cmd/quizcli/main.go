package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tubequiz/internal/adapter"
	"tubequiz/internal/app"
	"tubequiz/internal/cache"
	"tubequiz/internal/config"
	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
	"tubequiz/internal/tui"
)

func main() {
	var (
		videoURL     string
		mediaPath    string
		configDir    string
		logLevel     string
		noColor      bool
		noCache      bool
		numQuestions int
	)
	pflag.StringVarP(&videoURL, "url", "u", "", "YouTube video URL or ID")
	pflag.StringVarP(&mediaPath, "file", "f", "", "audio or video file to transcribe (mp3, mp4, wav, mov, m4a, webm)")
	pflag.StringVar(&configDir, "config-dir", ".", "directory containing config.yaml")
	pflag.StringVar(&logLevel, "log-level", "error", "log level (logs share the terminal with the quiz)")
	pflag.BoolVar(&noColor, "no-color", false, "disable colored output")
	pflag.BoolVar(&noCache, "no-cache", false, "do not use Redis for transcript and embedding caching")
	pflag.IntVarP(&numQuestions, "questions", "n", 0, "number of questions to request (overrides quiz.num_questions)")
	pflag.Parse()

	if (videoURL == "") == (mediaPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of --url or --file is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Logger.Level = logLevel
	if numQuestions > 0 {
		cfg.Quiz.NumQuestions = numQuestions
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cacheAdapter domain.Cache
	if !noCache {
		if client, err := cache.NewRedisClient(ctx, cfg.Redis); err != nil {
			logger.Get().Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer client.Close()
			cacheAdapter = adapter.NewRedisCacheAdapter(client)
		}
	}

	services, err := app.NewServices(cfg, cacheAdapter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	load := func(ctx context.Context) (*domain.QuizResult, error) {
		if videoURL != "" {
			return services.Pipeline.FromURL(ctx, videoURL)
		}
		f, err := os.Open(mediaPath)
		if err != nil {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot open %s", mediaPath)).WithContext("cause", err.Error())
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return nil, domain.NewInternalError("failed to stat media file", err)
		}
		return services.Pipeline.FromMedia(ctx, domain.MediaUpload{
			FileName: filepath.Base(mediaPath),
			Size:     info.Size(),
			Reader:   f,
		})
	}

	model := tui.NewModel(ctx, load, services.Grading.Grade, tui.Options{NoColor: noColor})
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Quiz UI failed: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", domain.CodeOf(m.Err()), m.Err())
		os.Exit(1)
	}
}
