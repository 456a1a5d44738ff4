// Package transcriber turns uploaded audio and video into transcript text.
package transcriber

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
)

// AudioClient is the part of the go-openai client used for transcription.
type AudioClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Options configure a WhisperTranscriber.
type Options struct {
	Model string
	// TempDir holds per-request working directories. Empty means os.TempDir().
	TempDir string
	// MaxBytes rejects larger uploads. Zero disables the check.
	MaxBytes int64
	Timeout  time.Duration
}

// WhisperTranscriber implements domain.Transcriber with OpenAI Whisper.
type WhisperTranscriber struct {
	client    AudioClient
	converter MediaConverter
	opts      Options
}

var _ domain.Transcriber = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber creates a transcriber. A nil converter sends uploads
// to Whisper unmodified.
func NewWhisperTranscriber(client AudioClient, converter MediaConverter, opts Options) *WhisperTranscriber {
	if opts.Model == "" {
		opts.Model = openai.Whisper1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &WhisperTranscriber{client: client, converter: converter, opts: opts}
}

// NewOpenAIClient builds the go-openai client used for Whisper calls.
func NewOpenAIClient(apiKey string) *openai.Client {
	return openai.NewClient(apiKey)
}

// Transcribe stores the upload in a private temp directory, converts it to
// speech-friendly audio and sends it to Whisper. The directory is always removed.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, upload domain.MediaUpload) (string, error) {
	l := logger.Get().With(zap.String("file_name", upload.FileName))

	if !IsSupported(upload.FileName) {
		return "", domain.NewUnsupportedMediaError(upload.FileName).
			WithContext("supported", SupportedExtensions())
	}
	if w.opts.MaxBytes > 0 && upload.Size > w.opts.MaxBytes {
		return "", domain.NewInvalidInputError(fmt.Sprintf("file exceeds the %d MB upload limit", w.opts.MaxBytes/(1024*1024)))
	}

	workDir, err := os.MkdirTemp(w.opts.TempDir, "tubequiz-upload-*")
	if err != nil {
		return "", domain.NewInternalError("failed to create temp directory", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			l.Warn("Failed to remove temp directory", zap.String("dir", workDir), zap.Error(rmErr))
		}
	}()

	inPath := filepath.Join(workDir, "input"+strings.ToLower(filepath.Ext(upload.FileName)))
	if err := writeFile(inPath, upload.Reader, w.opts.MaxBytes); err != nil {
		return "", err
	}

	audioPath := inPath
	if w.converter != nil {
		hasAudio, err := w.converter.HasAudio(inPath)
		if err != nil {
			return "", domain.NewMediaConversionError(err)
		}
		if !hasAudio {
			return "", domain.NewUnsupportedMediaError(upload.FileName).
				WithContext("reason", "file has no audio stream")
		}
		audioPath = filepath.Join(workDir, "speech.mp3")
		if err := w.converter.ToSpeechAudio(inPath, audioPath); err != nil {
			l.Error("Media conversion failed", zap.Error(err))
			return "", domain.NewMediaConversionError(err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := w.client.CreateTranscription(callCtx, openai.AudioRequest{
		Model:    w.opts.Model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		l.Error("Whisper transcription failed", zap.Error(err))
		return "", domain.NewTranscriptionError(err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", domain.NewTranscriptionError(fmt.Errorf("transcription of %s is empty", upload.FileName))
	}
	l.Info("Transcribed upload", zap.Duration("duration", time.Since(start)), zap.Int("chars", len(text)))
	return text, nil
}

func writeFile(path string, r io.Reader, maxBytes int64) error {
	if r == nil {
		return domain.NewInvalidInputError("upload has no content")
	}
	f, err := os.Create(path)
	if err != nil {
		return domain.NewInternalError("failed to create temp file", err)
	}
	defer f.Close()

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		return domain.NewInternalError("failed to store upload", err)
	}
	if n == 0 {
		return domain.NewInvalidInputError("uploaded file is empty")
	}
	if maxBytes > 0 && n > maxBytes {
		return domain.NewInvalidInputError(fmt.Sprintf("file exceeds the %d MB upload limit", maxBytes/(1024*1024)))
	}
	return nil
}
