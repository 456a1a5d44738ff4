package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubequiz/internal/config"
	"tubequiz/internal/domain"
	"tubequiz/internal/dto"
	"tubequiz/internal/logger"
	"tubequiz/internal/metrics"
	"tubequiz/internal/service"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Env: "development", Level: "error"}); err != nil {
		panic(err)
	}
	metrics.Init()
	os.Exit(m.Run())
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }

type stubPipeline struct{}

func (stubPipeline) FromURL(ctx context.Context, rawURL string) (*domain.QuizResult, error) {
	return &domain.QuizResult{
		Source:     domain.Source{Kind: domain.SourceYouTube, VideoID: "dQw4w9WgXcQ"},
		Transcript: "the sky is blue",
		Summary:    "Sky.",
		Questions: []domain.Question{
			{Text: "What color is the sky?", Choices: []string{"Red", "Blue", "Green", "Yellow"}, CorrectAnswer: "Blue", AnswerMarked: true},
		},
	}, nil
}

func (stubPipeline) FromMedia(ctx context.Context, upload domain.MediaUpload) (*domain.QuizResult, error) {
	return nil, domain.NewUnsupportedMediaError(upload.FileName)
}

func (stubPipeline) Summarize(ctx context.Context, rawURL string) (*domain.SummaryResult, error) {
	return &domain.SummaryResult{Summary: "Sky."}, nil
}

type stubExplainer struct{}

func (stubExplainer) Explain(ctx context.Context, q domain.Question, user string) (string, error) {
	return "The sky is blue.", nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:        config.ServerConfig{RequestTimeout: time.Second, BodyLimitMB: 1},
		LLM:           config.LLMConfig{Provider: config.ProviderOllama, Timeout: time.Second, MaxConcurrency: 2},
		Ollama:        config.OllamaConfig{ServerURL: "http://localhost:11434"},
		Transcription: config.TranscriptionConfig{Provider: config.TranscriptionNone, MaxUploadMB: 1},
		Transcript:    config.TranscriptConfig{Languages: []string{"en"}, CacheTTL: time.Hour},
		Session:       config.SessionConfig{TTL: time.Hour},
		Quiz:          config.QuizConfig{NumQuestions: 5, Sentinel: "*"},
		Embedding:     config.EmbeddingConfig{Source: config.EmbeddingNone},
	}
}

func TestNewServices_Ollama(t *testing.T) {
	services, err := NewServices(testConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, services.Pipeline)
	assert.NotNil(t, services.Grading)
	assert.NotNil(t, services.Tutor)

	_, err = services.Pipeline.FromMedia(context.Background(), domain.MediaUpload{FileName: "a.mp3"})
	assert.True(t, domain.IsCode(err, domain.CodeUnsupportedMedia), "uploads are disabled without a transcriber")
}

func TestNewServices_UnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "mystery"

	_, err := NewServices(cfg, nil)
	assert.True(t, domain.IsCode(err, domain.CodeConfig))
}

func TestHTTPServer_SessionLifecycle(t *testing.T) {
	cache := &memoryCache{data: map[string]string{}}
	services := &Services{
		Pipeline: stubPipeline{},
		Grading:  service.NewGradingService(stubExplainer{}, 1),
	}
	app := NewHTTPServer(testConfig(), services, cache)

	body, _ := json.Marshal(dto.CreateSessionRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Len(t, created.Questions, 1)

	body, _ = json.Marshal(map[string]interface{}{"answers": map[string]string{"0": "Red"}})
	req = httptest.NewRequest(http.MethodPost, "/api/sessions/"+created.ID+"/answers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var graded dto.GradeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&graded))
	assert.Equal(t, "Your total score is 0 out of 1", graded.Score)
	assert.Equal(t, "The sky is blue.", graded.Items[0].Explanation)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
