package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubequiz/internal/domain"
)

const validKey = "sk-test-0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 10, cfg.Quiz.NumQuestions)
	assert.Equal(t, "*", cfg.Quiz.Sentinel)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"en", "en-US", "en-GB"}, cfg.Transcript.Languages)
	assert.Equal(t, EmbeddingNone, cfg.Embedding.Source)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName())
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9000
llm:
  provider: ollama
  model: llama3
  timeout: 15s
quiz:
  num_questions: 5
  require_marker: true
session:
  ttl: 30m
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("OPENAI_API_KEY", validKey)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.ModelName())
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Quiz.NumQuestions)
	assert.True(t, cfg.Quiz.RequireMarker)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, validKey, cfg.OpenAI.APIKey)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := writeConfig(t, "server: [unclosed")
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		LLM:           LLMConfig{Provider: ProviderOpenAI, Timeout: time.Minute, MaxConcurrency: 2},
		OpenAI:        OpenAIConfig{APIKey: validKey},
		Transcription: TranscriptionConfig{Provider: TranscriptionWhisper},
		Embedding:     EmbeddingConfig{Source: EmbeddingNone},
		Quiz:          QuizConfig{NumQuestions: 10, Sentinel: "*"},
		Session:       SessionConfig{TTL: time.Hour},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing openai key", func(c *Config) { c.OpenAI.APIKey = "" }, "OPENAI_API_KEY"},
		{"malformed openai key", func(c *Config) { c.OpenAI.APIKey = "pk-123" }, "does not look like"},
		{"short openai key", func(c *Config) { c.OpenAI.APIKey = "sk-short" }, "does not look like"},
		{"groq without key", func(c *Config) {
			c.LLM.Provider = ProviderGroq
			c.Transcription.Provider = TranscriptionNone
		}, "GROQ_API_KEY"},
		{"groq with whisper needs openai key", func(c *Config) {
			c.LLM.Provider = ProviderGroq
			c.Groq.APIKey = "gsk_abc"
			c.OpenAI.APIKey = ""
		}, "transcription via whisper"},
		{"ollama without transcription", func(c *Config) {
			c.LLM.Provider = ProviderOllama
			c.Ollama.ServerURL = "http://localhost:11434"
			c.OpenAI.APIKey = ""
			c.Transcription.Provider = TranscriptionNone
		}, ""},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "gemini" }, "unsupported llm.provider"},
		{"unknown embedding source", func(c *Config) { c.Embedding.Source = "cohere" }, "unsupported embedding.source"},
		{"too many questions", func(c *Config) { c.Quiz.NumQuestions = 51 }, "quiz.num_questions"},
		{"empty sentinel", func(c *Config) { c.Quiz.Sentinel = " " }, "quiz.sentinel"},
		{"zero concurrency", func(c *Config) { c.LLM.MaxConcurrency = 0 }, "llm.max_concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := &Config{Transcription: TranscriptionConfig{MaxUploadMB: 25}}
	assert.Equal(t, int64(25*1024*1024), cfg.MaxUploadBytes())
}
