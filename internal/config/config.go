package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tubequiz/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"

	TranscriptionWhisper = "whisper"
	TranscriptionNone    = "none"

	EmbeddingNone = "none"

	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
)

type Config struct {
	Env           string
	Server        ServerConfig
	LLM           LLMConfig
	OpenAI        OpenAIConfig
	Groq          GroqConfig
	Ollama        OllamaConfig
	Transcription TranscriptionConfig
	Transcript    TranscriptConfig
	Redis         RedisConfig
	Session       SessionConfig
	Quiz          QuizConfig
	Embedding     EmbeddingConfig
	Tutor         TutorConfig
	Logger        LoggerConfig
}

type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	BodyLimitMB    int
}

type LLMConfig struct {
	Provider          string
	Model             string
	Timeout           time.Duration
	Temperature       float64
	MaxConcurrency    int
	RequestsPerSecond float64
	// MaxInputChars caps the transcript length sent in a single prompt.
	MaxInputChars int
}

type OpenAIConfig struct {
	APIKey string
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
}

type OllamaConfig struct {
	ServerURL string
}

type TranscriptionConfig struct {
	Provider    string
	Model       string
	MaxUploadMB int
	TempDir     string
	Convert     bool
}

type TranscriptConfig struct {
	Languages []string
	CacheTTL  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type SessionConfig struct {
	TTL time.Duration
}

type QuizConfig struct {
	NumQuestions  int
	Sentinel      string
	RequireMarker bool
}

type EmbeddingConfig struct {
	Source   string
	Model    string
	CacheTTL time.Duration
}

type TutorConfig struct {
	ChunkWords      int
	TopK            int
	MaxContextChars int
}

type LoggerConfig struct {
	Env        string
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.request_timeout", "5m")
	v.SetDefault("server.body_limit_mb", 100)

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_concurrency", 4)
	v.SetDefault("llm.requests_per_second", 2.0)
	v.SetDefault("llm.max_input_chars", 48000)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("groq.api_key", "")
	v.SetDefault("groq.base_url", DefaultGroqBaseURL)
	v.SetDefault("ollama.server_url", "http://localhost:11434")

	v.SetDefault("transcription.provider", TranscriptionWhisper)
	v.SetDefault("transcription.model", "whisper-1")
	v.SetDefault("transcription.max_upload_mb", 25)
	v.SetDefault("transcription.temp_dir", "")
	v.SetDefault("transcription.convert", true)

	v.SetDefault("transcript.languages", []string{"en", "en-US", "en-GB"})
	v.SetDefault("transcript.cache_ttl", "24h")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.ttl", "2h")

	v.SetDefault("quiz.num_questions", 10)
	v.SetDefault("quiz.sentinel", "*")
	v.SetDefault("quiz.require_marker", false)

	v.SetDefault("embedding.source", EmbeddingNone)
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.cache_ttl", "168h")

	v.SetDefault("tutor.chunk_words", 200)
	v.SetDefault("tutor.top_k", 4)
	v.SetDefault("tutor.max_context_chars", 12000)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 14)
}

// LoadConfig reads config.yaml (if present) from the given directories, then
// applies environment overrides. Keys map to env vars by upper-casing and
// replacing dots, e.g. llm.provider -> LLM_PROVIDER.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	env := v.GetString("env")
	return &Config{
		Env: env,
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			BodyLimitMB:    v.GetInt("server.body_limit_mb"),
		},
		LLM: LLMConfig{
			Provider:          strings.ToLower(v.GetString("llm.provider")),
			Model:             v.GetString("llm.model"),
			Timeout:           v.GetDuration("llm.timeout"),
			Temperature:       v.GetFloat64("llm.temperature"),
			MaxConcurrency:    v.GetInt("llm.max_concurrency"),
			RequestsPerSecond: v.GetFloat64("llm.requests_per_second"),
			MaxInputChars:     v.GetInt("llm.max_input_chars"),
		},
		OpenAI: OpenAIConfig{APIKey: v.GetString("openai.api_key")},
		Groq: GroqConfig{
			APIKey:  v.GetString("groq.api_key"),
			BaseURL: v.GetString("groq.base_url"),
		},
		Ollama: OllamaConfig{ServerURL: v.GetString("ollama.server_url")},
		Transcription: TranscriptionConfig{
			Provider:    strings.ToLower(v.GetString("transcription.provider")),
			Model:       v.GetString("transcription.model"),
			MaxUploadMB: v.GetInt("transcription.max_upload_mb"),
			TempDir:     v.GetString("transcription.temp_dir"),
			Convert:     v.GetBool("transcription.convert"),
		},
		Transcript: TranscriptConfig{
			Languages: v.GetStringSlice("transcript.languages"),
			CacheTTL:  v.GetDuration("transcript.cache_ttl"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: SessionConfig{TTL: v.GetDuration("session.ttl")},
		Quiz: QuizConfig{
			NumQuestions:  v.GetInt("quiz.num_questions"),
			Sentinel:      v.GetString("quiz.sentinel"),
			RequireMarker: v.GetBool("quiz.require_marker"),
		},
		Embedding: EmbeddingConfig{
			Source:   strings.ToLower(v.GetString("embedding.source")),
			Model:    v.GetString("embedding.model"),
			CacheTTL: v.GetDuration("embedding.cache_ttl"),
		},
		Tutor: TutorConfig{
			ChunkWords:      v.GetInt("tutor.chunk_words"),
			TopK:            v.GetInt("tutor.top_k"),
			MaxContextChars: v.GetInt("tutor.max_context_chars"),
		},
		Logger: LoggerConfig{
			Env:        env,
			Level:      v.GetString("logger.level"),
			File:       v.GetString("logger.file"),
			MaxSizeMB:  v.GetInt("logger.max_size_mb"),
			MaxBackups: v.GetInt("logger.max_backups"),
			MaxAgeDays: v.GetInt("logger.max_age_days"),
		},
	}
}

// Validate checks that the credentials required by the selected providers are
// present and that numeric settings are usable. Failures are CONFIG_ERRORs.
func (c *Config) Validate() error {
	var problems []string

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if err := validateOpenAIKey(c.OpenAI.APIKey); err != "" {
			problems = append(problems, err)
		}
	case ProviderGroq:
		if c.Groq.APIKey == "" {
			problems = append(problems, "groq.api_key (GROQ_API_KEY) is required for the groq provider")
		}
	case ProviderOllama:
		if c.Ollama.ServerURL == "" {
			problems = append(problems, "ollama.server_url is required for the ollama provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported llm.provider %q", c.LLM.Provider))
	}

	switch c.Transcription.Provider {
	case TranscriptionWhisper:
		if err := validateOpenAIKey(c.OpenAI.APIKey); err != "" && c.LLM.Provider != ProviderOpenAI {
			problems = append(problems, "transcription via whisper: "+err)
		}
	case TranscriptionNone:
	default:
		problems = append(problems, fmt.Sprintf("unsupported transcription.provider %q", c.Transcription.Provider))
	}

	switch c.Embedding.Source {
	case EmbeddingNone, ProviderOllama:
	case ProviderOpenAI:
		if err := validateOpenAIKey(c.OpenAI.APIKey); err != "" && c.LLM.Provider != ProviderOpenAI {
			problems = append(problems, "openai embeddings: "+err)
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported embedding.source %q", c.Embedding.Source))
	}

	if c.Quiz.NumQuestions < 1 || c.Quiz.NumQuestions > 50 {
		problems = append(problems, "quiz.num_questions must be between 1 and 50")
	}
	if strings.TrimSpace(c.Quiz.Sentinel) == "" {
		problems = append(problems, "quiz.sentinel must not be empty")
	}
	if c.LLM.MaxConcurrency < 1 {
		problems = append(problems, "llm.max_concurrency must be at least 1")
	}
	if c.LLM.Timeout <= 0 {
		problems = append(problems, "llm.timeout must be positive")
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session.ttl must be positive")
	}

	if len(problems) > 0 {
		return domain.NewConfigError("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// validateOpenAIKey returns a problem description, or "" when the key looks usable.
func validateOpenAIKey(key string) string {
	switch {
	case key == "":
		return "openai.api_key (OPENAI_API_KEY) is required"
	case !strings.HasPrefix(key, "sk-") || len(key) < 20:
		return "openai.api_key does not look like an OpenAI key"
	}
	return ""
}

// ModelName returns the configured chat model, falling back to a per-provider default.
func (c *Config) ModelName() string {
	if c.LLM.Model != "" {
		return c.LLM.Model
	}
	switch c.LLM.Provider {
	case ProviderGroq:
		return "llama-3.1-8b-instant"
	case ProviderOllama:
		return "qwen3:0.6b"
	default:
		return "gpt-4o-mini"
	}
}

// MaxUploadBytes is the largest accepted media upload.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Transcription.MaxUploadMB) * 1024 * 1024
}
