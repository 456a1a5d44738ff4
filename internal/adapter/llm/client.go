package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
	"tubequiz/internal/metrics"
)

// Options tune a Client.
type Options struct {
	Timeout           time.Duration
	Temperature       float64
	RequestsPerSecond float64
	// MaxInputChars truncates transcripts before they are sent. Zero disables truncation.
	MaxInputChars int
	// Sentinel is the correct-answer marker requested in quiz prompts.
	Sentinel string
}

// Client implements the summarizer, quiz generator, explainer and answerer
// ports on top of any langchaingo chat model.
type Client struct {
	model   llms.Model
	limiter *rate.Limiter
	opts    Options
}

var (
	_ domain.Summarizer    = (*Client)(nil)
	_ domain.QuizGenerator = (*Client)(nil)
	_ domain.Explainer     = (*Client)(nil)
	_ domain.Answerer      = (*Client)(nil)
)

// NewClient wraps model. A non-positive RequestsPerSecond disables rate limiting.
func NewClient(model llms.Model, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Sentinel == "" {
		opts.Sentinel = "*"
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Client{model: model, limiter: limiter, opts: opts}
}

func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	return c.generate(ctx, OpSummarize, summarizePrompt(c.truncate(transcript)))
}

func (c *Client) GenerateQuiz(ctx context.Context, transcript string, numQuestions int) (string, error) {
	return c.generate(ctx, OpQuiz, quizPrompt(c.truncate(transcript), numQuestions, c.opts.Sentinel))
}

func (c *Client) Explain(ctx context.Context, question domain.Question, userAnswer string) (string, error) {
	var b strings.Builder
	b.WriteString(question.Text)
	for _, choice := range question.Choices {
		b.WriteString("\n- ")
		b.WriteString(choice)
	}
	return c.generate(ctx, OpExplain, explainPrompt(b.String(), question.CorrectAnswer, strings.TrimSpace(userAnswer)))
}

func (c *Client) Answer(ctx context.Context, excerpts, question string) (string, error) {
	return c.generate(ctx, OpAnswer, answerPrompt(c.truncate(excerpts), question))
}

func (c *Client) generate(ctx context.Context, op, prompt string) (string, error) {
	l := logger.Get().With(zap.String("operation", op))

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.LLMRequests.WithLabelValues(op, "rate_limited").Inc()
		return "", domain.NewLLMServiceError(fmt.Errorf("waiting for rate limiter: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(callCtx, messages,
		llms.WithTemperature(c.opts.Temperature),
		llms.WithMaxTokens(maxTokens[op]),
	)
	metrics.LLMDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequests.WithLabelValues(op, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Duration("timeout", c.opts.Timeout), zap.Error(err))
			return "", domain.NewLLMServiceError(fmt.Errorf("LLM request timed out: %w", err))
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return "", domain.NewLLMServiceError(err)
	}

	text := ""
	if resp != nil && len(resp.Choices) > 0 && resp.Choices[0] != nil {
		text = resp.Choices[0].Content
	}
	text = strings.TrimSpace(stripThink(text))
	if text == "" {
		metrics.LLMRequests.WithLabelValues(op, "empty").Inc()
		l.Warn("LLM returned an empty completion")
		return "", domain.NewLLMEmptyResponseError(op)
	}

	metrics.LLMRequests.WithLabelValues(op, "ok").Inc()
	l.Debug("LLM call completed", zap.Duration("duration", time.Since(start)), zap.Int("response_chars", len(text)))
	return text, nil
}

// stripThink removes <think>...</think> reasoning blocks that some local
// models emit before their answer. An unterminated block is dropped entirely.
func stripThink(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], "</think>")
		if end == -1 {
			return s[:start]
		}
		s = s[:start] + s[start+end+len("</think>"):]
	}
}

func (c *Client) truncate(s string) string {
	if c.opts.MaxInputChars <= 0 || utf8.RuneCountInString(s) <= c.opts.MaxInputChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:c.opts.MaxInputChars])
}
