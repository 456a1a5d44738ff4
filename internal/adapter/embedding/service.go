package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tubequiz/internal/cache"
	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
)

// Service implements domain.EmbeddingService on top of a langchaingo
// embedder. Vectors are gob-encoded into the cache under a hash of the text.
type Service struct {
	embedder embeddings.Embedder
	cache    domain.Cache
	source   string
	model    string
	ttl      time.Duration
	sfGroup  singleflight.Group
}

var _ domain.EmbeddingService = (*Service)(nil)

// NewService wraps embedder. source and model namespace the cache keys so
// vectors from different models never mix. cache may be nil.
func NewService(embedder embeddings.Embedder, cache domain.Cache, source, model string, ttl time.Duration) *Service {
	return &Service{
		embedder: embedder,
		cache:    cache,
		source:   source,
		model:    model,
		ttl:      ttl,
	}
}

// Generate embeds a single text, sharing in-flight requests for the same text.
func (s *Service) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	key := s.cacheKey(text)
	if vec, ok := s.fromCache(ctx, key); ok {
		return vec, nil
	}

	res, err, _ := s.sfGroup.Do(key, func() (interface{}, error) {
		vec, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s embedding: %w", s.source, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("received empty %s embedding", s.source)
		}
		s.toCache(ctx, key, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]float32), nil
}

// GenerateBatch embeds texts, only sending cache misses to the embedder.
func (s *Service) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("input text %d cannot be empty for embedding", i)
		}
		keys[i] = s.cacheKey(text)
		if vec, ok := s.fromCache(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := s.embedder.EmbedDocuments(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s embeddings: %w", s.source, err)
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("%s embedder returned %d vectors for %d texts", s.source, len(vecs), len(missing))
	}
	for j, i := range missingIdx {
		out[i] = vecs[j]
		s.toCache(ctx, keys[i], vecs[j])
	}
	return out, nil
}

func (s *Service) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cache.GenerateCacheKey(cache.ServiceEmbedding, s.source, hex.EncodeToString(sum[:]), s.model)
}

func (s *Service) fromCache(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	l := logger.Get()

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			l.Warn("Failed to read embedding cache", zap.String("cache_key", key), zap.Error(err))
		}
		return nil, false
	}

	var vec []float32
	if err := gob.NewDecoder(bytes.NewReader([]byte(data))).Decode(&vec); err != nil {
		l.Warn("Failed to decode cached embedding", zap.String("cache_key", key), zap.Error(err))
		return nil, false
	}
	return vec, len(vec) > 0
}

func (s *Service) toCache(ctx context.Context, key string, vec []float32) {
	if s.cache == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vec); err != nil {
		logger.Get().Warn("Failed to encode embedding for caching", zap.String("cache_key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, buf.String(), s.ttl); err != nil {
		logger.Get().Warn("Failed to cache embedding", zap.String("cache_key", key), zap.Error(err))
	}
}
