// Package youtube fetches video transcripts from YouTube captions.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tubequiz/internal/cache"
	"tubequiz/internal/domain"
	"tubequiz/internal/logger"
)

// VideoClient is the subset of the kkdai/youtube client used here.
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
	GetTranscriptCtx(ctx context.Context, video *yt.Video, lang string) (yt.VideoTranscript, error)
}

// TranscriptSource implements domain.TranscriptSource using caption tracks.
type TranscriptSource struct {
	client    VideoClient
	cache     domain.Cache
	cacheTTL  time.Duration
	languages []string
	sfGroup   singleflight.Group
}

var _ domain.TranscriptSource = (*TranscriptSource)(nil)

// NewTranscriptSource creates a TranscriptSource. cache may be nil, in which
// case every call goes to YouTube.
func NewTranscriptSource(client VideoClient, cache domain.Cache, cacheTTL time.Duration, languages []string) *TranscriptSource {
	if client == nil {
		client = &yt.Client{}
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &TranscriptSource{
		client:    client,
		cache:     cache,
		cacheTTL:  cacheTTL,
		languages: languages,
	}
}

// Fetch returns the transcript of videoID with segments joined by single spaces.
func (s *TranscriptSource) Fetch(ctx context.Context, videoID string) (string, error) {
	l := logger.Get().With(zap.String("video_id", videoID))
	cacheKey := cache.GenerateCacheKey(cache.ServiceTranscript, "youtube", videoID, s.languages...)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err == nil && cached != "":
			l.Debug("Transcript cache hit")
			return cached, nil
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			l.Warn("Failed to read transcript cache, fetching from YouTube", zap.Error(err))
		}
	}

	res, err, shared := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		text, fetchErr := s.fetch(ctx, videoID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		if s.cache != nil {
			if setErr := s.cache.Set(ctx, cacheKey, text, s.cacheTTL); setErr != nil {
				l.Warn("Failed to cache transcript", zap.Error(setErr))
			}
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		l.Debug("Transcript fetch shared with a concurrent request")
	}
	return res.(string), nil
}

func (s *TranscriptSource) fetch(ctx context.Context, videoID string) (string, error) {
	l := logger.Get().With(zap.String("video_id", videoID))

	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		l.Warn("Failed to look up video", zap.Error(err))
		return "", domain.NewTranscriptUnavailableError(videoID, err)
	}

	var lastErr error
	for _, lang := range s.candidateLanguages(video) {
		segments, err := s.client.GetTranscriptCtx(ctx, video, lang)
		if err != nil {
			lastErr = err
			l.Debug("No transcript in language", zap.String("lang", lang), zap.Error(err))
			continue
		}
		if text := joinSegments(segments); text != "" {
			l.Info("Fetched transcript", zap.String("lang", lang), zap.Int("segments", len(segments)), zap.Int("chars", len(text)))
			return text, nil
		}
		lastErr = fmt.Errorf("transcript in %q is empty", lang)
	}

	if lastErr == nil {
		lastErr = errors.New("video has no caption tracks")
	}
	return "", domain.NewTranscriptUnavailableError(videoID, lastErr)
}

// candidateLanguages lists the preferred languages followed by any other
// caption track the video offers.
func (s *TranscriptSource) candidateLanguages(video *yt.Video) []string {
	seen := make(map[string]bool, len(s.languages))
	langs := make([]string, 0, len(s.languages)+len(video.CaptionTracks))
	for _, lang := range s.languages {
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	for _, track := range video.CaptionTracks {
		if track.LanguageCode != "" && !seen[track.LanguageCode] {
			seen[track.LanguageCode] = true
			langs = append(langs, track.LanguageCode)
		}
	}
	return langs
}

func joinSegments(segments yt.VideoTranscript) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.Join(strings.Fields(seg.Text), " "); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
