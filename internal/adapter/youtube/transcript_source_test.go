package youtube

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tubequiz/internal/domain"
)

type fakeVideoClient struct {
	video       *yt.Video
	videoErr    error
	transcripts map[string]yt.VideoTranscript
	requested   []string
	calls       atomic.Int32
}

func (f *fakeVideoClient) GetVideoContext(ctx context.Context, id string) (*yt.Video, error) {
	f.calls.Add(1)
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.video, nil
}

func (f *fakeVideoClient) GetTranscriptCtx(ctx context.Context, video *yt.Video, lang string) (yt.VideoTranscript, error) {
	f.requested = append(f.requested, lang)
	if tr, ok := f.transcripts[lang]; ok {
		return tr, nil
	}
	return nil, errNoTranscript
}

var errNoTranscript = errors.New("transcript is disabled on this video")

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

const (
	videoID = "dQw4w9WgXcQ"
	enKey   = "tubequiz:transcript:youtube:dQw4w9WgXcQ:en"
)

func segments(texts ...string) yt.VideoTranscript {
	tr := make(yt.VideoTranscript, 0, len(texts))
	for _, t := range texts {
		tr = append(tr, yt.TranscriptSegment{Text: t})
	}
	return tr
}

func TestTranscriptSource_FetchJoinsSegmentsAndCaches(t *testing.T) {
	client := &fakeVideoClient{
		video:       &yt.Video{ID: videoID},
		transcripts: map[string]yt.VideoTranscript{"en": segments("We're no strangers", "to love\n", "  ")},
	}
	cache := new(MockCache)
	cache.On("Get", mock.Anything, enKey).Return("", domain.ErrCacheMiss).Once()
	cache.On("Set", mock.Anything, enKey, "We're no strangers to love", time.Hour).Return(nil).Once()

	src := NewTranscriptSource(client, cache, time.Hour, []string{"en"})
	text, err := src.Fetch(context.Background(), videoID)

	require.NoError(t, err)
	assert.Equal(t, "We're no strangers to love", text)
	cache.AssertExpectations(t)
}

func TestTranscriptSource_CacheHitSkipsYouTube(t *testing.T) {
	client := &fakeVideoClient{}
	cache := new(MockCache)
	cache.On("Get", mock.Anything, enKey).Return("cached transcript", nil).Once()

	src := NewTranscriptSource(client, cache, time.Hour, []string{"en"})
	text, err := src.Fetch(context.Background(), videoID)

	require.NoError(t, err)
	assert.Equal(t, "cached transcript", text)
	assert.Zero(t, client.calls.Load())
	cache.AssertExpectations(t)
}

func TestTranscriptSource_CacheErrorsAreNotFatal(t *testing.T) {
	client := &fakeVideoClient{
		video:       &yt.Video{ID: videoID},
		transcripts: map[string]yt.VideoTranscript{"en": segments("hello")},
	}
	cache := new(MockCache)
	cache.On("Get", mock.Anything, enKey).Return("", errors.New("redis down")).Once()
	cache.On("Set", mock.Anything, enKey, "hello", time.Hour).Return(errors.New("redis down")).Once()

	src := NewTranscriptSource(client, cache, time.Hour, []string{"en"})
	text, err := src.Fetch(context.Background(), videoID)

	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	cache.AssertExpectations(t)
}

func TestTranscriptSource_FallsBackThroughLanguages(t *testing.T) {
	client := &fakeVideoClient{
		video: &yt.Video{
			ID:            videoID,
			CaptionTracks: []yt.CaptionTrack{{LanguageCode: "en"}, {LanguageCode: "de"}},
		},
		transcripts: map[string]yt.VideoTranscript{"de": segments("Hallo", "Welt")},
	}

	src := NewTranscriptSource(client, nil, time.Hour, []string{"en-US", "en"})
	text, err := src.Fetch(context.Background(), videoID)

	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", text)
	assert.Equal(t, []string{"en-US", "en", "de"}, client.requested)
}

func TestTranscriptSource_Unavailable(t *testing.T) {
	t.Run("no captions", func(t *testing.T) {
		client := &fakeVideoClient{video: &yt.Video{ID: videoID}}
		src := NewTranscriptSource(client, nil, time.Hour, []string{"en"})

		_, err := src.Fetch(context.Background(), videoID)
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.CodeTranscriptUnavailable))
		assert.ErrorIs(t, err, errNoTranscript)
	})

	t.Run("video lookup fails", func(t *testing.T) {
		client := &fakeVideoClient{videoErr: errors.New("video is private")}
		src := NewTranscriptSource(client, nil, time.Hour, []string{"en"})

		_, err := src.Fetch(context.Background(), videoID)
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.CodeTranscriptUnavailable))
	})

	t.Run("only blank segments", func(t *testing.T) {
		client := &fakeVideoClient{
			video:       &yt.Video{ID: videoID},
			transcripts: map[string]yt.VideoTranscript{"en": segments(" ", "")},
		}
		src := NewTranscriptSource(client, nil, time.Hour, []string{"en"})

		_, err := src.Fetch(context.Background(), videoID)
		assert.True(t, domain.IsCode(err, domain.CodeTranscriptUnavailable))
	})
}
