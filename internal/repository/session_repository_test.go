package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubequiz/internal/adapter"
	"tubequiz/internal/domain"
)

const sessionID = "01J9ZQ4W7RZ4S7J3V5X8K2M1AB"

func sampleSession() *domain.Session {
	created := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	return &domain.Session{
		ID:      sessionID,
		Source:  domain.Source{Kind: domain.SourceYouTube, URL: "https://youtu.be/dQw4w9WgXcQ", VideoID: "dQw4w9WgXcQ"},
		Summary: "A song about commitment.",
		Questions: []domain.Question{{
			Text:          "What color is the sky?",
			Choices:       []string{"Blue", "Green", "Red", "Yellow"},
			CorrectAnswer: "Blue",
			AnswerMarked:  true,
		}},
		Answers:   map[int]string{0: "Green"},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestCacheSessionRepository_SaveAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewCacheSessionRepository(adapter.NewRedisCacheAdapter(db), 2*time.Hour)
	ctx := context.Background()
	key := "tubequiz:session:quiz:" + sessionID

	s := sampleSession()
	data, err := json.Marshal(s)
	require.NoError(t, err)

	mock.ExpectSet(key, string(data), 2*time.Hour).SetVal("OK")
	require.NoError(t, repo.Save(ctx, s))

	mock.ExpectGet(key).SetVal(string(data))
	got, err := repo.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheSessionRepository_GetMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewCacheSessionRepository(adapter.NewRedisCacheAdapter(db), time.Hour)

	mock.ExpectGet("tubequiz:session:quiz:" + sessionID).RedisNil()
	_, err := repo.Get(context.Background(), sessionID)

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeSessionNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheSessionRepository_GetCorrupt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewCacheSessionRepository(adapter.NewRedisCacheAdapter(db), time.Hour)

	mock.ExpectGet("tubequiz:session:quiz:" + sessionID).SetVal("{not json")
	_, err := repo.Get(context.Background(), sessionID)

	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}

func TestCacheSessionRepository_Failures(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewCacheSessionRepository(adapter.NewRedisCacheAdapter(db), time.Hour)
	key := "tubequiz:session:quiz:" + sessionID
	redisErr := errors.New("READONLY You can't write against a read only replica")

	mock.ExpectDel(key).SetVal(1)
	assert.NoError(t, repo.Delete(context.Background(), sessionID))

	mock.ExpectDel(key).SetErr(redisErr)
	err := repo.Delete(context.Background(), sessionID)
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
	assert.ErrorIs(t, err, redisErr)

	mock.ExpectGet(key).SetErr(redisErr)
	_, err = repo.Get(context.Background(), sessionID)
	assert.True(t, domain.IsCode(err, domain.CodeInternal))

	assert.NoError(t, mock.ExpectationsWereMet())
}
