package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tubequiz/internal/domain"
)

func TestChunkWords(t *testing.T) {
	chunks := chunkWords("one two  three\nfour five", 2)
	assert.Equal(t, []string{"one two", "three four", "five"}, chunks)
	assert.Empty(t, chunkWords("   ", 3))
}

func TestTutorService_RanksChunksByEmbedding(t *testing.T) {
	llm := new(MockLLM)
	emb := new(MockEmbeddingService)
	transcript := "alpha beta gamma delta epsilon zeta"
	chunks := []string{"alpha beta", "gamma delta", "epsilon zeta"}

	emb.On("GenerateBatch", mock.Anything, chunks).
		Return([][]float32{{1, 0}, {0, 1}, {0.9, 0.1}}, nil).Once()
	emb.On("Generate", mock.Anything, "what about alpha?").Return([]float32{1, 0}, nil).Once()
	llm.On("Answer", mock.Anything, "alpha beta\n\nepsilon zeta", "what about alpha?").Return("Alpha comes first.", nil).Once()

	svc := NewTutorService(llm, emb, TutorOptions{ChunkWords: 2, TopK: 2, MaxContextChars: 1000})
	answer, err := svc.Ask(context.Background(), transcript, "  what about alpha?  ")

	require.NoError(t, err)
	assert.Equal(t, "Alpha comes first.", answer)
	emb.AssertExpectations(t)
	llm.AssertExpectations(t)
}

func TestTutorService_WithoutEmbeddingsUsesTruncatedTranscript(t *testing.T) {
	llm := new(MockLLM)
	transcript := strings.Repeat("word ", 50)
	llm.On("Answer", mock.Anything, mock.MatchedBy(func(ctx string) bool {
		return len([]rune(ctx)) == 20 && strings.HasPrefix(ctx, "word word")
	}), "why?").Return("Because.", nil).Once()

	svc := NewTutorService(llm, nil, TutorOptions{ChunkWords: 10, TopK: 2, MaxContextChars: 20})
	answer, err := svc.Ask(context.Background(), transcript, "why?")

	require.NoError(t, err)
	assert.Equal(t, "Because.", answer)
	llm.AssertExpectations(t)
}

func TestTutorService_EmbeddingFailureFallsBack(t *testing.T) {
	llm := new(MockLLM)
	emb := new(MockEmbeddingService)
	transcript := "a b c d e f g h"
	emb.On("GenerateBatch", mock.Anything, mock.Anything).Return(nil, errors.New("quota")).Once()
	llm.On("Answer", mock.Anything, "a b c d e f g h", "q").Return("ok", nil).Once()

	svc := NewTutorService(llm, emb, TutorOptions{ChunkWords: 2, TopK: 1, MaxContextChars: 100})
	_, err := svc.Ask(context.Background(), transcript, "q")

	require.NoError(t, err)
	llm.AssertExpectations(t)
	emb.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestTutorService_InvalidInput(t *testing.T) {
	svc := NewTutorService(new(MockLLM), nil, TutorOptions{})

	_, err := svc.Ask(context.Background(), "some transcript", "   ")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))

	_, err = svc.Ask(context.Background(), "", "question?")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
}
