package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name       string
		service    string
		objectType string
		identifier string
		params     []string
		want       string
	}{
		{"session", ServiceSession, "quiz", "01HZY3", nil, "tubequiz:session:quiz:01HZY3"},
		{"empty params", ServiceSession, "quiz", "01HZY3", []string{}, "tubequiz:session:quiz:01HZY3"},
		{"transcript with languages", ServiceTranscript, "youtube", "dQw4w9WgXcQ", []string{"en", "de"}, "tubequiz:transcript:youtube:dQw4w9WgXcQ:en_de"},
		{"embedding", ServiceEmbedding, "openai", "abc123", []string{"text-embedding-3-small"}, "tubequiz:embedding:openai:abc123:text-embedding-3-small"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateCacheKey(tt.service, tt.objectType, tt.identifier, tt.params...))
		})
	}
}
