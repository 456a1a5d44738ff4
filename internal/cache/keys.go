package cache

import "strings"

const (
	GlobalKeyPrefix = "tubequiz"
)

// Key namespaces used across the application.
const (
	ServiceTranscript = "transcript"
	ServiceEmbedding  = "embedding"
	ServiceSession    = "session"
)

// GenerateCacheKey builds "<prefix>:<service>:<objectType>:<identifier>", with
// any params joined by "_" and appended as a final segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}
