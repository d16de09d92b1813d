package redis

import "fmt"

// Cache key formats
const (
	// KeyCommunityLists caches the merged castlist view per community.
	KeyCommunityLists = "castlist:community:%s:lists"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyCommunityLists returns the cache key for a community's merged castlist view
func (kb *KeyBuilder) KeyCommunityLists(communityID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyCommunityLists, communityID))
}
