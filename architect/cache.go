package architect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sweetpotato0/chatbot-factory/chatbot"
	"github.com/sweetpotato0/chatbot-factory/pipeline"
)

// Cache remembers designs for identical configurations.
// Cached architectures are returned as deep copies.
type Cache struct {
	next  pipeline.Designer
	cache *lru.Cache[string, *chatbot.Architecture]
}

// NewCache wraps next with an LRU of the given size
func NewCache(next pipeline.Designer, size int) (*Cache, error) {
	c, err := lru.New[string, *chatbot.Architecture](size)
	if err != nil {
		return nil, fmt.Errorf("architect cache: %w", err)
	}
	return &Cache{next: next, cache: c}, nil
}

// Design returns the cached design for cfg or asks the wrapped designer.
// Failures are not cached.
func (c *Cache) Design(ctx context.Context, cfg *chatbot.Config) (*chatbot.Architecture, error) {
	key, err := cacheKey(cfg)
	if err != nil {
		return c.next.Design(ctx, cfg)
	}
	if arch, ok := c.cache.Get(key); ok {
		return copyArchitecture(arch)
	}

	arch, err := c.next.Design(ctx, cfg)
	if err != nil {
		return nil, err
	}
	stored, err := copyArchitecture(arch)
	if err == nil {
		c.cache.Add(key, stored)
	}
	return arch, nil
}

// Len returns the number of cached designs
func (c *Cache) Len() int {
	return c.cache.Len()
}

func cacheKey(cfg *chatbot.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func copyArchitecture(arch *chatbot.Architecture) (*chatbot.Architecture, error) {
	data, err := json.Marshal(arch)
	if err != nil {
		return nil, err
	}
	var out chatbot.Architecture
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
