package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"yorkie-bakery-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// CachedProvider memoizes embeddings in Redis. Cache errors never fail a
// lookup; the inner provider is called instead.
type CachedProvider struct {
	inner     EmbeddingProvider
	rdb       redis.UniversalClient
	namespace string
	ttl       time.Duration
	logger    logger.ILogger
}

func NewCachedProvider(inner EmbeddingProvider, rdb redis.UniversalClient, namespace string, ttl time.Duration, log logger.ILogger) *CachedProvider {
	return &CachedProvider{
		inner:     inner,
		rdb:       rdb,
		namespace: namespace,
		ttl:       ttl,
		logger:    log,
	}
}

func (c *CachedProvider) key(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return "embedding:" + c.namespace + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := c.key(text, taskType)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var values []float32
		if jsonErr := json.Unmarshal(raw, &values); jsonErr == nil {
			return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("EMBEDDING", "Embedding cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	resp, err := c.inner.Generate(ctx, text, taskType)
	if err != nil || resp == nil {
		return resp, err
	}

	if payload, jsonErr := json.Marshal(resp.Embedding.Values); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("EMBEDDING", "Embedding cache write failed", map[string]interface{}{
				"error": setErr.Error(),
			})
		}
	}
	return resp, nil
}
