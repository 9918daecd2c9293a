// internal/catalog/cache.go
package catalog

import (
	"context"
	"errors"
	"time"

	"booking-dialogue/internal/common/database"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/models"
)

const cacheKeyPrefix = "catalog:"

// cachedAgent carries the catalog fields models.Agent hides from JSON.
type cachedAgent struct {
	Agent     models.Agent           `json:"agent"`
	Pricing   *models.PricingCatalog `json:"pricing"`
	Inventory models.Inventory       `json:"inventory"`
}

// RedisCache caches another source's agents as JSON. Redis failures are
// logged and the wrapped source is used directly.
type RedisCache struct {
	next   Source
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisCache(next Source, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{next: next, redis: redis, ttl: ttl, logger: log}
}

func (c *RedisCache) Load(ctx context.Context, agentType string) (*models.Agent, error) {
	key := cacheKeyPrefix + agentType

	var cached cachedAgent
	err := c.redis.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		agent := cached.Agent
		agent.Pricing = cached.Pricing
		agent.Data = cached.Inventory
		return &agent, nil
	case !errors.Is(err, database.ErrCacheMiss):
		c.logger.Warn("catalog cache read failed", map[string]interface{}{
			"agentType": agentType,
			"error":     err.Error(),
		})
	}

	agent, err := c.next.Load(ctx, agentType)
	if err != nil {
		return nil, err
	}

	entry := cachedAgent{Agent: *agent, Pricing: agent.Pricing, Inventory: agent.Data}
	if err := c.redis.SetJSON(ctx, key, entry, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{
			"agentType": agentType,
			"error":     err.Error(),
		})
	}
	return agent, nil
}

func (c *RedisCache) AgentTypes(ctx context.Context) ([]string, error) {
	return c.next.AgentTypes(ctx)
}

// Invalidate removes cached entries for the given agent types.
func (c *RedisCache) Invalidate(ctx context.Context, agentTypes ...string) error {
	if len(agentTypes) == 0 {
		return nil
	}
	keys := make([]string, len(agentTypes))
	for i, typ := range agentTypes {
		keys[i] = cacheKeyPrefix + typ
	}
	return c.redis.Del(ctx, keys...)
}
