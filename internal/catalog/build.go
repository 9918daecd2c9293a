// internal/catalog/build.go
package catalog

import (
	"fmt"

	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/database"
	"booking-dialogue/internal/common/logger"
)

// Backends holds the optional clients a catalog can be built on.
type Backends struct {
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
}

// NewFromConfig assembles the source chain described by cfg:
// file or postgres, then the live inventory overlay, then the Redis cache.
func NewFromConfig(cfg config.CatalogConfig, b Backends, log logger.Logger) (*Store, error) {
	var source Source
	switch cfg.Source {
	case config.CatalogSourceFile, "":
		source = NewFileSource(cfg.Dir)
	case config.CatalogSourcePostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("catalog source %q needs a postgres connection", cfg.Source)
		}
		source = NewPostgresSource(b.Postgres)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	if cfg.InventoryIndex != "" && b.Elasticsearch != nil {
		source = NewLiveInventorySource(source, NewElasticInventory(b.Elasticsearch, cfg.InventoryIndex), log)
	}

	maxAge := config.GetDuration(cfg.CacheTTL)
	if cfg.CacheTTL > 0 && b.Redis != nil {
		source = NewRedisCache(source, b.Redis, maxAge, log)
	}

	log.Info("catalog configured", map[string]interface{}{
		"source":         cfg.Source,
		"inventoryIndex": cfg.InventoryIndex,
		"cacheTTL_ms":    cfg.CacheTTL,
	})
	return NewStore(source, maxAge, log), nil
}
