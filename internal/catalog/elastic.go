// internal/catalog/elastic.go
package catalog

import (
	"context"
	"errors"
	"net/http"

	"booking-dialogue/internal/common/database"
	apperrors "booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/models"
)

const maxInventoryHits = 500

type vehicleDoc struct {
	ID           string `json:"id"`
	AgentType    string `json:"agent_type"`
	Category     string `json:"category"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Seats        int    `json:"seats"`
	Transmission string `json:"transmission"`
	Fuel         string `json:"fuel"`
}

type vehicleSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Source vehicleDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ElasticInventory reads currently available vehicles from an index.
type ElasticInventory struct {
	es    *database.ElasticsearchClient
	index string
}

func NewElasticInventory(es *database.ElasticsearchClient, index string) *ElasticInventory {
	return &ElasticInventory{es: es, index: index}
}

// Vehicles returns the available vehicles of agentType grouped by canonical
// category.
func (e *ElasticInventory) Vehicles(ctx context.Context, agentType string) (models.Inventory, error) {
	query := map[string]interface{}{
		"size": maxInventoryHits,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"agent_type": agentType}},
					map[string]interface{}{"term": map[string]interface{}{"available": true}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"brand.keyword": "asc"},
			map[string]interface{}{"model.keyword": "asc"},
		},
	}

	var res vehicleSearchResponse
	if err := e.es.Search(ctx, e.index, query, &res); err != nil {
		var searchErr *database.SearchError
		switch {
		case errors.As(err, &searchErr) && searchErr.Status == http.StatusNotFound:
			return nil, apperrors.NewIndexNotFoundError(e.index)
		case errors.As(err, &searchErr):
			return nil, apperrors.NewSearchQueryFailedError("inventory", err)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.NewQueryTimeoutError("inventory")
		default:
			return nil, apperrors.NewElasticsearchConnectionFailedError(err)
		}
	}

	raw := map[string][]models.Vehicle{}
	for _, hit := range res.Hits.Hits {
		doc := hit.Source
		id := doc.ID
		if id == "" {
			id = hit.ID
		}
		raw[doc.Category] = append(raw[doc.Category], models.Vehicle{
			ID:           id,
			Brand:        doc.Brand,
			Model:        doc.Model,
			Seats:        doc.Seats,
			Transmission: doc.Transmission,
			Fuel:         doc.Fuel,
		})
	}
	return canonicalInventory(raw), nil
}

// LiveInventorySource replaces the static inventory of another source with
// the live one. The static inventory is kept when the search fails.
type LiveInventorySource struct {
	next      Source
	inventory *ElasticInventory
	logger    logger.Logger
}

func NewLiveInventorySource(next Source, inventory *ElasticInventory, log logger.Logger) *LiveInventorySource {
	return &LiveInventorySource{next: next, inventory: inventory, logger: log}
}

func (s *LiveInventorySource) Load(ctx context.Context, agentType string) (*models.Agent, error) {
	agent, err := s.next.Load(ctx, agentType)
	if err != nil {
		return nil, err
	}

	live, err := s.inventory.Vehicles(ctx, agentType)
	if err != nil {
		s.logger.Warn("live inventory unavailable, using static catalog", map[string]interface{}{
			"agentType": agentType,
			"error":     err.Error(),
		})
		return agent, nil
	}

	out := *agent
	out.Data = live
	return &out, nil
}

func (s *LiveInventorySource) AgentTypes(ctx context.Context) ([]string, error) {
	return s.next.AgentTypes(ctx)
}
