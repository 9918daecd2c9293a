// Package catalog loads agent definitions together with their pricing and
// vehicle inventory from files, Postgres, a Redis cache and Elasticsearch.
package catalog

import (
	"context"
	"errors"
	"strings"

	"booking-dialogue/internal/dialogue/nlu"
	"booking-dialogue/internal/models"
)

var (
	ErrAgentNotFound = errors.New("AGENT_NOT_FOUND")
	ErrInvalidAgent  = errors.New("INVALID_AGENT")
)

// Source loads one agent with its catalog.
type Source interface {
	Load(ctx context.Context, agentType string) (*models.Agent, error)
	AgentTypes(ctx context.Context) ([]string, error)
}

// validAgentType rejects anything that could escape the catalog directory.
func validAgentType(agentType string) bool {
	if agentType == "" || agentType == "." || agentType == ".." {
		return false
	}
	return !strings.ContainsAny(agentType, `/\`)
}

// canonicalInventory re-keys raw category names onto the canonical
// categories. Unknown keys are dropped.
func canonicalInventory(raw map[string][]models.Vehicle) models.Inventory {
	inv := make(models.Inventory, len(raw))
	for key, vehicles := range raw {
		category, ok := nlu.NormalizeServiceValue(key)
		if !ok {
			continue
		}
		inv[category] = append(inv[category], vehicles...)
	}
	return inv
}
