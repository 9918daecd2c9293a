// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"booking-dialogue/internal/common/database"
	"booking-dialogue/internal/dialogue/nlu"
	"booking-dialogue/internal/models"

	"github.com/lib/pq"
)

const (
	agentQuery = `
		SELECT agent_type, name, description, is_active, workflow_type, features, quick_actions,
		       currency, weekly_days, weekly_percent, monthly_days, monthly_percent, one_way_fee
		FROM rental_agents
		WHERE agent_type = $1`

	categoriesQuery = `
		SELECT category, base_price
		FROM rental_categories
		WHERE agent_type = $1`

	vehiclesQuery = `
		SELECT id, category, brand, model, seats, transmission, fuel
		FROM rental_vehicles
		WHERE agent_type = $1 AND active = TRUE
		ORDER BY category, brand, model`

	agentTypesQuery = `SELECT agent_type FROM rental_agents ORDER BY agent_type`
)

// PostgresSource reads agents from the rental_* tables.
type PostgresSource struct {
	db *database.PostgresClient
}

func NewPostgresSource(db *database.PostgresClient) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Load(ctx context.Context, agentType string) (*models.Agent, error) {
	agent, err := s.loadAgent(ctx, agentType)
	if err != nil {
		return nil, err
	}
	if err := s.loadCategories(ctx, agent); err != nil {
		return nil, err
	}
	if err := s.loadVehicles(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *PostgresSource) AgentTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.DB.QueryContext(ctx, agentTypesQuery)
	if err != nil {
		return nil, fmt.Errorf("query agent types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var typ string
		if err := rows.Scan(&typ); err != nil {
			return nil, err
		}
		types = append(types, typ)
	}
	return types, rows.Err()
}

func (s *PostgresSource) loadAgent(ctx context.Context, agentType string) (*models.Agent, error) {
	var (
		agent                         models.Agent
		description, workflowType     sql.NullString
		currency                      sql.NullString
		quickActions                  []byte
		weeklyDays, monthlyDays       sql.NullInt64
		weeklyPercent, monthlyPercent sql.NullFloat64
		oneWayFee                     sql.NullInt64
	)

	err := s.db.DB.QueryRowContext(ctx, agentQuery, agentType).Scan(
		&agent.Type, &agent.Name, &description, &agent.IsActive, &workflowType,
		pq.Array(&agent.Features), &quickActions,
		&currency, &weeklyDays, &weeklyPercent, &monthlyDays, &monthlyPercent, &oneWayFee,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentType)
	}
	if err != nil {
		return nil, fmt.Errorf("query agent %s: %w", agentType, err)
	}

	agent.Description = description.String
	agent.WorkflowType = workflowType.String
	if len(quickActions) > 0 {
		if err := json.Unmarshal(quickActions, &agent.QuickActions); err != nil {
			return nil, fmt.Errorf("%w: quick_actions: %v", ErrInvalidAgent, err)
		}
	}

	agent.Pricing = &models.PricingCatalog{
		Currency:   currency.String,
		Categories: map[models.Category]models.CategoryPrice{},
	}
	if weeklyDays.Valid && weeklyPercent.Valid {
		agent.Pricing.Discounts.Weekly = &models.Discount{Days: int(weeklyDays.Int64), Percent: weeklyPercent.Float64}
	}
	if monthlyDays.Valid && monthlyPercent.Valid {
		agent.Pricing.Discounts.Monthly = &models.Discount{Days: int(monthlyDays.Int64), Percent: monthlyPercent.Float64}
	}
	if oneWayFee.Valid {
		agent.Pricing.ExtraFees.OneWay = int(oneWayFee.Int64)
	}
	return &agent, nil
}

func (s *PostgresSource) loadCategories(ctx context.Context, agent *models.Agent) error {
	rows, err := s.db.DB.QueryContext(ctx, categoriesQuery, agent.Type)
	if err != nil {
		return fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		var price models.CategoryPrice
		if err := rows.Scan(&raw, &price.BasePrice); err != nil {
			return err
		}
		if category, ok := nlu.NormalizeServiceValue(raw); ok {
			agent.Pricing.Categories[category] = price
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadVehicles(ctx context.Context, agent *models.Agent) error {
	rows, err := s.db.DB.QueryContext(ctx, vehiclesQuery, agent.Type)
	if err != nil {
		return fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	raw := map[string][]models.Vehicle{}
	for rows.Next() {
		var (
			v                  models.Vehicle
			category           string
			seats              sql.NullInt64
			transmission, fuel sql.NullString
		)
		if err := rows.Scan(&v.ID, &category, &v.Brand, &v.Model, &seats, &transmission, &fuel); err != nil {
			return err
		}
		v.Seats = int(seats.Int64)
		v.Transmission = transmission.String
		v.Fuel = fuel.String
		raw[category] = append(raw[category], v)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	agent.Data = canonicalInventory(raw)
	return nil
}
