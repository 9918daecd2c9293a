// internal/models/catalog.go
package models

// CategoryPrice is the daily base price of a category.
type CategoryPrice struct {
	BasePrice int `json:"base_price" db:"base_price"`
}

// Discount applies when the rental is longer than Days.
type Discount struct {
	Days    int     `json:"days"`
	Percent float64 `json:"percent"`
}

type Discounts struct {
	Weekly  *Discount `json:"weekly,omitempty"`
	Monthly *Discount `json:"monthly,omitempty"`
}

type ExtraFees struct {
	OneWay int `json:"one_way,omitempty"`
}

// PricingCatalog is read-only pricing data for one agent.
type PricingCatalog struct {
	Currency   string                     `json:"currency,omitempty"`
	Categories map[Category]CategoryPrice `json:"categories,omitempty"`
	Discounts  Discounts                  `json:"discounts,omitempty"`
	ExtraFees  ExtraFees                  `json:"extra_fees,omitempty"`
}

// HasCategories reports whether any category price is present.
func (p *PricingCatalog) HasCategories() bool {
	return p != nil && len(p.Categories) > 0
}

// BasePrice returns the daily price for c when the catalog has one.
func (p *PricingCatalog) BasePrice(c Category) (int, bool) {
	if p == nil {
		return 0, false
	}
	price, ok := p.Categories[c]
	if !ok {
		return 0, false
	}
	return price.BasePrice, true
}

// Vehicle is one rentable car.
type Vehicle struct {
	ID           string `json:"id,omitempty" db:"id"`
	Brand        string `json:"brand" db:"brand"`
	Model        string `json:"model" db:"model"`
	Seats        int    `json:"seats,omitempty" db:"seats"`
	Transmission string `json:"transmission,omitempty" db:"transmission"`
	Fuel         string `json:"fuel,omitempty" db:"fuel"`
}

// Inventory groups vehicles by category.
type Inventory map[Category][]Vehicle

// Count returns the number of vehicles in a category.
func (inv Inventory) Count(c Category) int {
	return len(inv[c])
}

// QuickAction is a canned prompt offered by the client UI.
type QuickAction struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// Agent is an assistant definition together with its catalog.
type Agent struct {
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	IsActive     bool            `json:"is_active"`
	WorkflowType string          `json:"workflow_type,omitempty"`
	Features     []string        `json:"features,omitempty"`
	QuickActions []QuickAction   `json:"quick_actions,omitempty"`
	PricingFile  string          `json:"pricing_file,omitempty"`
	DataFile     string          `json:"data_file,omitempty"`
	Pricing      *PricingCatalog `json:"-"`
	Data         Inventory       `json:"-"`
}

// AgentSummary is the public listing shape of an agent.
type AgentSummary struct {
	Type         string        `json:"type"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Features     []string      `json:"features,omitempty"`
	QuickActions []QuickAction `json:"quick_actions,omitempty"`
}

// Summary returns the listing shape of a.
func (a *Agent) Summary() AgentSummary {
	return AgentSummary{
		Type:         a.Type,
		Name:         a.Name,
		Description:  a.Description,
		Features:     a.Features,
		QuickActions: a.QuickActions,
	}
}
