// Package pricing estimates rental prices from a pricing catalog.
package pricing

import (
	"math"

	"booking-dialogue/internal/models"
)

const (
	AgentCarRental   = "car-rental"
	DefaultBasePrice = 10000
)

// BookingRequest carries the entities that influence the price.
type BookingRequest struct {
	CarType        models.Category `json:"car_type"`
	Days           int             `json:"days"`
	PickupLocation string          `json:"pickup_location,omitempty"`
	ReturnLocation string          `json:"return_location,omitempty"`
}

// RequestFromEntities builds a request from dialogue entities. Days falls
// back to 1 when unknown.
func RequestFromEntities(e models.Entities) BookingRequest {
	days := 1
	if e.Days != nil {
		days = *e.Days
	}
	return BookingRequest{
		CarType:        models.Category(e.Service),
		Days:           days,
		PickupLocation: e.PickupLocation,
		ReturnLocation: e.ReturnLocation,
	}
}

// CalculatePrice returns the total price in the catalog currency. The
// second result is false when there is no catalog to price against.
func CalculatePrice(agentType string, catalog *models.PricingCatalog, req BookingRequest) (int, bool) {
	if catalog == nil {
		return 0, false
	}
	if agentType != AgentCarRental {
		return 0, true
	}

	base, ok := catalog.BasePrice(req.CarType)
	if !ok {
		base = DefaultBasePrice
	}

	days := req.Days
	if days < 1 {
		days = 1
	}
	total := float64(base * days)

	switch d := catalog.Discounts; {
	case d.Monthly != nil && days > d.Monthly.Days:
		total *= 1 - d.Monthly.Percent/100
	case d.Weekly != nil && days > d.Weekly.Days:
		total *= 1 - d.Weekly.Percent/100
	}

	if req.PickupLocation != "" && req.ReturnLocation != "" && req.PickupLocation != req.ReturnLocation {
		total += float64(catalog.ExtraFees.OneWay)
	}

	return int(math.Round(total)), true
}

// Quote is the price estimate attached to a dialogue turn.
type Quote struct {
	Price    int             `json:"price"`
	Currency string          `json:"currency"`
	Category models.Category `json:"category,omitempty"`
	Days     int             `json:"days"`
}

// QuoteForEntities prices the entities when a category and a duration are
// known.
func QuoteForEntities(agentType string, catalog *models.PricingCatalog, e models.Entities) (*Quote, bool) {
	if e.Days == nil || !models.Category(e.Service).Valid() {
		return nil, false
	}
	req := RequestFromEntities(e)
	price, ok := CalculatePrice(agentType, catalog, req)
	if !ok {
		return nil, false
	}

	currency := catalog.Currency
	if currency == "" {
		currency = "HUF"
	}
	return &Quote{Price: price, Currency: currency, Category: req.CarType, Days: req.Days}, true
}
