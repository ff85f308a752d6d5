package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnimalStatus enumerates the lifecycle states of an animal.
type AnimalStatus string

const (
	StatusActive  AnimalStatus = "active"
	StatusPassive AnimalStatus = "passive"
)

// Animal is a single head of livestock registered on a farm.
type Animal struct {
	ID                 string          `json:"id"`
	FarmID             string          `json:"farm_id"`
	TagNumber          string          `json:"tag_number"`
	GroupID            string          `json:"group_id,omitempty"` // empty when not assigned to a group
	RegistrationDate   time.Time       `json:"registration_date"`
	RegistrationWeight float64         `json:"registration_weight_kg"`
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
	LastWeight         float64         `json:"last_weight_kg"`
	Status             AnimalStatus    `json:"status"`
	DeactivatedAt      *time.Time      `json:"deactivated_at,omitempty"` // set iff Status is passive
}

// HasGroup reports whether the animal belongs to a group.
func (a Animal) HasGroup() bool {
	return a.GroupID != ""
}

// Weighing is one scale observation of an animal.
type Weighing struct {
	ID       string    `json:"id"`
	AnimalID string    `json:"animal_id"`
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
}

// Feed is a stocked feed item and its unit price.
type Feed struct {
	ID             string          `json:"id"`
	FarmID         string          `json:"farm_id"`
	Name           string          `json:"name"`
	PricePerKg     decimal.Decimal `json:"price_per_kg"`
	InitialStockKg float64         `json:"initial_stock_kg"`
	CurrentStockKg float64         `json:"current_stock_kg"`
	BagWeightKg    float64         `json:"bag_weight_kg"`
}

// RationItem is one feed line of a ration, expressed per animal per day.
type RationItem struct {
	FeedID   string  `json:"feed_id"`
	AmountKg float64 `json:"amount"`
}

// Ration is a feeding plan assigned to a group over a date range.
type Ration struct {
	ID        string       `json:"id"`
	FarmID    string       `json:"farm_id"`
	Name      string       `json:"name"`
	GroupID   string       `json:"group_id,omitempty"` // empty when unassigned
	Items     []RationItem `json:"content"`
	StartDate *time.Time   `json:"start_date,omitempty"`
	EndDate   *time.Time   `json:"end_date,omitempty"` // nil means ongoing
}

// VeterinaryRecord captures a procedure performed on an animal.
type VeterinaryRecord struct {
	ID        string          `json:"id"`
	AnimalID  string          `json:"animal_id"`
	Date      time.Time       `json:"date"`
	Procedure string          `json:"procedure"`
	Cost      decimal.Decimal `json:"cost"`
}

// GeneralExpense is a farm-wide overhead cost shared by the active herd.
type GeneralExpense struct {
	ID          string          `json:"id"`
	FarmID      string          `json:"farm_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}
