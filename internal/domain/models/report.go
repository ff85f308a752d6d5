package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UngroupedKey is the aggregation bucket for animals without a group.
const UngroupedKey = "ungrouped"

// CostBreakdown is the accumulated cost of one animal.
type CostBreakdown struct {
	AnimalID   string          `json:"animal_id"`
	TagNumber  string          `json:"tag_number"`
	GroupID    string          `json:"group_id"`
	Purchase   decimal.Decimal `json:"purchase"`
	Feed       decimal.Decimal `json:"feed"`
	Veterinary decimal.Decimal `json:"veterinary"`
	Overhead   decimal.Decimal `json:"overhead"`
	Total      decimal.Decimal `json:"total"`
}

// GroupCost aggregates cost breakdowns of the animals in one group.
type GroupCost struct {
	GroupID      string          `json:"group_id"`
	AnimalCount  int             `json:"animal_count"`
	Purchase     decimal.Decimal `json:"purchase"`
	Feed         decimal.Decimal `json:"feed"`
	Veterinary   decimal.Decimal `json:"veterinary"`
	Overhead     decimal.Decimal `json:"overhead"`
	Total        decimal.Decimal `json:"total"`
	AverageTotal decimal.Decimal `json:"average_total"`
}

// IntervalGain is the weight gain between two consecutive weighings.
type IntervalGain struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Days   int       `json:"days"`
	GainKg float64   `json:"gain_kg"`
	RateKg float64   `json:"rate_kg_per_day"`
}

// GrowthMetric summarises the weighing history of one animal.
type GrowthMetric struct {
	AnimalID        string         `json:"animal_id"`
	TagNumber       string         `json:"tag_number"`
	GroupID         string         `json:"group_id"`
	Weighings       int            `json:"weighings"`
	CurrentWeightKg float64        `json:"current_weight_kg"`
	LastWeighedAt   *time.Time     `json:"last_weighed_at,omitempty"`
	LifetimeRate    float64        `json:"lifetime_gcaa"`
	LastRate        float64        `json:"last_gcaa"`
	Intervals       []IntervalGain `json:"intervals"`
	HasData         bool           `json:"has_data"`
}

// Projection is the forward simulation of one animal to a sale target.
type Projection struct {
	AnimalID          string          `json:"animal_id"`
	TagNumber         string          `json:"tag_number"`
	GroupID           string          `json:"group_id"`
	CurrentWeightKg   float64         `json:"current_weight_kg"`
	Gcaa              float64         `json:"gcaa"`
	DailyCost         decimal.Decimal `json:"daily_cost"`
	CurrentCost       decimal.Decimal `json:"current_cost"`
	DaysNeeded        float64         `json:"days_needed"`
	TargetDate        time.Time       `json:"target_date"`
	ProjectedWeightKg float64         `json:"projected_weight_kg"`
	IncrementalCost   decimal.Decimal `json:"incremental_cost"`
	SaleValue         decimal.Decimal `json:"sale_value"`
	Profit            decimal.Decimal `json:"profit"`
}

// ProjectionSummary aggregates the profit of a set of projections.
type ProjectionSummary struct {
	Count         int             `json:"count"`
	AverageProfit decimal.Decimal `json:"average_profit"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
}

// StockLevel is the recomputed stock of one feed.
type StockLevel struct {
	FeedID         string  `json:"feed_id" bson:"feed_id"`
	InitialStockKg float64 `json:"initial_stock_kg" bson:"initial_stock_kg"`
	ConsumedKg     float64 `json:"consumed_kg" bson:"consumed_kg"`
	PreviousKg     float64 `json:"previous_kg" bson:"previous_kg"`
	CurrentStockKg float64 `json:"current_stock_kg" bson:"current_stock_kg"`
	Clamped        bool    `json:"clamped" bson:"clamped"`
}

// StockRecalculation is the audit record of one full stock recomputation.
type StockRecalculation struct {
	RunID       string       `json:"run_id" bson:"run_id"`
	FarmID      string       `json:"farm_id" bson:"farm_id"`
	AsOf        time.Time    `json:"as_of" bson:"as_of"`
	Levels      []StockLevel `json:"levels" bson:"levels"`
	FeedsFailed []string     `json:"feeds_failed,omitempty" bson:"feeds_failed,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
}

// FeedStockLine is one row of the feed stock report.
type FeedStockLine struct {
	FeedID        string          `json:"feed_id"`
	Name          string          `json:"name"`
	StockKg       float64         `json:"stock_kg"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	StockValue    decimal.Decimal `json:"stock_value"`
	DailyUseKg    float64         `json:"daily_use_kg"`
	DaysRemaining *int            `json:"days_remaining,omitempty"` // nil when nothing is consumed
	BagsRemaining *int            `json:"bags_remaining,omitempty"` // nil without a bag weight
}

// WeighingDayLine compares one weighing with the animal's earlier history.
type WeighingDayLine struct {
	AnimalID       string     `json:"animal_id"`
	TagNumber      string     `json:"tag_number"`
	WeightKg       float64    `json:"weight_kg"`
	PreviousDate   *time.Time `json:"previous_date,omitempty"`
	PreviousKg     *float64   `json:"previous_kg,omitempty"`
	DaysSince      *int       `json:"days_since,omitempty"`
	GainKg         *float64   `json:"gain_kg,omitempty"`
	PeriodGcaa     *float64   `json:"period_gcaa,omitempty"`
	FirstDate      time.Time  `json:"first_date"`
	FirstKg        float64    `json:"first_kg"`
	SinceFirstGcaa *float64   `json:"since_first_gcaa,omitempty"`
}

// WeighingDaySummary averages a weighing day report.
type WeighingDaySummary struct {
	Count         int     `json:"count"`
	AverageWeight float64 `json:"average_weight_kg"`
	AverageGain   float64 `json:"average_gain_kg"`
	AverageGcaa   float64 `json:"average_gcaa"`
}

// AnimalProfile combines growth, cost and current valuation of one animal.
type AnimalProfile struct {
	Animal       Animal             `json:"animal"`
	Growth       GrowthMetric       `json:"growth"`
	Cost         CostBreakdown      `json:"cost"`
	Veterinary   []VeterinaryRecord `json:"veterinary"`
	LiveValue    decimal.Decimal    `json:"live_value"`
	CarcassValue decimal.Decimal    `json:"carcass_value"`
}
