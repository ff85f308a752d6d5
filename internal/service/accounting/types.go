package accounting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// CostReport is the farm-wide cost accounting as of one day.
type CostReport struct {
	FarmID  string                 `json:"farm_id"`
	AsOf    time.Time              `json:"as_of"`
	Animals []models.CostBreakdown `json:"animals"`
	Groups  []models.GroupCost     `json:"groups"`
	Total   decimal.Decimal        `json:"total"`
}

// GrowthReport lists the growth metrics of every animal.
type GrowthReport struct {
	FarmID  string                `json:"farm_id"`
	AsOf    time.Time             `json:"as_of"`
	Animals []models.GrowthMetric `json:"animals"`
}

// ProjectionReport holds one projection per selected animal.
type ProjectionReport struct {
	FarmID      string                   `json:"farm_id"`
	AsOf        time.Time                `json:"as_of"`
	Projections []models.Projection      `json:"projections"`
	Summary     models.ProjectionSummary `json:"summary"`
}

// FeedStockReport describes the remaining stock of every feed.
type FeedStockReport struct {
	FarmID     string                 `json:"farm_id"`
	AsOf       time.Time              `json:"as_of"`
	Feeds      []models.FeedStockLine `json:"feeds"`
	TotalValue decimal.Decimal        `json:"total_value"`
}

type WeighingDayReport struct {
	FarmID  string                    `json:"farm_id"`
	Date    time.Time                 `json:"date"`
	Lines   []models.WeighingDayLine  `json:"lines"`
	Summary models.WeighingDaySummary `json:"summary"`
}

type VeterinaryDayReport struct {
	FarmID  string                    `json:"farm_id"`
	Date    time.Time                 `json:"date"`
	Records []models.VeterinaryRecord `json:"records"`
	Total   decimal.Decimal           `json:"total"`
}

// Valuation prices an animal at its current weight.
type Valuation struct {
	LivePricePerKg    decimal.Decimal
	CarcassPricePerKg decimal.Decimal
	YieldPercent      float64
}
