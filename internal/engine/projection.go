package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// MinGcaa replaces a non-positive growth rate so that projections stay finite.
const MinGcaa = 0.001

// overheadWindowDays is the look-back used to estimate daily overhead.
const overheadWindowDays = 30

// ErrInvalidProjection indicates projection parameters that cannot be simulated.
var ErrInvalidProjection = errors.New("invalid projection parameters")

// TargetMode selects what a projection simulates towards.
type TargetMode string

const (
	TargetWeight TargetMode = "weight"
	TargetDate   TargetMode = "date"
)

// GainSource selects the growth rate used by a projection.
type GainSource string

const (
	GainLastInterval GainSource = "last"
	GainCustom       GainSource = "custom"
)

// OverheadSource selects how daily overhead per animal is estimated.
type OverheadSource string

const (
	OverheadRecent OverheadSource = "last"
	OverheadCustom OverheadSource = "custom"
)

// Valuation selects how the projected animal is priced.
type Valuation string

const (
	ValuationCarcass Valuation = "carcass"
	ValuationLive    Valuation = "live"
)

// ProjectionParams configures a projection run.
type ProjectionParams struct {
	Mode           TargetMode
	TargetWeightKg float64
	TargetDate     time.Time

	GainSource GainSource
	CustomGcaa float64

	OverheadSource        OverheadSource
	CustomMonthlyOverhead decimal.Decimal

	Valuation         Valuation
	CarcassPricePerKg decimal.Decimal
	YieldPercent      float64
	LivePricePerKg    decimal.Decimal

	// Groups restricts the projection to these groups when non-empty.
	Groups []string
}

// Validate checks that the parameters describe a computable projection.
func (p ProjectionParams) Validate() error {
	switch p.Mode {
	case TargetWeight:
		if p.TargetWeightKg <= 0 {
			return fmt.Errorf("%w: target weight must be positive", ErrInvalidProjection)
		}
	case TargetDate:
		if p.TargetDate.IsZero() {
			return fmt.Errorf("%w: target date is required", ErrInvalidProjection)
		}
	default:
		return fmt.Errorf("%w: unknown target mode %q", ErrInvalidProjection, p.Mode)
	}

	switch p.GainSource {
	case GainLastInterval, GainCustom:
	default:
		return fmt.Errorf("%w: unknown gcaa source %q", ErrInvalidProjection, p.GainSource)
	}

	switch p.OverheadSource {
	case OverheadRecent:
	case OverheadCustom:
		if p.CustomMonthlyOverhead.IsNegative() {
			return fmt.Errorf("%w: monthly overhead must not be negative", ErrInvalidProjection)
		}
	default:
		return fmt.Errorf("%w: unknown overhead source %q", ErrInvalidProjection, p.OverheadSource)
	}

	switch p.Valuation {
	case ValuationCarcass:
		if p.YieldPercent <= 0 || p.YieldPercent > 100 {
			return fmt.Errorf("%w: yield must be within (0, 100]", ErrInvalidProjection)
		}
		if p.CarcassPricePerKg.IsNegative() {
			return fmt.Errorf("%w: carcass price must not be negative", ErrInvalidProjection)
		}
	case ValuationLive:
		if p.LivePricePerKg.IsNegative() {
			return fmt.Errorf("%w: live price must not be negative", ErrInvalidProjection)
		}
	default:
		return fmt.Errorf("%w: unknown valuation %q", ErrInvalidProjection, p.Valuation)
	}
	return nil
}

// EffectiveGcaa substitutes MinGcaa for a non-positive rate.
func EffectiveGcaa(rate float64) float64 {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return MinGcaa
	}
	return rate
}

// DaysToWeight is the number of days needed to grow from current to target.
func DaysToWeight(currentKg, targetKg, gcaa float64) float64 {
	return math.Max(0, (targetKg-currentKg)/EffectiveGcaa(gcaa))
}

// DaysToDate is the number of whole days from today until target, never negative.
func DaysToDate(today, target time.Time) float64 {
	return math.Max(0, float64(DaysBetween(today, target)))
}

// SaleValue prices a weight according to the valuation mode.
func SaleValue(weightKg float64, p ProjectionParams) decimal.Decimal {
	weight := decimal.NewFromFloat(weightKg)
	if p.Valuation == ValuationLive {
		return weight.Mul(p.LivePricePerKg)
	}
	yield := decimal.NewFromFloat(p.YieldPercent).Div(decimal.NewFromInt(100))
	return weight.Mul(yield).Mul(p.CarcassPricePerKg)
}

// ProjectionInput is the per-animal state a projection starts from.
type ProjectionInput struct {
	Animal          models.Animal
	CurrentWeightKg float64
	Gcaa            float64
	DailyRationCost decimal.Decimal
	DailyOverhead   decimal.Decimal
	ExistingCost    decimal.Decimal
}

// Project simulates one animal forward to the target.
func Project(in ProjectionInput, p ProjectionParams, today time.Time) models.Projection {
	gcaa := EffectiveGcaa(in.Gcaa)
	today = Day(today)

	var days, projected float64
	switch p.Mode {
	case TargetDate:
		days = DaysToDate(today, p.TargetDate)
		projected = in.CurrentWeightKg + days*gcaa
	default:
		days = DaysToWeight(in.CurrentWeightKg, p.TargetWeightKg, gcaa)
		projected = math.Max(in.CurrentWeightKg, p.TargetWeightKg)
	}

	targetDate := today.AddDate(0, 0, int(math.Round(days)))
	if p.Mode == TargetDate {
		targetDate = Day(p.TargetDate)
		if targetDate.Before(today) {
			targetDate = today
		}
	}

	daily := in.DailyRationCost.Add(in.DailyOverhead)
	incremental := decimal.NewFromFloat(days).Mul(daily)
	sale := SaleValue(projected, p)

	return models.Projection{
		AnimalID:          in.Animal.ID,
		TagNumber:         in.Animal.TagNumber,
		GroupID:           in.Animal.GroupID,
		CurrentWeightKg:   in.CurrentWeightKg,
		Gcaa:              gcaa,
		DailyCost:         daily,
		CurrentCost:       in.ExistingCost,
		DaysNeeded:        days,
		TargetDate:        targetDate,
		ProjectedWeightKg: projected,
		IncrementalCost:   incremental,
		SaleValue:         sale,
		Profit:            sale.Sub(in.ExistingCost.Add(incremental)),
	}
}

// DailyOverheadPerAnimal estimates the overhead one animal accrues per day.
// With OverheadRecent it spreads the expenses of the last 30 days; with
// OverheadCustom it spreads the configured monthly amount. A herd with no
// active animal is treated as a single animal.
func DailyOverheadPerAnimal(p ProjectionParams, expenses []models.GeneralExpense, activeAnimals int, today time.Time) decimal.Decimal {
	monthly := p.CustomMonthlyOverhead
	if p.OverheadSource == OverheadRecent {
		monthly = RecentExpenses(expenses, today, overheadWindowDays)
	}
	if activeAnimals <= 0 {
		activeAnimals = 1
	}
	return monthly.
		Div(decimal.NewFromInt(int64(activeAnimals))).
		Div(decimal.NewFromInt(overheadWindowDays))
}

// RecentExpenses sums the expenses dated within the last windowDays up to and
// including today.
func RecentExpenses(expenses []models.GeneralExpense, today time.Time, windowDays int) decimal.Decimal {
	window := NewInterval(Day(today).AddDate(0, 0, -windowDays), today)
	total := decimal.Zero
	for _, exp := range expenses {
		if window.Contains(exp.Date) {
			total = total.Add(exp.Amount)
		}
	}
	return total
}

// ProjectHerd projects every animal active today that matches the group
// filter, using breakdowns for the cost accrued so far.
func ProjectHerd(snapshot *models.Snapshot, breakdowns []models.CostBreakdown, p ProjectionParams, today time.Time) []models.Projection {
	feeds := snapshot.FeedByID()
	census := NewCensus(snapshot.Animals)
	weighings := snapshot.WeighingsByAnimal()
	overhead := DailyOverheadPerAnimal(p, snapshot.GeneralExpenses, census.FarmCount(today), today)

	existing := make(map[string]decimal.Decimal, len(breakdowns))
	for _, b := range breakdowns {
		existing[b.AnimalID] = b.Total
	}

	groupFilter := make(map[string]struct{}, len(p.Groups))
	for _, g := range p.Groups {
		groupFilter[g] = struct{}{}
	}

	out := make([]models.Projection, 0, len(snapshot.Animals))
	for _, animal := range snapshot.Animals {
		if !ActiveOn(animal, today) {
			continue
		}
		if len(groupFilter) > 0 {
			if _, ok := groupFilter[groupKey(animal.GroupID)]; !ok {
				continue
			}
		}

		history := weighings[animal.ID]
		gcaa := p.CustomGcaa
		if p.GainSource == GainLastInterval {
			gcaa = Growth(animal, history).LastRate
		}

		out = append(out, Project(ProjectionInput{
			Animal:          animal,
			CurrentWeightKg: CurrentWeight(animal, history),
			Gcaa:            gcaa,
			DailyRationCost: GroupDailyRationCost(animal.GroupID, snapshot.Rations, feeds, today),
			DailyOverhead:   overhead,
			ExistingCost:    existing[animal.ID],
		}, p, today))
	}
	return out
}

// SummarizeProjections reports the count, average and total profit.
func SummarizeProjections(projections []models.Projection) models.ProjectionSummary {
	summary := models.ProjectionSummary{
		Count:         len(projections),
		AverageProfit: decimal.Zero,
		TotalProfit:   decimal.Zero,
	}
	for _, p := range projections {
		summary.TotalProfit = summary.TotalProfit.Add(p.Profit)
	}
	if summary.Count > 0 {
		summary.AverageProfit = summary.TotalProfit.Div(decimal.NewFromInt(int64(summary.Count)))
	}
	return summary
}
