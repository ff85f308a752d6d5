package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// Lifetime is the span of days an animal has been on the farm, up to and
// including its deactivation day, or up to today while it is active.
func Lifetime(animal models.Animal, today time.Time) Interval {
	end := today
	if animal.Status == models.StatusPassive && animal.DeactivatedAt != nil {
		end = *animal.DeactivatedAt
	}
	return NewInterval(animal.RegistrationDate, end)
}

// FeedCost accumulates the cost of every ration of the animal's group over
// the days the ration and the animal's lifetime overlap.
func FeedCost(animal models.Animal, rations []models.Ration, feeds map[string]models.Feed, today time.Time) decimal.Decimal {
	total := decimal.Zero
	if !animal.HasGroup() {
		return total
	}

	lifetime := Lifetime(animal, today)
	for _, ration := range rations {
		if ration.GroupID != animal.GroupID {
			continue
		}
		effective, ok := Intersect(RationInterval(ration, animal.RegistrationDate, today), lifetime)
		if !ok {
			continue
		}
		days := decimal.NewFromInt(int64(effective.Days()))
		total = total.Add(DailyRationCost(ration, feeds).Mul(days))
	}
	return total
}

// VeterinaryCosts sums veterinary record costs per animal.
func VeterinaryCosts(records []models.VeterinaryRecord) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.Cost.IsNegative() {
			continue
		}
		out[r.AnimalID] = out[r.AnimalID].Add(r.Cost)
	}
	return out
}

// OverheadShares distributes every general expense equally over the animals
// active on the expense date. Expenses dated on a day without active animals
// are not distributed.
func OverheadShares(census *Census, expenses []models.GeneralExpense) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, exp := range expenses {
		if !exp.Amount.IsPositive() {
			continue
		}
		active := census.FarmActive(exp.Date)
		if len(active) == 0 {
			continue
		}
		share := exp.Amount.Div(decimal.NewFromInt(int64(len(active))))
		for _, id := range active {
			out[id] = out[id].Add(share)
		}
	}
	return out
}

// AllocateCosts produces one cost breakdown per snapshot animal, in snapshot order.
func AllocateCosts(snapshot *models.Snapshot, today time.Time) []models.CostBreakdown {
	feeds := snapshot.FeedByID()
	census := NewCensus(snapshot.Animals)
	vet := VeterinaryCosts(snapshot.Veterinary)
	overhead := OverheadShares(census, snapshot.GeneralExpenses)

	out := make([]models.CostBreakdown, 0, len(snapshot.Animals))
	for _, animal := range snapshot.Animals {
		purchase := animal.PurchasePrice
		if purchase.IsNegative() {
			purchase = decimal.Zero
		}

		b := models.CostBreakdown{
			AnimalID:   animal.ID,
			TagNumber:  animal.TagNumber,
			GroupID:    animal.GroupID,
			Purchase:   purchase,
			Feed:       FeedCost(animal, snapshot.Rations, feeds, today),
			Veterinary: vet[animal.ID],
			Overhead:   overhead[animal.ID],
		}
		b.Total = b.Purchase.Add(b.Feed).Add(b.Veterinary).Add(b.Overhead)
		out = append(out, b)
	}
	return out
}

// groupKey maps an empty group to the ungrouped bucket.
func groupKey(groupID string) string {
	if groupID == "" {
		return models.UngroupedKey
	}
	return groupID
}

// AggregateByGroup sums cost breakdowns per group. The result is sorted by
// group identifier and does not depend on the order of breakdowns.
func AggregateByGroup(breakdowns []models.CostBreakdown) []models.GroupCost {
	groups := make(map[string]*models.GroupCost)
	for _, b := range breakdowns {
		key := groupKey(b.GroupID)
		g, ok := groups[key]
		if !ok {
			g = &models.GroupCost{GroupID: key}
			groups[key] = g
		}
		g.AnimalCount++
		g.Purchase = g.Purchase.Add(b.Purchase)
		g.Feed = g.Feed.Add(b.Feed)
		g.Veterinary = g.Veterinary.Add(b.Veterinary)
		g.Overhead = g.Overhead.Add(b.Overhead)
		g.Total = g.Total.Add(b.Total)
	}

	out := make([]models.GroupCost, 0, len(groups))
	for _, g := range groups {
		if g.AnimalCount > 0 {
			g.AverageTotal = g.Total.Div(decimal.NewFromInt(int64(g.AnimalCount)))
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out
}

// TotalCost sums the totals of all breakdowns.
func TotalCost(breakdowns []models.CostBreakdown) decimal.Decimal {
	total := decimal.Zero
	for _, b := range breakdowns {
		total = total.Add(b.Total)
	}
	return total
}
