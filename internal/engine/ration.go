package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// DailyRationCost is the per-animal cost of one day on the ration. Items that
// reference a feed missing from the price table contribute nothing.
func DailyRationCost(ration models.Ration, feeds map[string]models.Feed) decimal.Decimal {
	total := decimal.Zero
	for _, item := range ration.Items {
		feed, ok := feeds[item.FeedID]
		if !ok || item.AmountKg <= 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(item.AmountKg).Mul(feed.PricePerKg))
	}
	return total
}

// RationInterval resolves the days a ration covers. A missing start falls
// back to defaultStart and a missing end means the ration runs through today.
func RationInterval(ration models.Ration, defaultStart, today time.Time) Interval {
	start := defaultStart
	if ration.StartDate != nil {
		start = *ration.StartDate
	}
	end := today
	if ration.EndDate != nil {
		end = *ration.EndDate
	}
	return NewInterval(start, end)
}

// RationActiveOn reports whether the ration is in effect on day: started on
// or before day and not yet ended.
func RationActiveOn(ration models.Ration, day time.Time) bool {
	d := Day(day)
	if ration.StartDate != nil && Day(*ration.StartDate).After(d) {
		return false
	}
	if ration.EndDate != nil && Day(*ration.EndDate).Before(d) {
		return false
	}
	return true
}

// GroupDailyRationCost sums the per-animal daily cost of every ration assigned
// to the group that is in effect on day.
func GroupDailyRationCost(groupID string, rations []models.Ration, feeds map[string]models.Feed, day time.Time) decimal.Decimal {
	total := decimal.Zero
	if groupID == "" {
		return total
	}
	for _, ration := range rations {
		if ration.GroupID != groupID || !RationActiveOn(ration, day) {
			continue
		}
		total = total.Add(DailyRationCost(ration, feeds))
	}
	return total
}
