package engine

import (
	"sort"
	"time"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// Consumption replays every dated, group-assigned ration day by day and
// returns the kilograms consumed per feed. Days on which the group has no
// active animal consume nothing.
func Consumption(snapshot *models.Snapshot, today time.Time) map[string]float64 {
	census := NewCensus(snapshot.Animals)
	consumed := make(map[string]float64)

	for _, ration := range snapshot.Rations {
		if !replayable(ration) {
			continue
		}
		interval := RationInterval(ration, *ration.StartDate, today)
		if interval.Empty() {
			continue
		}

		animalDays := 0
		interval.EachDay(func(day time.Time) {
			animalDays += census.Count(ration.GroupID, day)
		})
		if animalDays == 0 {
			continue
		}

		for _, item := range ration.Items {
			if item.FeedID == "" || item.AmountKg <= 0 {
				continue
			}
			consumed[item.FeedID] += item.AmountKg * float64(animalDays)
		}
	}
	return consumed
}

func replayable(ration models.Ration) bool {
	return ration.GroupID != "" && ration.StartDate != nil && len(ration.Items) > 0
}

// RecalculateStock derives the authoritative current stock of every feed from
// its initial stock and the full ration history. The result is sorted by feed
// identifier and never negative.
func RecalculateStock(snapshot *models.Snapshot, today time.Time) []models.StockLevel {
	consumed := Consumption(snapshot, today)

	levels := make([]models.StockLevel, 0, len(snapshot.Feeds))
	for _, feed := range snapshot.Feeds {
		used := consumed[feed.ID]
		remaining := feed.InitialStockKg - used
		level := models.StockLevel{
			FeedID:         feed.ID,
			InitialStockKg: feed.InitialStockKg,
			ConsumedKg:     used,
			PreviousKg:     feed.CurrentStockKg,
			CurrentStockKg: remaining,
		}
		if remaining < 0 {
			level.CurrentStockKg = 0
			level.Clamped = true
		}
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].FeedID < levels[j].FeedID })
	return levels
}

// UnknownFeeds lists feed identifiers referenced by rations but absent from
// the snapshot, sorted.
func UnknownFeeds(snapshot *models.Snapshot) []string {
	feeds := snapshot.FeedByID()
	seen := make(map[string]struct{})
	var out []string
	for _, ration := range snapshot.Rations {
		for _, item := range ration.Items {
			if _, ok := feeds[item.FeedID]; ok || item.FeedID == "" {
				continue
			}
			if _, dup := seen[item.FeedID]; dup {
				continue
			}
			seen[item.FeedID] = struct{}{}
			out = append(out, item.FeedID)
		}
	}
	sort.Strings(out)
	return out
}
