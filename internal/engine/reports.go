package engine

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// DailyFeedUse returns today's consumption per feed: every ration in effect
// today multiplied by the number of active animals in its group.
func DailyFeedUse(snapshot *models.Snapshot, today time.Time) map[string]float64 {
	census := NewCensus(snapshot.Animals)
	use := make(map[string]float64)
	for _, ration := range snapshot.Rations {
		if ration.GroupID == "" || !RationActiveOn(ration, today) {
			continue
		}
		head := census.Count(ration.GroupID, today)
		if head == 0 {
			continue
		}
		for _, item := range ration.Items {
			if item.AmountKg > 0 {
				use[item.FeedID] += item.AmountKg * float64(head)
			}
		}
	}
	return use
}

// FeedStockReport describes how long each feed lasts at today's consumption.
func FeedStockReport(snapshot *models.Snapshot, today time.Time) []models.FeedStockLine {
	use := DailyFeedUse(snapshot, today)

	lines := make([]models.FeedStockLine, 0, len(snapshot.Feeds))
	for _, feed := range snapshot.Feeds {
		line := models.FeedStockLine{
			FeedID:     feed.ID,
			Name:       feed.Name,
			StockKg:    feed.CurrentStockKg,
			PricePerKg: feed.PricePerKg,
			StockValue: decimal.NewFromFloat(feed.CurrentStockKg).Mul(feed.PricePerKg),
			DailyUseKg: use[feed.ID],
		}
		if line.DailyUseKg > 0 {
			days := int(math.Floor(feed.CurrentStockKg / line.DailyUseKg))
			line.DaysRemaining = &days
		}
		if feed.BagWeightKg > 0 {
			bags := int(math.Floor(feed.CurrentStockKg / feed.BagWeightKg))
			line.BagsRemaining = &bags
		}
		lines = append(lines, line)
	}
	return lines
}

// WeighingDay compares every weighing recorded on day with the previous and
// the first weighing of the same animal. Weighings of unknown animals are skipped.
func WeighingDay(snapshot *models.Snapshot, day time.Time) ([]models.WeighingDayLine, models.WeighingDaySummary) {
	day = Day(day)
	animals := snapshot.AnimalByID()
	history := snapshot.WeighingsByAnimal()

	ids := make([]string, 0)
	for id, ws := range history {
		if _, ok := animals[id]; !ok {
			continue
		}
		for _, w := range ws {
			if Day(w.Date).Equal(day) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)

	lines := make([]models.WeighingDayLine, 0, len(ids))
	for _, id := range ids {
		sorted := SortWeighings(history[id])
		idx := lastWeighingOn(sorted, day)
		curr, first := sorted[idx], sorted[0]

		line := models.WeighingDayLine{
			AnimalID:  id,
			TagNumber: animals[id].TagNumber,
			WeightKg:  curr.WeightKg,
			FirstDate: Day(first.Date),
			FirstKg:   first.WeightKg,
		}
		if idx > 0 {
			prev := sorted[idx-1]
			prevDate := Day(prev.Date)
			prevKg := prev.WeightKg
			days := DaysBetween(prev.Date, curr.Date)
			gain := curr.WeightKg - prev.WeightKg
			line.PreviousDate = &prevDate
			line.PreviousKg = &prevKg
			line.DaysSince = &days
			line.GainKg = &gain
			if days > 0 {
				rate := gain / float64(days)
				line.PeriodGcaa = &rate
			}

			if total := DaysBetween(first.Date, curr.Date); total > 0 {
				rate := (curr.WeightKg - first.WeightKg) / float64(total)
				line.SinceFirstGcaa = &rate
			}
		}
		lines = append(lines, line)
	}

	return lines, summarizeWeighingDay(lines)
}

func summarizeWeighingDay(lines []models.WeighingDayLine) models.WeighingDaySummary {
	summary := models.WeighingDaySummary{Count: len(lines)}
	if len(lines) == 0 {
		return summary
	}

	var weight, gain, gcaa float64
	var gains, rates int
	for _, l := range lines {
		weight += l.WeightKg
		if l.GainKg != nil {
			gain += *l.GainKg
			gains++
		}
		if l.PeriodGcaa != nil {
			gcaa += *l.PeriodGcaa
			rates++
		}
	}

	summary.AverageWeight = weight / float64(len(lines))
	if gains > 0 {
		summary.AverageGain = gain / float64(gains)
	}
	if rates > 0 {
		summary.AverageGcaa = gcaa / float64(rates)
	}
	return summary
}

// VeterinaryDay returns the veterinary records dated on day and their total cost.
func VeterinaryDay(records []models.VeterinaryRecord, day time.Time) ([]models.VeterinaryRecord, decimal.Decimal) {
	day = Day(day)
	total := decimal.Zero
	out := make([]models.VeterinaryRecord, 0)
	for _, r := range records {
		if !Day(r.Date).Equal(day) {
			continue
		}
		out = append(out, r)
		total = total.Add(r.Cost)
	}
	return out, total
}

// AnimalVeterinaryHistory returns the animal's veterinary records, newest first.
func AnimalVeterinaryHistory(records []models.VeterinaryRecord, animalID string) []models.VeterinaryRecord {
	out := make([]models.VeterinaryRecord, 0)
	for _, r := range records {
		if r.AnimalID == animalID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return Day(out[i].Date).After(Day(out[j].Date)) })
	return out
}
