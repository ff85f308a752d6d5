package engine

import (
	"sort"
	"time"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// SortWeighings returns a copy of weighings ordered by date. Weighings on the
// same date keep their input order.
func SortWeighings(weighings []models.Weighing) []models.Weighing {
	sorted := make([]models.Weighing, len(weighings))
	copy(sorted, weighings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Day(sorted[i].Date).Before(Day(sorted[j].Date))
	})
	return sorted
}

// IntervalGains computes the gain between each pair of consecutive weighings.
// weighings must already be sorted by date. A zero-day gap yields a rate of 0.
func IntervalGains(weighings []models.Weighing) []models.IntervalGain {
	if len(weighings) < 2 {
		return nil
	}

	gains := make([]models.IntervalGain, 0, len(weighings)-1)
	for i := 1; i < len(weighings); i++ {
		prev, curr := weighings[i-1], weighings[i]
		days := DaysBetween(prev.Date, curr.Date)
		gain := curr.WeightKg - prev.WeightKg

		rate := 0.0
		if days > 0 {
			rate = gain / float64(days)
		}

		gains = append(gains, models.IntervalGain{
			From:   Day(prev.Date),
			To:     Day(curr.Date),
			Days:   days,
			GainKg: gain,
			RateKg: rate,
		})
	}
	return gains
}

// Growth derives the growth metric of one animal from its weighings, which
// may be given in any order.
func Growth(animal models.Animal, weighings []models.Weighing) models.GrowthMetric {
	metric := models.GrowthMetric{
		AnimalID:        animal.ID,
		TagNumber:       animal.TagNumber,
		GroupID:         animal.GroupID,
		CurrentWeightKg: CurrentWeight(animal, nil),
		Intervals:       []models.IntervalGain{},
	}
	if len(weighings) == 0 {
		return metric
	}

	sorted := SortWeighings(weighings)
	last := sorted[len(sorted)-1]
	lastDay := Day(last.Date)

	metric.Weighings = len(sorted)
	metric.CurrentWeightKg = last.WeightKg
	metric.LastWeighedAt = &lastDay
	metric.HasData = true

	if gains := IntervalGains(sorted); len(gains) > 0 {
		metric.Intervals = gains
		metric.LastRate = gains[len(gains)-1].RateKg
	}

	baseline := animal.RegistrationWeight
	if baseline <= 0 {
		baseline = sorted[0].WeightKg
	}
	if days := DaysBetween(animal.RegistrationDate, last.Date); days > 0 {
		metric.LifetimeRate = (last.WeightKg - baseline) / float64(days)
	}

	return metric
}

// GrowthAll computes growth metrics for every animal of the snapshot, in
// snapshot order. Weighings of unknown animals are ignored.
func GrowthAll(snapshot *models.Snapshot) []models.GrowthMetric {
	byAnimal := snapshot.WeighingsByAnimal()
	out := make([]models.GrowthMetric, 0, len(snapshot.Animals))
	for _, animal := range snapshot.Animals {
		out = append(out, Growth(animal, byAnimal[animal.ID]))
	}
	return out
}

// CurrentWeight is the latest known weight of an animal: its last weighing,
// else the last observed weight, else the registration weight.
func CurrentWeight(animal models.Animal, weighings []models.Weighing) float64 {
	if len(weighings) > 0 {
		sorted := SortWeighings(weighings)
		return sorted[len(sorted)-1].WeightKg
	}
	if animal.LastWeight > 0 {
		return animal.LastWeight
	}
	return animal.RegistrationWeight
}

// lastWeighingOn returns the index of the last weighing dated on day, or -1.
func lastWeighingOn(sorted []models.Weighing, day time.Time) int {
	idx := -1
	for i, w := range sorted {
		if Day(w.Date).Equal(day) {
			idx = i
		}
	}
	return idx
}
