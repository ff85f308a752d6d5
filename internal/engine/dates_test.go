package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetweenInclusive_SameDayIsOne(t *testing.T) {
	days := []time.Time{
		date(2024, 1, 1),
		date(2024, 2, 29),
		time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 10, 27, 1, 30, 0, 0, time.FixedZone("TRT", 3*60*60)),
	}
	for _, d := range days {
		assert.Equal(t, 1, DaysBetweenInclusive(d, d), d.String())
	}
}

func TestDaysBetweenInclusive_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, DaysBetweenInclusive(start, end))
	assert.Equal(t, 9, DaysBetween(start, end))
}

func TestDaysBetweenInclusive_ReversedIsZero(t *testing.T) {
	assert.Equal(t, 0, DaysBetweenInclusive(date(2024, 1, 10), date(2024, 1, 9)))
	assert.Equal(t, 0, DaysBetweenInclusive(date(2024, 1, 10), date(2024, 1, 1)))
}

func TestDay_UsesLocalCalendarDay(t *testing.T) {
	// 23:30 in UTC+3 is still the 10th for the farm.
	local := time.Date(2024, 3, 10, 23, 30, 0, 0, time.FixedZone("EAT", 3*60*60))
	assert.Equal(t, date(2024, 3, 10), Day(local))
}

func TestIntersect_Overlap(t *testing.T) {
	got, ok := Intersect(
		NewInterval(date(2024, 1, 1), date(2024, 1, 20)),
		NewInterval(date(2024, 1, 10), date(2024, 2, 1)),
	)
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 10), got.Start)
	assert.Equal(t, date(2024, 1, 20), got.End)
	assert.Equal(t, 11, got.Days())
}

func TestIntersect_SingleSharedDay(t *testing.T) {
	got, ok := Intersect(
		NewInterval(date(2024, 1, 1), date(2024, 1, 10)),
		NewInterval(date(2024, 1, 10), date(2024, 1, 12)),
	)
	require.True(t, ok)
	assert.Equal(t, 1, got.Days())
}

func TestIntersect_Disjoint(t *testing.T) {
	_, ok := Intersect(
		NewInterval(date(2024, 1, 1), date(2024, 1, 9)),
		NewInterval(date(2024, 1, 10), date(2024, 1, 12)),
	)
	assert.False(t, ok)
}

func TestIntersect_DegenerateInterval(t *testing.T) {
	_, ok := Intersect(
		NewInterval(date(2024, 1, 10), date(2024, 1, 5)),
		NewInterval(date(2024, 1, 1), date(2024, 1, 31)),
	)
	assert.False(t, ok)
}

func TestInterval_EachDay(t *testing.T) {
	var seen []time.Time
	NewInterval(date(2024, 2, 27), date(2024, 3, 1)).EachDay(func(d time.Time) {
		seen = append(seen, d)
	})
	assert.Equal(t, []time.Time{date(2024, 2, 27), date(2024, 2, 28), date(2024, 2, 29), date(2024, 3, 1)}, seen)
}

func TestInterval_Contains(t *testing.T) {
	i := NewInterval(date(2024, 5, 1), date(2024, 5, 31))
	assert.True(t, i.Contains(date(2024, 5, 1)))
	assert.True(t, i.Contains(time.Date(2024, 5, 31, 22, 0, 0, 0, time.UTC)))
	assert.False(t, i.Contains(date(2024, 6, 1)))
}
