package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func TestActiveOn(t *testing.T) {
	day := date(2024, 3, 10)

	assert.True(t, ActiveOn(activeAnimal("a", "g", date(2024, 3, 10)), day), "registered that day")
	assert.False(t, ActiveOn(activeAnimal("a", "g", date(2024, 3, 11)), day), "registered later")
	assert.False(t, ActiveOn(passiveAnimal("a", "g", date(2024, 1, 1), date(2024, 3, 10)), day), "deactivated that day")
	assert.True(t, ActiveOn(passiveAnimal("a", "g", date(2024, 1, 1), date(2024, 3, 11)), day), "deactivated next day")
	assert.False(t, ActiveOn(passiveAnimal("a", "g", date(2024, 1, 1), date(2024, 2, 1)), day), "deactivated earlier")
}

func TestCensus_CountsPerGroupAndFarm(t *testing.T) {
	census := NewCensus([]models.Animal{
		activeAnimal("a1", "g1", date(2024, 1, 1)),
		activeAnimal("a2", "g1", date(2024, 2, 1)),
		passiveAnimal("a3", "g1", date(2024, 1, 1), date(2024, 1, 20)),
		activeAnimal("a4", "g2", date(2024, 1, 1)),
		activeAnimal("a5", "", date(2024, 1, 1)),
	})

	assert.Equal(t, 2, census.Count("g1", date(2024, 1, 15)))
	assert.Equal(t, 1, census.Count("g1", date(2024, 1, 20)))
	assert.Equal(t, 2, census.Count("g1", date(2024, 2, 1)))
	assert.Equal(t, 0, census.Count("missing", date(2024, 2, 1)))
	assert.Equal(t, []string{"a1", "a2"}, census.Active("g1", date(2024, 2, 1)))

	assert.Equal(t, 4, census.FarmCount(date(2024, 1, 15)))
	assert.Equal(t, []string{"a1", "a2", "a4", "a5"}, census.FarmActive(date(2024, 2, 1)))
}

func TestCensus_EmptyFarm(t *testing.T) {
	census := NewCensus(nil)

	assert.Zero(t, census.FarmCount(date(2024, 1, 1)))
	assert.Empty(t, census.FarmActive(date(2024, 1, 1)))
}
