package engine

import (
	"time"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// ActiveOn reports whether the animal is counted on day: registered on or
// before it and not deactivated on or before it.
func ActiveOn(animal models.Animal, day time.Time) bool {
	d := Day(day)
	if Day(animal.RegistrationDate).After(d) {
		return false
	}
	if animal.Status == models.StatusActive || animal.DeactivatedAt == nil {
		return true
	}
	return Day(*animal.DeactivatedAt).After(d)
}

// Census answers "who was on the farm that day" questions. It indexes group
// membership once; the active set itself is evaluated per call.
type Census struct {
	animals []models.Animal
	groups  map[string][]int
}

// NewCensus builds a census over the farm's animals.
func NewCensus(animals []models.Animal) *Census {
	groups := make(map[string][]int)
	for i, a := range animals {
		if a.HasGroup() {
			groups[a.GroupID] = append(groups[a.GroupID], i)
		}
	}
	return &Census{animals: animals, groups: groups}
}

// Count returns the number of animals of the group active on day.
func (c *Census) Count(groupID string, day time.Time) int {
	n := 0
	for _, idx := range c.groups[groupID] {
		if ActiveOn(c.animals[idx], day) {
			n++
		}
	}
	return n
}

// Active returns the identifiers of the group's animals active on day.
func (c *Census) Active(groupID string, day time.Time) []string {
	var ids []string
	for _, idx := range c.groups[groupID] {
		if ActiveOn(c.animals[idx], day) {
			ids = append(ids, c.animals[idx].ID)
		}
	}
	return ids
}

// FarmCount returns the number of animals of the whole farm active on day.
func (c *Census) FarmCount(day time.Time) int {
	n := 0
	for _, a := range c.animals {
		if ActiveOn(a, day) {
			n++
		}
	}
	return n
}

// FarmActive returns the identifiers of all farm animals active on day.
func (c *Census) FarmActive(day time.Time) []string {
	var ids []string
	for _, a := range c.animals {
		if ActiveOn(a, day) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
