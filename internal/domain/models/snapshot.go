package models

// Snapshot is the full set of records the engine reads for one farm.
type Snapshot struct {
	FarmID          string
	Animals         []Animal
	Weighings       []Weighing
	Feeds           []Feed
	Rations         []Ration
	Veterinary      []VeterinaryRecord
	GeneralExpenses []GeneralExpense
}

// FeedByID indexes the snapshot feeds by identifier.
func (s *Snapshot) FeedByID() map[string]Feed {
	out := make(map[string]Feed, len(s.Feeds))
	for _, f := range s.Feeds {
		out[f.ID] = f
	}
	return out
}

// AnimalByID indexes the snapshot animals by identifier.
func (s *Snapshot) AnimalByID() map[string]Animal {
	out := make(map[string]Animal, len(s.Animals))
	for _, a := range s.Animals {
		out[a.ID] = a
	}
	return out
}

// WeighingsByAnimal groups weighings by animal identifier, preserving input order.
func (s *Snapshot) WeighingsByAnimal() map[string][]Weighing {
	out := make(map[string][]Weighing)
	for _, w := range s.Weighings {
		out[w.AnimalID] = append(out[w.AnimalID], w)
	}
	return out
}
