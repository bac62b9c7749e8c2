package pokematcher

// Category is the supertype of a card, as printed in the top corner of
// the card itself.
type Category int

const (
	CategoryPokemon Category = iota
	CategoryTrainer
	CategoryEnergy
)

func (c Category) String() string {
	switch c {
	case CategoryTrainer:
		return "Trainer"
	case CategoryEnergy:
		return "Energy"
	}
	return "Pokemon"
}

// MarshalJSON serializes the category by name, for report output.
func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}
