package model

// Pokemon is a catalog entry. ID is the Pokedex number and never changes.
//
// Types, Resistant and Weaknesses keep their insertion order. Attacks is
// only populated by single-item lookups (by id or by name); list queries
// leave it nil so the JSON omits it.
type Pokemon struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Classification string   `json:"classification"`
	Types          []string `json:"types"`
	Resistant      []string `json:"resistant"`
	Weaknesses     []string `json:"weaknesses"`
	Weight         Range    `json:"weight"`
	Height         Range    `json:"height"`
	FleeRate       float64  `json:"fleeRate"`
	MaxCP          int      `json:"maxCP"`
	MaxHP          int      `json:"maxHP"`
	Attacks        []Attack `json:"attacks,omitempty"`
}

// AttackCategory distinguishes quick moves from charged ones.
type AttackCategory string

const (
	AttackFast    AttackCategory = "fast"
	AttackSpecial AttackCategory = "special"
)

// Valid reports whether c is one of the known categories.
func (c AttackCategory) Valid() bool {
	return c == AttackFast || c == AttackSpecial
}

type Attack struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Damage   int            `json:"damage"`
	Category AttackCategory `json:"category"`
}

// EvolutionRequirement is what it takes to evolve a pokemon,
// e.g. 25 "Bulbasaur candies". At most one per pokemon.
type EvolutionRequirement struct {
	PokemonID int64  `json:"pokemonId"`
	Amount    int    `json:"amount"`
	Name      string `json:"name"`
}

// Page is one window of a filtered catalog query. Count is the size of the
// whole filtered set, not len(Items).
type Page struct {
	Items []Pokemon `json:"items"`
	Count int       `json:"count"`
}
