package domain

import "time"

// PokemonType is one of a Pokémon's type tags with its palette color.
type PokemonType struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Pokemon is a cached catalog entry. The id matches the external catalog
// numbering and is globally unique.
type Pokemon struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	SpriteURL      string         `json:"spriteUrl"`
	Types          []PokemonType  `json:"types"`
	Stats          map[string]int `json:"stats"`
	Abilities      []string       `json:"abilities"`
	Height         int            `json:"height"`
	Weight         int            `json:"weight"`
	BaseExperience int            `json:"baseExperience"`
	IsLegendary    bool           `json:"isLegendary"`
	IsMythical     bool           `json:"isMythical"`
	Generation     int            `json:"generation"`
	CachedAt       time.Time      `json:"-"`
	ExpiresAt      time.Time      `json:"-"`
}

// Species carries the extra flavor data used for hints.
type Species struct {
	ID          int
	Description string
	EvolvesTo   string
	IsLegendary bool
	IsMythical  bool
}

// generationRange maps a generation number to its inclusive id range.
type generationRange struct {
	Generation int
	MinID      int
	MaxID      int
}

var generationRanges = []generationRange{
	{1, 1, 151},
	{2, 152, 251},
	{3, 252, 386},
	{4, 387, 493},
	{5, 494, 649},
	{6, 650, 721},
	{7, 722, 809},
	{8, 810, 905},
	{9, 906, 1008},
}

// GenerationForID returns the generation a catalog id belongs to. Ids above
// the known catalog clamp to the latest generation.
func GenerationForID(id int) int {
	for _, r := range generationRanges {
		if id <= r.MaxID {
			return r.Generation
		}
	}
	return generationRanges[len(generationRanges)-1].Generation
}

// GenerationBounds returns the inclusive id range for a generation, or
// ok=false for an unknown generation number.
func GenerationBounds(generation int) (minID, maxID int, ok bool) {
	for _, r := range generationRanges {
		if r.Generation == generation {
			return r.MinID, r.MaxID, true
		}
	}
	return 0, 0, false
}

var typeColors = map[string]string{
	"normal":   "#A8A878",
	"fire":     "#F08030",
	"water":    "#6890F0",
	"electric": "#F8D030",
	"grass":    "#78C850",
	"ice":      "#98D8D8",
	"fighting": "#C03028",
	"poison":   "#A040A0",
	"ground":   "#E0C068",
	"flying":   "#A890F0",
	"psychic":  "#F85888",
	"bug":      "#A8B820",
	"rock":     "#B8A038",
	"ghost":    "#705898",
	"dragon":   "#7038F8",
	"dark":     "#705848",
	"steel":    "#B8B8D0",
	"fairy":    "#EE99AC",
}

// TypeColor returns the palette color for a type tag, defaulting to the
// normal-type color for unknown tags.
func TypeColor(name string) string {
	if c, ok := typeColors[name]; ok {
		return c
	}
	return typeColors["normal"]
}

// AllTypes lists the known type tags in display order.
func AllTypes() []string {
	return []string{
		"normal", "fire", "water", "electric", "grass", "ice",
		"fighting", "poison", "ground", "flying", "psychic", "bug",
		"rock", "ghost", "dragon", "dark", "steel", "fairy",
	}
}

// Hint is a single purchasable hint for a round.
type Hint struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Cost    int    `json:"cost"`
}
