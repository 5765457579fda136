// Package seed loads catalog data from YAML and writes it to the store.
//
// The default catalog is embedded in the binary; a file on disk can
// replace it. Applying a catalog is an upsert keyed by pokemon id, so
// running it twice leaves the store unchanged and keeps existing
// favorites.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sakif/pokedex-api/internal/model"
)

//go:embed pokemon.yaml
var defaultCatalog []byte

// Writer is the slice of repository.PokemonRepository seeding needs.
type Writer interface {
	UpsertPokemon(ctx context.Context, p *model.Pokemon) error
	UpsertEvolutionRequirement(ctx context.Context, req *model.EvolutionRequirement) error
}

// Catalog is a parsed catalog document.
type Catalog struct {
	Pokemon []Entry `yaml:"pokemon"`
}

// Entry is one pokemon as written in YAML.
type Entry struct {
	ID             int64        `yaml:"id"`
	Name           string       `yaml:"name"`
	Classification string       `yaml:"classification"`
	Types          []string     `yaml:"types"`
	Resistant      []string     `yaml:"resistant"`
	Weaknesses     []string     `yaml:"weaknesses"`
	Weight         model.Range  `yaml:"weight"`
	Height         model.Range  `yaml:"height"`
	FleeRate       float64      `yaml:"fleeRate"`
	MaxCP          int          `yaml:"maxCP"`
	MaxHP          int          `yaml:"maxHP"`
	Attacks        AttackSet    `yaml:"attacks"`
	Evolution      *Requirement `yaml:"evolutionRequirements"`
}

// AttackSet groups attacks by category, in the order they are listed.
type AttackSet struct {
	Fast    []Attack `yaml:"fast"`
	Special []Attack `yaml:"special"`
}

type Attack struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Damage int    `yaml:"damage"`
}

type Requirement struct {
	Amount int    `yaml:"amount"`
	Name   string `yaml:"name"`
}

// Load reads the catalog at path, or the embedded default when path is
// empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document. Unknown keys are errors
// so a typo in a field name doesn't silently drop data.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed: catalog is empty")
		}
		return nil, fmt.Errorf("seed: decoding catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	ids := make(map[int64]bool, len(c.Pokemon))
	names := make(map[string]bool, len(c.Pokemon))

	for i, e := range c.Pokemon {
		switch {
		case e.ID < 1:
			return fmt.Errorf("seed: entry %d: id must be positive", i)
		case e.Name == "":
			return fmt.Errorf("seed: entry %d: name is required", i)
		case ids[e.ID]:
			return fmt.Errorf("seed: duplicate id %d", e.ID)
		case names[e.Name]:
			return fmt.Errorf("seed: duplicate name %q", e.Name)
		case e.Weight.Maximum < e.Weight.Minimum, e.Height.Maximum < e.Height.Minimum:
			return fmt.Errorf("seed: %s: range maximum below minimum", e.Name)
		case e.Evolution != nil && e.Evolution.Amount < 1:
			return fmt.Errorf("seed: %s: evolution amount must be positive", e.Name)
		}
		ids[e.ID] = true
		names[e.Name] = true
	}
	return nil
}

// Pokemon converts the entry to the domain model.
func (e Entry) Pokemon() *model.Pokemon {
	p := &model.Pokemon{
		ID:             e.ID,
		Name:           e.Name,
		Classification: e.Classification,
		Types:          e.Types,
		Resistant:      e.Resistant,
		Weaknesses:     e.Weaknesses,
		Weight:         e.Weight,
		Height:         e.Height,
		FleeRate:       e.FleeRate,
		MaxCP:          e.MaxCP,
		MaxHP:          e.MaxHP,
	}
	for _, a := range e.Attacks.Fast {
		p.Attacks = append(p.Attacks, a.model(model.AttackFast))
	}
	for _, a := range e.Attacks.Special {
		p.Attacks = append(p.Attacks, a.model(model.AttackSpecial))
	}
	return p
}

func (a Attack) model(c model.AttackCategory) model.Attack {
	return model.Attack{Name: a.Name, Type: a.Type, Damage: a.Damage, Category: c}
}

// Apply upserts every entry of c into w and returns how many pokemon were
// written. It stops at the first failure.
func Apply(ctx context.Context, w Writer, c *Catalog) (int, error) {
	for i, e := range c.Pokemon {
		if err := w.UpsertPokemon(ctx, e.Pokemon()); err != nil {
			return i, fmt.Errorf("seed: writing %s: %w", e.Name, err)
		}
		if e.Evolution == nil {
			continue
		}
		req := &model.EvolutionRequirement{PokemonID: e.ID, Amount: e.Evolution.Amount, Name: e.Evolution.Name}
		if err := w.UpsertEvolutionRequirement(ctx, req); err != nil {
			return i, fmt.Errorf("seed: writing evolution requirement for %s: %w", e.Name, err)
		}
	}
	return len(c.Pokemon), nil
}
