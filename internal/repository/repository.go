// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage implements all of them on one *DB.
package repository

import (
	"context"

	"github.com/sakif/pokedex-api/internal/model"
)

// UserRepository is the credential store.
//
// CreateUser fills in ID and timestamps and returns an error wrapping
// apperror.ErrConflict when the email is already taken.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PokemonQuery is a fully validated catalog query. Zero-valued string
// fields mean "no filter". FavoritedBy and OnlyUnfavorited are mutually
// exclusive; the service never sets both.
type PokemonQuery struct {
	Offset          int
	Limit           int
	Search          string // case-insensitive substring of name
	Type            string // case-insensitive substring of any type label
	FavoritedBy     string // only pokemon this user has favorited
	OnlyUnfavorited bool   // only pokemon nobody has favorited
}

// PokemonRepository is the catalog store.
type PokemonRepository interface {
	GetPokemonByID(ctx context.Context, id int64) (*model.Pokemon, error)
	GetPokemonByName(ctx context.Context, name string) (*model.Pokemon, error)
	FindPokemon(ctx context.Context, q PokemonQuery) ([]model.Pokemon, int, error)
	ListTypes(ctx context.Context) ([]string, error)
	GetEvolutionRequirement(ctx context.Context, pokemonID int64) (*model.EvolutionRequirement, error)

	// Used by the seeder. Upserts replace the row and its attacks.
	UpsertPokemon(ctx context.Context, p *model.Pokemon) error
	UpsertEvolutionRequirement(ctx context.Context, req *model.EvolutionRequirement) error
}

// FavoriteRepository manages the user/pokemon favorite relation.
// Both operations are idempotent.
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID string, pokemonID int64) error
	RemoveFavorite(ctx context.Context, userID string, pokemonID int64) error
}
