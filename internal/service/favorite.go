package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/pokedex-api/internal/model"
	"github.com/sakif/pokedex-api/internal/repository"
)

// FavoriteService manages the user ↔ pokemon favorite relation.
//
// Both operations are idempotent and return the pokemon they touched.
// No locking happens here: the store's primary key on (user, pokemon)
// decides the outcome of concurrent calls.
type FavoriteService struct {
	pokemon   repository.PokemonRepository
	favorites repository.FavoriteRepository
	logger    *slog.Logger
}

func NewFavoriteService(
	pokemon repository.PokemonRepository,
	favorites repository.FavoriteRepository,
	logger *slog.Logger,
) *FavoriteService {
	return &FavoriteService{pokemon: pokemon, favorites: favorites, logger: logger}
}

// AddFavorite links userID to pokemonID. Returns ErrNotFound for an
// unknown pokemon.
func (s *FavoriteService) AddFavorite(ctx context.Context, pokemonID int64, userID string) (*model.Pokemon, error) {
	p, err := s.pokemon.GetPokemonByID(ctx, pokemonID)
	if err != nil {
		return nil, err
	}

	if err := s.favorites.AddFavorite(ctx, userID, pokemonID); err != nil {
		return nil, fmt.Errorf("service/favorite: adding %d: %w", pokemonID, err)
	}

	s.logger.Info("favorite added",
		slog.String("userID", userID),
		slog.Int64("pokemonID", pokemonID),
	)
	return p, nil
}

// RemoveFavorite unlinks userID from pokemonID. Returns ErrNotFound for an
// unknown pokemon; removing a link that doesn't exist is fine.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, pokemonID int64, userID string) (*model.Pokemon, error) {
	p, err := s.pokemon.GetPokemonByID(ctx, pokemonID)
	if err != nil {
		return nil, err
	}

	if err := s.favorites.RemoveFavorite(ctx, userID, pokemonID); err != nil {
		return nil, fmt.Errorf("service/favorite: removing %d: %w", pokemonID, err)
	}

	s.logger.Info("favorite removed",
		slog.String("userID", userID),
		slog.Int64("pokemonID", pokemonID),
	)
	return p, nil
}
