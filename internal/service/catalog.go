package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/model"
	"github.com/sakif/pokedex-api/internal/repository"
)

// Pagination bounds for Find.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Filter is what a caller may ask of the catalog. Zero values mean
// "no filter", except Limit where 0 means DefaultPageLimit.
//
// IsFavorite is a tri-state:
//   - nil   → no favorite filter
//   - true  → only pokemon the caller has favorited
//   - false → only pokemon that nobody has favorited (note: nobody, not
//     just the caller)
//
// Either non-nil value needs an authenticated caller.
type Filter struct {
	Offset     int
	Limit      int
	Search     string
	Type       string
	IsFavorite *bool
}

// CatalogService answers read queries over the pokemon catalog.
type CatalogService struct {
	repo   repository.PokemonRepository
	logger *slog.Logger
}

func NewCatalogService(repo repository.PokemonRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// FindByID returns a pokemon with its attacks.
func (s *CatalogService) FindByID(ctx context.Context, id int64) (*model.Pokemon, error) {
	return s.repo.GetPokemonByID(ctx, id)
}

// FindByName returns a pokemon with its attacks. The match is exact.
func (s *CatalogService) FindByName(ctx context.Context, name string) (*model.Pokemon, error) {
	if name == "" {
		return nil, apperror.ValidationFailed("name", "pokemon name is required")
	}
	return s.repo.GetPokemonByName(ctx, name)
}

// ListTypes returns the distinct type labels in the catalog, sorted.
func (s *CatalogService) ListTypes(ctx context.Context) ([]string, error) {
	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: listing types: %w", err)
	}
	return types, nil
}

// Find runs a filtered, paginated catalog query.
//
// caller is nil for anonymous requests. All filters combine with AND.
// Page.Count is the size of the whole filtered set.
func (s *CatalogService) Find(ctx context.Context, f Filter, caller *model.User) (*model.Page, error) {
	q, err := buildQuery(f, caller)
	if err != nil {
		return nil, err
	}

	items, count, err := s.repo.FindPokemon(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: finding pokemon: %w", err)
	}

	return &model.Page{Items: items, Count: count}, nil
}

// EvolutionRequirement returns what it takes to evolve pokemonID.
// Both an unknown pokemon and one without a requirement are NotFound.
func (s *CatalogService) EvolutionRequirement(ctx context.Context, pokemonID int64) (*model.EvolutionRequirement, error) {
	if _, err := s.repo.GetPokemonByID(ctx, pokemonID); err != nil {
		return nil, err
	}
	return s.repo.GetEvolutionRequirement(ctx, pokemonID)
}

// buildQuery validates f and lowers it to a repository query.
func buildQuery(f Filter, caller *model.User) (repository.PokemonQuery, error) {
	if f.Offset < 0 {
		return repository.PokemonQuery{}, apperror.ValidationFailed("offset", "offset must not be negative")
	}
	limit := f.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return repository.PokemonQuery{}, apperror.ValidationFailed("limit",
			fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit))
	}

	q := repository.PokemonQuery{
		Offset: f.Offset,
		Limit:  limit,
		Search: strings.TrimSpace(f.Search),
		Type:   strings.TrimSpace(f.Type),
	}

	if f.IsFavorite != nil {
		if caller == nil {
			return repository.PokemonQuery{}, apperror.Forbidden("the isFavorite filter requires authentication")
		}
		if *f.IsFavorite {
			q.FavoritedBy = caller.ID
		} else {
			q.OnlyUnfavorited = true
		}
	}

	return q, nil
}
