package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/auth"
	"github.com/sakif/pokedex-api/internal/model"
	"github.com/sakif/pokedex-api/internal/service"
)

// PokemonHandler serves the catalog: browsing, lookups and favorites.
type PokemonHandler struct {
	catalog   *service.CatalogService
	favorites *service.FavoriteService
	logger    *slog.Logger
}

// NewPokemonHandler creates a PokemonHandler.
func NewPokemonHandler(catalog *service.CatalogService, favorites *service.FavoriteService, logger *slog.Logger) *PokemonHandler {
	return &PokemonHandler{catalog: catalog, favorites: favorites, logger: logger}
}

// HandleList returns one page of the catalog.
//
// HTTP: GET /api/v1/pokemon?offset=0&limit=10&search=char&type=fire&isFavorite=true
// RESPONSE: 200 {"items": [...], "count": 42}
//
// QUERY PARSING IS STRICT:
// A parameter that is present but malformed is a 400, never silently
// ignored. isFavorite accepts exactly "true" or "false" and needs a
// bearer token (OptionalAuth puts the caller in the context).
func (h *PokemonHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	caller, _ := auth.UserFromContext(r.Context())

	page, err := h.catalog.Find(r.Context(), filter, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleTypes lists the distinct type labels.
//
// HTTP: GET /api/v1/pokemon/types
func (h *PokemonHandler) HandleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.catalog.ListTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// HandleGetByID returns one pokemon with its attacks.
//
// HTTP: GET /api/v1/pokemon/{id}
func (h *PokemonHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pokemonID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetByName returns one pokemon looked up by its exact name.
//
// HTTP: GET /api/v1/pokemon/details/{name}
func (h *PokemonHandler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.FindByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleEvolutionRequirement returns what it takes to evolve a pokemon.
//
// HTTP: GET /api/v1/pokemon/{id}/evolution-requirements
func (h *PokemonHandler) HandleEvolutionRequirement(w http.ResponseWriter, r *http.Request) {
	id, err := pokemonID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := h.catalog.EvolutionRequirement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleAddFavorite marks a pokemon as a favorite of the caller.
//
// HTTP: POST /api/v1/pokemon/{id}/favorite (behind RequireAuth)
// Repeating the call is a no-op that still answers 200.
func (h *PokemonHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	h.favorite(w, r, h.favorites.AddFavorite)
}

// HandleRemoveFavorite unmarks a pokemon as a favorite of the caller.
//
// HTTP: DELETE /api/v1/pokemon/{id}/favorite (behind RequireAuth)
func (h *PokemonHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.favorite(w, r, h.favorites.RemoveFavorite)
}

// favoriteFunc is the shape shared by FavoriteService.AddFavorite and
// RemoveFavorite.
type favoriteFunc func(ctx context.Context, pokemonID int64, userID string) (*model.Pokemon, error)

func (h *PokemonHandler) favorite(w http.ResponseWriter, r *http.Request, op favoriteFunc) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id, err := pokemonID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := op(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// pokemonID parses the {id} URL parameter.
func pokemonID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.ValidationFailed("id", "pokemon id must be a positive integer")
	}
	return id, nil
}

// parseFilter turns catalog query parameters into a service.Filter.
func parseFilter(q url.Values) (service.Filter, error) {
	f := service.Filter{
		Search: q.Get("search"),
		Type:   q.Get("type"),
	}

	if q.Has("offset") {
		n, err := strconv.Atoi(q.Get("offset"))
		if err != nil || n < 0 {
			return f, apperror.ValidationFailed("offset", "offset must be a non-negative integer")
		}
		f.Offset = n
	}

	if q.Has("limit") {
		n, err := strconv.Atoi(q.Get("limit"))
		if err != nil || n < 1 || n > service.MaxPageLimit {
			return f, apperror.ValidationFailed("limit",
				"limit must be an integer between 1 and "+strconv.Itoa(service.MaxPageLimit))
		}
		f.Limit = n
	}

	if q.Has("isFavorite") {
		var v bool
		switch q.Get("isFavorite") {
		case "true":
			v = true
		case "false":
			v = false
		default:
			return f, apperror.ValidationFailed("isFavorite", `isFavorite must be "true" or "false"`)
		}
		f.IsFavorite = &v
	}

	return f, nil
}
