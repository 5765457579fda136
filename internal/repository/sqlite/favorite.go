package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/repository"
)

// compile-time check that *DB implements repository.FavoriteRepository
var _ repository.FavoriteRepository = (*DB)(nil)

// AddFavorite links a user to a pokemon. Adding an existing link is a no-op.
//
// The (user_id, pokemon_id) primary key settles concurrent adds: OR IGNORE
// turns the second insert into a no-op instead of an error, so racing
// requests can't produce a duplicate row or a spurious failure. OR IGNORE
// does not apply to foreign keys; an unknown user or pokemon still fails.
func (db *DB) AddFavorite(ctx context.Context, userID string, pokemonID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, pokemon_id) VALUES (?, ?)`,
		userID, pokemonID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("pokemon", strconv.FormatInt(pokemonID, 10))
		}
		return fmt.Errorf("sqlite: adding favorite %d for user %s: %w", pokemonID, userID, err)
	}
	return nil
}

// RemoveFavorite unlinks a user from a pokemon. Removing a missing link is
// a no-op.
func (db *DB) RemoveFavorite(ctx context.Context, userID string, pokemonID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND pokemon_id = ?`,
		userID, pokemonID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing favorite %d for user %s: %w", pokemonID, userID, err)
	}
	return nil
}
