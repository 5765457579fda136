package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/model"
	"github.com/sakif/pokedex-api/internal/repository"
)

// compile-time check that *DB implements repository.PokemonRepository
var _ repository.PokemonRepository = (*DB)(nil)

// pokemonColumns is the column list every pokemon SELECT uses, in the
// order scanPokemon expects. Types, resistant and weaknesses are JSON
// arrays; weight and height are "[min,max)" ranges.
const pokemonColumns = `p.id, p.name, p.classification, p.types, p.resistant, p.weaknesses,
	p.weight, p.height, p.flee_rate, p.max_cp, p.max_hp`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPokemon(s rowScanner) (*model.Pokemon, error) {
	var p model.Pokemon
	var types, resistant, weakness string
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Classification,
		&types,
		&resistant,
		&weakness,
		&p.Weight,
		&p.Height,
		&p.FleeRate,
		&p.MaxCP,
		&p.MaxHP,
	)
	if err != nil {
		return nil, err
	}

	if p.Types, err = decodeList(types); err != nil {
		return nil, fmt.Errorf("pokemon %d types: %w", p.ID, err)
	}
	if p.Resistant, err = decodeList(resistant); err != nil {
		return nil, fmt.Errorf("pokemon %d resistant: %w", p.ID, err)
	}
	if p.Weaknesses, err = decodeList(weakness); err != nil {
		return nil, fmt.Errorf("pokemon %d weaknesses: %w", p.ID, err)
	}
	return &p, nil
}

// GetPokemonByID returns a pokemon with its attacks.
// Returns apperror.ErrNotFound if no pokemon has that id.
func (db *DB) GetPokemonByID(ctx context.Context, id int64) (*model.Pokemon, error) {
	p, err := scanPokemon(db.conn.QueryRowContext(ctx,
		`SELECT `+pokemonColumns+` FROM pokemon p WHERE p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("pokemon", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting pokemon %d: %w", id, err)
	}

	if p.Attacks, err = db.attacksFor(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPokemonByName returns a pokemon with its attacks. The match is exact
// and case-sensitive.
func (db *DB) GetPokemonByName(ctx context.Context, name string) (*model.Pokemon, error) {
	p, err := scanPokemon(db.conn.QueryRowContext(ctx,
		`SELECT `+pokemonColumns+` FROM pokemon p WHERE p.name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundBy("pokemon", "name", name)
		}
		return nil, fmt.Errorf("sqlite: getting pokemon %q: %w", name, err)
	}

	if p.Attacks, err = db.attacksFor(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// FindPokemon returns one window of the filtered catalog plus the size of
// the whole filtered set. Attacks are not loaded.
func (db *DB) FindPokemon(ctx context.Context, rq repository.PokemonQuery) ([]model.Pokemon, int, error) {
	q := newPokemonQuery(clausesFor(rq)...)

	countQuery, countArgs := q.countSQL()
	var total int
	if err := db.conn.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting pokemon: %w", err)
	}

	items := make([]model.Pokemon, 0, rq.Limit)
	if total == 0 || rq.Offset >= total {
		return items, total, nil
	}

	selectQuery, selectArgs := q.selectSQL(rq.Limit, rq.Offset)
	rows, err := db.conn.QueryContext(ctx, selectQuery, selectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing pokemon: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPokemon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning pokemon: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating pokemon: %w", err)
	}

	return items, total, nil
}

// ListTypes returns every distinct type label in the catalog, sorted.
func (db *DB) ListTypes(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT t.value FROM pokemon p, json_each(p.types) t ORDER BY t.value`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing types: %w", err)
	}
	defer rows.Close()

	types := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sqlite: scanning type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating types: %w", err)
	}
	return types, nil
}

// GetEvolutionRequirement returns the requirement to evolve pokemonID.
// Returns apperror.ErrNotFound if there is none.
func (db *DB) GetEvolutionRequirement(ctx context.Context, pokemonID int64) (*model.EvolutionRequirement, error) {
	req := model.EvolutionRequirement{PokemonID: pokemonID}
	err := db.conn.QueryRowContext(ctx,
		`SELECT amount, name FROM evolution_requirements WHERE pokemon_id = ?`, pokemonID,
	).Scan(&req.Amount, &req.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("evolution requirement", strconv.FormatInt(pokemonID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting evolution requirement for %d: %w", pokemonID, err)
	}
	return &req, nil
}

// UpsertPokemon inserts p or overwrites the existing row with the same id.
// Its attacks are replaced wholesale. Favorites pointing at p survive
// because the row is updated in place, never deleted.
func (db *DB) UpsertPokemon(ctx context.Context, p *model.Pokemon) error {
	types, err := encodeList(p.Types)
	if err != nil {
		return err
	}
	resistant, err := encodeList(p.Resistant)
	if err != nil {
		return err
	}
	weaknesses, err := encodeList(p.Weaknesses)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning pokemon upsert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pokemon (id, name, classification, types, resistant, weaknesses,
		                      weight, height, flee_rate, max_cp, max_hp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     classification = excluded.classification,
		     types = excluded.types,
		     resistant = excluded.resistant,
		     weaknesses = excluded.weaknesses,
		     weight = excluded.weight,
		     height = excluded.height,
		     flee_rate = excluded.flee_rate,
		     max_cp = excluded.max_cp,
		     max_hp = excluded.max_hp`,
		p.ID, p.Name, p.Classification, types, resistant, weaknesses,
		p.Weight, p.Height, p.FleeRate, p.MaxCP, p.MaxHP,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("pokemon", p.Name)
		}
		return fmt.Errorf("sqlite: upserting pokemon %d: %w", p.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM attacks WHERE pokemon_id = ?`, p.ID); err != nil {
		return fmt.Errorf("sqlite: clearing attacks for %d: %w", p.ID, err)
	}

	positions := map[model.AttackCategory]int{}
	for _, a := range p.Attacks {
		pos := positions[a.Category]
		positions[a.Category]++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attacks (pokemon_id, position, name, type, damage, category)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, pos, a.Name, a.Type, a.Damage, string(a.Category),
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting attack %q for %d: %w", a.Name, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing pokemon %d: %w", p.ID, err)
	}
	return nil
}

// UpsertEvolutionRequirement sets the requirement for req.PokemonID.
// Returns apperror.ErrNotFound if the pokemon doesn't exist.
func (db *DB) UpsertEvolutionRequirement(ctx context.Context, req *model.EvolutionRequirement) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO evolution_requirements (pokemon_id, amount, name) VALUES (?, ?, ?)
		 ON CONFLICT(pokemon_id) DO UPDATE SET amount = excluded.amount, name = excluded.name`,
		req.PokemonID, req.Amount, req.Name,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("pokemon", strconv.FormatInt(req.PokemonID, 10))
		}
		return fmt.Errorf("sqlite: upserting evolution requirement for %d: %w", req.PokemonID, err)
	}
	return nil
}

// attacksFor loads attacks fast-first, each category in stored order.
func (db *DB) attacksFor(ctx context.Context, pokemonID int64) ([]model.Attack, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name, type, damage, category FROM attacks
		 WHERE pokemon_id = ?
		 ORDER BY CASE category WHEN 'fast' THEN 0 ELSE 1 END, position`,
		pokemonID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading attacks for %d: %w", pokemonID, err)
	}
	defer rows.Close()

	attacks := []model.Attack{}
	for rows.Next() {
		var (
			a        model.Attack
			category string
		)
		if err := rows.Scan(&a.Name, &a.Type, &a.Damage, &category); err != nil {
			return nil, fmt.Errorf("sqlite: scanning attack for %d: %w", pokemonID, err)
		}
		a.Category = model.AttackCategory(category)
		attacks = append(attacks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating attacks for %d: %w", pokemonID, err)
	}
	return attacks, nil
}

// encodeList stores an ordered label list as a JSON array so json_each can
// walk it label by label.
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}
