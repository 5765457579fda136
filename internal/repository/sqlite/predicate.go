package sqlite

import (
	"strings"

	"github.com/sakif/pokedex-api/internal/repository"
)

// PREDICATE BUILDER:
// A catalog query is a conjunction of independent clauses. Each clause
// knows how to render itself into a WHERE fragment plus its positional
// arguments; pokemonQuery collects them and renders the COUNT and the paged
// SELECT from the same list, so the two can never disagree about which rows
// match.
//
// User input only ever reaches SQL as a bound argument.

// clause is one conjunct of the WHERE.
type clause interface {
	apply(q *pokemonQuery)
}

// nameContains matches pokemon whose name contains the term, ignoring case.
type nameContains string

func (c nameContains) apply(q *pokemonQuery) {
	q.add(`p.name LIKE ? ESCAPE '\'`, likePattern(string(c)))
}

// typeContains matches pokemon with at least one type label containing
// the term, ignoring case. Labels are matched one at a time, so a term can
// never straddle two labels.
type typeContains string

func (c typeContains) apply(q *pokemonQuery) {
	q.add(`EXISTS (SELECT 1 FROM json_each(p.types) t WHERE t.value LIKE ? ESCAPE '\')`,
		likePattern(string(c)))
}

// favoritedBy restricts to pokemon the given user has favorited.
type favoritedBy string

func (c favoritedBy) apply(q *pokemonQuery) {
	q.add(`p.id IN (SELECT f.pokemon_id FROM favorites f WHERE f.user_id = ?)`, string(c))
}

// unfavorited restricts to pokemon that no user has favorited.
type unfavorited struct{}

func (unfavorited) apply(q *pokemonQuery) {
	q.add(`NOT EXISTS (SELECT 1 FROM favorites f WHERE f.pokemon_id = p.id)`)
}

// pokemonQuery accumulates clauses into SQL.
type pokemonQuery struct {
	where []string
	args  []any
}

// clausesFor translates a repository query into clauses. Empty filters
// contribute nothing.
func clausesFor(rq repository.PokemonQuery) []clause {
	var cs []clause
	if rq.Search != "" {
		cs = append(cs, nameContains(rq.Search))
	}
	if rq.Type != "" {
		cs = append(cs, typeContains(rq.Type))
	}
	switch {
	case rq.FavoritedBy != "":
		cs = append(cs, favoritedBy(rq.FavoritedBy))
	case rq.OnlyUnfavorited:
		cs = append(cs, unfavorited{})
	}
	return cs
}

func newPokemonQuery(cs ...clause) *pokemonQuery {
	q := &pokemonQuery{}
	for _, c := range cs {
		c.apply(q)
	}
	return q
}

func (q *pokemonQuery) add(cond string, args ...any) {
	q.where = append(q.where, cond)
	q.args = append(q.args, args...)
}

func (q *pokemonQuery) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// countSQL renders the query that sizes the whole filtered set.
func (q *pokemonQuery) countSQL() (string, []any) {
	return `SELECT COUNT(*) FROM pokemon p` + q.whereSQL(), q.args
}

// selectSQL renders one window of the filtered set, ordered by Pokedex number.
func (q *pokemonQuery) selectSQL(limit, offset int) (string, []any) {
	args := make([]any, 0, len(q.args)+2)
	args = append(args, q.args...)
	args = append(args, limit, offset)
	return `SELECT ` + pokemonColumns + ` FROM pokemon p` + q.whereSQL() +
		` ORDER BY p.id LIMIT ? OFFSET ?`, args
}

// likePattern wraps term in % wildcards after escaping LIKE metacharacters,
// so "50%" searches for the literal text "50%".
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
