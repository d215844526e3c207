package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/whosthatpokemon/internal/domain"
)

const pokemonColumns = `id, name, sprite_url, types, stats, abilities, height, weight,
	base_experience, is_legendary, is_mythical, generation, cached_at, expires_at`

func scanPokemon(row pgx.Row) (*domain.Pokemon, error) {
	var (
		p         domain.Pokemon
		types     []byte
		stats     []byte
		abilities []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.SpriteURL,
		&types,
		&stats,
		&abilities,
		&p.Height,
		&p.Weight,
		&p.BaseExperience,
		&p.IsLegendary,
		&p.IsMythical,
		&p.Generation,
		&p.CachedAt,
		&p.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPokemonNotFound
		}
		return nil, fmt.Errorf("scanning pokemon: %w", err)
	}
	if err := json.Unmarshal(types, &p.Types); err != nil {
		return nil, fmt.Errorf("decoding types: %w", err)
	}
	if err := json.Unmarshal(stats, &p.Stats); err != nil {
		return nil, fmt.Errorf("decoding stats: %w", err)
	}
	if err := json.Unmarshal(abilities, &p.Abilities); err != nil {
		return nil, fmt.Errorf("decoding abilities: %w", err)
	}
	return &p, nil
}

// GetPokemonByID retrieves a cached Pokémon by catalog id
func (r *Repository) GetPokemonByID(ctx context.Context, id int) (*domain.Pokemon, error) {
	query := `SELECT ` + pokemonColumns + ` FROM pokemon_cache WHERE id = $1`
	return scanPokemon(r.pool.QueryRow(ctx, query, id))
}

// GetPokemonByName retrieves a cached Pokémon by name
func (r *Repository) GetPokemonByName(ctx context.Context, name string) (*domain.Pokemon, error) {
	query := `SELECT ` + pokemonColumns + ` FROM pokemon_cache WHERE name = $1`
	return scanPokemon(r.pool.QueryRow(ctx, query, name))
}

// UpsertPokemon inserts or refreshes a cache entry
func (r *Repository) UpsertPokemon(ctx context.Context, p *domain.Pokemon) error {
	types, err := json.Marshal(p.Types)
	if err != nil {
		return fmt.Errorf("encoding types: %w", err)
	}
	stats, err := json.Marshal(p.Stats)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	abilities, err := json.Marshal(p.Abilities)
	if err != nil {
		return fmt.Errorf("encoding abilities: %w", err)
	}

	query := `
		INSERT INTO pokemon_cache (id, name, sprite_url, types, stats, abilities, height, weight,
			base_experience, is_legendary, is_mythical, generation, cached_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			sprite_url = EXCLUDED.sprite_url,
			types = EXCLUDED.types,
			stats = EXCLUDED.stats,
			abilities = EXCLUDED.abilities,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			base_experience = EXCLUDED.base_experience,
			is_legendary = EXCLUDED.is_legendary,
			is_mythical = EXCLUDED.is_mythical,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err = r.pool.Exec(ctx, query,
		p.ID, p.Name, p.SpriteURL, types, stats, abilities, p.Height, p.Weight,
		p.BaseExperience, p.IsLegendary, p.IsMythical, p.Generation, p.CachedAt, p.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upserting pokemon: %w", err)
	}
	return nil
}

// pokemonFilter builds the WHERE clause shared by list and count queries.
func pokemonFilter(generation *int, typeFilter, search *string) (string, []any) {
	var conditions []string
	var args []any

	if generation != nil {
		args = append(args, *generation)
		conditions = append(conditions, fmt.Sprintf("generation = $%d", len(args)))
	}
	if typeFilter != nil {
		tagged, _ := json.Marshal([]map[string]string{{"name": *typeFilter}})
		args = append(args, string(tagged))
		conditions = append(conditions, fmt.Sprintf("types @> $%d::jsonb", len(args)))
	}
	if search != nil {
		args = append(args, "%"+strings.ToLower(*search)+"%")
		conditions = append(conditions, fmt.Sprintf("name LIKE $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// ListPokemon retrieves a page of the cached catalog with optional filters
func (r *Repository) ListPokemon(ctx context.Context, page, limit int, generation *int, typeFilter, search *string) ([]domain.Pokemon, int64, error) {
	where, args := pokemonFilter(generation, typeFilter, search)

	countQuery := `SELECT COUNT(*) FROM pokemon_cache ` + where
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting pokemon: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT `+pokemonColumns+` FROM pokemon_cache %s ORDER BY id LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing pokemon: %w", err)
	}
	defer rows.Close()

	var result []domain.Pokemon
	for rows.Next() {
		p, err := scanPokemon(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	return result, total, rows.Err()
}

// SearchPokemon retrieves catalog entries whose name contains the query
func (r *Repository) SearchPokemon(ctx context.Context, query string, limit int) ([]domain.Pokemon, error) {
	sql := `SELECT ` + pokemonColumns + ` FROM pokemon_cache WHERE name LIKE $1 ORDER BY name LIMIT $2`
	rows, err := r.pool.Query(ctx, sql, "%"+strings.ToLower(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching pokemon: %w", err)
	}
	defer rows.Close()

	var result []domain.Pokemon
	for rows.Next() {
		p, err := scanPokemon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// RandomPokemon selects one cached entry uniformly at random subject to the
// difficulty eligibility predicate and optional generation/type filters.
// An empty result set is domain.ErrNoPokemonMatch; there is no backfill from
// the external source here.
func (r *Repository) RandomPokemon(ctx context.Context, difficulty domain.Difficulty, generation *int, typeFilter *string) (*domain.Pokemon, error) {
	var conditions []string
	var args []any

	switch difficulty {
	case domain.DifficultyEasy:
		conditions = append(conditions, "NOT is_legendary AND NOT is_mythical AND generation <= 2")
	case domain.DifficultyMedium:
		conditions = append(conditions, "NOT is_legendary AND NOT is_mythical")
	case domain.DifficultyHard:
		conditions = append(conditions, "NOT is_legendary")
	case domain.DifficultyExpert:
		// no restriction
	}

	if generation != nil {
		args = append(args, *generation)
		conditions = append(conditions, fmt.Sprintf("generation = $%d", len(args)))
	}
	if typeFilter != nil {
		tagged, _ := json.Marshal([]map[string]string{{"name": *typeFilter}})
		args = append(args, string(tagged))
		conditions = append(conditions, fmt.Sprintf("types @> $%d::jsonb", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT `+pokemonColumns+` FROM pokemon_cache %s ORDER BY random() LIMIT 1`, where)
	p, err := scanPokemon(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, domain.ErrPokemonNotFound) {
		return nil, domain.ErrNoPokemonMatch
	}
	return p, err
}

// RandomNames draws up to n distinct names at random from a generation,
// excluding the given name.
func (r *Repository) RandomNames(ctx context.Context, generation int, exclude string, n int) ([]string, error) {
	query := `
		SELECT name FROM pokemon_cache
		WHERE generation = $1 AND name <> $2
		ORDER BY random()
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, generation, exclude, n)
	if err != nil {
		return nil, fmt.Errorf("drawing random names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PruneExpiredPokemon removes cache entries past their expiry
func (r *Repository) PruneExpiredPokemon(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM pokemon_cache WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("pruning expired pokemon: %w", err)
	}
	return result.RowsAffected(), nil
}
