package pokedex

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
	"github.com/whosthatpokemon/internal/pokeapi"
	"github.com/whosthatpokemon/internal/postgres"
)

// Hint costs in points, charged against the round score when purchased.
const (
	costDescription  = 15
	costEvolution    = 12
	costType         = 10
	costHeightWeight = 8
	costGeneration   = 3
)

// fallbackChoices pads answer choices when the cache cannot supply enough
// decoys from the same generation. One more name than a full choice list
// needs, so the list fills even when the answer is in the set.
var fallbackChoices = []string{"pikachu", "charizard", "blastoise", "venusaur"}

// Service is the cache-first Pokémon catalog. Reads hit Postgres; misses go
// to the upstream API and are written back best-effort.
type Service struct {
	repo   *postgres.Repository
	api    *pokeapi.Client
	cfg    *config.GameConfig
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(repo *postgres.Repository, api *pokeapi.Client, cfg *config.GameConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		api:    api,
		cfg:    cfg,
		logger: logger,
	}
}

// cacheWrite stores a fetched Pokémon without failing the request. A broken
// cache write costs a refetch later, not the response.
func (s *Service) cacheWrite(ctx context.Context, p *domain.Pokemon) {
	if err := s.repo.UpsertPokemon(ctx, p); err != nil {
		s.logger.Warn("failed to cache pokemon",
			"pokemon_id", p.ID,
			"error", err)
	}
}

// GetByID returns one Pokémon, from cache when present, fetching and
// enriching with species flags on a miss. Expired rows are served stale and
// reclaimed by the prune worker.
func (s *Service) GetByID(ctx context.Context, id int) (*domain.Pokemon, error) {
	cached, err := s.repo.GetPokemonByID(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !domain.IsNotFoundError(err) {
		return nil, err
	}
	return s.fetch(ctx, strconv.Itoa(id))
}

// GetByName returns one Pokémon by its lowercase name.
func (s *Service) GetByName(ctx context.Context, name string) (*domain.Pokemon, error) {
	name = domain.NormalizeGuess(name)
	cached, err := s.repo.GetPokemonByName(ctx, name)
	if err == nil {
		return cached, nil
	}
	if !domain.IsNotFoundError(err) {
		return nil, err
	}
	return s.fetch(ctx, name)
}

func (s *Service) fetch(ctx context.Context, idOrName string) (*domain.Pokemon, error) {
	p, err := s.api.GetPokemon(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	species, err := s.api.GetSpecies(ctx, p.ID, p.Name)
	if err != nil {
		s.logger.Warn("failed to fetch species data",
			"pokemon_id", p.ID,
			"error", err)
	} else {
		p.IsLegendary = species.IsLegendary
		p.IsMythical = species.IsMythical
	}

	s.cacheWrite(ctx, p)
	return p, nil
}

// List returns a page of cached Pokémon with optional filters.
func (s *Service) List(ctx context.Context, page, limit int, generation *int, typeFilter, search *string) ([]domain.Pokemon, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return s.repo.ListPokemon(ctx, page, limit, generation, typeFilter, search)
}

// Search returns cached Pokémon whose names match the query prefix.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.Pokemon, error) {
	if limit < 1 || limit > s.cfg.MaxPageSize {
		limit = s.cfg.DefaultPageSize
	}
	return s.repo.SearchPokemon(ctx, domain.NormalizeGuess(query), limit)
}

// Random picks a round answer from the cache, honoring the difficulty's
// rarity constraints and any generation or type filter.
func (s *Service) Random(ctx context.Context, difficulty domain.Difficulty, generation *int, typeFilter *string) (*domain.Pokemon, error) {
	return s.repo.RandomPokemon(ctx, difficulty, generation, typeFilter)
}

// Choices assembles the multiple-choice answer list: the correct name plus
// decoys drawn from the same generation, shuffled. When the cache cannot
// supply enough decoys a static fallback set is used.
func (s *Service) Choices(ctx context.Context, correct *domain.Pokemon) []string {
	decoyCount := s.cfg.ChoiceCount - 1
	decoys, err := s.repo.RandomNames(ctx, correct.Generation, correct.Name, decoyCount)
	if err != nil {
		s.logger.Warn("failed to load answer decoys",
			"pokemon_id", correct.ID,
			"error", err)
		decoys = nil
	}
	decoys = fillDecoys(decoys, correct.Name, decoyCount)

	choices := append([]string{correct.Name}, decoys...)
	rand.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices
}

// fillDecoys tops up a short decoy list from the static fallback set,
// skipping the correct answer and names already present.
func fillDecoys(decoys []string, correct string, n int) []string {
	for _, name := range fallbackChoices {
		if len(decoys) >= n {
			break
		}
		if name == correct || slices.Contains(decoys, name) {
			continue
		}
		decoys = append(decoys, name)
	}
	return decoys
}

// Hints builds the purchasable hint list for a round's answer. Hints that
// cannot be derived (missing species data) are omitted.
func (s *Service) Hints(ctx context.Context, p *domain.Pokemon) []domain.Hint {
	var hints []domain.Hint

	species, err := s.api.GetSpecies(ctx, p.ID, p.Name)
	if err != nil {
		s.logger.Warn("failed to fetch species for hints",
			"pokemon_id", p.ID,
			"error", err)
	} else {
		if species.Description != "" {
			hints = append(hints, domain.Hint{
				Type:    "flavor_text",
				Content: species.Description,
				Cost:    costDescription,
			})
		}
		if species.EvolvesTo != "" {
			hints = append(hints, domain.Hint{
				Type:    "evolution",
				Content: fmt.Sprintf("This Pokémon evolves into %s.", species.EvolvesTo),
				Cost:    costEvolution,
			})
		}
	}

	if len(p.Types) > 0 {
		names := make([]string, len(p.Types))
		for i, t := range p.Types {
			names[i] = t.Name
		}
		hints = append(hints, domain.Hint{
			Type:    "type",
			Content: fmt.Sprintf("Type: %s", joinAnd(names)),
			Cost:    costType,
		})
	}

	hints = append(hints,
		domain.Hint{
			Type: "height_weight",
			Content: fmt.Sprintf("Height: %.1f m, Weight: %.1f kg",
				float64(p.Height)/10, float64(p.Weight)/10),
			Cost: costHeightWeight,
		},
		domain.Hint{
			Type:    "generation",
			Content: fmt.Sprintf("From generation %d.", p.Generation),
			Cost:    costGeneration,
		},
	)

	return hints
}

// Types lists all type tags with their palette colors.
func (s *Service) Types() []domain.PokemonType {
	names := domain.AllTypes()
	types := make([]domain.PokemonType, len(names))
	for i, name := range names {
		types[i] = domain.PokemonType{Name: name, Color: domain.TypeColor(name)}
	}
	return types
}

// Prune deletes expired cache rows, returning the number removed.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	return s.repo.PruneExpiredPokemon(ctx)
}

// Warm ensures the cache holds the given id range, fetching misses with a
// small delay between upstream calls. Used by the seeder.
func (s *Service) Warm(ctx context.Context, fromID, toID int, delay time.Duration) error {
	for id := fromID; id <= toID; id++ {
		if _, err := s.repo.GetPokemonByID(ctx, id); err == nil {
			continue
		}
		if _, err := s.fetch(ctx, strconv.Itoa(id)); err != nil {
			return fmt.Errorf("warming pokemon %d: %w", id, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

func joinAnd(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return fmt.Sprintf("%s / %s", names[0], names[1])
	}
}
