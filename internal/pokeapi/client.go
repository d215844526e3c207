package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

// Client fetches Pokémon data from the public PokéAPI. Responses are
// transformed into domain types; callers are expected to cache them.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.PokeAPIConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cacheTTL: cfg.CacheTTL,
	}
}

// pokemonResponse mirrors the fields we use from /pokemon/{id}.
type pokemonResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Height         int    `json:"height"`
	Weight         int    `json:"weight"`
	BaseExperience int    `json:"base_experience"`
	Sprites        struct {
		Other struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Ability struct {
			Name string `json:"name"`
		} `json:"ability"`
	} `json:"abilities"`
}

// speciesResponse mirrors the fields we use from /pokemon-species/{id}.
type speciesResponse struct {
	ID                int  `json:"id"`
	IsLegendary       bool `json:"is_legendary"`
	IsMythical        bool `json:"is_mythical"`
	FlavorTextEntries []struct {
		FlavorText string `json:"flavor_text"`
		Language   struct {
			Name string `json:"name"`
		} `json:"language"`
	} `json:"flavor_text_entries"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// chainLink is the recursive node of an evolution chain response.
type chainLink struct {
	Species struct {
		Name string `json:"name"`
	} `json:"species"`
	EvolvesTo []chainLink `json:"evolves_to"`
}

type evolutionChainResponse struct {
	Chain chainLink `json:"chain"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrPokemonNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// GetPokemon fetches one Pokémon by id or lowercase name.
func (c *Client) GetPokemon(ctx context.Context, idOrName string) (*domain.Pokemon, error) {
	var resp pokemonResponse
	path := "/pokemon/" + url.PathEscape(strings.ToLower(idOrName))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &domain.Pokemon{
		ID:             resp.ID,
		Name:           resp.Name,
		SpriteURL:      resp.Sprites.Other.OfficialArtwork.FrontDefault,
		Height:         resp.Height,
		Weight:         resp.Weight,
		BaseExperience: resp.BaseExperience,
		Generation:     domain.GenerationForID(resp.ID),
		Stats:          make(map[string]int, len(resp.Stats)),
		CachedAt:       now,
		ExpiresAt:      now.Add(c.cacheTTL),
	}
	if p.SpriteURL == "" {
		p.SpriteURL = resp.Sprites.FrontDefault
	}
	for _, t := range resp.Types {
		p.Types = append(p.Types, domain.PokemonType{
			Name:  t.Type.Name,
			Color: domain.TypeColor(t.Type.Name),
		})
	}
	for _, s := range resp.Stats {
		p.Stats[s.Stat.Name] = s.BaseStat
	}
	for _, a := range resp.Abilities {
		p.Abilities = append(p.Abilities, a.Ability.Name)
	}
	return p, nil
}

// GetSpecies fetches flavor data for one Pokémon: an English description,
// legendary flags, and the next stage of its evolution chain if any.
func (c *Client) GetSpecies(ctx context.Context, id int, name string) (*domain.Species, error) {
	var resp speciesResponse
	path := fmt.Sprintf("/pokemon-species/%d", id)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	species := &domain.Species{
		ID:          resp.ID,
		IsLegendary: resp.IsLegendary,
		IsMythical:  resp.IsMythical,
	}

	for _, entry := range resp.FlavorTextEntries {
		if entry.Language.Name == "en" {
			species.Description = cleanFlavorText(entry.FlavorText)
			break
		}
	}

	if resp.EvolutionChain.URL != "" {
		evolvesTo, err := c.nextEvolution(ctx, resp.EvolutionChain.URL, name)
		if err == nil {
			species.EvolvesTo = evolvesTo
		}
		// Evolution data is hint garnish; a failed fetch is not fatal.
	}

	return species, nil
}

// nextEvolution walks the chain and returns the name of the stage that
// follows the given Pokémon, or empty when it is the final stage.
func (c *Client) nextEvolution(ctx context.Context, chainURL, name string) (string, error) {
	path, err := relativePath(c.baseURL, chainURL)
	if err != nil {
		return "", err
	}

	var resp evolutionChainResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return "", err
	}

	queue := []chainLink{resp.Chain}
	for len(queue) > 0 {
		link := queue[0]
		queue = queue[1:]
		if link.Species.Name == name {
			if len(link.EvolvesTo) > 0 {
				return link.EvolvesTo[0].Species.Name, nil
			}
			return "", nil
		}
		queue = append(queue, link.EvolvesTo...)
	}
	return "", nil
}

// relativePath strips the base URL prefix from an absolute API URL so chain
// follow-ups go through the same client and base.
func relativePath(base, absolute string) (string, error) {
	u, err := url.Parse(absolute)
	if err != nil {
		return "", fmt.Errorf("parsing chain url: %w", err)
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	return strings.TrimPrefix(u.Path, b.Path), nil
}

// cleanFlavorText normalizes the control characters PokéAPI embeds in
// flavor text entries.
func cleanFlavorText(s string) string {
	replacer := strings.NewReplacer("\n", " ", "\f", " ", "\r", " ")
	return strings.Join(strings.Fields(replacer.Replace(s)), " ")
}
