package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

const pokemonFixture = `{
	"id": 25,
	"name": "pikachu",
	"height": 4,
	"weight": 60,
	"base_experience": 112,
	"sprites": {
		"front_default": "https://img/front/25.png",
		"other": {
			"official-artwork": {"front_default": "https://img/art/25.png"}
		}
	},
	"types": [{"type": {"name": "electric"}}],
	"stats": [
		{"base_stat": 35, "stat": {"name": "hp"}},
		{"base_stat": 90, "stat": {"name": "speed"}}
	],
	"abilities": [{"ability": {"name": "static"}}]
}`

const speciesFixture = `{
	"id": 25,
	"is_legendary": false,
	"is_mythical": false,
	"flavor_text_entries": [
		{"flavor_text": "Quand il", "language": {"name": "fr"}},
		{"flavor_text": "When several of\nthese POKeMON\fgather", "language": {"name": "en"}}
	],
	"evolution_chain": {"url": "BASE/evolution-chain/10"}
}`

const chainFixture = `{
	"chain": {
		"species": {"name": "pichu"},
		"evolves_to": [{
			"species": {"name": "pikachu"},
			"evolves_to": [{"species": {"name": "raichu"}, "evolves_to": []}]
		}]
	}
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.PokeAPIConfig{
		BaseURL:  srv.URL,
		Timeout:  5 * time.Second,
		CacheTTL: time.Hour,
	})
}

func TestGetPokemon(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pokemon/pikachu" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(pokemonFixture))
	}))

	p, err := c.GetPokemon(context.Background(), "Pikachu")
	if err != nil {
		t.Fatalf("GetPokemon() error: %v", err)
	}

	if p.ID != 25 || p.Name != "pikachu" {
		t.Errorf("pokemon = %d/%s", p.ID, p.Name)
	}
	if p.SpriteURL != "https://img/art/25.png" {
		t.Errorf("SpriteURL = %s, want official artwork", p.SpriteURL)
	}
	if p.Generation != 1 {
		t.Errorf("Generation = %d, want 1", p.Generation)
	}
	if len(p.Types) != 1 || p.Types[0].Name != "electric" || p.Types[0].Color != domain.TypeColor("electric") {
		t.Errorf("Types = %+v", p.Types)
	}
	if p.Stats["speed"] != 90 {
		t.Errorf("Stats[speed] = %d", p.Stats["speed"])
	}
	if len(p.Abilities) != 1 || p.Abilities[0] != "static" {
		t.Errorf("Abilities = %v", p.Abilities)
	}
	if !p.ExpiresAt.After(p.CachedAt) {
		t.Error("ExpiresAt should be after CachedAt")
	}
}

func TestGetPokemonSpriteFallback(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 25, "name": "pikachu",
			"sprites": {"front_default": "https://img/front/25.png", "other": {"official-artwork": {"front_default": ""}}}
		}`))
	}))

	p, err := c.GetPokemon(context.Background(), "25")
	if err != nil {
		t.Fatalf("GetPokemon() error: %v", err)
	}
	if p.SpriteURL != "https://img/front/25.png" {
		t.Errorf("SpriteURL = %s, want front_default fallback", p.SpriteURL)
	}
}

func TestGetPokemonNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	if _, err := c.GetPokemon(context.Background(), "missingno"); !errors.Is(err, domain.ErrPokemonNotFound) {
		t.Errorf("err = %v, want ErrPokemonNotFound", err)
	}
}

func TestGetSpecies(t *testing.T) {
	t.Parallel()

	var baseURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon-species/25", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(speciesFixture, "BASE", baseURL)))
	})
	mux.HandleFunc("/evolution-chain/10", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chainFixture))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	baseURL = srv.URL

	c := NewClient(&config.PokeAPIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second, CacheTTL: time.Hour})

	s, err := c.GetSpecies(context.Background(), 25, "pikachu")
	if err != nil {
		t.Fatalf("GetSpecies() error: %v", err)
	}

	if s.Description != "When several of these POKeMON gather" {
		t.Errorf("Description = %q, want cleaned english entry", s.Description)
	}
	if s.EvolvesTo != "raichu" {
		t.Errorf("EvolvesTo = %q, want raichu", s.EvolvesTo)
	}
}

func TestGetSpeciesFinalStage(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon-species/26", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 26, "flavor_text_entries": [], "evolution_chain": {"url": ""}}`))
	})
	c := newTestClient(t, mux)

	s, err := c.GetSpecies(context.Background(), 26, "raichu")
	if err != nil {
		t.Fatalf("GetSpecies() error: %v", err)
	}
	if s.EvolvesTo != "" {
		t.Errorf("EvolvesTo = %q, want empty for final stage", s.EvolvesTo)
	}
}

func TestCleanFlavorText(t *testing.T) {
	t.Parallel()

	got := cleanFlavorText("line one\nline\ftwo\r three")
	if got != "line one line two three" {
		t.Errorf("cleanFlavorText() = %q", got)
	}
}
