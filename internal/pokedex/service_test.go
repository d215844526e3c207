package pokedex

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
	"github.com/whosthatpokemon/internal/pokeapi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHints(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon-species/25", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 25,
			"flavor_text_entries": [{"flavor_text": "It stores electricity.", "language": {"name": "en"}}],
			"evolution_chain": {"url": ""}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api := pokeapi.NewClient(&config.PokeAPIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second, CacheTTL: time.Hour})
	svc := NewService(nil, api, &config.GameConfig{ChoiceCount: 4}, testLogger())

	pokemon := &domain.Pokemon{
		ID:         25,
		Name:       "pikachu",
		Height:     4,
		Weight:     60,
		Generation: 1,
		Types: []domain.PokemonType{
			{Name: "electric", Color: domain.TypeColor("electric")},
		},
	}

	hints := svc.Hints(context.Background(), pokemon)

	byType := make(map[string]domain.Hint, len(hints))
	for _, h := range hints {
		byType[h.Type] = h
	}

	if h, ok := byType["flavor_text"]; !ok || h.Content != "It stores electricity." || h.Cost != 15 {
		t.Errorf("flavor_text hint = %+v", h)
	}
	if _, ok := byType["evolution"]; ok {
		t.Error("no evolution hint expected without a next stage")
	}
	if h := byType["type"]; h.Content != "Type: electric" || h.Cost != 10 {
		t.Errorf("type hint = %+v", h)
	}
	if h := byType["height_weight"]; h.Content != "Height: 0.4 m, Weight: 6.0 kg" || h.Cost != 8 {
		t.Errorf("height_weight hint = %+v", h)
	}
	if h := byType["generation"]; h.Content != "From generation 1." || h.Cost != 3 {
		t.Errorf("generation hint = %+v", h)
	}
}

func TestHintsSpeciesUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	api := pokeapi.NewClient(&config.PokeAPIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second, CacheTTL: time.Hour})
	svc := NewService(nil, api, &config.GameConfig{ChoiceCount: 4}, testLogger())

	pokemon := &domain.Pokemon{ID: 1, Name: "bulbasaur", Height: 7, Weight: 69, Generation: 1}
	hints := svc.Hints(context.Background(), pokemon)

	// Species-derived hints drop out; the locally computed ones remain.
	for _, h := range hints {
		if h.Type == "flavor_text" || h.Type == "evolution" {
			t.Errorf("unexpected species hint %s", h.Type)
		}
	}
	if len(hints) != 2 {
		t.Errorf("len(hints) = %d, want height_weight and generation", len(hints))
	}
}

func TestFillDecoys(t *testing.T) {
	t.Parallel()

	t.Run("empty list fills to count", func(t *testing.T) {
		got := fillDecoys(nil, "mewtwo", 3)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3: %v", len(got), got)
		}
	})

	t.Run("answer in the fallback set still fills", func(t *testing.T) {
		got := fillDecoys(nil, "pikachu", 3)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3: %v", len(got), got)
		}
		for _, name := range got {
			if name == "pikachu" {
				t.Error("correct answer used as a decoy")
			}
		}
	})

	t.Run("partial cache decoys are kept", func(t *testing.T) {
		got := fillDecoys([]string{"raichu", "charizard"}, "mewtwo", 3)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3: %v", len(got), got)
		}
		if got[0] != "raichu" || got[1] != "charizard" {
			t.Errorf("cached decoys dropped: %v", got)
		}
		// charizard came from the cache; the pad must not repeat it.
		seen := map[string]bool{}
		for _, name := range got {
			if seen[name] {
				t.Errorf("duplicate decoy %s", name)
			}
			seen[name] = true
		}
	})

	t.Run("full list untouched", func(t *testing.T) {
		got := fillDecoys([]string{"a", "b", "c"}, "mewtwo", 3)
		if len(got) != 3 || got[0] != "a" {
			t.Errorf("got %v", got)
		}
	})
}

func TestJoinAnd(t *testing.T) {
	t.Parallel()

	if got := joinAnd(nil); got != "" {
		t.Errorf("joinAnd(nil) = %q", got)
	}
	if got := joinAnd([]string{"grass"}); got != "grass" {
		t.Errorf("joinAnd(one) = %q", got)
	}
	if got := joinAnd([]string{"grass", "poison"}); got != "grass / poison" {
		t.Errorf("joinAnd(two) = %q", got)
	}
}

func TestTypes(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, &config.GameConfig{}, testLogger())
	types := svc.Types()

	if len(types) != len(domain.AllTypes()) {
		t.Fatalf("len(types) = %d, want %d", len(types), len(domain.AllTypes()))
	}
	for _, pt := range types {
		if pt.Color == "" {
			t.Errorf("type %s has no color", pt.Name)
		}
	}
}
