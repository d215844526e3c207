package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/whosthatpokemon/internal/domain"
)

// ListPokemon returns a page of the catalog with optional filters.
func (h *Handler) ListPokemon(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := queryInt(q.Get("page"), 1)
	limit := queryInt(q.Get("limit"), h.cfg.Game.DefaultPageSize)

	var generation *int
	if g := q.Get("generation"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		generation = &n
	}
	var typeFilter, search *string
	if t := q.Get("type"); t != "" {
		typeFilter = &t
	}
	if s := q.Get("search"); s != "" {
		search = &s
	}

	pokemon, total, err := h.pokedex.List(r.Context(), page, limit, generation, typeFilter, search)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"pokemon": pokemon,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// SearchPokemon returns catalog entries matching a name prefix.
func (h *Handler) SearchPokemon(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	limit := queryInt(r.URL.Query().Get("limit"), h.cfg.Game.DefaultPageSize)

	pokemon, err := h.pokedex.Search(r.Context(), query, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, pokemon)
}

// GetRandomPokemon returns one random cached Pokémon matching the optional
// difficulty and generation filters.
func (h *Handler) GetRandomPokemon(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	difficulty := domain.Difficulty(q.Get("difficulty"))
	if difficulty == "" {
		difficulty = domain.DifficultyEasy
	}
	if !difficulty.Valid() {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidDifficulty)
		return
	}

	var generation *int
	if g := q.Get("generation"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		generation = &n
	}

	pokemon, err := h.pokedex.Random(r.Context(), difficulty, generation, nil)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, pokemon)
}

// GetTypes lists the type tags with their palette colors.
func (h *Handler) GetTypes(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, h.pokedex.Types())
}

// GetPokemonByID returns one Pokémon by catalog id.
func (h *Handler) GetPokemonByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	pokemon, err := h.pokedex.GetByID(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, pokemon)
}

// GetPokemonByName returns one Pokémon by name.
func (h *Handler) GetPokemonByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	pokemon, err := h.pokedex.GetByName(r.Context(), name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, pokemon)
}

// queryInt parses a positive integer query parameter with a fallback.
func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
