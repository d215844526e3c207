package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/whosthatpokemon/internal/domain"
)

// StartGame opens a new round.
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req domain.StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.game.Start(r.Context(), userID(r), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success:   true,
		Data:      resp,
		Timestamp: time.Now().UTC(),
	})
}

// SubmitGuess resolves an open round.
func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if req.SessionID == "" || req.Guess == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.game.SubmitGuess(r.Context(), userID(r), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	message := "Better luck next time!"
	if result.IsCorrect {
		message = "Correct!"
	}
	h.writeMessage(w, http.StatusOK, result, message)
}

// EndGame closes out a finished game.
func (h *Handler) EndGame(w http.ResponseWriter, r *http.Request) {
	var req domain.EndGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.game.End(r.Context(), userID(r), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, result)
}

// GetHistory returns a page of completed rounds.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r.URL.Query().Get("page"), 1)
	limit := queryInt(r.URL.Query().Get("limit"), h.cfg.Game.DefaultPageSize)

	history, err := h.game.History(r.Context(), userID(r), page, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, history)
}

// GetStats aggregates the user's completed rounds.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.game.Stats(r.Context(), userID(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, stats)
}

// GetAchievements lists the achievement catalog with unlock state.
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.game.Achievements(r.Context(), userID(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, achievements)
}

// GetLeaderboard returns a page of a period leaderboard.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.LeaderboardQuery{
		Period: domain.Period(chi.URLParam(r, "period")),
		Page:   queryInt(q.Get("page"), 1),
		Limit:  queryInt(q.Get("limit"), h.cfg.Game.DefaultPageSize),
	}
	if m := q.Get("gameMode"); m != "" {
		mode := domain.GameMode(m)
		query.GameMode = &mode
	}
	if d := q.Get("difficulty"); d != "" {
		diff := domain.Difficulty(d)
		if !diff.Valid() {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidDifficulty)
			return
		}
		query.Difficulty = &diff
	}

	entries, err := h.leaderboard.Query(r.Context(), query)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"period":  query.Period,
		"entries": entries,
		"page":    query.Page,
		"limit":   query.Limit,
	})
}

// GetGameLeaderboard serves the leaderboard under the game route group for
// clients that query it alongside history and stats. The period comes from a
// query parameter and defaults to daily.
func (h *Handler) GetGameLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.LeaderboardQuery{
		Period: domain.Period(q.Get("period")),
		Page:   queryInt(q.Get("page"), 1),
		Limit:  queryInt(q.Get("limit"), h.cfg.Game.DefaultPageSize),
	}
	if query.Period == "" {
		query.Period = domain.PeriodDaily
	}
	if m := q.Get("gameMode"); m != "" {
		mode := domain.GameMode(m)
		query.GameMode = &mode
	}
	if d := q.Get("difficulty"); d != "" {
		diff := domain.Difficulty(d)
		if !diff.Valid() {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidDifficulty)
			return
		}
		query.Difficulty = &diff
	}

	entries, err := h.leaderboard.Query(r.Context(), query)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"period":  query.Period,
		"entries": entries,
		"page":    query.Page,
		"limit":   query.Limit,
	})
}

// GetLeaderboardTop returns the realtime top of a period leaderboard.
func (h *Handler) GetLeaderboardTop(w http.ResponseWriter, r *http.Request) {
	period := domain.Period(chi.URLParam(r, "period"))
	n := queryInt(r.URL.Query().Get("limit"), 10)

	entries, err := h.leaderboard.Top(r.Context(), period, n)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, entries)
}
