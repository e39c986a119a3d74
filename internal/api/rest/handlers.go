package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/cache"
	"github.com/fortuna/hoops/internal/models"
	"github.com/fortuna/hoops/internal/schema"
)

// Scraper is the query surface served over HTTP; *service.Scraper
// satisfies it.
type Scraper interface {
	GetAllSchedule(ctx context.Context, season int) ([]models.ScheduleEntry, error)
	GetTeamSchedule(ctx context.Context, team string, season int) ([]models.ScheduleEntry, error)
	GetRoster(ctx context.Context, team string, season int) ([]models.Player, error)
	GetInjuryReport(ctx context.Context, team string, season int) ([]models.InjuryReport, error)
	GetBoxscore(ctx context.Context, gameLink string) ([]models.BoxscoreEntry, error)
	GetGameSummary(ctx context.Context, gameLink string) (models.GameSummary, error)
	CacheStats() cache.Stats
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	scraper Scraper
	logger  *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(scraper Scraper, logger *zap.Logger) *Handler {
	return &Handler{scraper: scraper, logger: logger}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "hoops",
	})
}

// GetAllSchedule returns every game of a season.
func (h *Handler) GetAllSchedule(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	games, err := h.scraper.GetAllSchedule(r.Context(), season)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		games = filterStatus(games, models.GameStatus(status))
	}
	respondJSON(w, http.StatusOK, games)
}

// GetTeamSchedule returns one team's games for a season.
func (h *Handler) GetTeamSchedule(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	games, err := h.scraper.GetTeamSchedule(r.Context(), mux.Vars(r)["team"], season)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		games = filterStatus(games, models.GameStatus(status))
	}
	respondJSON(w, http.StatusOK, games)
}

// GetRoster returns a team's roster with per-game averages.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	players, err := h.scraper.GetRoster(r.Context(), mux.Vars(r)["team"], season)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}

// GetInjuryReport returns a team's current injury list.
func (h *Handler) GetInjuryReport(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	reports, err := h.scraper.GetInjuryReport(r.Context(), mux.Vars(r)["team"], season)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// GetBoxscore returns every player line of a game.
func (h *Handler) GetBoxscore(w http.ResponseWriter, r *http.Request) {
	link, err := gameParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.scraper.GetBoxscore(r.Context(), link)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("played") == "true" {
		played := entries[:0:0]
		for _, e := range entries {
			if e.Played() {
				played = append(played, e)
			}
		}
		entries = played
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetGameSummary returns the scorebox of a game.
func (h *Handler) GetGameSummary(w http.ResponseWriter, r *http.Request) {
	link, err := gameParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.scraper.GetGameSummary(r.Context(), link)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GetCacheStats reports page cache counters.
func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scraper.CacheStats())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	switch {
	case status == statusClientClosedRequest:
		h.logger.Debug("client went away", zap.String("path", r.URL.Path))
	case status >= http.StatusInternalServerError:
		h.logger.Warn("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	respondError(w, status, message, err)
}

func seasonParam(r *http.Request) (int, error) {
	raw := mux.Vars(r)["season"]
	season, err := strconv.Atoi(raw)
	if err != nil || season < 1947 {
		return 0, badRequest(errors.Newf("invalid season %q", raw))
	}
	return season, nil
}

// gameParam accepts "200411020DEN" or "200411020DEN.html".
func gameParam(r *http.Request) (string, error) {
	raw := mux.Vars(r)["game"]
	if !strings.HasSuffix(raw, ".html") {
		raw += ".html"
	}
	if !strings.HasPrefix(raw, "/boxscores/") {
		raw = "/boxscores/" + raw
	}
	link, err := schema.NormalizeGameLink(raw)
	if err != nil {
		return "", badRequest(err)
	}
	return link, nil
}

func filterStatus(games []models.ScheduleEntry, status models.GameStatus) []models.ScheduleEntry {
	out := make([]models.ScheduleEntry, 0, len(games))
	for _, g := range games {
		if g.Status == status {
			out = append(out, g)
		}
	}
	return out
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
