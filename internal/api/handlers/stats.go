package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/marcinh992/bank-transactions-api/internal/api/middleware"
	"github.com/marcinh992/bank-transactions-api/internal/stats"
)

const (
	defaultStatsLimit = 50
	maxStatsLimit     = 500
)

// StatsHandler handles stats query endpoints.
type StatsHandler struct {
	service *stats.Service
	log     zerolog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(service *stats.Service, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{service: service, log: log}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	yearMonth := query.Get("yearMonth")
	if !yearMonthPattern.MatchString(yearMonth) {
		middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "yearMonth must be in YYYY-MM format")
		return
	}

	groupBy, err := stats.ParseGroupBy(query.Get("groupBy"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	sort := stats.SortTotalDesc
	if raw := query.Get("sort"); raw != "" {
		sort, err = stats.ParseSort(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
	}

	limit := defaultStatsLimit
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxStatsLimit {
			middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be an integer between 1 and 500")
			return
		}
	}

	groups, err := h.service.Get(ctx, yearMonth, groupBy, limit, sort)
	if err != nil {
		h.log.Error().Err(err).Str("year_month", yearMonth).Msg("Failed to query stats")
		middleware.WriteAppError(w, err)
		return
	}
	if groups == nil {
		groups = []*stats.GroupedStat{}
	}

	middleware.WriteJSON(w, http.StatusOK, groups)
}

// GetMonthlyStats handles GET /api/v1/stats/monthly
func (h *StatsHandler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	from := query.Get("from")
	to := query.Get("to")
	if !yearMonthPattern.MatchString(from) || !yearMonthPattern.MatchString(to) {
		middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "from and to must be in YYYY-MM format")
		return
	}
	if from > to {
		middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "from must not be after to")
		return
	}

	groups, err := h.service.Monthly(ctx, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("from", from).Str("to", to).Msg("Failed to query monthly stats")
		middleware.WriteAppError(w, err)
		return
	}
	if groups == nil {
		groups = []*stats.GroupedStat{}
	}

	middleware.WriteJSON(w, http.StatusOK, groups)
}
