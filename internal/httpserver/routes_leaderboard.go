// internal/httpserver/routes_leaderboard.go
//
// Leaderboard route.
//   - GET /leaderboard?period=daily|weekly|monthly|alltime&date=YYYY-MM-DD&limit=N
//
// Period defaults to daily and date to today (UTC).

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/homophones/internal/daily"
	"github.com/robalobadob/homophones/internal/results"
)

type leaderboardRes struct {
	Period  results.Period  `json:"period"`
	Key     string          `json:"key,omitempty"`
	Entries []results.Entry `json:"entries"`
}

// handleLeaderboard serves GET /leaderboard?period=daily|weekly|monthly|alltime&date=YYYY-MM-DD&limit=N.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := results.ParsePeriod(q.Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_period")
		return
	}
	at := s.now()
	if d := q.Get("date"); d != "" {
		if at, err = daily.ParseDateKey(d); err != nil {
			writeError(w, http.StatusBadRequest, "bad_date")
			return
		}
	}
	limit := 20
	if l := q.Get("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
	}

	entries, err := s.results.Leaderboard(r.Context(), period, at, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Period: period, Key: period.Key(at), Entries: entries})
}
