// internal/httpserver/routes_game.go
//
// Challenge and game routes.
//   - GET  /challenge/today   → today's challenge (no answers) + whether it's been played
//   - GET  /challenge/{id}    → one challenge (no answers)
//   - GET  /challenges        → the whole catalog (no answers)
//   - POST /game/new          → start a session (today's challenge unless challengeId given)
//   - POST /game/submit       → submit a word
//   - POST /game/hint         → take the next hint
//   - POST /game/reset        → restart the session
//   - GET  /game/{id}         → current session view
//   - GET  /wallet            → caller's gem balance
//
// A player records each challenge once; replays after a recorded result are
// refused with played=true, the same way the daily mode locks a finished day.

package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/homophones/internal/game"
	"github.com/robalobadob/homophones/internal/puzzles"
	"github.com/robalobadob/homophones/internal/session"
)

func (s *Server) mountChallenges(r chi.Router) {
	r.Get("/challenge/today", s.handleToday)
	r.Get("/challenge/{id}", s.handleChallenge)
	r.Get("/challenges", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, lo.Map(s.catalog.All(), func(p game.Puzzle, _ int) puzzles.Summary {
			return puzzles.Summarize(p)
		}))
	})
}

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/submit", s.handleSubmit)
		r.Post("/hint", s.handleHint)
		r.Post("/reset", s.handleReset)
		r.Get("/{id}", s.handleGetGame)
	})
}

type challengeRes struct {
	Challenge puzzles.Summary `json:"challenge"`
	Played    bool            `json:"played"`
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.ForDate(s.now(), s.cfg.DailySalt)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no_challenges")
		return
	}
	played := s.played(r, s.player(w, r).ID, p.ID)
	writeJSON(w, http.StatusOK, challengeRes{Challenge: puzzles.Summarize(p), Played: played})
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.ByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_challenge")
		return
	}
	played := s.played(r, s.player(w, r).ID, p.ID)
	writeJSON(w, http.StatusOK, challengeRes{Challenge: puzzles.Summarize(p), Played: played})
}

// played is best effort: a lookup failure counts as not played.
func (s *Server) played(r *http.Request, playerID, challengeID string) bool {
	ok, err := s.results.AlreadyPlayed(r.Context(), playerID, challengeID)
	if err != nil {
		log.Warn().Err(err).Str("challenge", challengeID).Msg("already played lookup")
	}
	return ok
}

type newGameReq struct {
	ChallengeID string `json:"challengeId"`
}

type newGameRes struct {
	Challenge puzzles.Summary `json:"challenge"`
	Played    bool            `json:"played"`
	Game      *session.View   `json:"game,omitempty"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	var (
		p   game.Puzzle
		err error
	)
	if id := strings.TrimSpace(req.ChallengeID); id != "" {
		p, err = s.catalog.ByID(id)
	} else {
		p, err = s.catalog.ForDate(s.now(), s.cfg.DailySalt)
	}
	switch {
	case errors.Is(err, puzzles.ErrUnknownChallenge):
		writeError(w, http.StatusNotFound, "unknown_challenge")
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "no_challenges")
		return
	}

	pl := s.player(w, r)
	res := newGameRes{Challenge: puzzles.Summarize(p)}
	if s.played(r, pl.ID, p.ID) {
		res.Played = true
		writeJSON(w, http.StatusOK, res)
		return
	}

	v, err := s.sessions.Start(r.Context(), pl, p)
	if err != nil {
		log.Error().Err(err).Str("player", pl.ID).Msg("start session")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	res.Game = &v
	writeJSON(w, http.StatusOK, res)
}

type sessionReq struct {
	SessionID string `json:"sessionId"`
	Word      string `json:"word"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := s.sessions.Submit(r.Context(), req.SessionID, s.player(w, r).ID, req.Word)
	s.writeView(w, v, err)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := s.sessions.Hint(r.Context(), req.SessionID, s.player(w, r).ID)
	s.writeView(w, v, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := s.sessions.Reset(r.Context(), req.SessionID, s.player(w, r).ID)
	s.writeView(w, v, err)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"), s.player(w, r).ID)
	s.writeView(w, v, err)
}

// writeView maps session errors to status codes. Rule violations are not
// errors: they come back as ok=false with feedback.
func (s *Server) writeView(w http.ResponseWriter, v session.View, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, session.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case err != nil:
		log.Error().Err(err).Msg("session call")
		writeError(w, http.StatusInternalServerError, "session_failed")
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	pl := s.player(w, r)
	gems, err := s.sessions.Gems(r.Context(), pl.ID)
	if err != nil {
		log.Error().Err(err).Str("player", pl.ID).Msg("wallet")
		writeError(w, http.StatusInternalServerError, "wallet_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"gems": gems})
}
