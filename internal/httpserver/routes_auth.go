// internal/httpserver/routes_auth.go
//
// Account routes.
//   - POST /auth/signup, /auth/login → set the auth cookie, claim guest results and gems
//   - POST /auth/logout               → clear the cookie
//   - GET  /auth/me, /stats/me, /games/mine (require auth)

package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/homophones/internal/auth"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userFrom(r.Context()))
	})

	s.r.With(s.requireAuth).Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r.Context())
		sum, err := s.results.PlayerSummary(r.Context(), me.ID)
		if err != nil {
			log.Error().Err(err).Str("user", me.ID).Msg("player summary")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		gems, err := s.sessions.Gems(r.Context(), me.ID)
		if err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("wallet")
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          me.ID,
			"gamesPlayed": sum.GamesPlayed,
			"totalScore":  sum.TotalScore,
			"bestScore":   sum.BestScore,
			"hintsUsed":   sum.HintsUsed,
			"lastPlayed":  sum.LastPlayed,
			"gems":        gems,
		})
	})

	s.r.With(s.requireAuth).Get("/games/mine", func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r.Context())
		recent, err := s.results.Recent(r.Context(), me.ID, 50)
		if err != nil {
			log.Error().Err(err).Str("user", me.ID).Msg("recent games")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, recent)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := s.auth.Signup(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username taken")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := s.auth.Login(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	case err != nil:
		log.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "login_failed")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": u.ID, "username": u.Username})
}

// signIn sets the auth cookie and attaches any guest results and earned gems to u.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.auth.Sign(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setAuthCookie(w, tok, exp)
	if anon := anonPlayerID(r); anon != "" {
		if err := s.results.Claim(r.Context(), anon, u.ID, u.Username); err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("claim guest results")
		}
		if err := s.sessions.MergeWallet(r.Context(), anon, u.ID); err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("merge guest wallet")
		}
	}
	return true
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
