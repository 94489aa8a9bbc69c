package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BarStock/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	subject      = "venue"

	DefaultTokenTTL = 12 * time.Hour
)

type Server struct {
	Log      *zap.Logger
	Verifier *Verifier
	JWT      *TokenMaker
	TokenTTL time.Duration
	Limiter  *kit.IPRateLimiter
}

func (s *Server) Mount(r chi.Router) {
	if s.Limiter != nil {
		r.With(s.Limiter.Middleware).Post("/api/login", s.handleLogin)
		return
	}
	r.Post("/api/login", s.handleLogin)
}

type loginReq struct {
	Password string `json:"password"`
}

type loginResp struct {
	OK          bool      `json:"ok"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req loginReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if err := s.Verifier.Verify(strings.TrimSpace(req.Password)); err != nil {
		s.Log.Warn("login rejected", zap.String("remote", r.RemoteAddr))
		kit.WriteError(w, r, http.StatusUnauthorized, "Invalid password", nil)
		return
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tok, exp, err := s.JWT.New(subject, ttl)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{OK: true, AccessToken: tok, ExpiresAt: exp})
}
