// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the GemClash backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/api/rank".
//   - Game endpoints: /api/game/start, /api/game/move, /api/game/use_item, /api/game/quit, /api/game/state.
//   - Shop + wallet endpoints: /api/shop/buy, /api/user/sync.
//   - Versus endpoints: mounted from routes_pvp.go.
//   - Optional bearer identity: a valid JWT's uid claim replaces the uid in the body.
//
// Notes:
//   - Every JSON reply is wrapped as {code, msg, data}; code mirrors the HTTP status.
//   - Rejected moves still carry the board so the client can resync.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemclash/apps/go-server/internal/game"
)

// Server bundles the router and the game service.
type Server struct {
	r   *chi.Mux
	svc *game.Service

	upgrader  websocket.Upgrader
	pushEvery time.Duration
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *game.Service) *Server {
	s := &Server{r: chi.NewRouter(), svc: svc, pushEvery: 500 * time.Millisecond}
	s.upgrader = websocket.Upgrader{CheckOrigin: sameClientOrigin}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(corsFromEnv)     // credentials-friendly CORS
	s.r.Use(s.withOptionalAuth())

	// --- diagnostics ---
	s.r.With(jsonContentType).Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"gemclash-go","endpoints":["/health","/api/game/*","/api/pve/start","/api/pvp/*","/ws/pvp/status"]}`))
	})
	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", s.handleStart)
			r.Post("/move", s.handleMove)
			r.Post("/use_item", s.handleUseItem)
			r.Post("/quit", s.handleQuit)
			r.Post("/state", s.handleState)
		})
		r.Post("/shop/buy", s.handleBuy)
		r.Post("/user/sync", s.handleSync)
		r.Get("/rank", s.handleRank)

		s.mountVersus(r)
	})

	// The feed outlives the API timeout, so it sits outside /api.
	s.r.Get("/ws/pvp/status", s.handleStatusFeed)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, "not found: "+r.URL.Path, nil)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func clientOrigin() string { return getEnv("CLIENT_ORIGIN", "http://localhost:5173") }

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := clientOrigin()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ identity -----------------------------------

// ctxPlayerKey is the context key type for the bearer player id.
type ctxPlayerKey struct{}

// withOptionalAuth puts the uid claim of a valid bearer token into the request context.
// It never rejects; guests and unauthenticated clients send uid in the body.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearer(r); tok != "" {
				claims := jwt.MapClaims{}
				t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
					return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
				}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
				if err == nil && t.Valid {
					if uid, ok := claims["uid"].(float64); ok && uid > 0 {
						r = r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, int64(uid)))
					}
				} else {
					log.Debug().Err(err).Msg("ignoring bearer token")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearer extracts a token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// playerID prefers the authenticated uid over the one the client sent.
func playerID(r *http.Request, fromBody int64) int64 {
	if uid, ok := r.Context().Value(ctxPlayerKey{}).(int64); ok {
		return uid
	}
	return fromBody
}

// ------------------------------ envelope -----------------------------------

type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Code: code, Msg: msg, Data: data})
}

func ok(w http.ResponseWriter, data any) { writeJSON(w, http.StatusOK, "ok", data) }

// fail maps an engine error onto the envelope. data may carry a resync payload.
func fail(w http.ResponseWriter, err error, data any) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeJSON(w, http.StatusNotFound, err.Error(), data)
	case game.IsInvalid(err):
		writeJSON(w, http.StatusBadRequest, err.Error(), data)
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, "internal error", nil)
	}
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, "bad json", nil)
		return false
	}
	return true
}

// ------------------------------ GAME ---------------------------------------

type startReq struct {
	UID   int64  `json:"uid"`
	Mode  string `json:"mode"`
	Level int    `json:"level"`
}

// handleStart opens a level or endless session.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if !decode(w, r, &req) {
		return
	}
	if req.Level == 0 {
		req.Level = 1
	}
	snap, err := s.svc.CreateSession(r.Context(), playerID(r, req.UID), game.Mode(req.Mode), req.Level)
	if err != nil {
		fail(w, err, nil)
		return
	}
	ok(w, snap)
}

type moveReq struct {
	GameUUID  string `json:"game_uuid"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Direction string `json:"direction"`
}

// handleMove applies a swap. Rejections still return the current board.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.ProcessMove(r.Context(), req.GameUUID, req.Row, req.Col, req.Direction)
	if err != nil {
		fail(w, err, res)
		return
	}
	ok(w, res)
}

type itemReq struct {
	GameUUID string `json:"game_uuid"`
	ItemType string `json:"item_type"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

func (s *Server) handleUseItem(w http.ResponseWriter, r *http.Request) {
	var req itemReq
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.UseItem(r.Context(), req.GameUUID, req.ItemType, req.Row, req.Col)
	if err != nil {
		fail(w, err, nil)
		return
	}
	ok(w, res)
}

type sessionReq struct {
	GameUUID string `json:"game_uuid"`
}

// handleState re-sends the board of a live session, e.g. after a page reload.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.svc.Snapshot(req.GameUUID)
	if err != nil {
		fail(w, err, nil)
		return
	}
	ok(w, snap)
}

// handleQuit is idempotent; quitting an unknown session succeeds.
func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decode(w, r, &req) {
		return
	}
	s.svc.QuitGame(req.GameUUID)
	ok(w, map[string]string{"game_uuid": req.GameUUID})
}

// ------------------------------ SHOP ---------------------------------------

type buyReq struct {
	UID      int64  `json:"uid"`
	ItemType string `json:"item_type"`
}

// handleBuy debits coins, credits the item and answers with the new wallet when known.
func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyReq
	if !decode(w, r, &req) {
		return
	}
	uid := playerID(r, req.UID)
	if err := s.svc.BuyItem(r.Context(), uid, req.ItemType); err != nil {
		fail(w, err, nil)
		return
	}
	assets, err := s.svc.Assets(r.Context(), uid)
	if err != nil {
		ok(w, nil)
		return
	}
	ok(w, assets)
}

type uidReq struct {
	UID int64 `json:"uid"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req uidReq
	if !decode(w, r, &req) {
		return
	}
	assets, err := s.svc.Assets(r.Context(), playerID(r, req.UID))
	if err != nil {
		fail(w, err, nil)
		return
	}
	ok(w, assets)
}

// handleRank returns the top players by best score.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Leaderboard(r.Context())
	if err != nil {
		fail(w, err, nil)
		return
	}
	if rows == nil {
		rows = []game.LeaderRow{}
	}
	ok(w, rows)
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
