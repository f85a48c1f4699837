// apps/go-server/internal/httpserver/routes_pvp.go
//
// HTTP routes for head-to-head play.
// Exposes:
//   - POST /api/pve/start   → start a match against the bot
//   - POST /api/pvp/match   → join the matchmaking slot (waiting or matched)
//   - POST /api/pvp/cancel  → leave the matchmaking slot
//   - POST /api/pvp/status  → one dual-state poll
//   - GET  /ws/pvp/status   → the same dual state pushed over a websocket until the match ends
//
// Each poll advances the bot and settles a finished match, so the feed
// drives the match exactly like a client polling on a timer.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemclash/apps/go-server/internal/game"
)

const writeWait = 5 * time.Second

// mountVersus registers the pve/pvp routes on the /api router.
func (s *Server) mountVersus(r chi.Router) {
	r.Post("/pve/start", s.handlePVEStart)
	r.Route("/pvp", func(r chi.Router) {
		r.Post("/match", s.handleMatch)
		r.Post("/cancel", s.handleCancel)
		r.Post("/status", s.handleStatus)
	})
}

type pveReq struct {
	UID        int64 `json:"uid"`
	Difficulty int   `json:"difficulty"`
}

func (s *Server) handlePVEStart(w http.ResponseWriter, r *http.Request) {
	var req pveReq
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.StartPVE(r.Context(), playerID(r, req.UID), game.Difficulty(req.Difficulty))
	if err != nil {
		fail(w, err, nil)
		return
	}
	ok(w, res)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req uidReq
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.JoinPVP(r.Context(), playerID(r, req.UID))
	if err != nil {
		fail(w, err, nil)
		return
	}
	ok(w, res)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req uidReq
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.CancelMatch(playerID(r, req.UID)); err != nil {
		fail(w, err, nil)
		return
	}
	ok(w, nil)
}

// handleStatus answers a single poll. A missing session is a 404 carrying status "error".
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !decode(w, r, &req) {
		return
	}
	st, err := s.svc.PollDualState(r.Context(), req.GameUUID)
	if err != nil {
		fail(w, err, st)
		return
	}
	ok(w, st)
}

// sameClientOrigin admits non-browser clients and the configured web client.
func sameClientOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == clientOrigin()
}

// handleStatusFeed upgrades to a websocket and pushes a dual-state envelope
// every pushEvery until the match is over, the session disappears, or the
// client goes away.
func (s *Server) handleStatusFeed(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("game_uuid")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, "game_uuid required", nil)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	// Reads only detect the close; clients have nothing to say.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	tick := time.NewTicker(s.pushEvery)
	defer tick.Stop()
	for {
		st, err := s.svc.PollDualState(r.Context(), id)
		frame := envelope{Code: http.StatusOK, Msg: "ok", Data: st}
		if err != nil {
			frame.Code, frame.Msg = http.StatusNotFound, err.Error()
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if werr := conn.WriteJSON(frame); werr != nil {
			log.Debug().Err(werr).Str("session", id).Msg("feed write")
			return
		}
		if err != nil || st.IsOver {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match over"),
				time.Now().Add(writeWait))
			return
		}
		select {
		case <-gone:
			return
		case <-tick.C:
		}
	}
}
