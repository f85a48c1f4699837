// apps/go-server/internal/game/session.go
//
// Session model: the mutable state of one player's side of a match.
//
// Locking:
//   - mu is held for the whole body of any handler working on the session (move, item, AI step, poll).
//   - peerMu is a leaf lock over the fields other parties write: the matchmaker links opponents,
//     the opponent appends events and freezes us, QuitGame flags a departure.
//   - Order: mu -> Service.mu -> peerMu. No code holds two sessions' mu at once, and nothing is
//     acquired while peerMu is held.

package game

import (
	"sync"
	"time"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
	"github.com/robalobadob/gemclash/apps/go-server/internal/config"
)

// Session is one side of a game.
type Session struct {
	// Immutable after creation.
	ID         string
	PlayerID   int64
	Nickname   string
	Mode       Mode
	LevelID    int
	Level      config.Level
	IsAI       bool
	Difficulty Difficulty

	mu         sync.Mutex
	board      board.State
	rng        board.Source
	score      int
	movesLeft  int
	over       bool
	win        bool
	reason     string
	lastAIMove time.Time
	settled    bool
	coins      int

	peerMu        sync.Mutex
	opponentID    string
	opponentName  string
	opponentQuit  bool
	startedAt     time.Time
	frozenUntil   time.Time
	immunityUntil time.Time
	events        []Event
}

// versus reports whether the session is one side of a pvp or pve match.
func (s *Session) versus() bool { return s.Mode == ModePVP || s.Mode == ModePVE }

// end marks the session over. The first reason recorded wins.
func (s *Session) end(win bool, reason string) {
	if s.over {
		return
	}
	s.over, s.win, s.reason = true, win, reason
}

type peerView struct {
	opponentID    string
	opponentName  string
	opponentQuit  bool
	startedAt     time.Time
	frozenUntil   time.Time
	immunityUntil time.Time
}

func (s *Session) peer() peerView {
	s.peerMu.Lock()
	defer s.peerMu.Unlock()
	return peerView{
		opponentID:    s.opponentID,
		opponentName:  s.opponentName,
		opponentQuit:  s.opponentQuit,
		startedAt:     s.startedAt,
		frozenUntil:   s.frozenUntil,
		immunityUntil: s.immunityUntil,
	}
}

func (s *Session) link(opponentID, opponentName string, startedAt time.Time) {
	s.peerMu.Lock()
	s.opponentID, s.opponentName, s.startedAt = opponentID, opponentName, startedAt
	s.peerMu.Unlock()
}

func (s *Session) markOpponentQuit() {
	s.peerMu.Lock()
	s.opponentQuit = true
	s.peerMu.Unlock()
}

// freeze applies a freeze window unless the session is still immune.
func (s *Session) freeze(now time.Time, freeze, immunity time.Duration) bool {
	s.peerMu.Lock()
	defer s.peerMu.Unlock()
	if now.Before(s.immunityUntil) {
		return false
	}
	s.frozenUntil = now.Add(freeze)
	s.immunityUntil = s.frozenUntil.Add(immunity)
	return true
}

func (s *Session) push(evs []Event) {
	if len(evs) == 0 {
		return
	}
	s.peerMu.Lock()
	s.events = append(s.events, evs...)
	s.peerMu.Unlock()
}

// drain returns and clears the pending opponent events.
func (s *Session) drain() []Event {
	s.peerMu.Lock()
	defer s.peerMu.Unlock()
	out := s.events
	s.events = nil
	if out == nil {
		out = []Event{}
	}
	return out
}

func (s *Session) status() Status {
	return Status{
		IsOver:       s.over,
		IsWin:        s.win,
		Reason:       s.reason,
		MovesLeft:    s.movesLeft,
		CurrentScore: s.score,
		TargetScore:  s.Level.TargetScore,
	}
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		GameUUID: s.ID,
		Mode:     s.Mode,
		Map:      s.board.Grid,
		IceMap:   s.board.Ice,
		BombMap:  bombList(s.board.Bombs),
		LevelInfo: LevelInfo{
			Current: s.LevelID,
			Target:  s.Level.TargetScore,
			Desc:    s.Level.Desc,
			Moves:   s.movesLeft,
		},
	}
}

func (s *Session) moveResult(valid bool, msg string) MoveResult {
	return MoveResult{
		Valid:   valid,
		Msg:     msg,
		SyncMap: s.board.Grid,
		SpecialLayers: SpecialLayers{
			IceMap:   s.board.Ice,
			BombList: bombList(s.board.Bombs),
		},
		GameStatus: s.status(),
		Events:     []Event{},
	}
}
