// apps/go-server/internal/game/service.go
//
// Session registry and matchmaker.
// Responsibilities:
//   - Own the live sessions keyed by id and the single PVP waiting slot.
//   - Create level/endless sessions, linked PVE pairs and PVP pairs.
//   - Cancel matchmaking and tear sessions down on quit.
//   - Hand out per-session random sources derived from one seeded generator.
//
// Notes:
//   - mu guards only the map and the waiting slot; game logic runs under the session's own lock.
//   - Opponent links are ids, never pointers. A missing opponent is an ordinary state.

package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
	"github.com/robalobadob/gemclash/apps/go-server/internal/config"
)

// botName is the display name of every AI opponent.
const botName = "Bot"

// versusLevel is the level every pvp/pve board is generated from.
const versusLevel = 1

// Options tune a Service for tests. Zero values mean wall clock and a time-based seed.
type Options struct {
	Now  func() time.Time
	Seed int64
}

// Service is the authoritative game engine.
type Service struct {
	cfg config.Config
	gw  Progression
	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	mu       sync.Mutex
	sessions map[string]*Session
	waiting  string
}

// NewService wires a Service to its tuning and player store.
func NewService(cfg config.Config, gw Progression, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		cfg:      cfg,
		gw:       gw,
		now:      now,
		rng:      rand.New(rand.NewSource(seed)),
		sessions: make(map[string]*Session),
	}
}

func (s *Service) newSource() board.Source {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

// newSession builds a session with a generated board. It is not registered.
func (s *Service) newSession(playerID int64, nickname string, mode Mode, levelID int) *Session {
	lvl := s.cfg.Level(levelID, mode == ModeLevel)
	sess := &Session{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Nickname: nickname,
		Mode:     mode,
		LevelID:  levelID,
		Level:    lvl,
		rng:      s.newSource(),
	}
	sess.board = board.Generate(sess.rng, lvl.Specials())
	sess.movesLeft = lvl.MaxMoves
	return sess
}

func (s *Service) lookup(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// CreateSession starts a solo session and returns its opening snapshot.
func (s *Service) CreateSession(ctx context.Context, playerID int64, mode Mode, levelID int) (Snapshot, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return Snapshot{}, err
	}
	// Versus sessions only come in linked pairs from StartPVE or JoinPVP.
	if mode == ModePVE || mode == ModePVP {
		return Snapshot{}, ErrBadMode
	}
	name := s.gw.DisplayName(ctx, playerID)
	sess := s.newSession(playerID, name, mode, levelID)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Info().Str("session", sess.ID).Int64("player", playerID).Str("mode", string(mode)).Int("level", levelID).Msg("session created")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// Snapshot returns the current opening-style view of a session.
func (s *Service) Snapshot(id string) (Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// StartPVE creates a player session and a bot session linked to each other.
func (s *Service) StartPVE(ctx context.Context, playerID int64, diff Difficulty) (PVEStart, error) {
	if !diff.Valid() {
		return PVEStart{}, ErrBadDifficulty
	}
	name := s.gw.DisplayName(ctx, playerID)
	ps := s.newSession(playerID, name, ModePVE, versusLevel)
	ai := s.newSession(0, botName, ModePVE, versusLevel)
	ai.IsAI = true
	ai.Difficulty = diff

	t := s.now()
	ps.link(ai.ID, botName, t)
	ai.link(ps.ID, name, t)
	ai.lastAIMove = t

	s.mu.Lock()
	s.sessions[ps.ID] = ps
	s.sessions[ai.ID] = ai
	s.mu.Unlock()

	log.Info().Str("session", ps.ID).Str("bot", ai.ID).Int("difficulty", int(diff)).Msg("pve started")
	return PVEStart{GameUUID: ps.ID, AIUUID: ai.ID, Difficulty: diff}, nil
}

// JoinPVP puts the caller in the waiting slot or pairs them with the waiter.
// A waiter whose session has gone away is replaced.
func (s *Service) JoinPVP(ctx context.Context, playerID int64) (MatchResult, error) {
	s.mu.Lock()
	if w, ok := s.sessions[s.waiting]; ok && w.PlayerID == playerID {
		id := w.ID
		s.mu.Unlock()
		return MatchResult{Status: MatchWaiting, GameUUID: id}, nil
	}
	s.mu.Unlock()

	name := s.gw.DisplayName(ctx, playerID)
	me := s.newSession(playerID, name, ModePVP, versusLevel)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The slot may have changed while the board was generated.
	w, ok := s.sessions[s.waiting]
	if ok && w.PlayerID == playerID {
		return MatchResult{Status: MatchWaiting, GameUUID: w.ID}, nil
	}
	s.sessions[me.ID] = me
	if !ok {
		s.waiting = me.ID
		log.Info().Str("session", me.ID).Int64("player", playerID).Msg("pvp waiting")
		return MatchResult{Status: MatchWaiting, GameUUID: me.ID}, nil
	}

	t := s.now()
	me.link(w.ID, w.Nickname, t)
	w.link(me.ID, name, t)
	s.waiting = ""

	log.Info().Str("session", me.ID).Str("opponent", w.ID).Msg("pvp matched")
	return MatchResult{
		Status:       MatchMatched,
		GameUUID:     me.ID,
		OpponentUID:  w.PlayerID,
		OpponentNick: w.Nickname,
	}, nil
}

// CancelMatch removes the caller's waiting session.
func (s *Service) CancelMatch(playerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.sessions[s.waiting]
	if !ok || w.PlayerID != playerID {
		return ErrNotQueued
	}
	delete(s.sessions, w.ID)
	s.waiting = ""
	log.Info().Str("session", w.ID).Msg("pvp cancelled")
	return nil
}

// QuitGame removes a session and tells its opponent, if any, on their next poll.
// A bot opponent is removed with it.
func (s *Service) QuitGame(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	if s.waiting == id {
		s.waiting = ""
	}
	if sess.versus() {
		if opp, ok := s.sessions[sess.peer().opponentID]; ok {
			opp.markOpponentQuit()
			if opp.IsAI {
				delete(s.sessions, opp.ID)
			}
		}
	}
	delete(s.sessions, id)
	log.Info().Str("session", id).Msg("session quit")
}

// Leaderboard returns the top players by max score.
func (s *Service) Leaderboard(ctx context.Context) ([]LeaderRow, error) {
	return s.gw.Leaderboard(ctx)
}

// Assets returns a player's wallet and progress.
func (s *Service) Assets(ctx context.Context, playerID int64) (PlayerAssets, error) {
	p, ok := s.gw.(Profiles)
	if !ok {
		return PlayerAssets{}, ErrNotFound
	}
	return p.Assets(ctx, playerID)
}

// Active reports how many sessions are registered.
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
