// apps/go-server/internal/game/engine.go
//
// Move processing for a single session.
// Responsibilities:
//   - Validate and apply swaps (bounds, ice/virus blocking, no-match revert).
//   - Resolve cascades with the combo multiplier and record animation events.
//   - Apply the post-move rules: attack freeze, move limit, bomb fuses, virus spread/floor.
//   - Settle level wins (coins + unlock) and versus/endless high scores.
//   - Forward every event to the opponent's queue.
//
// Notes:
//   - Callers hold sess.mu. Nothing here locks another session's mu.
//   - When several terminal conditions hit in one move, the first one recorded is kept:
//     out of moves, then bomb, then (later, on poll) time up.

package game

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
)

// pointsPerTile is the base score of one eliminated cell.
const pointsPerTile = 10

// initDirection asks for the current state without moving.
const initDirection = "INIT"

// ProcessMove swaps (row, col) with its neighbour in direction and resolves the result.
// Rejected moves return a populated MoveResult with Valid=false alongside the error,
// except for ErrNotFound.
func (s *Service) ProcessMove(ctx context.Context, id string, row, col int, direction string) (MoveResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return MoveResult{Msg: "Game Over", Events: []Event{}}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.move(ctx, sess, s.now(), row, col, direction)
}

func (s *Service) move(ctx context.Context, sess *Session, now time.Time, row, col int, direction string) (MoveResult, error) {
	s.expire(sess, now)
	if sess.over {
		return sess.moveResult(false, "Game Over"), ErrGameOver
	}
	pv := sess.peer()
	if sess.versus() && now.Before(pv.frozenUntil) {
		return sess.moveResult(false, "FROZEN"), ErrFrozen
	}
	if strings.EqualFold(strings.TrimSpace(direction), initDirection) {
		return sess.moveResult(true, "Init"), nil
	}

	dir, ok := board.ParseDirection(direction)
	if !ok {
		return sess.moveResult(false, "Bad direction"), ErrBadDirection
	}
	from := board.Pos{R: row, C: col}
	to := dir.Step(from)
	if !from.In() || !to.In() {
		return sess.moveResult(false, "Out"), ErrOutOfBounds
	}
	st := &sess.board
	if board.Blocked(st, from) || board.Blocked(st, to) {
		return sess.moveResult(false, "Blocked"), ErrBlocked
	}

	board.Swap(st, from, to)
	if len(board.FindMatches(st.Grid)) == 0 {
		board.Swap(st, from, to)
		return sess.moveResult(false, "No match"), ErrNoMatch
	}

	f, t := from.Pair(), to.Pair()
	events := []Event{{Type: EventSwap, From: &f, To: &t}}
	gained := s.cascade(sess, &events, true)

	attack := sess.versus() && gained > s.cfg.PVP.AttackThreshold
	if attack {
		s.attack(pv.opponentID, now)
	}

	s.afterMove(sess, &events)
	coins, unlocked, won := s.settleMove(ctx, sess)
	s.deliver(pv.opponentID, events)

	res := sess.moveResult(true, "")
	res.TotalScoreGained = gained
	res.AttackTriggered = attack
	res.Events = events
	if won {
		res.CoinsEarned = &coins
		res.NewLevelUnlocked = &unlocked
	}
	return res, nil
}

// cascade runs match -> special eliminations -> compaction until the board is
// stable and returns the points scored. With combo set, pass n scores n times.
func (s *Service) cascade(sess *Session, events *[]Event, combo bool) int {
	st := &sess.board
	quota := sess.Level.Quota()
	total := 0
	for pass := 1; ; pass++ {
		m := board.FindMatches(st.Grid)
		if len(m) == 0 {
			return total
		}
		board.ApplySpecialEliminations(st, m)

		mult := 1
		if combo {
			mult = pass
		}
		pts := len(m) * pointsPerTile * mult
		sess.score += pts
		total += pts

		*events = append(*events, Event{Type: EventEliminate, Coords: pairs(m.Sorted()), Score: pts})
		board.ResolveElimination(st, m, quota, sess.rng)
		*events = append(*events, refillEvent(st))
	}
}

// afterMove applies the per-move rules that follow a resolved swap.
func (s *Service) afterMove(sess *Session, events *[]Event) {
	if sess.movesLeft > 0 {
		sess.movesLeft--
		if sess.movesLeft == 0 && sess.score < sess.Level.TargetScore {
			sess.end(false, ReasonOutOfMoves)
		}
	}

	// Every fuse burns, even after the first explosion.
	st := &sess.board
	exploded := false
	for p, fuse := range st.Bombs {
		fuse--
		st.Bombs[p] = fuse
		if fuse <= 0 {
			exploded = true
		}
	}
	if exploded {
		sess.end(false, ReasonBomb)
	}

	if sess.Level.VirusCount == 0 || sess.over {
		return
	}
	if spread := board.SpreadVirus(st, sess.rng); len(spread) > 0 {
		*events = append(*events, Event{Type: EventVirusSpread, Cells: pairs(spread)})
	}
	if floor := sess.Level.VirusFloor; floor > 0 && board.CountViruses(st) < floor {
		if spawned := board.ForceSpawnViruses(st, floor, sess.rng); len(spawned) > 0 {
			*events = append(*events, Event{Type: EventVirusSpawn, Cells: pairs(spawned)})
		}
	}
}

// settleMove records progress after a move. Level and other solo sessions are
// won on reaching the target; versus and endless sessions push their high score.
func (s *Service) settleMove(ctx context.Context, sess *Session) (coins int, unlocked, won bool) {
	if sess.versus() || sess.Mode == ModeEndless {
		if _, err := s.gw.RaiseMaxScore(ctx, sess.PlayerID, sess.score); err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("raise max score failed")
		}
		return 0, false, false
	}
	if sess.over || sess.score < sess.Level.TargetScore {
		return 0, false, false
	}

	sess.end(true, ReasonTarget)
	pass := s.cfg.Rewards.LevelPass
	if ok, err := s.gw.AdjustAsset(ctx, sess.PlayerID, AssetCoins, pass); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("level reward failed")
	} else if ok {
		coins += pass
	}
	if sess.Mode == ModeLevel {
		ok, err := s.gw.UnlockNextLevel(ctx, sess.PlayerID, sess.LevelID)
		if err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("level unlock failed")
		}
		if ok {
			unlocked = true
			coins += s.cfg.Rewards.UnlockBonus
		}
	}
	log.Info().Str("session", sess.ID).Int64("player", sess.PlayerID).Int("level", sess.LevelID).
		Int("coins", coins).Bool("unlocked", unlocked).Msg("level cleared")
	return coins, unlocked, true
}

// attack freezes the opponent unless they are immune.
func (s *Service) attack(opponentID string, now time.Time) bool {
	if opponentID == "" {
		return false
	}
	opp, err := s.lookup(opponentID)
	if err != nil {
		return false
	}
	return opp.freeze(now, s.cfg.PVP.Freeze(), s.cfg.PVP.Immunity())
}

// deliver queues events for the opponent's next poll.
func (s *Service) deliver(opponentID string, events []Event) {
	if opponentID == "" {
		return
	}
	if opp, err := s.lookup(opponentID); err == nil {
		opp.push(events)
	}
}

// deadline is when a linked versus session runs out of time.
func (s *Service) deadline(sess *Session) (time.Time, bool) {
	started := sess.peer().startedAt
	if !sess.versus() || started.IsZero() {
		return time.Time{}, false
	}
	return started.Add(s.cfg.PVP.MatchDuration()), true
}

// expire ends a versus session whose clock has run out. Outcome and rewards
// are settled by the owner's next poll.
func (s *Service) expire(sess *Session, now time.Time) {
	if d, ok := s.deadline(sess); ok && !now.Before(d) {
		sess.end(false, ReasonTimeUp)
	}
}
