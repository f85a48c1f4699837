// apps/go-server/internal/game/ai.go
//
// Scripted opponent for PVE.
// Responsibilities:
//   - Enumerate every legal swap on a board and score it by matched cells.
//   - Pick a move per difficulty (easy random, normal sometimes second-best, hard best).
//   - Step the bot when its human opponent polls, honouring think delay, cooldown and freezes.

package game

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
)

// Move is a candidate swap and the number of cells it would match.
type Move struct {
	R     int
	C     int
	Dir   board.Direction
	Score int
}

// AllMoves lists every swap that produces a match. Only RIGHT and DOWN are
// tried so each pair of cells is considered once.
func AllMoves(st *board.State) []Move {
	var moves []Move
	try := func(a board.Pos, dir board.Direction) {
		b := dir.Step(a)
		if !b.In() || board.Blocked(st, a) || board.Blocked(st, b) {
			return
		}
		g := st.Grid
		g[a.R][a.C], g[b.R][b.C] = g[b.R][b.C], g[a.R][a.C]
		if m := board.FindMatches(g); len(m) > 0 {
			moves = append(moves, Move{R: a.R, C: a.C, Dir: dir, Score: len(m)})
		}
	}
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			try(board.Pos{R: r, C: c}, board.Right)
			try(board.Pos{R: r, C: c}, board.Down)
		}
	}
	return moves
}

func (s *Service) choose(moves []Move, d Difficulty, rng board.Source) Move {
	if d == Easy {
		return moves[rng.Intn(len(moves))]
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].Score > moves[j].Score })
	if d == Normal && len(moves) > 1 && rng.Intn(100) < s.cfg.AI.NormalMistakePct {
		return moves[1]
	}
	return moves[0]
}

func (s *Service) cooldown(d Difficulty) time.Duration {
	delays := s.cfg.AI.DelaysMs
	switch d {
	case Hard:
		return time.Duration(delays.Hard) * time.Millisecond
	case Normal:
		return time.Duration(delays.Normal) * time.Millisecond
	default:
		return time.Duration(delays.Easy) * time.Millisecond
	}
}

// stepAI makes at most one bot move. Caller holds ai.mu.
func (s *Service) stepAI(ctx context.Context, ai *Session, now time.Time) {
	s.expire(ai, now)
	if ai.over {
		return
	}
	pv := ai.peer()
	if now.Before(pv.frozenUntil) {
		return
	}
	if now.Sub(pv.startedAt) < s.cfg.AI.ThinkDelay() {
		return
	}
	if now.Sub(ai.lastAIMove) < s.cooldown(ai.Difficulty) {
		return
	}

	moves := AllMoves(&ai.board)
	if len(moves) == 0 {
		ai.board = board.Generate(ai.rng, ai.Level.Specials())
		return
	}
	m := s.choose(moves, ai.Difficulty, ai.rng)
	if _, err := s.move(ctx, ai, now, m.R, m.C, string(m.Dir)); err != nil {
		log.Debug().Err(err).Str("session", ai.ID).Msg("bot move rejected")
	}
	ai.lastAIMove = now
}
