// apps/go-server/internal/game/dual.go
//
// Dual-state polling for versus sessions.
// Responsibilities:
//   - Report opponent departure and the waiting state.
//   - Step the bot opponent, then snapshot the opponent's board and score.
//   - Drain the events the opponent produced since the last poll.
//   - Settle a timed-out match once per side: outcome, coin reward, high score, history row.
//
// Notes:
//   - The opponent is locked, snapshotted and released before our own lock is taken.

package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
)

type oppView struct {
	score       int
	grid        board.Grid
	bombs       []BombInfo
	frozenUntil time.Time
}

// PollDualState returns the caller's view of a versus match. Solo sessions
// get their own score and terminal flags only.
func (s *Service) PollDualState(ctx context.Context, id string) (DualState, error) {
	self, err := s.lookup(id)
	if err != nil {
		return DualState{Status: PollError, Msg: "Session lost"}, err
	}
	now := s.now()

	if !self.versus() {
		self.mu.Lock()
		defer self.mu.Unlock()
		return DualState{
			Status:      PollPlaying,
			MyScore:     self.score,
			OppEvents:   []Event{},
			OppBombList: []BombInfo{},
			IsOver:      self.over,
			IsWin:       self.win,
		}, nil
	}

	pv := self.peer()
	if pv.opponentQuit {
		return s.opponentLeft(self), nil
	}
	if pv.opponentID == "" {
		return DualState{Status: PollWaiting, OppEvents: []Event{}, OppBombList: []BombInfo{}}, nil
	}
	opp, err := s.lookup(pv.opponentID)
	if err != nil {
		return s.opponentLeft(self), nil
	}

	opp.mu.Lock()
	if opp.IsAI {
		s.stepAI(ctx, opp, now)
	}
	ov := oppView{
		score:       opp.score,
		grid:        opp.board.Grid,
		bombs:       bombList(opp.board.Bombs),
		frozenUntil: opp.peer().frozenUntil,
	}
	opp.mu.Unlock()

	self.mu.Lock()
	defer self.mu.Unlock()

	// Re-read: the bot may have frozen us.
	pv = self.peer()
	st := DualState{
		Status:      PollPlaying,
		MyScore:     self.score,
		OppNickname: pv.opponentName,
		OppScore:    ov.score,
		OppEvents:   self.drain(),
		OppMap:      &ov.grid,
		OppBombList: ov.bombs,
		OppIsFrozen: now.Before(ov.frozenUntil),
	}
	if now.Before(pv.frozenUntil) {
		st.IsFrozen = true
		st.FreezeTimeMs = pv.frozenUntil.Sub(now).Milliseconds()
	}

	left := pv.startedAt.Add(s.cfg.PVP.MatchDuration()).Sub(now)
	if left <= 0 {
		s.settle(ctx, self, ov.score, pv.opponentName, &st)
		left = 0
	}
	st.TimeLeftSec = int64(left / time.Second)
	st.IsOver, st.IsWin = self.over, self.win
	if self.over {
		coins := self.coins
		st.CoinsEarned = &coins
	}
	return st, nil
}

func (s *Service) opponentLeft(self *Session) DualState {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.end(false, ReasonOpponentLeft)
	return DualState{Status: PollOpponentLeft, MyScore: self.score, OppEvents: []Event{}, OppBombList: []BombInfo{}, IsOver: true}
}

// settle closes a timed-out match for self. It runs once per session; the
// opponent settles its own side on its own poll.
func (s *Service) settle(ctx context.Context, self *Session, oppScore int, oppName string, st *DualState) {
	if self.settled || (self.over && self.reason != ReasonTimeUp) {
		return
	}
	self.settled = true
	self.end(false, ReasonTimeUp)
	self.win = self.score > oppScore

	outcome := "draw"
	switch {
	case self.score > oppScore:
		outcome = "win"
	case self.score < oppScore:
		outcome = "loss"
	}

	if reward := self.score / s.cfg.Rewards.EndlessDivisor; reward > 0 {
		ok, err := s.gw.AdjustAsset(ctx, self.PlayerID, AssetCoins, reward)
		if err != nil {
			log.Warn().Err(err).Str("session", self.ID).Msg("match reward failed")
		}
		if ok {
			self.coins = reward
		}
	}
	if ok, err := s.gw.RaiseMaxScore(ctx, self.PlayerID, self.score); err != nil {
		log.Warn().Err(err).Str("session", self.ID).Msg("raise max score failed")
	} else if ok {
		st.NewHighScore = true
	}

	if rec, ok := s.gw.(MatchRecorder); ok && self.PlayerID > 0 {
		err := rec.RecordMatch(ctx, MatchRecord{
			SessionID:     self.ID,
			PlayerID:      self.PlayerID,
			Mode:          self.Mode,
			OpponentName:  oppName,
			Score:         self.score,
			OpponentScore: oppScore,
			Outcome:       outcome,
			Coins:         self.coins,
		})
		if err != nil {
			log.Warn().Err(err).Str("session", self.ID).Msg("record match failed")
		}
	}
	log.Info().Str("session", self.ID).Str("outcome", outcome).Int("score", self.score).Int("opp_score", oppScore).Msg("match settled")
}
