package game

import (
	"testing"
	"time"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
)

func TestAllMoves(t *testing.T) {
	st := board.State{Grid: oneMoveGrid(), Bombs: board.Bombs{}}
	want := Move{R: 0, C: 2, Dir: board.Down, Score: 3}

	found := false
	for _, m := range AllMoves(&st) {
		if m.Dir != board.Right && m.Dir != board.Down {
			t.Fatalf("unexpected direction %s", m.Dir)
		}
		if m == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("%+v missing from AllMoves", want)
	}

	st.Ice[0][2] = true
	for _, m := range AllMoves(&st) {
		if m.R == 0 && m.C == 2 {
			t.Fatalf("move from an ice-locked cell listed: %+v", m)
		}
	}
}

func TestChoose(t *testing.T) {
	h := newHarness(t)
	moves := func() []Move {
		return []Move{{R: 0, Score: 3}, {R: 1, Score: 5}, {R: 2, Score: 4}}
	}
	tests := []struct {
		name string
		d    Difficulty
		rng  *cycle
		want int
	}{
		{"easy takes the draw", Easy, &cycle{n: 2}, 2},
		{"normal slips on a low roll", Normal, &cycle{n: 0}, 2},
		{"normal takes the best on a high roll", Normal, &cycle{n: 99}, 1},
		{"hard takes the best", Hard, &cycle{}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.svc.choose(moves(), tc.d, tc.rng); got.R != tc.want {
				t.Fatalf("chose row %d, want %d", got.R, tc.want)
			}
		})
	}
}

func TestBotMovesWhenPolled(t *testing.T) {
	h := newHarness(t)
	pve, err := h.svc.StartPVE(h.ctx, 1, Hard)
	if err != nil {
		t.Fatal(err)
	}
	h.rig(t, pve.AIUUID, oneMoveGrid())

	st, _ := h.svc.PollDualState(h.ctx, pve.GameUUID)
	if st.Status != PollPlaying || st.OppScore != 0 || st.OppNickname != "Bot" {
		t.Fatalf("poll during think delay = %+v", st)
	}

	h.clock.Advance(3 * time.Second)
	st, _ = h.svc.PollDualState(h.ctx, pve.GameUUID)
	if st.OppScore < 30 || len(st.OppEvents) == 0 || st.OppEvents[0].Type != EventSwap {
		t.Fatalf("bot did not move: score %d, events %d", st.OppScore, len(st.OppEvents))
	}

	score := st.OppScore
	st, _ = h.svc.PollDualState(h.ctx, pve.GameUUID)
	if st.OppScore != score || len(st.OppEvents) != 0 {
		t.Fatal("bot moved again inside its cooldown")
	}
}

func TestEasyBotWaitsFullCooldownBeforeFirstMove(t *testing.T) {
	h := newHarness(t)
	pve, _ := h.svc.StartPVE(h.ctx, 1, Easy)
	h.rig(t, pve.AIUUID, oneMoveGrid())

	h.clock.Advance(3 * time.Second)
	st, _ := h.svc.PollDualState(h.ctx, pve.GameUUID)
	if st.OppScore != 0 || len(st.OppEvents) != 0 {
		t.Fatalf("easy bot moved at 3s: score %d", st.OppScore)
	}

	h.clock.Advance(2 * time.Second)
	st, _ = h.svc.PollDualState(h.ctx, pve.GameUUID)
	if st.OppScore == 0 || len(st.OppEvents) == 0 {
		t.Fatal("easy bot still idle at 5s")
	}
}

func TestFrozenBotWaits(t *testing.T) {
	h := newHarness(t)
	h.gw.players[1].assets[AssetFreeze] = 1
	pve, _ := h.svc.StartPVE(h.ctx, 1, Hard)
	h.rig(t, pve.AIUUID, oneMoveGrid())
	h.clock.Advance(3 * time.Second)

	if _, err := h.svc.UseItem(h.ctx, pve.GameUUID, "freeze", 0, 0); err != nil {
		t.Fatal(err)
	}
	st, _ := h.svc.PollDualState(h.ctx, pve.GameUUID)
	if !st.OppIsFrozen || st.OppScore != 0 {
		t.Fatalf("frozen bot = frozen %v, score %d", st.OppIsFrozen, st.OppScore)
	}

	h.clock.Advance(3 * time.Second)
	st, _ = h.svc.PollDualState(h.ctx, pve.GameUUID)
	if st.OppIsFrozen || st.OppScore == 0 {
		t.Fatalf("thawed bot = frozen %v, score %d", st.OppIsFrozen, st.OppScore)
	}
}

func TestBotRegeneratesDeadBoard(t *testing.T) {
	h := newHarness(t)
	pve, _ := h.svc.StartPVE(h.ctx, 1, Easy)
	var dead board.Grid
	for r := range dead {
		for c := range dead[r] {
			dead[r][c] = board.Virus
		}
	}
	bot := h.rig(t, pve.AIUUID, dead)
	h.clock.Advance(5 * time.Second)

	st, _ := h.svc.PollDualState(h.ctx, pve.GameUUID)
	if st.OppScore != 0 {
		t.Fatalf("bot scored %d on a dead board", st.OppScore)
	}
	if n := board.CountViruses(&bot.board); n != 0 {
		t.Fatalf("board not regenerated: %d viruses left", n)
	}
	if m := board.FindMatches(bot.board.Grid); len(m) != 0 {
		t.Fatal("regenerated board has runs")
	}
}
