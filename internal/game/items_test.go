package game

import (
	"errors"
	"testing"
)

func TestBombItemClearsSquare(t *testing.T) {
	h := newHarness(t)
	h.gw.players[1].assets[AssetBomb] = 1
	pve, _ := h.svc.StartPVE(h.ctx, 1, Easy)
	h.rig(t, pve.GameUUID, quietGrid())

	res, err := h.svc.UseItem(h.ctx, pve.GameUUID, "bomb", 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) < 2 || res.Events[0].Type != EventEliminate || res.Events[1].Type != EventRefill {
		t.Fatalf("events = %+v", res.Events)
	}
	coords := res.Events[0].Coords
	if len(coords) != 9 || coords[0] != [2]int{2, 2} || coords[8] != [2]int{4, 4} {
		t.Fatalf("cleared %v", coords)
	}
	for _, row := range res.NewMap {
		for _, v := range row {
			if v == 0 {
				t.Fatal("empty cell left after the bomb")
			}
		}
	}
	if got := h.gw.asset(1, AssetBomb); got != 0 {
		t.Fatalf("bombs left = %d", got)
	}

	bot := h.session(t, pve.AIUUID)
	if got := len(bot.drain()); got != len(res.Events) {
		t.Fatalf("opponent queued %d events, want %d", got, len(res.Events))
	}

	if _, err := h.svc.UseItem(h.ctx, pve.GameUUID, "bomb", 3, 3); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("second bomb: %v", err)
	}
}

func TestBombItemClipsAtCorner(t *testing.T) {
	h := newHarness(t)
	h.gw.players[1].assets[AssetBomb] = 1
	pve, _ := h.svc.StartPVE(h.ctx, 1, Easy)
	h.rig(t, pve.GameUUID, quietGrid())

	res, err := h.svc.UseItem(h.ctx, pve.GameUUID, "BOMB", 0, 7)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(res.Events[0].Coords); n != 4 {
		t.Fatalf("corner bomb cleared %d cells, want 4", n)
	}
}

func TestUseItemRejections(t *testing.T) {
	h := newHarness(t)
	h.gw.players[1].assets[AssetBomb] = 1
	pve, _ := h.svc.StartPVE(h.ctx, 1, Easy)
	solo, _ := h.svc.CreateSession(h.ctx, 1, ModeLevel, 1)

	tests := []struct {
		name string
		id   string
		item string
		r, c int
		want error
	}{
		{"solo session", solo.GameUUID, "bomb", 3, 3, ErrItemsDisabled},
		{"bot session", pve.AIUUID, "bomb", 3, 3, ErrItemsDisabled},
		{"unknown item", pve.GameUUID, "hammer", 3, 3, ErrUnknownItem},
		{"bomb off board", pve.GameUUID, "bomb", 8, 3, ErrOutOfBounds},
		{"missing session", "nope", "bomb", 3, 3, ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.svc.UseItem(h.ctx, tc.id, tc.item, tc.r, tc.c); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if got := h.gw.asset(1, AssetBomb); got != 1 {
		t.Fatalf("rejected uses spent inventory: %d bombs left", got)
	}
}

func TestResetItem(t *testing.T) {
	h := newHarness(t)
	h.gw.players[1].assets[AssetReset] = 1
	pve, _ := h.svc.StartPVE(h.ctx, 1, Easy)
	sess := h.rig(t, pve.GameUUID, oneMoveGrid())

	res, err := h.svc.UseItem(h.ctx, pve.GameUUID, "reset", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != 0 {
		t.Fatalf("reset emitted %d events", len(res.Events))
	}
	if res.NewMap == oneMoveGrid() || sess.board.Grid != res.NewMap {
		t.Fatal("board not regenerated")
	}
}

func TestBuyItem(t *testing.T) {
	h := newHarness(t)

	if err := h.svc.BuyItem(h.ctx, 1, "bomb"); err != nil {
		t.Fatal(err)
	}
	if c, b := h.gw.asset(1, AssetCoins), h.gw.asset(1, AssetBomb); c != 470 || b != 1 {
		t.Fatalf("after purchase coins %d bombs %d", c, b)
	}

	h.gw.players[2].assets[AssetCoins] = 10
	if err := h.svc.BuyItem(h.ctx, 2, "freeze"); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("poor buyer: %v", err)
	}

	if err := h.svc.BuyItem(h.ctx, 1, "hammer"); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("unknown item: %v", err)
	}

	h.gw.failAsset = AssetReset
	if err := h.svc.BuyItem(h.ctx, 1, "reset"); !errors.Is(err, ErrDelivery) {
		t.Fatalf("failed delivery: %v", err)
	}
	if c := h.gw.asset(1, AssetCoins); c != 470 {
		t.Fatalf("coins after refund = %d, want 470", c)
	}
}
