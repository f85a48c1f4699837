package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
	"github.com/robalobadob/gemclash/apps/go-server/internal/config"
)

// cycle draws 0, 1, 2, ... modulo n and never shuffles.
type cycle struct{ n int }

func (c *cycle) Intn(n int) int {
	v := c.n % n
	c.n++
	return v
}

func (c *cycle) Shuffle(int, func(i, j int)) {}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakePlayer struct {
	name     string
	assets   map[Asset]int
	maxScore int
	maxLevel int
}

// fakeGateway is an in-memory Progression with failure injection.
type fakeGateway struct {
	mu        sync.Mutex
	players   map[int64]*fakePlayer
	records   []MatchRecord
	failAsset Asset
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{players: map[int64]*fakePlayer{}}
}

func (g *fakeGateway) add(id int64, name string, coins int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.players[id] = &fakePlayer{name: name, assets: map[Asset]int{AssetCoins: coins}, maxLevel: 1}
}

func (g *fakeGateway) asset(id int64, a Asset) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players[id].assets[a]
}

func (g *fakeGateway) DisplayName(_ context.Context, id int64) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		return p.name
	}
	return "Guest"
}

func (g *fakeGateway) AdjustAsset(_ context.Context, id int64, a Asset, delta int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a == g.failAsset {
		return false, nil
	}
	p, ok := g.players[id]
	if !ok || p.assets[a]+delta < 0 {
		return false, nil
	}
	p.assets[a] += delta
	return true, nil
}

func (g *fakeGateway) RaiseMaxScore(_ context.Context, id int64, score int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok || score <= p.maxScore {
		return false, nil
	}
	p.maxScore = score
	return true, nil
}

func (g *fakeGateway) UnlockNextLevel(_ context.Context, id int64, cleared int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok || cleared != p.maxLevel {
		return false, nil
	}
	p.maxLevel++
	p.assets[AssetCoins] += 100
	return true, nil
}

func (g *fakeGateway) Leaderboard(context.Context) ([]LeaderRow, error) { return nil, nil }

func (g *fakeGateway) RecordMatch(_ context.Context, m MatchRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, m)
	return nil
}

type harness struct {
	svc   *Service
	gw    *fakeGateway
	clock *clock
	ctx   context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	gw := newFakeGateway()
	gw.add(1, "alice", 500)
	gw.add(2, "bob", 500)
	gw.add(3, "carol", 500)
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return &harness{
		svc:   NewService(cfg, gw, Options{Now: clk.Now, Seed: 7}),
		gw:    gw,
		clock: clk,
		ctx:   context.Background(),
	}
}

// quietGrid has no runs: horizontal neighbours differ by one colour step,
// vertical neighbours by two.
func quietGrid() board.Grid {
	var g board.Grid
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			g[r][c] = (c+2*r)%board.Colors + 1
		}
	}
	return g
}

// oneMoveGrid is quiet except that swapping (1,2) UP lines up colour 1 on
// (0,0) (0,1) (0,2). With a cycle source the refill restores the quiet top
// row, so the move scores exactly 30 with no cascade.
func oneMoveGrid() board.Grid {
	g := quietGrid()
	g[0][1] = 1
	g[1][2] = 1
	return g
}

// rig replaces a session's board and random source.
func (h *harness) rig(t *testing.T, id string, g board.Grid) *Session {
	t.Helper()
	sess, err := h.svc.lookup(id)
	if err != nil {
		t.Fatalf("lookup %s: %v", id, err)
	}
	sess.mu.Lock()
	sess.board = board.State{Grid: g, Bombs: board.Bombs{}}
	sess.rng = &cycle{}
	sess.mu.Unlock()
	return sess
}

func (h *harness) session(t *testing.T, id string) *Session {
	t.Helper()
	sess, err := h.svc.lookup(id)
	if err != nil {
		t.Fatalf("lookup %s: %v", id, err)
	}
	return sess
}

func (h *harness) pvpPair(t *testing.T) (a, b string) {
	t.Helper()
	first, err := h.svc.JoinPVP(h.ctx, 1)
	if err != nil || first.Status != MatchWaiting {
		t.Fatalf("first join = %+v, %v", first, err)
	}
	second, err := h.svc.JoinPVP(h.ctx, 2)
	if err != nil || second.Status != MatchMatched {
		t.Fatalf("second join = %+v, %v", second, err)
	}
	return first.GameUUID, second.GameUUID
}
