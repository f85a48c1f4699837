package board

import (
	"math/rand"
	"testing"
)

// constSource always draws the same value; Shuffle keeps order.
type constSource struct{ v int }

func (s constSource) Intn(n int) int               { return s.v % n }
func (s constSource) Shuffle(int, func(i, j int)) {}

// quiet returns a grid with no runs anywhere: horizontal neighbours differ by
// one colour step and vertical neighbours by two.
func quiet() Grid {
	var g Grid
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			g[r][c] = (c+2*r)%Colors + 1
		}
	}
	return g
}

func viruses() Grid {
	var g Grid
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			g[r][c] = Virus
		}
	}
	return g
}

func TestGenerateHasNoRuns(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		st := Generate(rand.New(rand.NewSource(seed)), Specials{})
		if m := FindMatches(st.Grid); len(m) != 0 {
			t.Fatalf("seed %d: generated board has %d matched cells", seed, len(m))
		}
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if v := st.Grid[r][c]; v < 1 || v > Colors {
					t.Fatalf("seed %d: cell (%d,%d) = %d, want a gem", seed, r, c, v)
				}
			}
		}
	}
}

func TestGenerateSpecials(t *testing.T) {
	sp := Specials{Ice: 12, Bombs: 5, BombFuse: 15, Viruses: 3}
	for seed := int64(1); seed <= 50; seed++ {
		st := Generate(rand.New(rand.NewSource(seed)), sp)
		if got := CountViruses(&st); got != 3 {
			t.Fatalf("seed %d: viruses = %d, want 3", seed, got)
		}
		if got := CountIce(&st); got > 12 {
			t.Fatalf("seed %d: ice = %d, want <= 12", seed, got)
		}
		if got := CountBombs(&st); got > 5 {
			t.Fatalf("seed %d: bombs = %d, want <= 5", seed, got)
		}
		for p, fuse := range st.Bombs {
			if fuse != 15 {
				t.Errorf("seed %d: bomb %v fuse = %d, want 15", seed, p, fuse)
			}
			if st.Grid[p.R][p.C] == Virus {
				t.Errorf("seed %d: bomb sits on virus at %v", seed, p)
			}
		}
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if st.Grid[r][c] == Virus && st.Ice[r][c] {
					t.Errorf("seed %d: ice on virus at (%d,%d)", seed, r, c)
				}
			}
		}
	}
}

func TestFindMatches(t *testing.T) {
	tests := []struct {
		name  string
		cells []Pos
		color int
		want  int
	}{
		{"horizontal four", []Pos{{4, 1}, {4, 2}, {4, 3}, {4, 4}}, 2, 4},
		{"vertical three", []Pos{{0, 7}, {1, 7}, {2, 7}}, 5, 3},
		{"pair only", []Pos{{3, 3}, {3, 4}}, 1, 0},
		{"L shape", []Pos{{5, 0}, {5, 1}, {5, 2}, {6, 0}, {7, 0}}, 3, 5},
		{"full row", []Pos{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {0, 7}}, 4, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := viruses()
			for _, p := range tc.cells {
				g[p.R][p.C] = tc.color
			}
			m := FindMatches(g)
			if len(m) != tc.want {
				t.Fatalf("matched %d cells, want %d", len(m), tc.want)
			}
			if tc.want > 0 {
				for _, p := range tc.cells {
					if !m.Has(p) {
						t.Errorf("cell %v missing from match", p)
					}
				}
			}
		})
	}
}

func TestFindMatchesIgnoresVirusAndEmpty(t *testing.T) {
	g := quiet()
	g[2][0], g[2][1], g[2][2] = Virus, Virus, Virus
	g[6][5], g[6][6], g[6][7] = Empty, Empty, Empty
	if m := FindMatches(g); len(m) != 0 {
		t.Fatalf("matched %v, want nothing", m.Sorted())
	}
}

func TestApplySpecialEliminations(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	st.Grid[2][3] = Virus
	st.Grid[6][6] = Virus
	st.Ice[2][2] = true
	st.Bombs[Pos{2, 2}] = 4
	st.Bombs[Pos{7, 7}] = 4

	m := Set{}
	m.Add(Pos{2, 2})
	ApplySpecialEliminations(&st, m)

	if st.Ice[2][2] {
		t.Error("ice under matched cell not broken")
	}
	if _, ok := st.Bombs[Pos{2, 2}]; ok {
		t.Error("bomb under matched cell not removed")
	}
	if _, ok := st.Bombs[Pos{7, 7}]; !ok {
		t.Error("unrelated bomb removed")
	}
	if !m.Has(Pos{2, 3}) {
		t.Error("adjacent virus not added to match")
	}
	if m.Has(Pos{6, 6}) {
		t.Error("distant virus added to match")
	}
}

func TestResolveEliminationCarriesSpecials(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	st.Bombs[Pos{0, 0}] = 7
	st.Ice[1][0] = true

	m := Set{}
	m.Add(Pos{2, 0})
	ResolveElimination(&st, m, Quota{}, rand.New(rand.NewSource(3)))

	if fuse, ok := st.Bombs[Pos{1, 0}]; !ok || fuse != 7 {
		t.Fatalf("bomb did not fall to (1,0): %v", st.Bombs)
	}
	if _, ok := st.Bombs[Pos{0, 0}]; ok {
		t.Error("bomb left behind at (0,0)")
	}
	if !st.Ice[2][0] || st.Ice[1][0] {
		t.Error("ice did not fall with its tile")
	}
	for c := 1; c < Size; c++ {
		for r := 0; r < Size; r++ {
			if st.Grid[r][c] != quiet()[r][c] {
				t.Fatalf("untouched column %d changed", c)
			}
		}
	}
	assertFull(t, &st)
}

func TestResolveEliminationRefillsQuota(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	m := Set{}
	m.Add(Pos{0, 1})
	m.Add(Pos{0, 2})
	m.Add(Pos{0, 3})
	ResolveElimination(&st, m, Quota{Ice: 5}, rand.New(rand.NewSource(9)))

	if got := CountIce(&st); got != 3 {
		t.Fatalf("ice = %d, want 3 (every refilled cell)", got)
	}

	st = State{Grid: quiet(), Bombs: Bombs{}}
	m = Set{}
	m.Add(Pos{5, 5})
	ResolveElimination(&st, m, Quota{Bombs: 1, BombFuse: 5}, rand.New(rand.NewSource(9)))
	if fuse, ok := st.Bombs[Pos{0, 5}]; !ok || fuse != 5 {
		t.Fatalf("refilled bomb missing: %v", st.Bombs)
	}
}

func TestCascadeTerminates(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		st := State{Bombs: Bombs{}}
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				st.Grid[r][c] = RandomGem(rng)
			}
		}
		passes := 0
		for {
			m := FindMatches(st.Grid)
			if len(m) == 0 {
				break
			}
			passes++
			if passes > 100 {
				t.Fatalf("seed %d: cascade did not settle", seed)
			}
			ApplySpecialEliminations(&st, m)
			ResolveElimination(&st, m, Quota{}, rng)
		}
		assertFull(t, &st)
	}
}

func TestSpreadVirus(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	st.Grid[3][3] = Virus
	st.Ice[2][3] = true
	st.Bombs[Pos{2, 3}] = 3

	got := SpreadVirus(&st, constSource{0})
	if len(got) != 1 || got[0] != (Pos{2, 3}) {
		t.Fatalf("infected %v, want [(2,3)]", got)
	}
	if st.Grid[2][3] != Virus || st.Ice[2][3] {
		t.Error("infected cell not converted cleanly")
	}
	if _, ok := st.Bombs[Pos{2, 3}]; ok {
		t.Error("bomb survived infection")
	}

	// 99 >= 50: no virus spreads.
	if got := SpreadVirus(&st, constSource{99}); len(got) != 0 {
		t.Fatalf("spread %v with a failing roll", got)
	}
}

func TestSpreadVirusEdge(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	st.Grid[0][0] = Virus
	if got := SpreadVirus(&st, constSource{0}); len(got) != 0 {
		t.Fatalf("spread off the board: %v", got)
	}
}

func TestForceSpawnVirusesOnlyCleanCells(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			st.Ice[r][c] = true
		}
	}
	st.Ice[5][5] = false
	st.Ice[1][1] = false
	st.Bombs[Pos{1, 1}] = 2

	got := ForceSpawnViruses(&st, 2, rand.New(rand.NewSource(11)))
	if len(got) > 1 {
		t.Fatalf("spawned %v, only (5,5) is clean", got)
	}
	if len(got) == 1 && got[0] != (Pos{5, 5}) {
		t.Fatalf("spawned on %v", got[0])
	}
}

func TestSwapCarriesBombs(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	a, b := Pos{4, 4}, Pos{4, 5}
	st.Bombs[a] = 6
	va, vb := st.Grid[4][4], st.Grid[4][5]

	Swap(&st, a, b)
	if st.Grid[4][4] != vb || st.Grid[4][5] != va {
		t.Fatal("tiles not swapped")
	}
	if _, ok := st.Bombs[a]; ok || st.Bombs[b] != 6 {
		t.Fatalf("bomb did not travel: %v", st.Bombs)
	}

	Swap(&st, a, b)
	if st.Grid[4][4] != va || st.Bombs[a] != 6 || len(st.Bombs) != 1 {
		t.Fatal("second swap did not restore the board")
	}
}

func TestClearArea(t *testing.T) {
	st := State{Grid: quiet(), Bombs: Bombs{}}
	got := ClearArea(&st, Pos{3, 3})
	if len(got) != 9 || got[0] != (Pos{2, 2}) || got[8] != (Pos{4, 4}) {
		t.Fatalf("cleared %v", got)
	}
	for _, p := range got {
		if st.Grid[p.R][p.C] != Empty {
			t.Fatalf("%v not cleared", p)
		}
	}

	st = State{Grid: quiet(), Bombs: Bombs{}}
	if got := ClearArea(&st, Pos{0, 0}); len(got) != 4 {
		t.Fatalf("corner clear = %d cells, want 4", len(got))
	}
}

func TestParseDirection(t *testing.T) {
	if d, ok := ParseDirection(" up "); !ok || d != Up {
		t.Fatalf("ParseDirection(up) = %q, %v", d, ok)
	}
	if _, ok := ParseDirection("INIT"); ok {
		t.Fatal("INIT parsed as a direction")
	}
	if p := Right.Step(Pos{2, 7}); p.In() {
		t.Fatalf("step right from the edge stayed on board: %v", p)
	}
}

func assertFull(t *testing.T, st *State) {
	t.Helper()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if st.Grid[r][c] == Empty {
				t.Fatalf("empty cell left at (%d,%d)", r, c)
			}
		}
	}
}
