// apps/go-server/internal/board/engine.go
//
// Board engine for an 8x8 match-3 grid.
// Responsibilities:
//   - Generate boards with no pre-made runs, then scatter ice, bombs and viruses.
//   - Detect horizontal/vertical runs of three or more ordinary gems.
//   - Apply special side effects of a match (ice breaks, bombs defuse, adjacent viruses die).
//   - Compact columns under gravity and refill from the top.
//   - Spread and force-spawn viruses.
//
// Notes:
//   - Every function is total over a well-formed State; coordinates are validated by callers.
//   - Randomness comes only from the Source argument so boards replay under a fixed seed.

package board

// placementRetries caps the attempts to find a free cell for ice or a bomb.
// After the cap the last draw is used even if it collides.
const placementRetries = 20

// spawnAttempts caps ForceSpawnViruses.
const spawnAttempts = 100

// Generate fills a fresh board. No cell completes a run of three at generation time.
// Viruses overwrite whatever they land on (and any ice/bomb there) but never another
// virus, so sp.Viruses must stay below Size*Size.
func Generate(rng Source, sp Specials) State {
	st := State{Bombs: make(Bombs)}

	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			for {
				gem := RandomGem(rng)
				matchH := c >= 2 && st.Grid[r][c-1] == gem && st.Grid[r][c-2] == gem
				matchV := r >= 2 && st.Grid[r-1][c] == gem && st.Grid[r-2][c] == gem
				if !matchH && !matchV {
					st.Grid[r][c] = gem
					break
				}
			}
		}
	}

	for i := 0; i < sp.Ice; i++ {
		p := randomPos(rng)
		for retry := 1; st.Ice[p.R][p.C] && retry < placementRetries; retry++ {
			p = randomPos(rng)
		}
		st.Ice[p.R][p.C] = true
	}

	for i := 0; i < sp.Bombs; i++ {
		p := randomPos(rng)
		for retry := 1; hasBomb(st.Bombs, p) && retry < placementRetries; retry++ {
			p = randomPos(rng)
		}
		st.Bombs[p] = sp.BombFuse
	}

	for i := 0; i < sp.Viruses; i++ {
		p := randomPos(rng)
		for st.Grid[p.R][p.C] == Virus {
			p = randomPos(rng)
		}
		infect(&st, p)
	}
	return st
}

// FindMatches returns every cell in a horizontal or vertical run of >= 3 equal gems.
// Empty cells and viruses never match.
func FindMatches(g Grid) Set {
	matched := make(Set)

	for r := 0; r < Size; r++ {
		for c := 0; c+2 < Size; c++ {
			k := g[r][c]
			if !isGem(k) {
				continue
			}
			if g[r][c+1] == k && g[r][c+2] == k {
				matched.Add(Pos{r, c})
				matched.Add(Pos{r, c + 1})
				matched.Add(Pos{r, c + 2})
			}
		}
	}

	for c := 0; c < Size; c++ {
		for r := 0; r+2 < Size; r++ {
			k := g[r][c]
			if !isGem(k) {
				continue
			}
			if g[r+1][c] == k && g[r+2][c] == k {
				matched.Add(Pos{r, c})
				matched.Add(Pos{r + 1, c})
				matched.Add(Pos{r + 2, c})
			}
		}
	}
	return matched
}

// ApplySpecialEliminations breaks ice and defuses bombs under every matched cell,
// then adds orthogonally adjacent viruses to m. It must run before ResolveElimination
// so adjacency is judged against the board as it was when the match formed.
func ApplySpecialEliminations(st *State, m Set) {
	extra := make(Set)
	for p := range m {
		st.Ice[p.R][p.C] = false
		delete(st.Bombs, p)
		for _, n := range neighbours(p) {
			if st.Grid[n.R][n.C] == Virus {
				extra.Add(n)
			}
		}
	}
	for p := range extra {
		m.Add(p)
	}
}

type refillItem struct {
	ice  bool
	bomb int // fuse, or -1
}

type cell struct {
	v    int
	bomb int
	ice  bool
}

// ResolveElimination clears m, lets every column fall and refills from the top.
// Surviving tiles keep their ice flag and bomb fuse as they fall. When q asks for it,
// new tiles arrive carrying ice or bombs to top the board back up to the quota.
// Cells that were already Empty before the call are refilled too.
func ResolveElimination(st *State, m Set, q Quota, rng Source) {
	for p := range m {
		st.Grid[p.R][p.C] = Empty
		st.Ice[p.R][p.C] = false
		delete(st.Bombs, p)
	}

	totalEmpty := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if st.Grid[r][c] == Empty {
				totalEmpty++
			}
		}
	}

	var pool []refillItem
	for i := CountIce(st); i < q.Ice; i++ {
		pool = append(pool, refillItem{ice: true, bomb: -1})
	}
	for i := CountBombs(st); i < q.Bombs; i++ {
		pool = append(pool, refillItem{bomb: q.BombFuse})
	}
	for len(pool) < totalEmpty {
		pool = append(pool, refillItem{bomb: -1})
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	next := 0
	for c := 0; c < Size; c++ {
		col := make([]cell, 0, Size)
		for r := 0; r < Size; r++ {
			p := Pos{r, c}
			if st.Grid[r][c] != Empty {
				fuse := -1
				if t, ok := st.Bombs[p]; ok {
					fuse = t
				}
				col = append(col, cell{v: st.Grid[r][c], bomb: fuse, ice: st.Ice[r][c]})
			}
			delete(st.Bombs, p)
		}

		missing := Size - len(col)
		fresh := make([]cell, 0, missing)
		for k := 0; k < missing; k++ {
			item := refillItem{bomb: -1}
			if next < len(pool) {
				item = pool[next]
				next++
			}
			fresh = append(fresh, cell{v: RandomGem(rng), bomb: item.bomb, ice: item.ice})
		}
		col = append(fresh, col...)

		for r := 0; r < Size; r++ {
			st.Grid[r][c] = col[r].v
			st.Ice[r][c] = col[r].ice
			if col[r].bomb != -1 {
				st.Bombs[Pos{r, c}] = col[r].bomb
			}
		}
	}
}

// SpreadVirus gives every existing virus a 50% chance to infect one random
// orthogonal neighbour. Cells infected this call do not spread until the next call.
func SpreadVirus(st *State, rng Source) []Pos {
	var sources []Pos
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if st.Grid[r][c] == Virus {
				sources = append(sources, Pos{r, c})
			}
		}
	}

	var infected []Pos
	for _, p := range sources {
		if rng.Intn(100) >= 50 {
			continue
		}
		d := orthogonal[rng.Intn(len(orthogonal))]
		n := Pos{R: p.R + d.R, C: p.C + d.C}
		if n.In() && st.Grid[n.R][n.C] != Virus {
			infect(st, n)
			infected = append(infected, n)
		}
	}
	return infected
}

// ForceSpawnViruses converts up to count clean cells (a gem with no ice and no bomb)
// into viruses, giving up after a fixed number of random probes.
func ForceSpawnViruses(st *State, count int, rng Source) []Pos {
	var spawned []Pos
	for attempts := 0; len(spawned) < count && attempts < spawnAttempts; attempts++ {
		p := randomPos(rng)
		v := st.Grid[p.R][p.C]
		if v == Virus || v == Empty || st.Ice[p.R][p.C] || hasBomb(st.Bombs, p) {
			continue
		}
		infect(st, p)
		spawned = append(spawned, p)
	}
	return spawned
}

// Swap exchanges the tiles at a and b; bombs travel with their tile.
// Swap is its own inverse.
func Swap(st *State, a, b Pos) {
	st.Grid[a.R][a.C], st.Grid[b.R][b.C] = st.Grid[b.R][b.C], st.Grid[a.R][a.C]
	ta, okA := st.Bombs[a]
	tb, okB := st.Bombs[b]
	delete(st.Bombs, a)
	delete(st.Bombs, b)
	if okA {
		st.Bombs[b] = ta
	}
	if okB {
		st.Bombs[a] = tb
	}
}

// Blocked reports whether p cannot take part in a swap (ice-locked or virus).
func Blocked(st *State, p Pos) bool {
	return st.Ice[p.R][p.C] || st.Grid[p.R][p.C] == Virus
}

// ClearArea empties the 3x3 square centred on center, clipped at the edges,
// and returns the cleared cells in row-major order. Columns are not compacted.
func ClearArea(st *State, center Pos) []Pos {
	var cleared []Pos
	for r := center.R - 1; r <= center.R+1; r++ {
		for c := center.C - 1; c <= center.C+1; c++ {
			p := Pos{r, c}
			if !p.In() {
				continue
			}
			st.Grid[r][c] = Empty
			st.Ice[r][c] = false
			delete(st.Bombs, p)
			cleared = append(cleared, p)
		}
	}
	return cleared
}

// CountIce counts ice-locked cells.
func CountIce(st *State) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if st.Ice[r][c] {
				n++
			}
		}
	}
	return n
}

// CountBombs counts live bombs.
func CountBombs(st *State) int { return len(st.Bombs) }

// CountViruses counts virus tiles.
func CountViruses(st *State) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if st.Grid[r][c] == Virus {
				n++
			}
		}
	}
	return n
}

func infect(st *State, p Pos) {
	st.Grid[p.R][p.C] = Virus
	st.Ice[p.R][p.C] = false
	delete(st.Bombs, p)
}

func hasBomb(b Bombs, p Pos) bool {
	_, ok := b[p]
	return ok
}

func isGem(k int) bool { return k > 0 && k <= Colors }
