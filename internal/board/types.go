// apps/go-server/internal/board/types.go
//
// Core type definitions for the match-3 board engine.
// Defines:
//   - Grid/Ice/Bombs: the three layers of an 8x8 board.
//   - Pos/Set: cell coordinates and match sets.
//   - Specials/Quota: how many special tiles to place or keep topped up.
//   - Source: the random source every engine call draws from.

package board

import "sort"

// Size is the board edge length.
const Size = 8

// Tile codes. 1..Colors are ordinary gems.
const (
	Empty  = 0
	Colors = 5
	Virus  = 9
)

// Pos is a cell coordinate.
type Pos struct {
	R int `json:"r"`
	C int `json:"c"`
}

// In reports whether p lies on the board.
func (p Pos) In() bool {
	return p.R >= 0 && p.R < Size && p.C >= 0 && p.C < Size
}

// Pair returns p as a [row, col] pair (the wire form used in events).
func (p Pos) Pair() [2]int { return [2]int{p.R, p.C} }

// Grid holds tile codes.
type Grid [Size][Size]int

// Ice marks ice-locked cells.
type Ice [Size][Size]bool

// Bombs maps a cell to its remaining fuse. Only live bombs are present.
type Bombs map[Pos]int

// State is one player's board: tiles plus the ice and bomb overlays.
type State struct {
	Grid  Grid
	Ice   Ice
	Bombs Bombs
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{Grid: s.Grid, Ice: s.Ice, Bombs: make(Bombs, len(s.Bombs))}
	for p, t := range s.Bombs {
		out.Bombs[p] = t
	}
	return out
}

// Set is a set of cells.
type Set map[Pos]struct{}

// Add inserts p.
func (s Set) Add(p Pos) { s[p] = struct{}{} }

// Has reports membership.
func (s Set) Has(p Pos) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the members in row-major order.
func (s Set) Sorted() []Pos {
	out := make([]Pos, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sortPositions(out)
	return out
}

func sortPositions(ps []Pos) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].R != ps[j].R {
			return ps[i].R < ps[j].R
		}
		return ps[i].C < ps[j].C
	})
}

// Specials says how many special tiles Generate places.
type Specials struct {
	Ice      int
	Bombs    int
	BombFuse int
	Viruses  int
}

// Quota is the number of ice / bomb tiles a refill tops the board back up to.
// Zero disables topping up for that kind.
type Quota struct {
	Ice      int
	Bombs    int
	BombFuse int
}

// Source is the randomness the engine draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// RandomGem draws an ordinary gem colour.
func RandomGem(rng Source) int { return rng.Intn(Colors) + 1 }

func randomPos(rng Source) Pos {
	return Pos{R: rng.Intn(Size), C: rng.Intn(Size)}
}
