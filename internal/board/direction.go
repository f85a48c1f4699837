// apps/go-server/internal/board/direction.go
//
// Swap directions.
// Responsibilities:
//   - Parse client direction strings case-insensitively.
//   - Step a position one cell in a direction.
//   - Enumerate orthogonal neighbours for virus spread.

package board

import "strings"

// Direction is a swap direction as sent by clients.
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// ParseDirection normalises s; ok is false for anything but the four directions.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right:
		return d, true
	}
	return "", false
}

// Step returns the neighbour of p in direction d. The result may be off-board.
func (d Direction) Step(p Pos) Pos {
	switch d {
	case Up:
		p.R--
	case Down:
		p.R++
	case Left:
		p.C--
	case Right:
		p.C++
	}
	return p
}

var orthogonal = [4]Pos{{R: -1}, {R: 1}, {C: -1}, {C: 1}}

func neighbours(p Pos) []Pos {
	out := make([]Pos, 0, 4)
	for _, d := range orthogonal {
		n := Pos{R: p.R + d.R, C: p.C + d.C}
		if n.In() {
			out = append(out, n)
		}
	}
	return out
}
