// Package board implements the 4x4 sliding-tile puzzle: deterministic
// moves, merge-once scoring, and seeded tile spawning.
package board

import (
	"fmt"
	"strings"
)

// Size is the fixed edge length of the grid.
const Size = 4

// Grid is a row-major 4x4 board. 0 marks an empty cell; every other value
// is a power-of-two tile.
type Grid [Size][Size]int

// MaxTile returns the largest value on the grid.
func (g Grid) MaxTile() int {
	max := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g[r][c] > max {
				max = g[r][c]
			}
		}
	}
	return max
}

// String renders the grid one row per line with dots for empty cells.
func (g Grid) String() string {
	var b strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			if g[r][c] == 0 {
				b.WriteString("    .")
			} else {
				fmt.Fprintf(&b, "%5d", g[r][c])
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Direction identifies a slide direction.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "invalid"
	}
}

// Letter returns the single-letter transcript form of the direction.
func (d Direction) Letter() byte {
	switch d {
	case DirUp:
		return 'U'
	case DirDown:
		return 'D'
	case DirLeft:
		return 'L'
	default:
		return 'R'
	}
}

// ParseMoves decodes a transcript string such as "ULDR" into directions.
// Letters are case insensitive; anything else is an error.
func ParseMoves(s string) ([]Direction, error) {
	moves := make([]Direction, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'U', 'u':
			moves = append(moves, DirUp)
		case 'D', 'd':
			moves = append(moves, DirDown)
		case 'L', 'l':
			moves = append(moves, DirLeft)
		case 'R', 'r':
			moves = append(moves, DirRight)
		default:
			return nil, fmt.Errorf("invalid move %q at position %d", string(s[i]), i)
		}
	}
	return moves, nil
}

// FormatMoves encodes directions back into the transcript form.
func FormatMoves(moves []Direction) string {
	b := make([]byte, len(moves))
	for i, m := range moves {
		b[i] = m.Letter()
	}
	return string(b)
}

// SpawnedTile records the tile added to the board after a successful move.
type SpawnedTile struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// MoveResult reports what a single move did.
type MoveResult struct {
	Moved      bool         `json:"moved"`
	ScoreDelta int          `json:"score_delta"`
	Spawned    *SpawnedTile `json:"spawned,omitempty"`
}
