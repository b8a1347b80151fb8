// Package autoplay plays games with fixed-priority direction policies.
// A policy has zero lookahead: each turn it applies the first direction
// in its order that moves. Rejected attempts consume no RNG draws, so a
// run's outcome is a pure function of (seed, policy, maxMoves), which is
// what makes policies usable as seed-scan metrics.
package autoplay

import (
	"errors"
	"fmt"

	"github.com/MJE43/replay2048-go/internal/board"
)

// ErrInvalidPolicy marks a policy string that is not 1-4 distinct
// direction letters.
var ErrInvalidPolicy = errors.New("invalid policy")

// Policy is an ordered direction preference.
type Policy []board.Direction

// DefaultPolicy prefers Up, then Left, Down, Right.
func DefaultPolicy() Policy {
	return Policy{board.DirUp, board.DirLeft, board.DirDown, board.DirRight}
}

// ParsePolicy decodes a policy string such as "ULDR". Letters are case
// insensitive and must be distinct.
func ParsePolicy(s string) (Policy, error) {
	if len(s) == 0 || len(s) > board.Size {
		return nil, fmt.Errorf("%w: %q must be 1-4 letters of ULDR", ErrInvalidPolicy, s)
	}

	moves, err := board.ParseMoves(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	var seen [4]bool
	for _, dir := range moves {
		if seen[dir] {
			return nil, fmt.Errorf("%w: %q repeats a direction", ErrInvalidPolicy, s)
		}
		seen[dir] = true
	}
	return Policy(moves), nil
}

// String returns the policy's letter form.
func (p Policy) String() string {
	return board.FormatMoves([]board.Direction(p))
}

// Result summarizes one autoplay run.
type Result struct {
	Seed     uint32     `json:"seed"`
	Score    int        `json:"score"`
	MaxTile  int        `json:"max_tile"`
	Moves    int        `json:"moves"`
	GameOver bool       `json:"game_over"`
	Grid     board.Grid `json:"grid"`
}

// Run plays a fresh game under the policy until maxMoves moves have been
// applied, the game is over, or no direction in the policy moves.
// maxMoves <= 0 means no move limit (the game always terminates since the
// board's total value is bounded).
func Run(seed uint32, policy Policy, maxMoves int) Result {
	g := board.New(seed)

	applied := 0
	for maxMoves <= 0 || applied < maxMoves {
		if g.IsGameOver() {
			break
		}

		moved := false
		for _, dir := range policy {
			if res := g.Move(dir, true); res.Moved {
				moved = true
				break
			}
		}
		if !moved {
			break
		}
		applied++
	}

	return Result{
		Seed:     seed,
		Score:    g.Score(),
		MaxTile:  g.MaxTile(),
		Moves:    applied,
		GameOver: g.IsGameOver(),
		Grid:     g.Grid(),
	}
}
