package board

import (
	"github.com/MJE43/replay2048-go/internal/engine"
)

// Game owns one playthrough: the grid, the running score, and the RNG
// stream that drives tile spawns. It is single-owner mutable state with
// no internal locking; callers needing concurrent access must serialize.
type Game struct {
	grid  Grid
	score int
	rng   *engine.Stream
}

// New creates a game seeded with the given value. The grid starts empty
// and receives exactly two spawned tiles.
func New(seed uint32) *Game {
	g := &Game{rng: engine.NewStream(seed)}
	g.Reset(seed)
	return g
}

// NewFromEntropy creates a game seeded from the operating system's entropy
// source. The run is not reproducible unless the caller records SeedUsed.
func NewFromEntropy() (*Game, error) {
	seed, err := engine.EntropySeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// Reset reseeds the RNG stream, clears the grid and score, and spawns the
// two opening tiles.
func (g *Game) Reset(seed uint32) {
	g.rng.Reseed(seed)
	g.grid = Grid{}
	g.score = 0
	g.spawn()
	g.spawn()
}

// ResetFromEntropy reseeds from the operating system's entropy source.
func (g *Game) ResetFromEntropy() error {
	seed, err := engine.EntropySeed()
	if err != nil {
		return err
	}
	g.Reset(seed)
	return nil
}

// Load installs an external position without touching the RNG stream, so
// spawns after a Load continue the current draw sequence. Callers are
// trusted to supply a structurally valid grid.
func (g *Game) Load(grid Grid, score int) {
	g.grid = grid
	g.score = score
}

// Grid returns a copy of the current grid.
func (g *Game) Grid() Grid {
	return g.grid
}

// Score returns the running score.
func (g *Game) Score() int {
	return g.score
}

// SeedUsed returns the seed the RNG stream was last initialized with.
func (g *Game) SeedUsed() uint32 {
	return g.rng.Seed()
}

// Draws returns the number of raw RNG values consumed since the last
// reset. Identical playthroughs land on identical counts.
func (g *Game) Draws() uint64 {
	return g.rng.Draws()
}

// MaxTile returns the largest tile on the board.
func (g *Game) MaxTile() int {
	return g.grid.MaxTile()
}

// IsGameOver reports whether no legal move remains: every cell occupied
// and no equal orthogonal neighbors. The state is derived on demand,
// never stored.
func (g *Game) IsGameOver() bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g.grid[r][c] == 0 {
				return false
			}
		}
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if c < Size-1 && g.grid[r][c] == g.grid[r][c+1] {
				return false
			}
			if r < Size-1 && g.grid[r][c] == g.grid[r+1][c] {
				return false
			}
		}
	}
	return true
}

// Move slides and merges toward dir, then spawns at most one tile when
// spawn is true. A move that changes nothing returns a zero result and
// leaves the grid, score, and RNG stream untouched.
func (g *Game) Move(dir Direction, spawn bool) MoveResult {
	moved := false
	scoreDelta := 0

	for i := 0; i < Size; i++ {
		line := g.readLine(i, dir)
		out, delta, lineMoved := slideMergeLine(line)
		if lineMoved {
			moved = true
		}
		scoreDelta += delta
		g.writeLine(i, dir, out)
	}

	if !moved {
		return MoveResult{}
	}

	g.score += scoreDelta

	result := MoveResult{Moved: true, ScoreDelta: scoreDelta}
	if spawn {
		result.Spawned = g.spawn()
	}
	return result
}

// readLine extracts line i in the direction's slide order: Left/Up read
// naturally, Right/Down read the same line reversed so one merge pass
// serves all four directions.
func (g *Game) readLine(i int, dir Direction) [Size]int {
	var line [Size]int
	switch dir {
	case DirLeft:
		for c := 0; c < Size; c++ {
			line[c] = g.grid[i][c]
		}
	case DirRight:
		for c := 0; c < Size; c++ {
			line[c] = g.grid[i][Size-1-c]
		}
	case DirUp:
		for r := 0; r < Size; r++ {
			line[r] = g.grid[r][i]
		}
	case DirDown:
		for r := 0; r < Size; r++ {
			line[r] = g.grid[Size-1-r][i]
		}
	}
	return line
}

// writeLine stores a processed line back using the same coordinate
// mapping readLine used.
func (g *Game) writeLine(i int, dir Direction, line [Size]int) {
	switch dir {
	case DirLeft:
		for c := 0; c < Size; c++ {
			g.grid[i][c] = line[c]
		}
	case DirRight:
		for c := 0; c < Size; c++ {
			g.grid[i][Size-1-c] = line[c]
		}
	case DirUp:
		for r := 0; r < Size; r++ {
			g.grid[r][i] = line[r]
		}
	case DirDown:
		for r := 0; r < Size; r++ {
			g.grid[Size-1-r][i] = line[r]
		}
	}
}

// slideMergeLine compacts zeros toward the leading edge, merges equal
// adjacent pairs exactly once each (a tile born from a merge never merges
// again within the same move), and pads with trailing zeros. The line
// "moved" iff the output differs positionally from the input.
func slideMergeLine(line [Size]int) (out [Size]int, scoreDelta int, moved bool) {
	compact := make([]int, 0, Size)
	for _, v := range line {
		if v != 0 {
			compact = append(compact, v)
		}
	}

	w := 0
	for i := 0; i < len(compact); i++ {
		if i+1 < len(compact) && compact[i] == compact[i+1] {
			merged := compact[i] * 2
			out[w] = merged
			scoreDelta += merged
			w++
			i++
			continue
		}
		out[w] = compact[i]
		w++
	}

	return out, scoreDelta, out != line
}

// spawn places a new tile in a uniformly chosen empty cell. Empty cells
// are collected in row-major order; the cell draw happens strictly before
// the value draw, and a 1-in-10 draw yields a 4 instead of a 2. A full
// board produces no spawn and consumes no draws.
func (g *Game) spawn() *SpawnedTile {
	type cell struct{ r, c int }
	empty := make([]cell, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g.grid[r][c] == 0 {
				empty = append(empty, cell{r, c})
			}
		}
	}

	if len(empty) == 0 {
		return nil
	}

	idx := g.rng.Bounded(uint32(len(empty)))
	value := 2
	if g.rng.Bounded(10) == 0 {
		value = 4
	}

	chosen := empty[idx]
	g.grid[chosen.r][chosen.c] = value
	return &SpawnedTile{Row: chosen.r, Col: chosen.c, Value: value}
}
