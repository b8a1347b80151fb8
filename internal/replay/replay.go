// Package replay turns the board engine's determinism contract into an
// artifact: a playthrough can be recorded once and re-verified later,
// step by step, on any host.
package replay

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MJE43/replay2048-go/internal/board"
	"github.com/MJE43/replay2048-go/internal/version"
)

// Step is one move of a transcript.
type Step struct {
	Move       string             `json:"move"`
	Moved      bool               `json:"moved"`
	ScoreDelta int                `json:"score_delta"`
	Spawned    *board.SpawnedTile `json:"spawned,omitempty"`
}

// Transcript is the full trace of a deterministic playthrough.
type Transcript struct {
	Seed        uint32     `json:"seed"`
	Moves       string     `json:"moves"`
	SpawnOnMove bool       `json:"spawn_on_move"`
	Steps       []Step     `json:"steps"`
	FinalGrid   board.Grid `json:"final_grid"`
	FinalScore  int        `json:"final_score"`
	MaxTile     int        `json:"max_tile"`
	GameOver    bool       `json:"game_over"`
	RNGDraws    uint64     `json:"rng_draws"`
}

// Recording is the persisted form of a playthrough: enough to re-derive
// the full transcript and check it against what was observed.
type Recording struct {
	ID            string     `json:"id"`
	Seed          uint32     `json:"seed"`
	Moves         string     `json:"moves"`
	SpawnOnMove   bool       `json:"spawn_on_move"`
	MovedFlags    []bool     `json:"moved_flags"`
	FinalScore    int        `json:"final_score"`
	FinalGrid     board.Grid `json:"final_grid"`
	EngineVersion string     `json:"engine_version"`
	CreatedAt     time.Time  `json:"created_at"`
}

// VerifyResult reports whether a recording replays to the same outcome.
// FirstMismatchStep is -1 when the recording verifies, the 0-based step
// index for per-move mismatches, and len(steps) for final-state
// mismatches.
type VerifyResult struct {
	OK                bool        `json:"ok"`
	FirstMismatchStep int         `json:"first_mismatch_step"`
	Field             string      `json:"field,omitempty"`
	Expected          string      `json:"expected,omitempty"`
	Actual            string      `json:"actual,omitempty"`
	Transcript        *Transcript `json:"transcript"`
}

// Play runs a fresh game through the given moves and records every step.
func Play(seed uint32, moves []board.Direction, spawn bool) *Transcript {
	g := board.New(seed)

	steps := make([]Step, 0, len(moves))
	for _, dir := range moves {
		res := g.Move(dir, spawn)
		steps = append(steps, Step{
			Move:       string(dir.Letter()),
			Moved:      res.Moved,
			ScoreDelta: res.ScoreDelta,
			Spawned:    res.Spawned,
		})
	}

	return &Transcript{
		Seed:        seed,
		Moves:       board.FormatMoves(moves),
		SpawnOnMove: spawn,
		Steps:       steps,
		FinalGrid:   g.Grid(),
		FinalScore:  g.Score(),
		MaxTile:     g.MaxTile(),
		GameOver:    g.IsGameOver(),
		RNGDraws:    g.Draws(),
	}
}

// Record plays the moves and packages the outcome as a Recording with a
// fresh UUID.
func Record(seed uint32, moves []board.Direction, spawn bool) Recording {
	tr := Play(seed, moves, spawn)

	flags := make([]bool, len(tr.Steps))
	for i, step := range tr.Steps {
		flags[i] = step.Moved
	}

	return Recording{
		ID:            uuid.New().String(),
		Seed:          seed,
		Moves:         tr.Moves,
		SpawnOnMove:   spawn,
		MovedFlags:    flags,
		FinalScore:    tr.FinalScore,
		FinalGrid:     tr.FinalGrid,
		EngineVersion: version.Engine,
		CreatedAt:     time.Now().UTC(),
	}
}

// Verify replays a recording and compares it step by step. The first
// divergence wins; the fresh transcript is attached either way.
func Verify(rec Recording) (*VerifyResult, error) {
	moves, err := board.ParseMoves(rec.Moves)
	if err != nil {
		return nil, fmt.Errorf("recording %s: %w", rec.ID, err)
	}
	if len(rec.MovedFlags) != len(moves) {
		return nil, fmt.Errorf("recording %s: %d moves but %d moved flags", rec.ID, len(moves), len(rec.MovedFlags))
	}

	tr := Play(rec.Seed, moves, rec.SpawnOnMove)

	for i, step := range tr.Steps {
		if step.Moved != rec.MovedFlags[i] {
			return &VerifyResult{
				FirstMismatchStep: i,
				Field:             "moved",
				Expected:          fmt.Sprintf("%v", rec.MovedFlags[i]),
				Actual:            fmt.Sprintf("%v", step.Moved),
				Transcript:        tr,
			}, nil
		}
	}

	if tr.FinalScore != rec.FinalScore {
		return &VerifyResult{
			FirstMismatchStep: len(tr.Steps),
			Field:             "final_score",
			Expected:          fmt.Sprintf("%d", rec.FinalScore),
			Actual:            fmt.Sprintf("%d", tr.FinalScore),
			Transcript:        tr,
		}, nil
	}

	if tr.FinalGrid != rec.FinalGrid {
		return &VerifyResult{
			FirstMismatchStep: len(tr.Steps),
			Field:             "final_grid",
			Expected:          fmt.Sprintf("%v", rec.FinalGrid),
			Actual:            fmt.Sprintf("%v", tr.FinalGrid),
			Transcript:        tr,
		}, nil
	}

	return &VerifyResult{OK: true, FirstMismatchStep: -1, Transcript: tr}, nil
}
