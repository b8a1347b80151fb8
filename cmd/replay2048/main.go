// Package main is the command-line front-end for the deterministic 2048
// engine: play a seed through a move string or an autoplay policy, record
// playthroughs for later verification, and manage the leaderboard file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/MJE43/replay2048-go/internal/autoplay"
	"github.com/MJE43/replay2048-go/internal/board"
	"github.com/MJE43/replay2048-go/internal/config"
	"github.com/MJE43/replay2048-go/internal/engine"
	"github.com/MJE43/replay2048-go/internal/replay"
	"github.com/MJE43/replay2048-go/internal/scores"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "play":
		err = cmdPlay(os.Args[2:])
	case "record":
		err = cmdRecord(os.Args[2:])
	case "verify":
		err = cmdVerify(os.Args[2:])
	case "leaderboard":
		err = cmdLeaderboard(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: replay2048 <command> [flags]

commands:
  play         play a seed through a move string or an autoplay policy
  record       play moves and write a recording JSON for later verification
  verify       re-run a recording JSON and report the first divergence
  leaderboard  show the top scores, or add one

run "replay2048 <command> -h" for the flags of each command.
`)
}

// resolveSeed picks the explicit seed unless a random one was requested.
func resolveSeed(seed uint64, random bool) (uint32, error) {
	if !random {
		return uint32(seed), nil
	}
	s, err := engine.EntropySeed()
	if err != nil {
		return 0, fmt.Errorf("draw random seed: %w", err)
	}
	return s, nil
}

func cmdPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	seed := fs.Uint64("seed", 0, "board seed")
	random := fs.Bool("random", false, "use a random seed instead of -seed")
	moves := fs.String("moves", "", "move string, e.g. ULDRUL")
	policy := fs.String("policy", "", "autoplay policy instead of -moves, e.g. ULDR")
	maxMoves := fs.Int("max-moves", 1000, "autoplay move budget")
	steps := fs.Bool("steps", false, "print every step of the playthrough")
	fs.Parse(args)

	if (*moves == "") == (*policy == "") {
		return fmt.Errorf("exactly one of -moves or -policy is required")
	}

	s, err := resolveSeed(*seed, *random)
	if err != nil {
		return err
	}

	if *policy != "" {
		p, err := autoplay.ParsePolicy(*policy)
		if err != nil {
			return err
		}
		result := autoplay.Run(s, p, *maxMoves)
		fmt.Printf("seed %d, policy %s: score=%d max_tile=%d moves=%d game_over=%t\n",
			result.Seed, p, result.Score, result.MaxTile, result.Moves, result.GameOver)
		fmt.Print(result.Grid)
		return nil
	}

	parsed, err := board.ParseMoves(*moves)
	if err != nil {
		return err
	}

	tr := replay.Play(s, parsed, true)
	if *steps {
		for i, step := range tr.Steps {
			spawned := "-"
			if step.Spawned != nil {
				spawned = fmt.Sprintf("%d@(%d,%d)", step.Spawned.Value, step.Spawned.Row, step.Spawned.Col)
			}
			fmt.Printf("%3d %s moved=%-5t delta=%-5d spawn=%s\n", i, step.Move, step.Moved, step.ScoreDelta, spawned)
		}
	}
	fmt.Printf("seed %d, moves %s: score=%d max_tile=%d game_over=%t rng_draws=%d\n",
		tr.Seed, tr.Moves, tr.FinalScore, tr.MaxTile, tr.GameOver, tr.RNGDraws)
	fmt.Print(tr.FinalGrid)
	return nil
}

func cmdRecord(args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	seed := fs.Uint64("seed", 0, "board seed")
	random := fs.Bool("random", false, "use a random seed instead of -seed")
	moves := fs.String("moves", "", "move string, e.g. ULDRUL")
	out := fs.String("out", "", "output file (default stdout)")
	fs.Parse(args)

	if *moves == "" {
		return fmt.Errorf("-moves is required")
	}

	s, err := resolveSeed(*seed, *random)
	if err != nil {
		return err
	}

	parsed, err := board.ParseMoves(*moves)
	if err != nil {
		return err
	}

	rec := replay.Record(s, parsed, true)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}
	data = append(data, '\n')

	if *out == "" {
		os.Stdout.Write(data)
		return nil
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write recording: %w", err)
	}
	fmt.Printf("recorded %s (seed %d, %d moves, final score %d) to %s\n",
		rec.ID, rec.Seed, len(rec.MovedFlags), rec.FinalScore, *out)
	return nil
}

func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	in := fs.String("in", "", "recording JSON file")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read recording: %w", err)
	}
	var rec replay.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("parse recording: %w", err)
	}

	result, err := replay.Verify(rec)
	if err != nil {
		return err
	}

	if result.OK {
		fmt.Printf("recording %s verifies: seed %d, %d moves, final score %d\n",
			rec.ID, rec.Seed, len(rec.MovedFlags), rec.FinalScore)
		return nil
	}

	fmt.Printf("recording %s DIVERGES at step %d: %s expected %s, got %s\n",
		rec.ID, result.FirstMismatchStep, result.Field, result.Expected, result.Actual)
	os.Exit(1)
	return nil
}

func cmdLeaderboard(args []string) error {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	file := fs.String("file", "", "scores file (default: the daemon's data directory)")
	add := fs.Int("add", -1, "add this score")
	name := fs.String("name", "", "player name for -add")
	fs.Parse(args)

	path := *file
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = cfg.ScoresPath
	}

	store := scores.NewStore(path)
	if err := store.Load(); err != nil {
		return err
	}

	if *add >= 0 {
		entry := store.Add(*add, *name)
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Printf("added %d for %s\n", entry.Score, entry.PlayerName)
	}

	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Printf("no scores yet (%s)\n", path)
		return nil
	}

	fmt.Printf("top %d of %s:\n", len(entries), path)
	for i, entry := range entries {
		fmt.Printf("%2d. %-6d %-20s %s\n", i+1, entry.Score, entry.PlayerName, entry.PlayedAt)
	}
	return nil
}
