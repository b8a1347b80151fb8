// Package main is a command-line front-end for the seed scanner: it
// autoplays a range of seeds under a fixed policy and reports the ones
// whose outcome matches a target, optionally archiving the run in SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MJE43/replay2048-go/internal/autoplay"
	"github.com/MJE43/replay2048-go/internal/scan"
	"github.com/MJE43/replay2048-go/internal/store"
)

func main() {
	var (
		seedStart = flag.Uint("start", 0, "first seed of the range (inclusive)")
		seedEnd   = flag.Uint("end", 0, "last seed of the range (inclusive)")
		policy    = flag.String("policy", autoplay.DefaultPolicy().String(), "move priority, e.g. ULDR or LD")
		maxMoves  = flag.Int("max-moves", scan.DefaultMaxMoves, "move budget per seed")
		metric    = flag.String("metric", "score", "metric to compare: score, max_tile, moves")
		op        = flag.String("op", "ge", "target operation: eq, gt, ge, lt, le, between, outside")
		val       = flag.Int64("val", 0, "target value")
		val2      = flag.Int64("val2", 0, "second target value for between/outside")
		limit     = flag.Int("limit", 0, "stop collecting after this many hits (0 = unlimited)")
		timeoutMs = flag.Int("timeout-ms", 0, "abort the scan after this many milliseconds (0 = no timeout)")
		dbPath    = flag.String("db", "", "archive the run in this SQLite database")
		showHits  = flag.Int("show", 20, "number of hits to print")
	)
	flag.Parse()

	log.SetPrefix("[SEEDSCAN] ")
	log.SetFlags(log.LstdFlags)

	req := scan.ScanRequest{
		SeedStart:  uint32(*seedStart),
		SeedEnd:    uint32(*seedEnd),
		Policy:     *policy,
		MaxMoves:   *maxMoves,
		Metric:     scan.Metric(*metric),
		TargetOp:   scan.TargetOp(*op),
		TargetVal:  *val,
		TargetVal2: *val2,
		Limit:      *limit,
		TimeoutMs:  *timeoutMs,
	}

	scanner := scan.NewScanner()
	result, err := scanner.Scan(context.Background(), req)
	if err != nil {
		log.Fatalf("scan_failed err=%v", err)
	}

	summary := result.Summary
	fmt.Printf("scanned %d seeds (%d..%d), policy %s, metric %s %s %d\n",
		summary.TotalEvaluated, req.SeedStart, req.SeedEnd, *policy, *metric, *op, *val)
	fmt.Printf("hits: %d", summary.HitsFound)
	if summary.HitsFound > 0 {
		fmt.Printf("  metric min=%d max=%d mean=%.2f", summary.MinMetric, summary.MaxMetric, summary.MeanMetric)
	}
	if summary.TimedOut {
		fmt.Printf("  (timed out)")
	}
	fmt.Println()

	for i, hit := range result.Hits {
		if i >= *showHits {
			fmt.Printf("... and %d more\n", len(result.Hits)-*showHits)
			break
		}
		fmt.Printf("  seed=%-10d metric=%-8d score=%-6d max_tile=%-5d moves=%d\n",
			hit.Seed, hit.Metric, hit.Score, hit.MaxTile, hit.Moves)
	}

	if *dbPath != "" {
		if err := archiveRun(*dbPath, req, result); err != nil {
			log.Fatalf("archive_failed db=%s err=%v", *dbPath, err)
		}
	}
}

func archiveRun(path string, req scan.ScanRequest, result *scan.ScanResult) error {
	db, err := store.NewSQLiteDB(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	run := &store.Run{
		Policy:         req.Policy,
		SeedStart:      req.SeedStart,
		SeedEnd:        req.SeedEnd,
		MaxMoves:       req.MaxMoves,
		Metric:         string(req.Metric),
		TargetOp:       string(req.TargetOp),
		TargetVal:      req.TargetVal,
		TargetVal2:     req.TargetVal2,
		HitLimit:       req.Limit,
		TimedOut:       result.Summary.TimedOut,
		HitCount:       result.Summary.HitsFound,
		TotalEvaluated: result.Summary.TotalEvaluated,
		EngineVersion:  result.EngineVersion,
	}
	if result.Summary.HitsFound > 0 {
		min := result.Summary.MinMetric
		max := result.Summary.MaxMetric
		mean := result.Summary.MeanMetric
		run.SummaryMin = &min
		run.SummaryMax = &max
		run.SummaryMean = &mean
	}

	if err := db.SaveRun(run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	hits := make([]store.Hit, len(result.Hits))
	for i, hit := range result.Hits {
		hits[i] = store.Hit{
			Seed:    hit.Seed,
			Metric:  hit.Metric,
			Score:   hit.Score,
			MaxTile: hit.MaxTile,
			Moves:   hit.Moves,
		}
	}
	if err := db.SaveHits(run.ID, hits); err != nil {
		return fmt.Errorf("save hits: %w", err)
	}

	fmt.Fprintf(os.Stdout, "archived run %s in %s\n", run.ID, path)
	return nil
}
