// Package store archives seed-scan runs and their hits in SQLite.
package store

import (
	"time"
)

// DB represents the database interface
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *Run) error
	UpdateRun(run *Run) error
	SaveHits(runID string, hits []Hit) error
	GetRun(id string) (*Run, error)
	GetHits(runID string, limit, offset int) ([]Hit, error)
	ListRuns(query RunsQuery) (*RunsList, error)
	GetRunHits(runID string, page, perPage int) (*HitsPage, error)
}

// RunsQuery represents query parameters for listing runs
type RunsQuery struct {
	Policy  string `json:"policy,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// RunsList represents paginated runs response
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// HitsPage represents paginated hits response with delta seed calculation
type HitsPage struct {
	Hits       []HitWithDelta `json:"hits"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PerPage    int            `json:"perPage"`
	TotalPages int            `json:"totalPages"`
}

// Run represents a completed scan run: the request that produced it plus
// its summary.
type Run struct {
	ID             string    `json:"id" db:"id"`
	Policy         string    `json:"policy" db:"policy"`
	SeedStart      uint32    `json:"seed_start" db:"seed_start"`
	SeedEnd        uint32    `json:"seed_end" db:"seed_end"`
	MaxMoves       int       `json:"max_moves" db:"max_moves"`
	Metric         string    `json:"metric" db:"metric"`
	TargetOp       string    `json:"target_op" db:"target_op"`
	TargetVal      int64     `json:"target_val" db:"target_val"`
	TargetVal2     int64     `json:"target_val2" db:"target_val2"`
	HitLimit       int       `json:"hit_limit" db:"hit_limit"`
	TimedOut       bool      `json:"timed_out" db:"timed_out"`
	HitCount       int       `json:"hit_count" db:"hit_count"`
	TotalEvaluated uint64    `json:"total_evaluated" db:"total_evaluated"`
	SummaryMin     *int64    `json:"summary_min" db:"summary_min"`
	SummaryMax     *int64    `json:"summary_max" db:"summary_max"`
	SummaryMean    *float64  `json:"summary_mean" db:"summary_mean"`
	EngineVersion  string    `json:"engine_version" db:"engine_version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Hit represents a single matching seed
type Hit struct {
	ID      int64  `json:"id" db:"id"`
	RunID   string `json:"run_id" db:"run_id"`
	Seed    uint32 `json:"seed" db:"seed"`
	Metric  int64  `json:"metric" db:"metric"`
	Score   int    `json:"score" db:"score"`
	MaxTile int    `json:"max_tile" db:"max_tile"`
	Moves   int    `json:"moves" db:"moves"`
}

// HitWithDelta represents a hit with the seed gap to the previous hit
type HitWithDelta struct {
	Hit
	DeltaSeed *uint32 `json:"delta_seed,omitempty"`
}
