package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema and indexes
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			policy TEXT NOT NULL,
			seed_start INTEGER NOT NULL,
			seed_end INTEGER NOT NULL,
			max_moves INTEGER NOT NULL,
			metric TEXT NOT NULL,
			target_op TEXT NOT NULL,
			target_val INTEGER NOT NULL,
			target_val2 INTEGER NOT NULL DEFAULT 0,
			hit_limit INTEGER NOT NULL DEFAULT 0,
			timed_out INTEGER NOT NULL DEFAULT 0,
			hit_count INTEGER NOT NULL DEFAULT 0,
			total_evaluated INTEGER NOT NULL DEFAULT 0,
			summary_min INTEGER,
			summary_max INTEGER,
			summary_mean REAL,
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS hits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			metric INTEGER NOT NULL,
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_run_id ON hits(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_metric ON hits(run_id, metric)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_seed ON hits(run_id, seed)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_policy ON runs(policy)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_policy_created ON runs(policy, created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// SaveRun saves a scan run to the database
func (s *SQLiteDB) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	query := `INSERT INTO runs (
		id, policy, seed_start, seed_end, max_moves, metric,
		target_op, target_val, target_val2, hit_limit, timed_out,
		hit_count, total_evaluated, summary_min, summary_max, summary_mean,
		engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	timedOutInt := 0
	if run.TimedOut {
		timedOutInt = 1
	}

	_, err := s.db.Exec(query,
		run.ID, run.Policy, run.SeedStart, run.SeedEnd, run.MaxMoves, run.Metric,
		run.TargetOp, run.TargetVal, run.TargetVal2, run.HitLimit, timedOutInt,
		run.HitCount, run.TotalEvaluated, run.SummaryMin, run.SummaryMax, run.SummaryMean,
		run.EngineVersion,
	)

	return err
}

// UpdateRun updates an existing run in the database
func (s *SQLiteDB) UpdateRun(run *Run) error {
	query := `UPDATE runs SET
		policy = ?, seed_start = ?, seed_end = ?, max_moves = ?, metric = ?,
		target_op = ?, target_val = ?, target_val2 = ?, hit_limit = ?, timed_out = ?,
		hit_count = ?, total_evaluated = ?, summary_min = ?, summary_max = ?, summary_mean = ?,
		engine_version = ?
		WHERE id = ?`

	timedOutInt := 0
	if run.TimedOut {
		timedOutInt = 1
	}

	_, err := s.db.Exec(query,
		run.Policy, run.SeedStart, run.SeedEnd, run.MaxMoves, run.Metric,
		run.TargetOp, run.TargetVal, run.TargetVal2, run.HitLimit, timedOutInt,
		run.HitCount, run.TotalEvaluated, run.SummaryMin, run.SummaryMax, run.SummaryMean,
		run.EngineVersion, run.ID,
	)

	return err
}

// SaveHits saves multiple hits to the database
func (s *SQLiteDB) SaveHits(runID string, hits []Hit) error {
	if len(hits) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO hits (run_id, seed, metric, score, max_tile, moves) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, hit := range hits {
		if _, err := stmt.Exec(runID, hit.Seed, hit.Metric, hit.Score, hit.MaxTile, hit.Moves); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const runColumns = `id, policy, seed_start, seed_end, max_moves, metric,
	target_op, target_val, target_val2, hit_limit, timed_out,
	hit_count, total_evaluated, summary_min, summary_max, summary_mean,
	engine_version, created_at`

func scanRun(scan func(dest ...any) error) (*Run, error) {
	var run Run
	var timedOutInt int
	var summaryMin, summaryMax sql.NullInt64
	var summaryMean sql.NullFloat64

	err := scan(
		&run.ID, &run.Policy, &run.SeedStart, &run.SeedEnd, &run.MaxMoves, &run.Metric,
		&run.TargetOp, &run.TargetVal, &run.TargetVal2, &run.HitLimit, &timedOutInt,
		&run.HitCount, &run.TotalEvaluated, &summaryMin, &summaryMax, &summaryMean,
		&run.EngineVersion, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.TimedOut = timedOutInt == 1
	if summaryMin.Valid {
		run.SummaryMin = &summaryMin.Int64
	}
	if summaryMax.Valid {
		run.SummaryMax = &summaryMax.Int64
	}
	if summaryMean.Valid {
		run.SummaryMean = &summaryMean.Float64
	}

	return &run, nil
}

// GetRun retrieves a run by ID
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row.Scan)
}

// GetHits retrieves hits for a run with pagination
func (s *SQLiteDB) GetHits(runID string, limit, offset int) ([]Hit, error) {
	query := `SELECT id, run_id, seed, metric, score, max_tile, moves
		FROM hits WHERE run_id = ?
		ORDER BY seed LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, runID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var hit Hit
		if err := rows.Scan(&hit.ID, &hit.RunID, &hit.Seed, &hit.Metric, &hit.Score, &hit.MaxTile, &hit.Moves); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// ListRuns retrieves runs with pagination and filtering
func (s *SQLiteDB) ListRuns(query RunsQuery) (*RunsList, error) {
	whereClause := ""
	args := []interface{}{}

	if query.Policy != "" {
		whereClause = "WHERE policy = ?"
		args = append(args, query.Policy)
	}

	countQuery := "SELECT COUNT(*) FROM runs " + whereClause
	var totalCount int
	if err := s.db.QueryRow(countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50 // Default page size
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT ` + runColumns + ` FROM runs ` + whereClause + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	args = append(args, query.PerPage, offset)

	rows, err := s.db.Query(mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

// GetRunHits retrieves hits for a run with server-side pagination and
// delta seed calculation
func (s *SQLiteDB) GetRunHits(runID string, page, perPage int) (*HitsPage, error) {
	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM hits WHERE run_id = ?", runID).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get hits count: %w", err)
	}

	if perPage <= 0 {
		perPage = 100 // Default page size
	}
	if page <= 0 {
		page = 1
	}

	totalPages := (totalCount + perPage - 1) / perPage
	offset := (page - 1) * perPage

	hits, err := s.GetHits(runID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query hits: %w", err)
	}

	hitsWithDelta := make([]HitWithDelta, len(hits))
	for i, hit := range hits {
		hitsWithDelta[i] = HitWithDelta{Hit: hit}

		if i > 0 {
			delta := hit.Seed - hits[i-1].Seed
			hitsWithDelta[i].DeltaSeed = &delta
		} else if page > 1 {
			// For the first hit on a non-first page, look back to the last
			// hit of the previous page.
			prevQuery := `SELECT seed FROM hits WHERE run_id = ? AND seed < ? ORDER BY seed DESC LIMIT 1`
			var prevSeed uint32
			if err := s.db.QueryRow(prevQuery, runID, hit.Seed).Scan(&prevSeed); err == nil {
				delta := hit.Seed - prevSeed
				hitsWithDelta[i].DeltaSeed = &delta
			}
			// No previous hit leaves the delta nil, which is correct.
		}
		// The very first hit of the run has no delta.
	}

	return &HitsPage{
		Hits:       hitsWithDelta,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}
