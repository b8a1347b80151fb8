package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MJE43/replay2048-go/internal/autoplay"
	"github.com/MJE43/replay2048-go/internal/board"
	"github.com/MJE43/replay2048-go/internal/replay"
	"github.com/MJE43/replay2048-go/internal/scan"
	"github.com/MJE43/replay2048-go/internal/store"
	"github.com/MJE43/replay2048-go/internal/version"
)

// handleReplay plays a seed through a move string and returns the full
// transcript.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req ReplayRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := ValidateReplayRequest(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	moves, err := board.ParseMoves(req.Moves)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeInvalidMoves, err.Error(), map[string]interface{}{
			"moves": req.Moves,
		})
		return
	}

	spawn := true
	if req.SpawnOnMove != nil {
		spawn = *req.SpawnOnMove
	}

	s.logger.Printf("replay_request seed=%d moves=%d spawn_on_move=%t", req.Seed, len(moves), spawn)

	tr := replay.Play(req.Seed, moves, spawn)

	s.logger.Printf(
		"replay_completed seed=%d final_score=%d max_tile=%d game_over=%t rng_draws=%d",
		req.Seed, tr.FinalScore, tr.MaxTile, tr.GameOver, tr.RNGDraws,
	)

	s.writeJSON(w, http.StatusOK, ReplayResponse{
		Transcript:    tr,
		EngineVersion: version.Engine,
		Echo:          req,
	})
}

// handleVerify replays a recording and reports the first divergence.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := ValidateVerifyRequest(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	result, err := replay.Verify(req.Recording)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), map[string]interface{}{
			"recording_id": req.Recording.ID,
		})
		return
	}

	s.logger.Printf(
		"verify_completed recording_id=%s seed=%d ok=%t first_mismatch_step=%d",
		req.Recording.ID, req.Recording.Seed, result.OK, result.FirstMismatchStep,
	)

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Result:        result,
		EngineVersion: version.Engine,
	})
}

// handleScan runs a seed scan, archives the run and its hits, and returns
// the results with the archived run ID.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scan.ScanRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := ValidateScanRequest(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	s.logger.Printf(
		"scan_request seed_range=%d-%d policy=%q metric=%s target_op=%s target_val=%d limit=%d timeout_ms=%d",
		req.SeedStart, req.SeedEnd, req.Policy, req.Metric, req.TargetOp, req.TargetVal, req.Limit, req.TimeoutMs,
	)

	result, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		errType := ErrTypeInternal
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, scan.ErrInvalidPolicy):
			errType = ErrTypeInvalidPolicy
			status = http.StatusBadRequest
		case errors.Is(err, scan.ErrInvalidMetric), errors.Is(err, scan.ErrInvalidRange):
			errType = ErrTypeValidation
			status = http.StatusBadRequest
		case errors.Is(err, scan.ErrTimeout):
			errType = ErrTypeTimeout
			status = http.StatusRequestTimeout
		}

		s.writeError(w, status, errType, err.Error(), map[string]interface{}{
			"seed_range": fmt.Sprintf("%d-%d", req.SeedStart, req.SeedEnd),
		})
		return
	}

	run := runFromScan(req, result)
	if err := s.db.SaveRun(run); err != nil {
		s.writeError(w, http.StatusInternalServerError, ErrTypeInternal, "Failed to archive run", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := s.db.SaveHits(run.ID, storeHits(result.Hits)); err != nil {
		s.writeError(w, http.StatusInternalServerError, ErrTypeInternal, "Failed to archive hits", map[string]interface{}{
			"run_id": run.ID,
			"error":  err.Error(),
		})
		return
	}

	s.logger.Printf(
		"scan_completed run_id=%s hits_found=%d total_evaluated=%d timed_out=%t",
		run.ID, result.Summary.HitsFound, result.Summary.TotalEvaluated, result.Summary.TimedOut,
	)

	s.writeJSON(w, http.StatusOK, ScanResponse{
		RunID:         run.ID,
		Hits:          result.Hits,
		Summary:       result.Summary,
		EngineVersion: result.EngineVersion,
		Echo:          result.Echo,
	})
}

// runFromScan builds the archive row for a completed scan. The stored
// policy and move budget are the effective values, not the raw request.
func runFromScan(req scan.ScanRequest, result *scan.ScanResult) *store.Run {
	policy := req.Policy
	if policy == "" {
		policy = autoplay.DefaultPolicy().String()
	}
	maxMoves := req.MaxMoves
	if maxMoves <= 0 {
		maxMoves = scan.DefaultMaxMoves
	}
	metric := req.Metric
	if metric == "" {
		metric = scan.MetricScore
	}

	run := &store.Run{
		Policy:         policy,
		SeedStart:      req.SeedStart,
		SeedEnd:        req.SeedEnd,
		MaxMoves:       maxMoves,
		Metric:         string(metric),
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

	return run
}

func storeHits(hits []scan.Hit) []store.Hit {
	out := make([]store.Hit, len(hits))
	for i, hit := range hits {
		out[i] = store.Hit{
			Seed:    hit.Seed,
			Metric:  hit.Metric,
			Score:   hit.Score,
			MaxTile: hit.MaxTile,
			Moves:   hit.Moves,
		}
	}
	return out
}

// handleListRuns returns the paginated run archive.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	query := store.RunsQuery{
		Policy:  r.URL.Query().Get("policy"),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}

	list, err := s.db.ListRuns(query)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, list)
}

// handleGetRun returns a single archived run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.db.GetRun(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.errorHandler.HandleNotFound(w, r, "run", id)
			return
		}
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, run)
}

// handleGetRunHits returns a run's hits with pagination and seed deltas.
func (s *Server) handleGetRunHits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.db.GetRun(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.errorHandler.HandleNotFound(w, r, "run", id)
			return
		}
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}

	page, err := s.db.GetRunHits(id, queryInt(r, "page"), queryInt(r, "per_page"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

// handleGetLeaderboard returns the current top scores.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.scoresMu.Lock()
	entries := s.scores.Entries()
	best := s.scores.Best()
	s.scoresMu.Unlock()

	s.writeJSON(w, http.StatusOK, LeaderboardResponse{
		Scores:        entries,
		Best:          best,
		EngineVersion: version.Engine,
	})
}

// handleAddScore inserts a score, persists the board, and returns the
// updated leaderboard.
func (s *Server) handleAddScore(w http.ResponseWriter, r *http.Request) {
	var req AddScoreRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := ValidateAddScoreRequest(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	s.scoresMu.Lock()
	entry := s.scores.Add(req.Score, req.PlayerName)
	err := s.scores.Save()
	entries := s.scores.Entries()
	best := s.scores.Best()
	s.scoresMu.Unlock()

	if err != nil {
		s.writeError(w, http.StatusInternalServerError, ErrTypeInternal, "Failed to save leaderboard", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.logger.Printf("score_added score=%d player=%q best=%d", entry.Score, entry.PlayerName, best)

	s.writeJSON(w, http.StatusOK, LeaderboardResponse{
		Scores:        entries,
		Best:          best,
		EngineVersion: version.Engine,
	})
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
