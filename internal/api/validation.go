package api

import (
	"fmt"
	"strings"

	"github.com/MJE43/replay2048-go/internal/autoplay"
	"github.com/MJE43/replay2048-go/internal/scan"
)

const (
	maxSeedRange = 10_000_000 // seeds per scan
	maxLimit     = 100_000
	maxTimeoutMs = 300_000 // 5 minutes
	maxMoveCount = 100_000
)

// ValidateReplayRequest validates a replay request
func ValidateReplayRequest(req *ReplayRequest) error {
	if req.Moves == "" {
		return fmt.Errorf("moves is required")
	}
	if len(req.Moves) > maxMoveCount {
		return fmt.Errorf("moves too long (max %d)", maxMoveCount)
	}
	return nil
}

// ValidateVerifyRequest validates a verify request
func ValidateVerifyRequest(req *VerifyRequest) error {
	if req.Recording.Moves == "" {
		return fmt.Errorf("recording.moves is required")
	}
	if len(req.Recording.Moves) > maxMoveCount {
		return fmt.Errorf("recording.moves too long (max %d)", maxMoveCount)
	}
	if len(req.Recording.MovedFlags) != len(req.Recording.Moves) {
		return fmt.Errorf("recording has %d moves but %d moved flags",
			len(req.Recording.Moves), len(req.Recording.MovedFlags))
	}
	return nil
}

// ValidateScanRequest validates a scan request and returns any validation errors
func ValidateScanRequest(req *scan.ScanRequest) error {
	// Validate seed range
	if req.SeedEnd < req.SeedStart {
		return fmt.Errorf("seed_end (%d) must be >= seed_start (%d)", req.SeedEnd, req.SeedStart)
	}
	if uint64(req.SeedEnd)-uint64(req.SeedStart)+1 > maxSeedRange {
		return fmt.Errorf("seed range too large (max %d seeds)", maxSeedRange)
	}

	// Validate policy
	if req.Policy != "" {
		if _, err := autoplay.ParsePolicy(req.Policy); err != nil {
			return fmt.Errorf("invalid policy %q: %v", req.Policy, err)
		}
	}

	// Validate metric
	if req.Metric != "" && !scan.ValidMetric(req.Metric) {
		return fmt.Errorf("metric must be one of: score, max_tile, moves")
	}

	// Validate target operation
	validOps := []string{"eq", "gt", "ge", "lt", "le", "between", "outside"}
	if req.TargetOp == "" {
		return fmt.Errorf("target_op is required")
	}

	validOp := false
	for _, op := range validOps {
		if string(req.TargetOp) == op {
			validOp = true
			break
		}
	}
	if !validOp {
		return fmt.Errorf("target_op must be one of: %s", strings.Join(validOps, ", "))
	}

	// Validate target values for range operations
	if req.TargetOp == scan.OpBetween || req.TargetOp == scan.OpOutside {
		if req.TargetVal > req.TargetVal2 {
			return fmt.Errorf("target_val must be <= target_val2 for '%s' operation", req.TargetOp)
		}
	}

	// Validate limits
	if req.Limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}
	if req.Limit > maxLimit {
		return fmt.Errorf("limit too large (max %d)", maxLimit)
	}

	// Validate timeout
	if req.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must be >= 0")
	}
	if req.TimeoutMs > maxTimeoutMs {
		return fmt.Errorf("timeout_ms too large (max %d ms)", maxTimeoutMs)
	}

	// Validate move budget
	if req.MaxMoves < 0 {
		return fmt.Errorf("max_moves must be >= 0")
	}
	if req.MaxMoves > maxMoveCount {
		return fmt.Errorf("max_moves too large (max %d)", maxMoveCount)
	}

	return nil
}

// ValidateAddScoreRequest validates a leaderboard submission
func ValidateAddScoreRequest(req *AddScoreRequest) error {
	if req.Score < 0 {
		return fmt.Errorf("score must be >= 0")
	}
	return nil
}
