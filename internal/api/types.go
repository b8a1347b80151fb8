package api

import (
	"github.com/MJE43/replay2048-go/internal/replay"
	"github.com/MJE43/replay2048-go/internal/scan"
	"github.com/MJE43/replay2048-go/internal/scores"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeInvalidMoves  = "invalid_moves"
	ErrTypeInvalidPolicy = "invalid_policy"
	ErrTypeValidation    = "validation_error"

	// Resource errors
	ErrTypeNotFound = "not_found"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidMoves, ErrTypeInvalidPolicy, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeNotFound:
		return CategoryNotFound
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// ReplayRequest asks for a deterministic playthrough of a move string.
// SpawnOnMove defaults to true when omitted.
type ReplayRequest struct {
	Seed        uint32 `json:"seed"`
	Moves       string `json:"moves"`
	SpawnOnMove *bool  `json:"spawn_on_move,omitempty"`
}

// ReplayResponse carries the full transcript of the playthrough.
type ReplayResponse struct {
	Transcript    *replay.Transcript `json:"transcript"`
	EngineVersion string             `json:"engine_version"`
	Echo          ReplayRequest      `json:"echo"`
}

// VerifyRequest wraps a recording to re-check.
type VerifyRequest struct {
	Recording replay.Recording `json:"recording"`
}

// VerifyResponse reports the verification outcome.
type VerifyResponse struct {
	Result        *replay.VerifyResult `json:"result"`
	EngineVersion string               `json:"engine_version"`
}

// ScanResponse is a scan result plus the ID of the archived run.
type ScanResponse struct {
	RunID         string           `json:"run_id"`
	Hits          []scan.Hit       `json:"hits"`
	Summary       scan.Summary     `json:"summary"`
	EngineVersion string           `json:"engine_version"`
	Echo          scan.ScanRequest `json:"echo"`
}

// AddScoreRequest submits a finished game to the leaderboard.
type AddScoreRequest struct {
	Score      int    `json:"score"`
	PlayerName string `json:"player_name,omitempty"`
}

// LeaderboardResponse is the current top-K board.
type LeaderboardResponse struct {
	Scores        []scores.Entry `json:"scores"`
	Best          int            `json:"best"`
	EngineVersion string         `json:"engine_version"`
}
