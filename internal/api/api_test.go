package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/MJE43/replay2048-go/internal/board"
	"github.com/MJE43/replay2048-go/internal/replay"
	"github.com/MJE43/replay2048-go/internal/scan"
	"github.com/MJE43/replay2048-go/internal/scores"
	"github.com/MJE43/replay2048-go/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	scoreStore := scores.NewStore(filepath.Join(t.TempDir(), "scores.json"))
	return NewServer(db, scoreStore)
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response HealthCheckResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != HealthStatusHealthy {
		t.Errorf("status = %s, want healthy", response.Status)
	}
	for _, check := range []string{"database", "scanner", "scores"} {
		if _, ok := response.Checks[check]; !ok {
			t.Errorf("missing %s check", check)
		}
	}
	if w.Header().Get("X-Engine-Version") == "" {
		t.Error("missing X-Engine-Version header")
	}
}

func TestLivenessEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, "GET", "/health/live", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestReplayEndpoint(t *testing.T) {
	server := newTestServer(t)

	reqBody := ReplayRequest{Seed: 2024, Moves: "LULULULULULU"}

	w := doJSON(t, server, "POST", "/replay", reqBody)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.Bytes()
	var response ReplayResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Transcript == nil {
		t.Fatal("Expected transcript in response")
	}
	if len(response.Transcript.Steps) != len(reqBody.Moves) {
		t.Errorf("got %d steps, want %d", len(response.Transcript.Steps), len(reqBody.Moves))
	}
	if response.Transcript.Seed != 2024 {
		t.Errorf("transcript seed = %d", response.Transcript.Seed)
	}
	if response.EngineVersion == "" {
		t.Error("Expected engine version in response")
	}
	if response.Echo.Moves != reqBody.Moves {
		t.Error("Expected echo to match request")
	}

	// The same request replays to the identical transcript.
	w2 := doJSON(t, server, "POST", "/replay", reqBody)
	if !bytes.Equal(body, w2.Body.Bytes()) {
		t.Error("two replays of the same request differ")
	}
}

func TestReplayEndpointRejectsBadMoves(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, "POST", "/replay", ReplayRequest{Seed: 1, Moves: "LX"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	var engineErr EngineError
	if err := json.NewDecoder(w.Body).Decode(&engineErr); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if engineErr.Type != ErrTypeInvalidMoves {
		t.Errorf("error type = %s, want %s", engineErr.Type, ErrTypeInvalidMoves)
	}
}

func TestVerifyEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := replay.Record(777, mustMoves(t, "ULDRULDR"), true)

	w := doJSON(t, server, "POST", "/verify", VerifyRequest{Recording: rec})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response VerifyResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Result == nil || !response.Result.OK {
		t.Errorf("verification failed: %+v", response.Result)
	}

	// A tampered final score is caught.
	rec.FinalScore += 4
	w = doJSON(t, server, "POST", "/verify", VerifyRequest{Recording: rec})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Result.OK {
		t.Error("tampered recording verified as OK")
	}
	if response.Result.Field != "final_score" {
		t.Errorf("mismatch field = %q, want final_score", response.Result.Field)
	}
}

func TestScanEndpointPersistsRun(t *testing.T) {
	server := newTestServer(t)

	reqBody := scan.ScanRequest{
		SeedStart: 0,
		SeedEnd:   63,
		Policy:    "ULDR",
		MaxMoves:  120,
		Metric:    scan.MetricScore,
		TargetOp:  scan.OpGreaterEqual,
		TargetVal: 0,
	}

	w := doJSON(t, server, "POST", "/scan", reqBody)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response ScanResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.RunID == "" {
		t.Fatal("Expected run_id in response")
	}
	if response.Summary.TotalEvaluated != 64 {
		t.Errorf("total_evaluated = %d, want 64", response.Summary.TotalEvaluated)
	}
	if response.Summary.HitsFound != 64 {
		t.Errorf("hits_found = %d, want 64 (every score is >= 0)", response.Summary.HitsFound)
	}

	// The run is retrievable from the archive.
	w = doJSON(t, server, "GET", "/runs/"+response.RunID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET run: expected status 200, got %d", w.Code)
	}
	var run store.Run
	if err := json.NewDecoder(w.Body).Decode(&run); err != nil {
		t.Fatalf("Failed to decode run: %v", err)
	}
	if run.Policy != "ULDR" || run.HitCount != 64 {
		t.Errorf("archived run = %+v", run)
	}

	// So are its hits, with pagination.
	w = doJSON(t, server, "GET", fmt.Sprintf("/runs/%s/hits?page=1&per_page=10", response.RunID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET hits: expected status 200, got %d", w.Code)
	}
	var hits store.HitsPage
	if err := json.NewDecoder(w.Body).Decode(&hits); err != nil {
		t.Fatalf("Failed to decode hits: %v", err)
	}
	if hits.TotalCount != 64 || len(hits.Hits) != 10 {
		t.Errorf("hits page = %d total, %d rows", hits.TotalCount, len(hits.Hits))
	}

	// And the run shows up in the listing.
	w = doJSON(t, server, "GET", "/runs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET runs: expected status 200, got %d", w.Code)
	}
	var list store.RunsList
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode runs list: %v", err)
	}
	if list.TotalCount != 1 {
		t.Errorf("runs list total = %d, want 1", list.TotalCount)
	}
}

func TestScanEndpointValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		req  scan.ScanRequest
	}{
		{
			name: "inverted range",
			req:  scan.ScanRequest{SeedStart: 10, SeedEnd: 1, TargetOp: scan.OpGreaterEqual},
		},
		{
			name: "missing target op",
			req:  scan.ScanRequest{SeedStart: 0, SeedEnd: 10},
		},
		{
			name: "bad policy",
			req:  scan.ScanRequest{SeedStart: 0, SeedEnd: 10, Policy: "XYZ", TargetOp: scan.OpGreaterEqual},
		},
		{
			name: "between with inverted bounds",
			req: scan.ScanRequest{SeedStart: 0, SeedEnd: 10, TargetOp: scan.OpBetween,
				TargetVal: 100, TargetVal2: 50},
		},
		{
			name: "limit too large",
			req: scan.ScanRequest{SeedStart: 0, SeedEnd: 10, TargetOp: scan.OpGreaterEqual,
				Limit: 200_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server, "POST", "/scan", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetRunNotFound(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, "GET", "/runs/no-such-run", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}

	var engineErr EngineError
	if err := json.NewDecoder(w.Body).Decode(&engineErr); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if engineErr.Type != ErrTypeNotFound {
		t.Errorf("error type = %s, want %s", engineErr.Type, ErrTypeNotFound)
	}
}

func TestLeaderboardEndpoints(t *testing.T) {
	server := newTestServer(t)

	// Empty board to start.
	w := doJSON(t, server, "GET", "/leaderboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var board LeaderboardResponse
	if err := json.NewDecoder(w.Body).Decode(&board); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(board.Scores) != 0 || board.Best != 0 {
		t.Errorf("fresh board = %+v", board)
	}

	// Submit scores; blank name falls back to the placeholder.
	for _, sub := range []AddScoreRequest{
		{Score: 40, PlayerName: "alice"},
		{Score: 90},
		{Score: 70, PlayerName: "bob"},
	} {
		w = doJSON(t, server, "POST", "/leaderboard", sub)
		if w.Code != http.StatusOK {
			t.Fatalf("POST score %d: expected status 200, got %d: %s", sub.Score, w.Code, w.Body.String())
		}
	}

	if err := json.NewDecoder(w.Body).Decode(&board); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if board.Best != 90 {
		t.Errorf("best = %d, want 90", board.Best)
	}
	wantScores := []int{90, 70, 40}
	for i, want := range wantScores {
		if board.Scores[i].Score != want {
			t.Errorf("entry %d score = %d, want %d", i, board.Scores[i].Score, want)
		}
	}
	if board.Scores[0].PlayerName != scores.PlaceholderName {
		t.Errorf("blank name stored as %q, want %q", board.Scores[0].PlayerName, scores.PlaceholderName)
	}
}

func TestAddScoreRejectsNegative(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, "POST", "/leaderboard", AddScoreRequest{Score: -5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/scan", nil)
	w := httptest.NewRecorder()
	server.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS headers on preflight")
	}
}

func mustMoves(t *testing.T, s string) []board.Direction {
	t.Helper()
	moves, err := board.ParseMoves(s)
	if err != nil {
		t.Fatalf("bad move string %q: %v", s, err)
	}
	return moves
}
