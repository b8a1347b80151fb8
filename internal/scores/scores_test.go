package scores

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTopKOrdering(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "scores.json"))

	for i, score := range []int{40, 90, 10, 70, 20, 50, 80} {
		// Distinct ascending timestamps so the insertion order is visible
		// to the tie-break without being ambiguous.
		s.AddAt(score, "Player", timestamp(i))
	}

	want := []int{90, 80, 70, 50, 40}
	got := s.Entries()
	if len(got) != len(want) {
		t.Fatalf("stored %d entries, want %d", len(got), len(want))
	}
	for i, entry := range got {
		if entry.Score != want[i] {
			t.Errorf("entry %d score = %d, want %d", i, entry.Score, want[i])
		}
	}
	if s.Best() != 90 {
		t.Errorf("Best() = %d, want 90", s.Best())
	}

	// The ordering must survive a save/reload round-trip.
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	reloaded := NewStore(s.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, entry := range reloaded.Entries() {
		if entry.Score != want[i] {
			t.Errorf("reloaded entry %d score = %d, want %d", i, entry.Score, want[i])
		}
	}
	if reloaded.Best() != 90 {
		t.Errorf("reloaded Best() = %d, want 90", reloaded.Best())
	}
}

func TestTieBreakByTimestamp(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "scores.json"))
	s.AddAt(100, "early", "2024-01-01T10:00:00Z")
	s.AddAt(100, "late", "2024-06-01T10:00:00Z")
	s.AddAt(100, "middle", "2024-03-01T10:00:00Z")

	got := s.Entries()
	wantNames := []string{"late", "middle", "early"}
	for i, name := range wantNames {
		if got[i].PlayerName != name {
			t.Errorf("entry %d = %q, want %q (newer timestamps win ties)", i, got[i].PlayerName, name)
		}
	}
}

func TestBlankNameGetsPlaceholder(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "scores.json"))
	s.Add(10, "")
	s.Add(20, "   ")

	for _, entry := range s.Entries() {
		if entry.PlayerName != PlaceholderName {
			t.Errorf("blank name stored as %q, want %q", entry.PlayerName, PlaceholderName)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("missing file must not be an error, got: %v", err)
	}
	if len(s.Entries()) != 0 {
		t.Errorf("missing file yielded %d entries", len(s.Entries()))
	}
	if s.Best() != 0 {
		t.Errorf("Best() on empty board = %d, want 0", s.Best())
	}
}

func TestLoadRejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"scores": [`},
		{name: "root is an array", body: `[{"score": 1}]`},
		{name: "missing scores field", body: `{"top": []}`},
		{name: "scores is not an array", body: `{"scores": {"a": 1}}`},
		{name: "scores is null", body: `{"scores": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scores.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}

			s := NewStore(path)
			s.AddAt(123, "stale", "2024-01-01T00:00:00Z")
			if err := s.Load(); err == nil {
				t.Fatal("expected an error")
			}
			if len(s.Entries()) != 0 {
				t.Errorf("failed load left %d entries in memory", len(s.Entries()))
			}
		})
	}
}

func TestLoadTolerantEntries(t *testing.T) {
	body := `{
  "scores": [
    {"score": 300, "played_at": "2024-01-03T00:00:00Z"},
    {"score": 100, "played_at": "2024-01-01T00:00:00Z", "player_name": "alice"},
    {"played_at": "2024-01-02T00:00:00Z", "player_name": "no-score"},
    {"score": 200, "player_name": "no-timestamp"},
    "not an object",
    {"score": 150, "played_at": "2024-01-05T00:00:00Z", "player_name": ""}
  ]
}`
	path := filepath.Join(t.TempDir(), "scores.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("tolerant load failed: %v", err)
	}

	got := s.Entries()
	if len(got) != 3 {
		t.Fatalf("loaded %d entries, want 3 (malformed rows skipped)", len(got))
	}
	if got[0].Score != 300 || got[0].PlayerName != PlaceholderName {
		t.Errorf("entry 0 = %+v, want score 300 with placeholder name", got[0])
	}
	if got[1].Score != 150 || got[1].PlayerName != PlaceholderName {
		t.Errorf("entry 1 = %+v, want score 150 with placeholder name", got[1])
	}
	if got[2].Score != 100 || got[2].PlayerName != "alice" {
		t.Errorf("entry 2 = %+v, want alice's 100", got[2])
	}
}

func TestLoadResortsAndTrims(t *testing.T) {
	// A file with more than MaxEntries rows, out of order, converges to
	// the correct top-5 on load.
	body := `{
  "scores": [
    {"score": 10, "played_at": "2024-01-01T00:00:00Z", "player_name": "a"},
    {"score": 70, "played_at": "2024-01-02T00:00:00Z", "player_name": "b"},
    {"score": 40, "played_at": "2024-01-03T00:00:00Z", "player_name": "c"},
    {"score": 90, "played_at": "2024-01-04T00:00:00Z", "player_name": "d"},
    {"score": 20, "played_at": "2024-01-05T00:00:00Z", "player_name": "e"},
    {"score": 50, "played_at": "2024-01-06T00:00:00Z", "player_name": "f"},
    {"score": 80, "played_at": "2024-01-07T00:00:00Z", "player_name": "g"}
  ]
}`
	path := filepath.Join(t.TempDir(), "scores.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []int{90, 80, 70, 50, 40}
	got := s.Entries()
	if len(got) != len(want) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Score != want[i] {
			t.Errorf("entry %d score = %d, want %d", i, got[i].Score, want[i])
		}
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "scores.json")
	s := NewStore(path)
	s.AddAt(64, "alice", "2024-02-01T12:30:45Z")

	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}

	want := `{
  "scores": [
    {
      "score": 64,
      "played_at": "2024-02-01T12:30:45Z",
      "player_name": "alice"
    }
  ]
}
`
	if string(data) != want {
		t.Errorf("file contents:\n%s\nwant:\n%s", data, want)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("file is not newline-terminated")
	}
}

func TestSaveEmptyBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	s := NewStore(path)
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load of empty board failed: %v", err)
	}
	if len(reloaded.Entries()) != 0 {
		t.Errorf("empty board reloaded with %d entries", len(reloaded.Entries()))
	}
}

func TestSaveFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	// A file where a parent directory is expected makes MkdirAll fail.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(filepath.Join(blocker, "sub", "scores.json"))
	s.AddAt(1, "x", "2024-01-01T00:00:00Z")
	if err := s.Save(); err == nil {
		t.Error("expected an error when the parent path is not a directory")
	}
}

func timestamp(i int) string {
	return "2024-01-0" + string(rune('1'+i)) + "T00:00:00Z"
}
