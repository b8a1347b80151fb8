// Package scores persists a small top-K leaderboard as a pretty-printed
// JSON file. Load tolerates older files written before player names
// existed; individually malformed entries are skipped rather than failing
// the whole file.
package scores

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MaxEntries is the number of leaderboard entries retained after every
// insertion and load.
const MaxEntries = 5

// PlaceholderName substitutes for an absent or blank player name.
const PlaceholderName = "Player"

const timestampLayout = "2006-01-02T15:04:05Z"

// Entry is one leaderboard row. PlayedAt is an ISO-8601 UTC timestamp;
// the format makes descending string order chronological, which is the
// tie-break for equal scores.
type Entry struct {
	Score      int    `json:"score"`
	PlayedAt   string `json:"played_at"`
	PlayerName string `json:"player_name"`
}

// Store holds the in-memory leaderboard and the path it round-trips to.
// It performs synchronous file I/O and supports a single caller; there is
// no file locking, and concurrent saves from separate processes are
// last-writer-wins.
type Store struct {
	path    string
	entries []Entry
}

// NewStore creates a store bound to the given file path. Nothing is read
// until Load.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Entries returns a copy of the current entries in sorted order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Best returns the highest stored score, or 0 when the board is empty.
func (s *Store) Best() int {
	if len(s.entries) == 0 {
		return 0
	}
	return s.entries[0].Score
}

// Add inserts a new entry timestamped now (UTC), then re-sorts and trims
// to MaxEntries. A blank player name gets the placeholder.
func (s *Store) Add(score int, playerName string) Entry {
	return s.AddAt(score, playerName, time.Now().UTC().Format(timestampLayout))
}

// AddAt is Add with an explicit timestamp, used for fixtures and replays
// of historical results.
func (s *Store) AddAt(score int, playerName, playedAt string) Entry {
	name := strings.TrimSpace(playerName)
	if name == "" {
		name = PlaceholderName
	}

	entry := Entry{Score: score, PlayedAt: playedAt, PlayerName: name}
	s.entries = append(s.entries, entry)
	s.sortAndTrim()
	return entry
}

// rawEntry uses pointer fields so absent keys are distinguishable from
// zero values during the tolerant row scan.
type rawEntry struct {
	Score      *int    `json:"score"`
	PlayedAt   *string `json:"played_at"`
	PlayerName *string `json:"player_name"`
}

// Load reads the score file. A missing file is not an error and yields an
// empty board. A file that exists but is not valid JSON, or whose root is
// not an object with a "scores" array, fails the load and leaves the
// in-memory list empty. Entries missing a score or timestamp are skipped;
// a missing player name gets the placeholder.
func (s *Store) Load() error {
	s.entries = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read scores file: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parse scores file: %w", err)
	}
	rawScores, ok := probe["scores"]
	if !ok {
		return fmt.Errorf("scores file %s: missing scores array", s.path)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(rawScores, &rows); err != nil || string(rawScores) == "null" {
		return fmt.Errorf("scores file %s: scores field is not an array", s.path)
	}

	for _, raw := range rows {
		var item rawEntry
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if item.Score == nil || item.PlayedAt == nil {
			continue
		}

		entry := Entry{Score: *item.Score, PlayedAt: *item.PlayedAt, PlayerName: PlaceholderName}
		if item.PlayerName != nil && strings.TrimSpace(*item.PlayerName) != "" {
			entry.PlayerName = *item.PlayerName
		}
		s.entries = append(s.entries, entry)
	}

	s.sortAndTrim()
	return nil
}

// Save writes the current entries as pretty JSON with a trailing newline,
// creating parent directories as needed.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create scores directory: %w", err)
		}
	}

	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(fileDoc{Scores: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write scores file: %w", err)
	}
	return nil
}

type fileDoc struct {
	Scores []Entry `json:"scores"`
}

func (s *Store) sortAndTrim() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].Score != s.entries[j].Score {
			return s.entries[i].Score > s.entries[j].Score
		}
		return s.entries[i].PlayedAt > s.entries[j].PlayedAt
	})

	if len(s.entries) > MaxEntries {
		s.entries = s.entries[:MaxEntries]
	}
}
