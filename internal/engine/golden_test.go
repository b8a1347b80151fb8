package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type rawVector struct {
	Description string   `json:"description"`
	Seed        uint32   `json:"seed"`
	Skip        int      `json:"skip,omitempty"`
	Expected    []uint32 `json:"expected"`
}

type boundedVector struct {
	Description string   `json:"description"`
	Seed        uint32   `json:"seed"`
	Bounds      []uint32 `json:"bounds"`
	Expected    []uint32 `json:"expected"`
	RawDraws    uint64   `json:"raw_draws"`
}

type rngGoldenFile struct {
	Raw     []rawVector     `json:"raw"`
	Bounded []boundedVector `json:"bounded"`
}

func loadRNGGolden(t *testing.T) rngGoldenFile {
	t.Helper()

	path := filepath.Join("..", "..", "testdata", "rng_golden.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load golden vectors: %v", err)
	}

	var golden rngGoldenFile
	if err := json.Unmarshal(data, &golden); err != nil {
		t.Fatalf("failed to parse golden vectors: %v", err)
	}
	return golden
}

func TestRawGoldenVectors(t *testing.T) {
	golden := loadRNGGolden(t)
	if len(golden.Raw) == 0 {
		t.Fatal("no raw vectors in golden file")
	}

	for _, v := range golden.Raw {
		t.Run(v.Description, func(t *testing.T) {
			s := NewStream(v.Seed)
			for i := 0; i < v.Skip; i++ {
				s.Uint32()
			}
			for i, want := range v.Expected {
				if got := s.Uint32(); got != want {
					t.Errorf("draw %d mismatch: got %d, want %d", v.Skip+i, got, want)
				}
			}
		})
	}
}

func TestBoundedGoldenVectors(t *testing.T) {
	golden := loadRNGGolden(t)
	if len(golden.Bounded) == 0 {
		t.Fatal("no bounded vectors in golden file")
	}

	for _, v := range golden.Bounded {
		t.Run(v.Description, func(t *testing.T) {
			if len(v.Bounds) != len(v.Expected) {
				t.Fatalf("malformed vector: %d bounds, %d expected values", len(v.Bounds), len(v.Expected))
			}

			s := NewStream(v.Seed)
			for i, n := range v.Bounds {
				if got := s.Bounded(n); got != v.Expected[i] {
					t.Errorf("Bounded(%d) draw %d mismatch: got %d, want %d", n, i, got, v.Expected[i])
				}
			}
			if s.Draws() != v.RawDraws {
				t.Errorf("raw draws consumed = %d, want %d", s.Draws(), v.RawDraws)
			}
		})
	}
}
