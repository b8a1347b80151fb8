package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// Stream is a deterministic 32-bit Mersenne Twister sequence. Two streams
// built from the same seed produce identical draws on every platform, which
// is what makes recorded games replayable bit-for-bit.
type Stream struct {
	state [mtN]uint32
	index int
	seed  uint32
	draws uint64
}

// NewStream creates a stream seeded with the given value.
func NewStream(seed uint32) *Stream {
	s := &Stream{}
	s.Reseed(seed)
	return s
}

// NewStreamFromEntropy creates a stream seeded from the operating system's
// entropy source.
func NewStreamFromEntropy() (*Stream, error) {
	seed, err := EntropySeed()
	if err != nil {
		return nil, err
	}
	return NewStream(seed), nil
}

// EntropySeed draws a fresh seed from crypto/rand.
func EntropySeed() (uint32, error) {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read entropy seed: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Reseed reinitializes the state from seed and resets the draw counter.
// The expansion is the reference MT19937 init: state[0] = seed, then
// state[i] = 1812433253 * (state[i-1] ^ (state[i-1] >> 30)) + i.
func (s *Stream) Reseed(seed uint32) {
	s.seed = seed
	s.draws = 0
	s.state[0] = seed
	for i := uint32(1); i < mtN; i++ {
		prev := s.state[i-1]
		s.state[i] = 1812433253*(prev^(prev>>30)) + i
	}
	s.index = mtN
}

// Uint32 returns the next raw draw in [0, 2^32).
func (s *Stream) Uint32() uint32 {
	if s.index >= mtN {
		s.twist()
	}
	y := s.state[s.index]
	s.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18

	s.draws++
	return y
}

func (s *Stream) twist() {
	for i := 0; i < mtN; i++ {
		y := (s.state[i] & mtUpperMask) | (s.state[(i+1)%mtN] & mtLowerMask)
		next := y >> 1
		if y&1 != 0 {
			next ^= mtMatrixA
		}
		s.state[i] = s.state[(i+mtM)%mtN] ^ next
	}
	s.index = 0
}

// Seed returns the seed the stream was last initialized with.
func (s *Stream) Seed() uint32 {
	return s.seed
}

// Draws reports how many raw values have been consumed since the last
// reseed. Replays of the same game must land on the same count.
func (s *Stream) Draws() uint64 {
	return s.draws
}
