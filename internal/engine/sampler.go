package engine

// rngRange is one past the largest raw draw.
const rngRange = uint64(1) << 32

// Bounded maps raw draws onto [0, n) by rejection sampling. The range is
// split into n equal buckets of size floor(2^32 / n); draws past the last
// full bucket are discarded and redrawn, so every value in [0, n) keeps
// exactly the same probability. The bucket layout is part of the replay
// contract: a different mapping would desynchronize recorded games even
// with an identical raw stream.
func (s *Stream) Bounded(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	bucket := rngRange / uint64(n)
	limit := bucket * uint64(n)
	for {
		if v := uint64(s.Uint32()); v < limit {
			return uint32(v / bucket)
		}
	}
}
