package codecs

// DecodeStats is the per-decode-call counters record every stage's Decode
// receives; FEC stages fill it in, non-FEC stages leave it untouched.
type DecodeStats struct {
	ResolvedErrors       uint32
	UnresolvedErrors     uint32
	FECAccumulatedAmount uint64
	FECAccumulatedWeight uint64
}

// Quality returns the normalised FEC quality metric in [0,1], or 1 when no
// weight has been accumulated (nothing to correct is perfect quality).
func (s *DecodeStats) Quality() float64 {
	if s.FECAccumulatedWeight == 0 {
		return 1
	}
	return float64(s.FECAccumulatedAmount) / float64(s.FECAccumulatedWeight)
}

// Reset clears all counters, ready for the next decode call.
func (s *DecodeStats) Reset() {
	*s = DecodeStats{}
}
