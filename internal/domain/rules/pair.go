package rules

func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// PairLockKey packs the canonical pair into one advisory lock key.
// Ids above 2^31 collide on the low half, which only costs extra waiting.
func PairLockKey(a, b int64) int64 {
	lo, hi := CanonicalPair(a, b)
	return int64(uint64(uint32(lo))<<32 | uint64(uint32(hi)))
}
