package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// CryptoIntn returns a uniformly distributed int in [0, n) drawn from
// crypto/rand. Rejection sampling avoids the modulo bias a naive
// `value % n` would introduce for ranges that do not evenly divide 2^64.
// Panics if n <= 0, matching the contract of math/rand's Intn.
func CryptoIntn(n int) int {
	if n <= 0 {
		panic("randutil: CryptoIntn called with n <= 0")
	}

	max := uint64(n)
	// Largest multiple of n representable in a uint64. Values at or above
	// it are rejected and redrawn.
	limit := (^uint64(0) / max) * max

	var buf [8]byte
	for {
		if _, err := crand.Read(buf[:]); err != nil {
			panic("randutil: crypto/rand read failed: " + err.Error())
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % max)
		}
	}
}
