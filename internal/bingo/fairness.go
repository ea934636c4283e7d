package bingo

import (
	crand "crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const seedBytes = 16

// Commitment is the commit-reveal integrity record for a game. The hash
// of the secret seed is published at room creation; the seed itself is
// revealed only once the game reaches its terminal state, letting any
// observer check the sequence was fixed before play began. The seed is
// never fed into the draw RNG — draws use independent crypto randomness,
// so knowing the seed early would not help predict them either way.
type Commitment struct {
	seed string
	hash string
}

// NewCommitment generates a fresh random seed and its SHA-256 commitment.
func NewCommitment() (*Commitment, error) {
	buf := make([]byte, seedBytes)
	if _, err := crand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating commitment seed: %w", err)
	}

	seed := hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(seed))
	return &Commitment{
		seed: seed,
		hash: hex.EncodeToString(sum[:]),
	}, nil
}

// Hash returns the published commitment hash.
func (c *Commitment) Hash() string {
	return c.hash
}

// Reveal returns the secret seed. The room only calls this once the game
// is finished; the seed must not appear in any payload before then.
func (c *Commitment) Reveal() string {
	return c.seed
}

// VerifyCommitment reports whether a revealed seed matches a previously
// published commitment hash.
func VerifyCommitment(seed, hash string) bool {
	sum := sha256.Sum256([]byte(seed))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(want), []byte(hash)) == 1
}
