package bingo

import (
	"github.com/lox/bingohall/internal/randutil"
)

// DrawPool holds the undrawn numbers for a single game together with the
// ordered history of what has been drawn. The zero value is not usable;
// construct with NewDrawPool. A pool is not safe for concurrent use —
// the owning room serialises access.
type DrawPool struct {
	remaining []int
	history   []int
}

// NewDrawPool creates a full pool covering 1..MaxNumber.
func NewDrawPool() *DrawPool {
	remaining := make([]int, MaxNumber)
	for i := range remaining {
		remaining[i] = i + 1
	}
	return &DrawPool{
		remaining: remaining,
		history:   make([]int, 0, MaxNumber),
	}
}

// DrawNext removes and returns one uniformly chosen remaining number,
// appending it to the history. ok is false once the pool is exhausted;
// exhaustion is a normal end condition, not a fault.
func (p *DrawPool) DrawNext() (number int, ok bool) {
	if len(p.remaining) == 0 {
		return 0, false
	}

	idx := randutil.CryptoIntn(len(p.remaining))
	number = p.remaining[idx]
	p.remaining = append(p.remaining[:idx], p.remaining[idx+1:]...)
	p.history = append(p.history, number)
	return number, true
}

// History returns a copy of the draw history in draw order. Callers never
// observe later pool mutation through the returned slice.
func (p *DrawPool) History() []int {
	history := make([]int, len(p.history))
	copy(history, p.history)
	return history
}

// Remaining returns how many numbers are still undrawn.
func (p *DrawPool) Remaining() int {
	return len(p.remaining)
}
