// Package bingo implements the 75-ball game primitives: card generation,
// the draw pool, win evaluation and the commit-reveal fairness scheme.
// It is transport and room agnostic; internal/room composes these types
// into a full game session.
package bingo

import (
	rand "math/rand/v2"
)

const (
	// GridSize is the width and height of a card.
	GridSize = 5

	// BandSize is the count of numbers assigned to each column.
	BandSize = 15

	// MaxNumber is the highest drawable number.
	MaxNumber = GridSize * BandSize

	// FreeCell is the sentinel stored at the centre of every card.
	FreeCell = 0
)

// Card is a 5x5 grid indexed [row][col]. Column k holds five distinct
// numbers from the band [15k+1, 15k+15]; the centre cell is FreeCell.
type Card [GridSize][GridSize]int

// GenerateCard produces a fresh card from the provided rand source.
// Each column is filled by shuffling its 15-number band and taking the
// first five, so column entries are distinct and uniformly chosen.
func GenerateCard(rng *rand.Rand) Card {
	var card Card
	for col := 0; col < GridSize; col++ {
		band := make([]int, BandSize)
		for i := range band {
			band[i] = col*BandSize + i + 1
		}
		for i := len(band) - 1; i > 0; i-- {
			j := rng.IntN(i + 1)
			band[i], band[j] = band[j], band[i]
		}
		for row := 0; row < GridSize; row++ {
			card[row][col] = band[row]
		}
	}
	card[GridSize/2][GridSize/2] = FreeCell
	return card
}

// Numbers returns the card's non-free numbers in row-major order.
func (c Card) Numbers() []int {
	nums := make([]int, 0, GridSize*GridSize-1)
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if c[row][col] != FreeCell {
				nums = append(nums, c[row][col])
			}
		}
	}
	return nums
}
