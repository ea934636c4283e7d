package main

import (
	"fmt"

	"github.com/lox/bingohall/internal/bingo"
)

// VerifyCmd checks a commit-reveal pair from a finished game. Any
// observer can run this against the seed revealed at game over and the
// hash published when the room was created.
type VerifyCmd struct {
	Seed string `kong:"arg,help='Seed revealed at game over'"`
	Hash string `kong:"arg,help='Commitment hash published at room creation'"`
}

func (c *VerifyCmd) Run() error {
	if !bingo.VerifyCommitment(c.Seed, c.Hash) {
		return fmt.Errorf("verification failed: sha256(seed) does not match the published hash")
	}

	fmt.Println("OK: seed matches the published commitment")
	return nil
}
