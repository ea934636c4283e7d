package main

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/bingohall/cmd/bingohall/shared"
	"github.com/lox/bingohall/internal/randutil"
	"github.com/lox/bingohall/internal/room"
	"github.com/lox/bingohall/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Addr           string `kong:"help='Server address, overrides the config file'"`
	Config         string `kong:"default='bingohall.hcl',help='Path to HCL config file'"`
	Debug          bool   `kong:"help='Enable debug logging'"`
	Pattern        string `kong:"help='Default win pattern (row, corners, full), overrides the config file'"`
	CardsPerPlayer int    `kong:"help='Default cards dealt per player, overrides the config file'"`
	Seed           *int64 `kong:"help='Deterministic card RNG seed (optional, draws stay crypto-random)'"`
}

func (c *ServerCmd) Run() error {
	// Configure logging
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Pattern != "" {
		cfg.Server.Pattern = c.Pattern
	}
	if c.CardsPerPlayer > 0 {
		cfg.Server.CardsPerPlayer = c.CardsPerPlayer
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	// Card RNG seeding. Draw randomness is independent and always
	// cryptographic, so a fixed seed only makes dealt cards repeatable.
	var opts []room.RegistryOption
	if c.Seed != nil {
		seed := *c.Seed
		logger.Info("Using deterministic card seed", "seed", seed)
		opts = append(opts, room.WithRNGFactory(func() *rand.Rand {
			seed++
			return randutil.New(seed)
		}))
	}

	registry := room.NewRegistry(quartz.NewReal(), logger, opts...)
	if err := cfg.CreateRooms(registry); err != nil {
		return err
	}

	s := server.NewServer(addr, registry, logger,
		server.WithRoomDefaults(cfg.DefaultRoomConfig()))

	logger.Info("Starting bingohall server",
		"address", addr,
		"pattern", cfg.Server.Pattern,
		"cards_per_player", cfg.Server.CardsPerPlayer,
		"rooms", registry.Len())

	// Setup graceful shutdown
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
