package main

import (
	"time"

	"github.com/lox/pokerequity/cmd/pokerequity/shared"
	"github.com/lox/pokerequity/internal/server"
)

// ServeCmd runs the HTTP and WebSocket API.
type ServeCmd struct {
	Address   string        `short:"a" help:"Listen address (default from config)"`
	MaxTrials int           `default:"2000000" help:"Largest trial count a request may ask for"`
	Timeout   time.Duration `default:"1m" help:"Per-request simulation timeout"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return err
	}
	logger := shared.SetupStructuredLogger(e.level)

	addr := c.Address
	if addr == "" {
		addr = e.cfg.Server.Address
	}

	srv := server.NewServer(
		server.WithLogger(logger),
		server.WithPresets(e.cfg),
		server.WithSimulatorOptions(e.cfg.SimulatorOptions()...),
		server.WithLimits(server.Limits{
			DefaultTrials:      e.cfg.Trials,
			DefaultRangeTrials: e.cfg.RangeTrials,
			MaxTrials:          c.MaxTrials,
			Workers:            e.cfg.Workers,
			RequestTimeout:     c.Timeout,
		}),
	)

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}
