// Package server exposes the equity engine over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/internal/randutil"
	"github.com/rs/zerolog"
)

// PresetSource resolves named ranges. *config.Config satisfies it.
type PresetSource interface {
	Preset(name string) (string, bool)
	PresetNames() []string
}

type builtinPresets struct{}

func (builtinPresets) Preset(name string) (string, bool) { return analysis.Preset(name) }
func (builtinPresets) PresetNames() []string             { return analysis.PresetNames() }

// Limits bound the work a single request may ask for.
type Limits struct {
	DefaultTrials      int
	DefaultRangeTrials int
	MaxTrials          int
	Workers            int
	RequestTimeout     time.Duration
	ProgressInterval   time.Duration
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		DefaultTrials:      50000,
		DefaultRangeTrials: 50000,
		MaxTrials:          2000000,
		RequestTimeout:     time.Minute,
		ProgressInterval:   100 * time.Millisecond,
	}
}

// Server serves equity calculations.
type Server struct {
	router   *mux.Router
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	clock    quartz.Clock
	presets  PresetSource
	limits   Limits
	simOpts  []analysis.Option
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock replaces the real clock, for tests.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithPresets sets where position names are resolved.
func WithPresets(presets PresetSource) Option {
	return func(s *Server) {
		s.presets = presets
	}
}

// WithLimits overrides the request limits. Zero fields keep their defaults
// and ProgressInterval is ignored.
func WithLimits(limits Limits) Option {
	return func(s *Server) {
		if limits.DefaultTrials > 0 {
			s.limits.DefaultTrials = limits.DefaultTrials
		}
		if limits.DefaultRangeTrials > 0 {
			s.limits.DefaultRangeTrials = limits.DefaultRangeTrials
		}
		if limits.MaxTrials > 0 {
			s.limits.MaxTrials = limits.MaxTrials
		}
		if limits.Workers > 0 {
			s.limits.Workers = limits.Workers
		}
		if limits.RequestTimeout > 0 {
			s.limits.RequestTimeout = limits.RequestTimeout
		}
	}
}

// WithSimulatorOptions adds engine options, such as range sampling limits, to
// every simulation the server runs.
func WithSimulatorOptions(opts ...analysis.Option) Option {
	return func(s *Server) {
		s.simOpts = append(s.simOpts, opts...)
	}
}

// WithProgressInterval sets the minimum gap between streamed progress
// messages. Zero streams every update.
func WithProgressInterval(d time.Duration) Option {
	return func(s *Server) {
		s.limits.ProgressInterval = d
	}
}

// NewServer creates a server with its routes registered.
func NewServer(opts ...Option) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  zerolog.Nop(),
		clock:   quartz.NewReal(),
		presets: builtinPresets{},
		limits:  DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/equity/hands", s.handleHands).Methods(http.MethodPost)
	api.HandleFunc("/equity/ranges", s.handleRanges).Methods(http.MethodPost)
	api.HandleFunc("/hands/{notation}", s.handleNotation).Methods(http.MethodGet)
	api.HandleFunc("/presets", s.handlePresets).Methods(http.MethodGet)
	api.HandleFunc("/presets/{name}", s.handlePreset).Methods(http.MethodGet)
	api.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Use(s.requestLogger)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", addr).Msg("Starting equity server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down equity server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// withTimeout derives a context cancelled after the request timeout on the
// server clock.
func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	timer := s.clock.AfterFunc(s.limits.RequestTimeout, func() {
		cancel(context.DeadlineExceeded)
	}, "request", "timeout")
	return ctx, func() {
		timer.Stop()
		cancel(context.Canceled)
	}
}

func (s *Server) trials(requested, fallback int) (int, error) {
	if requested == 0 {
		return fallback, nil
	}
	if requested < 0 || requested > s.limits.MaxTrials {
		return 0, fmt.Errorf("%w: trials must be between 1 and %d, got %d", errInvalidRequest, s.limits.MaxTrials, requested)
	}
	return requested, nil
}

func (s *Server) resolveRange(notation, position string) (string, error) {
	if position == "" {
		return notation, nil
	}
	r, ok := s.presets.Preset(position)
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnknownPreset, position)
	}
	return r, nil
}

func (s *Server) simulator(seed int64, progress analysis.ProgressFunc, logger zerolog.Logger) *analysis.Simulator {
	opts := append([]analysis.Option{analysis.WithLogger(logger)}, s.simOpts...)
	if s.limits.Workers > 0 {
		opts = append(opts, analysis.WithWorkers(s.limits.Workers))
	}
	if progress != nil {
		opts = append(opts, analysis.WithProgress(progress))
	}
	return analysis.NewSimulator(randutil.New(seed), opts...)
}

// runHands validates and runs a hands request.
func (s *Server) runHands(ctx context.Context, id string, req HandsRequest, progress analysis.ProgressFunc) (*EquityResponse, error) {
	if req.HandA == "" || req.HandB == "" {
		return nil, fmt.Errorf("%w: hand_a and hand_b are required", errInvalidRequest)
	}
	trials, err := s.trials(req.Trials, s.limits.DefaultTrials)
	if err != nil {
		return nil, err
	}
	seed := randutil.Resolve(req.Seed)
	logger := s.logger.With().Str("request_id", id).Int64("seed", seed).Logger()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := s.clock.Now()
	result, err := s.simulator(seed, progress, logger).SimulateHandVsHand(ctx, req.HandA, req.HandB, trials)
	if err != nil {
		return nil, causeOf(ctx, err)
	}
	resp := newEquityResponse(id, "hands", seed, result)
	resp.ElapsedMS = s.clock.Since(start).Milliseconds()
	return resp, nil
}

// runRanges validates and runs a ranges request.
func (s *Server) runRanges(ctx context.Context, id string, req RangesRequest, progress analysis.ProgressFunc) (*EquityResponse, error) {
	rangeA, err := s.resolveRange(req.RangeA, req.PositionA)
	if err != nil {
		return nil, err
	}
	rangeB, err := s.resolveRange(req.RangeB, req.PositionB)
	if err != nil {
		return nil, err
	}
	trials, err := s.trials(req.Trials, s.limits.DefaultRangeTrials)
	if err != nil {
		return nil, err
	}
	seed := randutil.Resolve(req.Seed)
	logger := s.logger.With().Str("request_id", id).Int64("seed", seed).Logger()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := s.clock.Now()
	result, err := s.simulator(seed, progress, logger).SimulateRangeVsRange(ctx, rangeA, rangeB, req.Board, trials)
	if err != nil {
		return nil, causeOf(ctx, err)
	}
	resp := newEquityResponse(id, "ranges", seed, result)
	resp.ElapsedMS = s.clock.Since(start).Milliseconds()
	return resp, nil
}

// causeOf reports the timeout as the failure when the request context was
// cancelled by it.
func causeOf(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		if cause := context.Cause(ctx); cause != nil {
			return cause
		}
	}
	return err
}
