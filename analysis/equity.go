package analysis

import (
	"context"
	"fmt"
	"math"
	rand "math/rand/v2"
	"runtime"
	"sync/atomic"

	"github.com/lox/pokerequity/internal/randutil"
	"github.com/lox/pokerequity/poker"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPairCap bounds how many (hand, hand) pairs a range run visits.
	DefaultPairCap = 200
	// DefaultCombosPerPair bounds the combo selections tried per hand pair.
	DefaultCombosPerPair = 10
	// DefaultMinRunouts is the floor on runouts per accepted combo selection.
	DefaultMinRunouts = 200

	trialsPerChunk = 2048
	cancelCheck    = 256
	maxWorkers     = 8
)

// EquityResult is the outcome of a simulation. Equities are percentages;
// the counts are raw runout tallies, so WinsA+WinsB+Ties == Trials.
type EquityResult struct {
	EquityA float64
	EquityB float64
	WinsA   int
	WinsB   int
	Ties    int
	Trials  int

	// Range runs only.
	HandsA        int
	HandsB        int
	PairsSampled  int
	CombosSampled int
}

// WinRateA returns the fraction of runouts side A won outright.
func (r EquityResult) WinRateA() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.WinsA) / float64(r.Trials)
}

// WinRateB returns the fraction of runouts side B won outright.
func (r EquityResult) WinRateB() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.WinsB) / float64(r.Trials)
}

// TieRate returns the fraction of runouts that split the pot.
func (r EquityResult) TieRate() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Ties) / float64(r.Trials)
}

// ConfidenceInterval returns the 95% confidence interval for side A's equity
// in percent.
func (r EquityResult) ConfidenceInterval() (lower, upper float64) {
	n := float64(r.Trials)
	if n == 0 {
		return 0, 0
	}
	p := r.EquityA / 100

	// Standard error for binomial proportion
	se := math.Sqrt(p * (1 - p) / n)
	margin := 1.96 * se

	return math.Max(0, p-margin) * 100, math.Min(1, p+margin) * 100
}

// ProgressFunc receives the number of runouts completed and the total planned.
// It is called from worker goroutines and must be safe for concurrent use.
type ProgressFunc func(done, total int)

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the number of goroutines used. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPairCap sets the maximum number of hand pairs a range run visits.
func WithPairCap(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.pairCap = n
		}
	}
}

// WithCombosPerPair sets how many combo selections are tried per hand pair.
func WithCombosPerPair(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.combosPerPair = n
		}
	}
}

// WithMinRunouts sets the floor on runouts per accepted combo selection.
func WithMinRunouts(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.minRunouts = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Simulator) {
		s.progress = fn
	}
}

// WithLogger sets the logger used for run summaries.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// Simulator runs Monte Carlo equity estimates. Work is split into tasks whose
// random streams are derived from rng before any goroutine starts, and results
// are folded in task order, so a seeded Simulator is reproducible regardless
// of worker count. A Simulator must not be used by concurrent callers because
// it consumes its own rng; create one per call.
type Simulator struct {
	rng           *rand.Rand
	workers       int
	pairCap       int
	combosPerPair int
	minRunouts    int
	progress      ProgressFunc
	logger        zerolog.Logger
}

// NewSimulator creates a Simulator drawing randomness from rng.
func NewSimulator(rng *rand.Rand, opts ...Option) *Simulator {
	s := &Simulator{
		rng:           rng,
		workers:       min(runtime.NumCPU(), maxWorkers),
		pairCap:       DefaultPairCap,
		combosPerPair: DefaultCombosPerPair,
		minRunouts:    DefaultMinRunouts,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SimulateHandVsHand parses both hands and runs HandVsHand.
func (s *Simulator) SimulateHandVsHand(ctx context.Context, handA, handB string, trials int) (EquityResult, error) {
	a, err := ParseHand(handA)
	if err != nil {
		return EquityResult{}, err
	}
	b, err := ParseHand(handB)
	if err != nil {
		return EquityResult{}, err
	}
	return s.HandVsHand(ctx, a, b, trials)
}

// HandVsHand estimates equity between two starting hands with no board. Each
// trial picks one non-conflicting combo pair uniformly and deals five
// community cards.
func (s *Simulator) HandVsHand(ctx context.Context, a, b StartingHand, trials int) (EquityResult, error) {
	if trials <= 0 {
		return EquityResult{}, fmt.Errorf("trials must be positive, got %d", trials)
	}

	var matchups []matchup
	for _, ca := range a.Combos() {
		for _, cb := range b.Combos() {
			if !ca.Set().Overlaps(cb.Set()) {
				matchups = append(matchups, matchup{a: ca, b: cb})
			}
		}
	}
	if len(matchups) == 0 {
		return EquityResult{}, fmt.Errorf("%w: %s vs %s", ErrNoValidCombinations, a, b)
	}

	var tasks []task
	for start := 0; start < trials; start += trialsPerChunk {
		tasks = append(tasks, task{
			trials: min(trialsPerChunk, trials-start),
			rng:    randutil.Derive(s.rng),
		})
	}

	run := func(ctx context.Context, t task) (tally, error) {
		rng := t.rng
		stubs := make([]*poker.Stub, len(matchups))
		var out tally
		for i := range t.trials {
			if i%cancelCheck == 0 {
				if err := ctx.Err(); err != nil {
					return tally{}, err
				}
			}
			idx := rng.IntN(len(matchups))
			if stubs[idx] == nil {
				m := matchups[idx]
				stubs[idx] = poker.NewStub(m.a.Set()|m.b.Set(), rng)
			}
			out.add(showdown(matchups[idx], nil, stubs[idx]))
		}
		return out, nil
	}

	tallies, err := s.execute(ctx, tasks, trials, run)
	if err != nil {
		return EquityResult{}, err
	}

	var total tally
	for _, t := range tallies {
		total.merge(t)
	}
	result := total.result()

	s.logger.Debug().
		Str("hand_a", a.String()).
		Str("hand_b", b.String()).
		Int("matchups", len(matchups)).
		Int("trials", result.Trials).
		Float64("equity_a", result.EquityA).
		Msg("hand vs hand complete")

	return result, nil
}

// SimulateRangeVsRange parses both ranges and the board and runs RangeVsRange.
func (s *Simulator) SimulateRangeVsRange(ctx context.Context, rangeA, rangeB, board string, targetTrials int) (EquityResult, error) {
	a, err := ParseRange(rangeA)
	if err != nil {
		return EquityResult{}, err
	}
	b, err := ParseRange(rangeB)
	if err != nil {
		return EquityResult{}, err
	}
	bd, err := ParseBoard(board)
	if err != nil {
		return EquityResult{}, err
	}
	return s.RangeVsRange(ctx, a, b, bd, targetTrials)
}

// RangeVsRange estimates equity between two ranges on a partial board.
//
// Up to the pair cap of (hand, hand) pairs are visited; when the cross product
// is larger, distinct pairs are sampled. For each pair up to combosPerPair
// random combo selections are drawn; repeats and selections that share a card
// with each other or the board are skipped. Every accepted selection runs
// max(minRunouts, targetTrials/pairs) runouts, and its equity is weighted by
// the number of physical combos the two hands represent.
func (s *Simulator) RangeVsRange(ctx context.Context, a, b *Range, board Board, targetTrials int) (EquityResult, error) {
	if targetTrials <= 0 {
		return EquityResult{}, fmt.Errorf("trials must be positive, got %d", targetTrials)
	}
	if a == nil || a.Len() == 0 || b == nil || b.Len() == 0 {
		return EquityResult{}, ErrEmptyRange
	}
	if len(board) > MaxBoardCards {
		return EquityResult{}, fmt.Errorf("%w: too many board cards: %d", ErrInvalidBoard, len(board))
	}
	dead := board.Set()
	if dead.Len() != len(board) {
		return EquityResult{}, fmt.Errorf("%w: %s repeats a card", ErrInvalidBoard, board)
	}

	pairs := s.selectPairs(a.Hands(), b.Hands())
	runouts := max(s.minRunouts, targetTrials/len(pairs))

	var tasks []task
	for _, p := range pairs {
		combosA, combosB := p.a.Combos(), p.b.Combos()
		weight := float64(len(combosA) * len(combosB))
		attempts := min(s.combosPerPair, len(combosA)*len(combosB))
		seen := make(map[matchup]struct{}, attempts)

		for range attempts {
			m := matchup{
				a: combosA[s.rng.IntN(len(combosA))],
				b: combosB[s.rng.IntN(len(combosB))],
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}

			setA, setB := m.a.Set(), m.b.Set()
			if setA.Overlaps(setB) || setA.Overlaps(dead) || setB.Overlaps(dead) {
				continue
			}
			tasks = append(tasks, task{
				matchup: m,
				weight:  weight,
				trials:  runouts,
				rng:     randutil.Derive(s.rng),
			})
		}
	}
	if len(tasks) == 0 {
		return EquityResult{}, fmt.Errorf("%w: %d hand pairs sampled, every combo conflicts", ErrNoValidCombinations, len(pairs))
	}

	run := func(ctx context.Context, t task) (tally, error) {
		stub := poker.NewStub(t.matchup.a.Set()|t.matchup.b.Set()|dead, t.rng)
		var out tally
		for i := range t.trials {
			if i%cancelCheck == 0 {
				if err := ctx.Err(); err != nil {
					return tally{}, err
				}
			}
			out.add(showdown(t.matchup, board, stub))
		}
		return out, nil
	}

	tallies, err := s.execute(ctx, tasks, len(tasks)*runouts, run)
	if err != nil {
		return EquityResult{}, err
	}

	var total tally
	var weightedA, weightedB, totalWeight float64
	for i, t := range tallies {
		r := t.result()
		w := tasks[i].weight
		weightedA += r.EquityA * w
		weightedB += r.EquityB * w
		totalWeight += w
		total.merge(t)
	}

	result := total.result()
	result.EquityA = weightedA / totalWeight
	result.EquityB = weightedB / totalWeight
	result.HandsA = a.Len()
	result.HandsB = b.Len()
	result.PairsSampled = len(pairs)
	result.CombosSampled = len(tasks)

	s.logger.Debug().
		Int("hands_a", result.HandsA).
		Int("hands_b", result.HandsB).
		Int("pairs", result.PairsSampled).
		Int("combos", result.CombosSampled).
		Int("runouts_per_combo", runouts).
		Str("board", board.String()).
		Float64("equity_a", result.EquityA).
		Msg("range vs range complete")

	return result, nil
}

type handPair struct {
	a, b StartingHand
}

// selectPairs returns every (a, b) pair when there are at most pairCap of
// them, otherwise pairCap distinct pairs chosen uniformly.
func (s *Simulator) selectPairs(handsA, handsB []StartingHand) []handPair {
	total := len(handsA) * len(handsB)
	if total <= s.pairCap {
		pairs := make([]handPair, 0, total)
		for _, ha := range handsA {
			for _, hb := range handsB {
				pairs = append(pairs, handPair{a: ha, b: hb})
			}
		}
		return pairs
	}

	pairs := make([]handPair, 0, s.pairCap)
	seen := make(map[int]struct{}, s.pairCap)
	for len(pairs) < s.pairCap {
		i, j := s.rng.IntN(len(handsA)), s.rng.IntN(len(handsB))
		key := i*len(handsB) + j
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pairs = append(pairs, handPair{a: handsA[i], b: handsB[j]})
	}
	return pairs
}

// matchup is one concrete holding per side.
type matchup struct {
	a, b Combo
}

// task is an independent unit of simulation work. Its stream is derived from
// the simulator's RNG while planning, before any worker starts.
type task struct {
	matchup matchup
	weight  float64
	trials  int
	rng     *rand.Rand
}

type tally struct {
	winsA, winsB, ties int
}

func (t *tally) add(outcome int) {
	switch {
	case outcome > 0:
		t.winsA++
	case outcome < 0:
		t.winsB++
	default:
		t.ties++
	}
}

func (t *tally) merge(other tally) {
	t.winsA += other.winsA
	t.winsB += other.winsB
	t.ties += other.ties
}

func (t tally) result() EquityResult {
	n := t.winsA + t.winsB + t.ties
	r := EquityResult{WinsA: t.winsA, WinsB: t.winsB, Ties: t.ties, Trials: n}
	if n > 0 {
		r.EquityA = (float64(t.winsA) + float64(t.ties)/2) / float64(n) * 100
		r.EquityB = (float64(t.winsB) + float64(t.ties)/2) / float64(n) * 100
	}
	return r
}

// showdown completes the board from stub and compares both holdings.
func showdown(m matchup, board Board, stub *poker.Stub) int {
	var community [5]poker.Card
	copy(community[:], board)
	copy(community[len(board):], stub.Draw(MaxBoardCards-len(board)))

	handA := poker.EvaluateHoldem(m.a, community)
	handB := poker.EvaluateHoldem(m.b, community)
	return poker.Compare(handA, handB)
}

// execute runs every task on a bounded errgroup and returns their tallies in
// task order.
func (s *Simulator) execute(ctx context.Context, tasks []task, totalTrials int, run func(context.Context, task) (tally, error)) ([]tally, error) {
	tallies := make([]tally, len(tasks))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := run(gctx, t)
			if err != nil {
				return err
			}
			tallies[i] = out
			n := done.Add(int64(t.trials))
			if s.progress != nil {
				s.progress(int(n), totalTrials)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A parent cancelled between launches leaves tasks unrun without an error.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tallies, nil
}
