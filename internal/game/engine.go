// Package game implements the round lifecycle controller: the finite-state
// progression Viewing -> Guessing -> Scored -> next round, its timers, and
// the staleness handling for asynchronous lookup results.
package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/lookup"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/UnknownOlympus/wayfarer/internal/ratelimit"
	"github.com/facebookgo/clock"
)

// ErrNoLocations is surfaced when repeated resampling found no point with
// street-level imagery. It blocks round progression until the next Skip.
var ErrNoLocations = errors.New("no locations with street-level imagery available")

// Default round timings and thresholds.
const (
	DefaultViewDuration  = 10 * time.Second
	DefaultAdvanceDelay  = 5 * time.Second
	DefaultSuccessRadius = 3000.0 // meters
	DefaultMaxResamples  = 5
)

// Config holds the tunable round parameters.
type Config struct {
	Box           models.BoundingBox // play area
	City          string             // city name used in hint text
	ViewDuration  time.Duration      // visibility budget before guessing opens
	AdvanceDelay  time.Duration      // pause on the score screen before the next round
	SuccessRadius float64            // guess-to-truth distance counted as a success, meters
	MaxResamples  int                // consecutive imagery misses tolerated per round start
}

// Sampler produces random coordinates inside a bounding box.
type Sampler interface {
	Sample(box models.BoundingBox) models.Coordinate
}

// Engine is the round state machine. All state lives behind one mutex and
// every event funnels through a single mutation entry point, so illegal
// combinations (a scored round without a guess, a countdown tick after a
// skip) cannot occur. Asynchronous lookup results carry the generation of
// the round that issued them; results from an earlier generation are
// discarded.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	clk     clock.Clock
	log     *slog.Logger
	metrics *metrics.Metrics
	limiter *ratelimit.Limiter
	lookups lookup.Provider
	sampler Sampler

	ctx        context.Context
	generation uint64
	round      uint64
	phase      models.Phase
	truth      models.Coordinate
	hasTruth   bool
	panoID     string
	guess      *models.Coordinate
	countdown  int
	score      int
	distance   float64
	outcome    models.Outcome
	hint       models.Hint
	limited    bool
	limitedMsg string
	fatal      error
	misses     int // consecutive imagery misses for the current round start

	tickTimer    *clock.Timer
	advanceTimer *clock.Timer
	deferTimer   *clock.Timer
	stopped      bool
}

// New creates an engine. The bounding box must be valid; zero timings fall
// back to the defaults. A nil clock falls back to the wall clock.
func New(
	cfg Config,
	clk clock.Clock,
	limiter *ratelimit.Limiter,
	provider lookup.Provider,
	sampler Sampler,
	appMetrics *metrics.Metrics,
	log *slog.Logger,
) (*Engine, error) {
	if err := cfg.Box.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if cfg.ViewDuration <= 0 {
		cfg.ViewDuration = DefaultViewDuration
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = DefaultAdvanceDelay
	}
	if cfg.SuccessRadius <= 0 {
		cfg.SuccessRadius = DefaultSuccessRadius
	}
	if cfg.MaxResamples <= 0 {
		cfg.MaxResamples = DefaultMaxResamples
	}

	return &Engine{
		cfg:     cfg,
		clk:     clk,
		log:     log,
		metrics: appMetrics,
		limiter: limiter,
		lookups: provider,
		sampler: sampler,
		ctx:     context.Background(),
		phase:   models.PhaseViewing,
		outcome: models.OutcomeNone,
	}, nil
}

// Start launches the first round. The context bounds all external lookups
// issued by the engine.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.ctx = ctx
	e.startRoundLocked()
}

// Stop cancels all outstanding timers. Lookup results arriving afterwards
// are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.cancelTimersLocked()
}

// SubmitGuess scores the first map click of the round. Clicks outside the
// guessing phase, or after a guess has been accepted, are ignored.
func (e *Engine) SubmitGuess(c models.Coordinate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || e.phase != models.PhaseGuessing || e.guess != nil {
		return
	}

	guess := c
	e.guess = &guess
	e.distance = geo.Distance(e.truth, c)
	points := geo.PointsFor(e.distance)
	e.score += points
	if e.distance <= e.cfg.SuccessRadius {
		e.outcome = models.OutcomeSuccess
	} else {
		e.outcome = models.OutcomeFailure
	}
	e.phase = models.PhaseScored

	e.metrics.GuessesScored.WithLabelValues(string(e.outcome)).Inc()
	e.metrics.PointsAwarded.Observe(float64(points))
	e.log.Info("guess scored",
		"round", e.round, "distance_m", e.distance, "points", points, "outcome", e.outcome, "total", e.score)

	gen := e.generation
	e.advanceTimer = e.clk.AfterFunc(e.cfg.AdvanceDelay, func() { e.autoAdvance(gen) })
}

// Skip abandons the current round and starts the next one immediately.
// It works from any phase and clears a fatal no-locations condition.
func (e *Engine) Skip() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.log.Info("round skipped", "round", e.round, "phase", e.phase)
	e.startRoundLocked()
}

// RequestHint resolves the per-round hint, at most once per round. When the
// rate limiter denies the reverse geocoding, or the lookup fails, the hint
// degrades to the quadrant-only text.
func (e *Engine) RequestHint() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || e.fatal != nil || e.hint.Used || !e.hasTruth || e.phase == models.PhaseScored {
		return
	}

	e.hint.Used = true
	// The quadrant needs nothing external; show it right away and upgrade
	// it if an address arrives.
	e.hint.Text = geo.HintText(e.truth, e.cfg.Box, e.cfg.City, "")

	if !e.limiter.Allow() {
		e.limited = true
		e.limitedMsg = "Hint lookups are rate limited; showing the quadrant only."
		e.metrics.RateLimitedTotal.Inc()
		e.log.Warn("hint lookup denied by rate limiter", "round", e.round)
		return
	}

	gen := e.generation
	coord := e.truth
	ctx := e.ctx
	go e.resolveAddress(ctx, gen, coord)
}

// HandlePanoramaResult feeds the outcome of an imagery probe back into the
// machine. Results tagged with a stale generation are discarded. A miss
// triggers a resample; too many consecutive misses surface ErrNoLocations.
func (e *Engine) HandlePanoramaResult(gen uint64, found bool, panoID string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen != e.generation {
		e.log.Debug("discarding stale panorama result", "generation", gen)
		return
	}

	if err != nil {
		e.metrics.LookupErrors.Inc()
		e.log.Error("panorama lookup failed", "error", err)
	}

	if err == nil && found {
		e.panoID = panoID
		e.misses = 0
		e.enterViewingLocked()
		return
	}

	e.misses++
	if e.misses >= e.cfg.MaxResamples {
		e.fatal = ErrNoLocations
		e.log.Error("giving up on round start, no usable locations", "attempts", e.misses)
		return
	}
	e.log.Info("no imagery at sampled point, resampling", "attempt", e.misses)
	e.beginLookupLocked()
}

// HandleGeocodeResult upgrades the hint with a resolved address. Stale or
// failed lookups leave the quadrant-only fallback in place.
func (e *Engine) HandleGeocodeResult(gen uint64, address string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen != e.generation {
		e.log.Debug("discarding stale geocode result", "generation", gen)
		return
	}
	if err != nil {
		e.metrics.LookupErrors.Inc()
		e.log.Warn("reverse geocoding failed, keeping quadrant hint", "error", err)
		return
	}
	e.hint.Text = geo.HintText(e.truth, e.cfg.Box, e.cfg.City, address)
}

// Snapshot returns the current view of the round for the presentation
// surface. The truth coordinate is hidden until the round is scored.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := models.Snapshot{
		Round:              e.round,
		Phase:              e.phase,
		CountdownRemaining: e.countdown,
		Score:              e.score,
		DistanceMeters:     e.distance,
		Outcome:            e.outcome,
		Hint:               e.hint,
		RateLimited:        e.limited,
		RateLimitMessage:   e.limitedMsg,
	}
	if e.phase == models.PhaseScored && e.hasTruth {
		truth := e.truth
		snap.Truth = &truth
	}
	if e.guess != nil {
		guess := *e.guess
		snap.Guess = &guess
	}
	if e.fatal != nil {
		snap.Fatal = e.fatal.Error()
	}
	return snap
}

// startRoundLocked resets per-round state and begins the gated location
// lookup. Any timers scheduled for the previous round are cancelled first
// so stale callbacks cannot mutate the new round.
func (e *Engine) startRoundLocked() {
	e.cancelTimersLocked()
	e.generation++

	e.phase = models.PhaseViewing
	e.hasTruth = false
	e.panoID = ""
	e.guess = nil
	e.distance = 0
	e.outcome = models.OutcomeNone
	e.hint = models.Hint{}
	e.countdown = int(e.cfg.ViewDuration / time.Second)
	e.limited = false
	e.limitedMsg = ""
	e.fatal = nil
	e.misses = 0

	e.beginLookupLocked()
}

// beginLookupLocked samples a candidate truth and dispatches the panorama
// probe, deferring the whole round start when the limiter is locked out.
func (e *Engine) beginLookupLocked() {
	if !e.limiter.Allow() {
		e.limited = true
		e.limitedMsg = "Lookup quota exhausted; the next round starts when capacity returns."
		e.metrics.RateLimitedTotal.Inc()

		wait := e.limiter.LockedUntil().Sub(e.clk.Now())
		if wait < time.Second {
			wait = time.Second
		}
		gen := e.generation
		e.log.Warn("round start deferred by rate limiter", "resume_in", wait)
		e.deferTimer = e.clk.AfterFunc(wait, func() { e.resumeDeferred(gen) })
		return
	}

	e.truth = e.sampler.Sample(e.cfg.Box)
	e.hasTruth = true

	gen := e.generation
	coord := e.truth
	ctx := e.ctx
	go e.resolvePanorama(ctx, gen, coord)
}

// enterViewingLocked opens the round once imagery is confirmed: the
// countdown starts ticking at 1 Hz.
func (e *Engine) enterViewingLocked() {
	e.round++
	e.metrics.RoundsStarted.Inc()
	e.log.Info("round started", "round", e.round, "countdown", e.countdown, "pano", e.panoID)
	e.armTickLocked()
}

func (e *Engine) armTickLocked() {
	gen := e.generation
	e.tickTimer = e.clk.AfterFunc(time.Second, func() { e.tick(gen) })
}

// tick decrements the countdown; at zero the machine moves to Guessing and
// the ticking stops.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen != e.generation || e.phase != models.PhaseViewing {
		return
	}

	e.countdown--
	if e.countdown > 0 {
		e.armTickLocked()
		return
	}
	e.countdown = 0
	e.phase = models.PhaseGuessing
	e.log.Debug("countdown expired, accepting guesses", "round", e.round)
}

func (e *Engine) autoAdvance(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen != e.generation {
		return
	}
	e.startRoundLocked()
}

func (e *Engine) resumeDeferred(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen != e.generation {
		return
	}
	e.limited = false
	e.limitedMsg = ""
	e.beginLookupLocked()
}

func (e *Engine) resolvePanorama(ctx context.Context, gen uint64, coord models.Coordinate) {
	start := e.clk.Now()
	pano, err := e.lookups.LookupPanorama(ctx, coord)
	e.metrics.LookupSeconds.WithLabelValues("panorama").Observe(e.clk.Now().Sub(start).Seconds())
	e.HandlePanoramaResult(gen, pano.Found, pano.PanoID, err)
}

func (e *Engine) resolveAddress(ctx context.Context, gen uint64, coord models.Coordinate) {
	start := e.clk.Now()
	address, err := e.lookups.ReverseGeocode(ctx, coord)
	e.metrics.LookupSeconds.WithLabelValues("geocode").Observe(e.clk.Now().Sub(start).Seconds())
	e.HandleGeocodeResult(gen, address, err)
}

func (e *Engine) cancelTimersLocked() {
	if e.tickTimer != nil {
		e.tickTimer.Stop()
		e.tickTimer = nil
	}
	if e.advanceTimer != nil {
		e.advanceTimer.Stop()
		e.advanceTimer = nil
	}
	if e.deferTimer != nil {
		e.deferTimer.Stop()
		e.deferTimer = nil
	}
}
