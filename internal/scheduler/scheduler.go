// Package scheduler drives the periodic monitoring loop: every interval it
// fans analysis out across all eligible (subscriber, symbol) pairs.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/indicator"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

// Registry yields the subscribers to monitor and owns the liveness touch.
type Registry interface {
	ListEligible(ctx context.Context, defaultSymbols []string) ([]model.Subscriber, error)
	TouchBotActivity(ctx context.Context, userID int64) error
}

// MarketData fetches candle history for one symbol.
type MarketData interface {
	FetchKlines(ctx context.Context, symbol, interval string, limit int) (*model.PriceSeries, error)
}

// AlertSink receives actionable decisions.
type AlertSink interface {
	Emit(ctx context.Context, sub model.Subscriber, coin string, d model.Decision, snap model.IndicatorSnapshot, price float64) error
}

// Config holds the loop's timing and analysis parameters.
type Config struct {
	Interval       time.Duration // time between cycle starts
	Cooldown       time.Duration // pause after a failed cycle
	CandleInterval string        // exchange granularity, e.g. "5m"
	CandleLimit    int           // candles per fetch
	MinSeriesLen   int           // minimum candles before indicators are valid
	DefaultSymbols []string      // symbol set for admin/free accounts
	RSIPeriod      int
	MACDShort      int
	MACDLong       int
	MACDSignal     int
	MomentumPeriod int
}

// CycleStats summarizes the most recent completed cycle for observability.
type CycleStats struct {
	ID            string        `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Duration      time.Duration `json:"duration"`
	Subscribers   int           `json:"subscribers"`
	AdminTasks    int           `json:"admin_tasks"`
	CustomerTasks int           `json:"customer_tasks"`
}

// Scheduler is a two-state machine: Idle between cycles, Running during one.
// Overlapping triggers are skipped, and a failed cycle puts the loop into a
// short cooldown instead of terminating the process.
type Scheduler struct {
	cron     *cron.Cron
	registry Registry
	market   MarketData
	sink     AlertSink
	cfg      Config
	metrics  *metrics.Recorder
	log      zerolog.Logger
	ctx      context.Context

	mu            sync.Mutex
	running       bool
	cooldownUntil time.Time
	lastCycle     CycleStats
}

// New creates a scheduler. The context bounds every cycle; cancelling it is
// the external stop request.
func New(ctx context.Context, reg Registry, market MarketData, sink AlertSink, cfg Config, rec *metrics.Recorder, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		registry: reg,
		market:   market,
		sink:     sink,
		cfg:      cfg,
		metrics:  rec,
		log:      log.With().Str("component", "scheduler").Logger(),
		ctx:      ctx,
	}
}

// Start registers the cycle trigger and starts the loop.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.cfg.Interval)
	if _, err := s.cron.AddFunc(spec, s.RunCycle); err != nil {
		return fmt.Errorf("register cycle trigger: %w", err)
	}
	s.cron.Start()
	s.log.Info().Dur("interval", s.cfg.Interval).Msg("scheduler started")
	return nil
}

// Stop stops the trigger. In-flight cycles finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// Status reports the current state and the last completed cycle.
func (s *Scheduler) Status() (state string, last CycleStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state = "idle"
	if s.running {
		state = "running"
	} else if time.Now().Before(s.cooldownUntil) {
		state = "cooldown"
	}
	return state, s.lastCycle
}

// RunCycle executes one monitoring cycle. Safe to call directly (manual
// trigger); concurrent invocations beyond the first are skipped.
func (s *Scheduler) RunCycle() {
	if !s.begin() {
		return
	}
	defer s.end()

	cycleID := uuid.NewString()
	log := s.log.With().Str("cycle", cycleID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("cycle panicked, cooling down")
			s.enterCooldown()
		}
	}()

	start := time.Now()

	subs, err := s.registry.ListEligible(s.ctx, s.cfg.DefaultSymbols)
	if err != nil {
		log.Error().Err(err).Msg("listing subscribers failed, cooling down")
		s.enterCooldown()
		return
	}
	if len(subs) == 0 {
		log.Info().Msg("no eligible subscribers, sleeping until next cycle")
		return
	}

	// Fan out: one goroutine per (subscriber, symbol) pair. Tasks share no
	// mutable state; one failure never cancels siblings.
	var wg sync.WaitGroup
	var adminTasks, customerTasks int
	for _, sub := range subs {
		for _, coin := range sub.Symbols {
			coin = strings.TrimSpace(coin)
			if coin == "" {
				continue
			}
			if sub.IsAdmin {
				adminTasks++
			} else {
				customerTasks++
			}
			wg.Add(1)
			go func(sub model.Subscriber, coin string) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						log.Error().
							Int64("user_id", sub.ID).
							Str("coin", coin).
							Interface("panic", r).
							Msg("task panicked")
					}
				}()
				s.analyze(s.ctx, log, sub, coin)
			}(sub, coin)
		}
		if err := s.registry.TouchBotActivity(s.ctx, sub.ID); err != nil {
			log.Warn().Int64("user_id", sub.ID).Err(err).Msg("liveness touch failed")
		}
	}
	wg.Wait()

	finished := time.Now()
	stats := CycleStats{
		ID:            cycleID,
		StartedAt:     start.UTC(),
		FinishedAt:    finished.UTC(),
		Duration:      finished.Sub(start),
		Subscribers:   len(subs),
		AdminTasks:    adminTasks,
		CustomerTasks: customerTasks,
	}
	s.recordCycle(stats)
	s.metrics.CycleCompleted(stats.Duration.Seconds(), float64(finished.Unix()))
	log.Info().
		Int("subscribers", len(subs)).
		Int("admin_tasks", adminTasks).
		Int("customer_tasks", customerTasks).
		Dur("duration", stats.Duration).
		Msg("cycle completed")
}

// analyze runs the full pipeline for one (subscriber, coin) task: fetch,
// derive indicators, decide, emit. Every failure path skips the task quietly;
// a missing alert is the only observable symptom.
func (s *Scheduler) analyze(ctx context.Context, log zerolog.Logger, sub model.Subscriber, coin string) {
	kind := metrics.TaskCustomer
	if sub.IsAdmin {
		kind = metrics.TaskAdmin
	}
	defer s.metrics.TaskProcessed(kind)

	symbol := strings.ToUpper(coin) + "USDT"
	series, err := s.market.FetchKlines(ctx, symbol, s.cfg.CandleInterval, s.cfg.CandleLimit)
	if err != nil {
		s.metrics.FetchError()
		log.Warn().Str("symbol", symbol).Err(err).Msg("no market data this cycle")
		return
	}
	if series.Len() < s.cfg.MinSeriesLen {
		log.Warn().Str("symbol", symbol).Int("candles", series.Len()).Msg("series too short, skipping")
		return
	}

	closes := series.Closes()
	snap := model.NewIndicatorSnapshot()
	snap.RSI = indicator.Last(indicator.RSI(closes, s.cfg.RSIPeriod))
	if !snap.HasRSI() {
		log.Warn().Str("symbol", symbol).Msg("rsi undefined, skipping")
		return
	}

	needs := strategy.Needs(sub.Tier)
	if needs.MACD {
		_, _, hist := indicator.MACD(closes, s.cfg.MACDShort, s.cfg.MACDLong, s.cfg.MACDSignal)
		snap.MACDHist = indicator.Last(hist)
		if !snap.HasMACD() {
			log.Warn().Str("symbol", symbol).Msg("macd undefined, skipping")
			return
		}
	}
	if needs.Momentum {
		snap.Momentum = indicator.Last(indicator.Momentum(closes, s.cfg.MomentumPeriod))
		if !snap.HasMomentum() {
			log.Warn().Str("symbol", symbol).Msg("momentum undefined, skipping")
			return
		}
	}

	decision := strategy.Decide(sub.Tier, snap)
	if !decision.Signal.Actionable() {
		return
	}

	if err := s.sink.Emit(ctx, sub, coin, decision, snap, series.LastClose()); err != nil {
		log.Error().Int64("user_id", sub.ID).Str("symbol", symbol).Err(err).Msg("alert emit failed")
	}
}

// begin transitions Idle->Running, refusing overlap and cooldown windows.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.log.Warn().Msg("previous cycle still running, skipping trigger")
		return false
	}
	if time.Now().Before(s.cooldownUntil) {
		s.log.Warn().Time("until", s.cooldownUntil).Msg("in cooldown, skipping trigger")
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Scheduler) enterCooldown() {
	s.mu.Lock()
	s.cooldownUntil = time.Now().Add(s.cfg.Cooldown)
	s.mu.Unlock()
}

func (s *Scheduler) recordCycle(stats CycleStats) {
	s.mu.Lock()
	s.lastCycle = stats
	s.mu.Unlock()
}
