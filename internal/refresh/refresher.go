package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/metrics"
	"github.com/Checker-Finance/market-radar/pkg/model"
)

// Source produces the markets of one fetch cycle.
type Source interface {
	Fetch(ctx context.Context) ([]model.Market, error)
}

// Sink receives every successful snapshot (cache, event bus, ...).
type Sink interface {
	Publish(ctx context.Context, snap model.Snapshot) error
}

// State is an immutable view of the latest refresh outcome. Snapshot is the
// newest successful cycle and survives later failures; Err is the error of
// the most recent cycle, nil when it succeeded.
type State struct {
	Snapshot  *model.Snapshot
	Err       error
	UpdatedAt time.Time
}

// Config controls the refresh cadence.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 20 * time.Second
)

// Refresher polls a Source on a fixed interval and swaps in each result
// atomically. Ticks never wait for a previous cycle; when cycles overlap the
// one that finishes last wins.
type Refresher struct {
	logger   *zap.Logger
	source   Source
	sinks    []Sink
	interval time.Duration
	timeout  time.Duration

	state    atomic.Pointer[State]
	onUpdate func(*State)
	now      func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New constructs a Refresher. Zero durations fall back to the defaults.
func New(logger *zap.Logger, source Source, cfg Config, sinks ...Sink) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	r := &Refresher{
		logger:   logger,
		source:   source,
		sinks:    sinks,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	r.state.Store(&State{})
	return r
}

// OnUpdate registers a callback run after every cycle. Set it before Start.
func (r *Refresher) OnUpdate(fn func(*State)) {
	r.onUpdate = fn
}

// Seed installs snap as the current snapshot unless a cycle already produced one.
func (r *Refresher) Seed(snap model.Snapshot) {
	seeded := &State{Snapshot: &snap, UpdatedAt: snap.FetchedAt}
	for {
		prev := r.state.Load()
		if prev.Snapshot != nil {
			return
		}
		if r.state.CompareAndSwap(prev, seeded) {
			metrics.SetSnapshot(snap.Len(), snap.FetchedAt)
			r.logger.Info("refresh.seeded",
				zap.String("snapshot_id", snap.ID.String()),
				zap.Int("markets", snap.Len()))
			return
		}
	}
}

// Current returns the latest state. It never returns nil.
func (r *Refresher) Current() *State {
	return r.state.Load()
}

// RefreshNow runs one cycle synchronously and returns the resulting state.
func (r *Refresher) RefreshNow(ctx context.Context) *State {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := r.now()
	markets, err := r.source.Fetch(ctx)
	fetchedAt := r.now()

	if err != nil {
		metrics.IncRefresh("error")
		metrics.ObserveDuration(metrics.RefreshDuration, start, "error")
		r.logger.Warn("refresh.cycle_failed", zap.Error(err), zap.Duration("elapsed", fetchedAt.Sub(start)))
		return r.commit(func(prev *State) *State {
			return &State{Snapshot: prev.Snapshot, Err: err, UpdatedAt: fetchedAt}
		})
	}

	snap := model.NewSnapshot(markets, fetchedAt)
	metrics.IncRefresh("ok")
	metrics.ObserveDuration(metrics.RefreshDuration, start, "ok")
	metrics.SetSnapshot(snap.Len(), snap.FetchedAt)
	r.logger.Info("refresh.cycle_ok",
		zap.String("snapshot_id", snap.ID.String()),
		zap.Int("markets", snap.Len()),
		zap.Duration("elapsed", fetchedAt.Sub(start)))

	st := r.commit(func(*State) *State {
		return &State{Snapshot: &snap, UpdatedAt: fetchedAt}
	})
	r.publish(ctx, snap)
	return st
}

// Start runs a cycle immediately and then one per interval until ctx is
// done or Stop is called. It returns without blocking.
func (r *Refresher) Start(ctx context.Context) {
	go r.RefreshNow(ctx)

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("refresh.stopped", zap.String("reason", "context_done"))
				return
			case <-r.stopCh:
				r.logger.Info("refresh.stopped", zap.String("reason", "shutdown"))
				return
			case <-ticker.C:
				go r.RefreshNow(ctx)
			}
		}
	}()
}

// Stop ends the ticker loop. In-flight cycles finish on their own.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// commit derives the next state from the current one and swaps it in.
func (r *Refresher) commit(next func(prev *State) *State) *State {
	for {
		prev := r.state.Load()
		st := next(prev)
		if r.state.CompareAndSwap(prev, st) {
			if r.onUpdate != nil {
				r.onUpdate(st)
			}
			return st
		}
	}
}

func (r *Refresher) publish(ctx context.Context, snap model.Snapshot) {
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, snap); err != nil {
			metrics.IncError("refresh", "sink_publish")
			r.logger.Warn("refresh.sink_failed",
				zap.String("snapshot_id", snap.ID.String()),
				zap.Error(err))
		}
	}
}
