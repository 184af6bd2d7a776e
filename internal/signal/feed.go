// Package signal simulates a slowly fluctuating biosignal headset feed.
// Values are synthetic: each field drifts by a bounded random walk and is
// clamped to [0,100]. Not real EEG data.
package signal

import (
	"math/rand"
	"sync"
	"time"
)

// Vector is one snapshot of the simulated biosignal, every field in [0,100].
type Vector struct {
	Attention   float64 `json:"attention"`
	Relaxation  float64 `json:"relaxation"`
	Stress      float64 `json:"stress"`
	Recognition float64 `json:"recognition"`
	Theta       float64 `json:"theta"`
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	BlinkRate   float64 `json:"blinkRate"`
}

// Resting is the vector a fresh feed starts from.
func Resting() Vector {
	return Vector{
		Attention:   50,
		Relaxation:  60,
		Stress:      20,
		Recognition: 40,
		Theta:       40,
		Alpha:       50,
		Beta:        30,
		BlinkRate:   20,
	}
}

// Adjustment overrides named fields of the current vector. Nil fields are
// left alone; set fields are clamped, never rejected.
type Adjustment struct {
	Attention   *float64 `json:"attention,omitempty"`
	Relaxation  *float64 `json:"relaxation,omitempty"`
	Stress      *float64 `json:"stress,omitempty"`
	Recognition *float64 `json:"recognition,omitempty"`
	Theta       *float64 `json:"theta,omitempty"`
	Alpha       *float64 `json:"alpha,omitempty"`
	Beta        *float64 `json:"beta,omitempty"`
	BlinkRate   *float64 `json:"blinkRate,omitempty"`
}

// Feed holds one current vector plus a bounded history, and pushes a fresh
// snapshot to subscribers on every tick. It is an injectable instance, not
// package state; tests can run feeds side by side.
type Feed struct {
	mu        sync.Mutex
	current   Vector
	history   []Vector
	histCap   int
	subs      map[int]chan Vector
	nextSub   int
	rng       *rand.Rand
	magnitude float64
	period    time.Duration
	stopCh    chan struct{}
	running   bool
}

// Option configures a Feed at construction.
type Option func(*Feed)

// WithPeriod sets the tick period (default 1s).
func WithPeriod(d time.Duration) Option {
	return func(f *Feed) { f.period = d }
}

// WithMagnitude sets the max per-tick drift per field (default 5).
func WithMagnitude(m float64) Option {
	return func(f *Feed) { f.magnitude = m }
}

// WithHistorySize sets how many snapshots are retained (default 20).
func WithHistorySize(n int) Option {
	return func(f *Feed) { f.histCap = n }
}

// WithSeed fixes the random source for deterministic tests.
func WithSeed(seed int64) Option {
	return func(f *Feed) { f.rng = rand.New(rand.NewSource(seed)) }
}

// NewFeed creates a stopped feed at the resting vector.
func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		current:   Resting(),
		histCap:   20,
		subs:      make(map[int]chan Vector),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		magnitude: 5,
		period:    time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.history = append(f.history, f.current)
	return f
}

// Start launches the tick loop. Starting an already-running feed is a no-op.
func (f *Feed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.running = true
	f.stopCh = make(chan struct{})
	go f.loop(f.stopCh)
}

// Stop halts the tick loop. Stopping a stopped feed is a no-op.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.running = false
	close(f.stopCh)
}

// Running reports whether the tick loop is active.
func (f *Feed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *Feed) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(f.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			f.Tick()
		}
	}
}

// Tick perturbs every field by a uniform delta in [-magnitude, +magnitude]
// and publishes the new snapshot. Exposed so tests can drive the feed
// without a timer.
func (f *Feed) Tick() Vector {
	f.mu.Lock()
	v := f.current
	next := Vector{
		Attention:   f.fluctuate(v.Attention),
		Relaxation:  f.fluctuate(v.Relaxation),
		Stress:      f.fluctuate(v.Stress),
		Recognition: f.fluctuate(v.Recognition),
		Theta:       f.fluctuate(v.Theta),
		Alpha:       f.fluctuate(v.Alpha),
		Beta:        f.fluctuate(v.Beta),
		BlinkRate:   f.fluctuate(v.BlinkRate),
	}
	f.replace(next)
	subs := make([]chan Vector, 0, len(f.subs))
	for _, ch := range f.subs {
		subs = append(subs, ch)
	}
	f.mu.Unlock()

	// Non-blocking delivery: a slow subscriber drops ticks rather than
	// delaying the loop.
	for _, ch := range subs {
		select {
		case ch <- next:
		default:
		}
	}
	return next
}

// fluctuate drifts a value and clamps it. Caller holds f.mu.
func (f *Feed) fluctuate(v float64) float64 {
	delta := f.rng.Float64()*f.magnitude*2 - f.magnitude
	return Clamp(v + delta)
}

// replace installs a new current vector wholesale and appends it to the
// bounded history. Caller holds f.mu.
func (f *Feed) replace(v Vector) {
	f.current = v
	f.history = append(f.history, v)
	if len(f.history) > f.histCap {
		f.history = f.history[len(f.history)-f.histCap:]
	}
}

// Snapshot returns a copy of the current vector.
func (f *Feed) Snapshot() Vector {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// History returns a copy of the retained snapshots, oldest first.
func (f *Feed) History() []Vector {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Vector, len(f.history))
	copy(out, f.history)
	return out
}

// RecentAttention returns up to n most recent attention readings, oldest first.
func (f *Feed) RecentAttention(n int) []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	hist := f.history
	if n < len(hist) {
		hist = hist[len(hist)-n:]
	}
	out := make([]float64, len(hist))
	for i, v := range hist {
		out[i] = v.Attention
	}
	return out
}

// Adjust applies explicit clamped overrides to named fields and publishes
// the result as a new snapshot.
func (f *Feed) Adjust(adj Adjustment) Vector {
	f.mu.Lock()
	v := f.current
	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = Clamp(*src)
		}
	}
	apply(&v.Attention, adj.Attention)
	apply(&v.Relaxation, adj.Relaxation)
	apply(&v.Stress, adj.Stress)
	apply(&v.Recognition, adj.Recognition)
	apply(&v.Theta, adj.Theta)
	apply(&v.Alpha, adj.Alpha)
	apply(&v.Beta, adj.Beta)
	apply(&v.BlinkRate, adj.BlinkRate)
	f.replace(v)
	f.mu.Unlock()
	return v
}

// Subscribe registers a buffered channel that receives each tick's snapshot.
// The returned cancel func unregisters it. Delivery is best-effort.
func (f *Feed) Subscribe() (<-chan Vector, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	ch := make(chan Vector, 1)
	f.subs[id] = ch
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Clamp bounds a reading to [0,100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
