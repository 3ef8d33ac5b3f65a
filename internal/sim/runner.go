// Package sim drives a colony manager tick by tick, records run
// history, and fans tick statistics out to subscribers.
package sim

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/PinkDiamond1/blob-simulation/internal/board"
	"github.com/PinkDiamond1/blob-simulation/internal/colony"
	"github.com/PinkDiamond1/blob-simulation/internal/knowledge"
	"github.com/PinkDiamond1/blob-simulation/internal/store"
)

// Runner owns the tick loop around a colony manager. Exactly one tick
// runs at a time: Step, State and ResetCell serialize on an internal
// mutex, so the manager itself never sees concurrent calls.
type Runner struct {
	mu      sync.Mutex
	manager *colony.Manager
	board   *board.Board
	tick    int

	db    *store.DB
	runID int64

	subsMu sync.Mutex
	subs   map[chan store.TickStat]struct{}

	stopCh  chan struct{}
	stopped sync.Once
}

// State is a point-in-time snapshot of the simulation.
type State struct {
	Tick      int            `json:"tick"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Scouters  int            `json:"scouters"`
	Target    int            `json:"target"`
	BlobTotal float64        `json:"blob_total"`
	Cover     int            `json:"cover"`
	KnownFood []colony.Coord `json:"known_food"`
	Positions []colony.Coord `json:"positions"`
}

// NewRunner wraps a manager and its board.
func NewRunner(m *colony.Manager, b *board.Board) *Runner {
	return &Runner{
		manager: m,
		board:   b,
		subs:    make(map[chan store.TickStat]struct{}),
		stopCh:  make(chan struct{}),
	}
}

// AttachStore enables run recording: every Step inserts a tick row for
// runID.
func (r *Runner) AttachStore(db *store.DB, runID int64) {
	r.db = db
	r.runID = runID
}

// Step advances the simulation one tick and returns its statistics.
func (r *Runner) Step() store.TickStat {
	r.mu.Lock()
	r.manager.Step()
	r.tick++
	stat := store.TickStat{
		Tick:       r.tick,
		Scouters:   r.manager.Count(),
		Target:     r.manager.Target(),
		BlobTotal:  r.board.BlobTotal(),
		Cover:      r.board.Cover(),
		KnownFoods: len(r.manager.KnownFood()),
	}
	r.mu.Unlock()

	if r.db != nil {
		if err := r.db.RecordTick(r.runID, stat); err != nil {
			log.Printf("sim: record tick %d: %v", stat.Tick, err)
		}
	}
	r.publish(stat)
	return stat
}

// Run advances n ticks and returns the last tick's statistics.
func (r *Runner) Run(n int) store.TickStat {
	var stat store.TickStat
	for i := 0; i < n; i++ {
		stat = r.Step()
	}
	return stat
}

// State snapshots the current simulation without advancing it.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	width, height := r.board.Size()
	return State{
		Tick:      r.tick,
		Width:     width,
		Height:    height,
		Scouters:  r.manager.Count(),
		Target:    r.manager.Target(),
		BlobTotal: r.board.BlobTotal(),
		Cover:     r.board.Cover(),
		KnownFood: r.manager.KnownFood(),
		Positions: r.manager.Positions(),
	}
}

// ResetCell clears a board cell and everything the colony holds there:
// food on the board, known food, and any scouters standing on it.
func (r *Runner) ResetCell(x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board.SetFood(x, y, false)
	r.manager.Reset(x, y)
}

// Knowledge returns the manager's persisted parameter record.
func (r *Runner) Knowledge() knowledge.Knowledge {
	return r.manager.Knowledge()
}

// Subscribe registers a tick-stat listener. Slow subscribers drop
// stats rather than stall the tick loop. The returned func
// unsubscribes.
func (r *Runner) Subscribe() (<-chan store.TickStat, func()) {
	ch := make(chan store.TickStat, 16)
	r.subsMu.Lock()
	r.subs[ch] = struct{}{}
	r.subsMu.Unlock()

	return ch, func() {
		r.subsMu.Lock()
		delete(r.subs, ch)
		r.subsMu.Unlock()
	}
}

func (r *Runner) publish(stat store.TickStat) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for ch := range r.subs {
		select {
		case ch <- stat:
		default:
		}
	}
}

// Start steps the simulation on a fixed interval until Stop.
func (r *Runner) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Step()
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the background tick loop.
func (r *Runner) Stop() {
	r.stopped.Do(func() { close(r.stopCh) })
}
