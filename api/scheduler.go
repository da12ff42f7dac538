/*
scheduler.go - Live availability panel scheduler

PURPOSE:
  Periodically recomputes availability numbers from the ledger and
  pushes a refreshed panel to every subscribed target, so operators
  see stock levels without polling the stats endpoint. Also keeps the
  availability gauges exported at /metrics current.

DESIGN:
  - Runs a background goroutine with configurable refresh interval
  - Refreshes immediately on start, then on every tick
  - Delivery failures are logged and retried on the next tick

CONFIGURATION:
  - RefreshInterval: How often to refresh (default: 1 minute)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewPanelScheduler(stats, sink, targets)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - pool/stats.go: Availability computation
  - pool/coordinator.go: Sink and payload definitions
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/account-pool/pool"
)

// PanelScheduler keeps availability panels and gauges up to date.
type PanelScheduler struct {
	Stats           *pool.Stats
	Sink            pool.Sink
	Targets         []string
	RefreshInterval time.Duration
	Enabled         bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPanelScheduler creates a new scheduler. Targets are the delivery
// destinations that receive the refreshed panel payload.
func NewPanelScheduler(stats *pool.Stats, sink pool.Sink, targets []string) *PanelScheduler {
	return &PanelScheduler{
		Stats:           stats,
		Sink:            sink,
		Targets:         targets,
		RefreshInterval: 1 * time.Minute,
		Enabled:         true,
		stop:            make(chan bool),
	}
}

// Start begins the scheduler.
func (ps *PanelScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		log.Println("[Panel] Disabled, not starting")
		return
	}

	ps.ticker = time.NewTicker(ps.RefreshInterval)
	ps.wg.Add(1)

	go ps.run()

	log.Printf("[Panel] Started with refresh interval: %v", ps.RefreshInterval)
}

// Stop stops the scheduler.
func (ps *PanelScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		log.Println("[Panel] Stopped")
	}
}

// RunNow triggers a refresh outside the tick cycle. Useful in tests and
// for the manual refresh endpoint of an admin dashboard.
func (ps *PanelScheduler) RunNow() {
	ps.refresh()
}

func (ps *PanelScheduler) run() {
	defer ps.wg.Done()

	// Refresh immediately on start
	ps.refresh()

	for {
		select {
		case <-ps.ticker.C:
			ps.refresh()
		case <-ps.stop:
			return
		}
	}
}

func (ps *PanelScheduler) refresh() {
	ctx := context.Background()

	stats, err := ps.Stats.Compute(ctx)
	if err != nil {
		log.Printf("[Panel] Error computing availability: %v", err)
		return
	}

	for cat, cs := range stats {
		availableAccounts.WithLabelValues(string(cat)).Set(float64(cs.Available))
	}

	if ps.Sink == nil || len(ps.Targets) == 0 {
		return
	}

	payload := pool.Payload{Kind: pool.PayloadPanel, Stats: stats}
	delivered := 0
	for _, target := range ps.Targets {
		if err := ps.Sink.Deliver(ctx, target, payload); err != nil {
			log.Printf("[Panel] Error delivering panel to %s: %v", target, err)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		log.Printf("[Panel] Refreshed %d panel(s)", delivered)
	}
}
