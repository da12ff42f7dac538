package notify

import (
	"context"
	"log"
	"sync"

	"github.com/warp/account-pool/pool"
)

// =============================================================================
// MEMORY SINK - Records deliveries (for testing)
// =============================================================================

// Delivery is one recorded sink call.
type Delivery struct {
	UserID  string
	Payload pool.Payload
}

// Memory records every delivery in order. Fail() makes subsequent
// deliveries fail, to exercise the unreachable-recipient paths.
type Memory struct {
	mu         sync.Mutex
	deliveries []Delivery
	failWith   error
}

func NewMemory() *Memory {
	return &Memory{}
}

// Fail makes every following Deliver return err. Pass nil to heal.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *Memory) Deliver(_ context.Context, userID string, p pool.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.deliveries = append(m.deliveries, Delivery{UserID: userID, Payload: p})
	return nil
}

// Deliveries returns a copy of everything delivered so far.
func (m *Memory) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Delivery(nil), m.deliveries...)
}

// =============================================================================
// LOG SINK - Dev fallback when no webhook endpoint is configured
// =============================================================================

// Log writes deliveries to the process log instead of pushing them
// anywhere. Secrets are not logged.
type Log struct{}

func (Log) Deliver(_ context.Context, userID string, p pool.Payload) error {
	switch p.Kind {
	case pool.PayloadAccount:
		log.Printf("[Notify] would deliver %s account %s to %s",
			p.Account.Category, p.Account.Identifier, userID)
	case pool.PayloadPack:
		log.Printf("[Notify] would deliver pack %v to %s", p.Pack.Identifiers(), userID)
	default:
		log.Printf("[Notify] would deliver %s payload to %s", p.Kind, userID)
	}
	return nil
}
