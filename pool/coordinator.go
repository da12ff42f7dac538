/*
coordinator.go - Per-user guards and allocation orchestration

PURPOSE:
  Enforces the per-user concurrency guard (one request in flight) and
  the cooldown window, then orchestrates single-account and pack
  allocation, delivery through the notification sink, and rollback of
  partially allocated packs.

GUARD SEQUENCE (per request):
  1. In-flight marker present      -> ErrBusy, no state change
  2. Cooldown in the future        -> CooldownError with remaining time
  3. Mark in flight, stamp cooldown (from acceptance, not completion),
     then allocate. The marker is removed via defer on every path.

DELIVERY POLICY:
  Delivery failure does NOT release the claimed account(s). The failure
  is reported to the caller through the original request channel; the
  account stays claimed until released manually. This holds for both
  single and pack allocation.

PACK ROLLBACK:
  Claims run in fixed category order. The first no-stock outcome rolls
  back every account already claimed in the attempt (best effort:
  rollback failures are logged, the original outcome is still reported).

SEE ALSO:
  - repository.go: Claim/release primitives
  - notify/: Sink implementations
*/
package pool

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// =============================================================================
// SINK CONTRACT - Delivery collaborator
// =============================================================================

// PayloadKind discriminates delivery payloads.
type PayloadKind string

const (
	PayloadAccount PayloadKind = "account"
	PayloadPack    PayloadKind = "pack"
	PayloadPanel   PayloadKind = "panel"
)

// Payload is the bundle handed to the notification sink. The sink treats
// it as opaque content to render and deliver.
type Payload struct {
	Kind    PayloadKind
	Account *Account
	Pack    Pack
	Stats   map[Category]CategoryStats
	Actions []ActionRef
}

// Sink delivers a payload to a user. An error means the user was
// unreachable; the coordinator decides what that implies.
type Sink interface {
	Deliver(ctx context.Context, userID string, p Payload) error
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Default cooldown windows. Pack requests cost a longer wait.
const (
	DefaultSingleCooldown = 10 * time.Second
	DefaultPackCooldown   = 20 * time.Second
)

// Coordinator owns the per-user request state. All maps are process
// memory only: a restart resets cooldowns and clears stuck markers.
type Coordinator struct {
	SingleCooldown time.Duration
	PackCooldown   time.Duration
	Now            func() time.Time

	repo *Repository
	sink Sink

	mu        sync.Mutex
	inflight  map[string]struct{}
	cooldowns map[string]time.Time
}

// NewCoordinator creates a coordinator with the default cooldown windows.
func NewCoordinator(repo *Repository, sink Sink) *Coordinator {
	return &Coordinator{
		SingleCooldown: DefaultSingleCooldown,
		PackCooldown:   DefaultPackCooldown,
		Now:            time.Now,
		repo:           repo,
		sink:           sink,
		inflight:       make(map[string]struct{}),
		cooldowns:      make(map[string]time.Time),
	}
}

// Allocation is the successful (or delivered-but-unreachable) outcome of
// a request.
type Allocation struct {
	Account *Account
	Pack    Pack
	Actions []ActionRef
}

// =============================================================================
// SINGLE REQUEST
// =============================================================================

// RequestSingle claims one account of the category for the user and
// delivers it through the sink. On delivery failure the allocation is
// still returned alongside a DeliveryError: the account stays claimed.
func (c *Coordinator) RequestSingle(ctx context.Context, userID string, cat Category, filter string) (*Allocation, error) {
	if err := c.begin(userID, c.SingleCooldown); err != nil {
		return nil, err
	}
	defer c.end(userID)

	acct, err := c.repo.ClaimAccount(ctx, cat, userID, filter)
	if err != nil {
		return nil, err
	}

	alloc := &Allocation{Account: acct, Actions: AccountActions(*acct)}
	payload := Payload{Kind: PayloadAccount, Account: acct, Actions: alloc.Actions}
	if err := c.sink.Deliver(ctx, userID, payload); err != nil {
		log.Printf("[Coordinator] delivery of %s to %s failed: %v", acct.Identifier, userID, err)
		return alloc, &DeliveryError{User: userID, Err: err}
	}
	return alloc, nil
}

// =============================================================================
// PACK REQUEST
// =============================================================================

// RequestPack claims one account from every category, in fixed order,
// and delivers the three as one grouped payload. A no-stock outcome on
// any category rolls back the accounts already claimed in this attempt.
func (c *Coordinator) RequestPack(ctx context.Context, userID, filter string) (*Allocation, error) {
	if err := c.begin(userID, c.PackCooldown); err != nil {
		return nil, err
	}
	defer c.end(userID)

	pack := Pack{}
	for _, cat := range Categories() {
		acct, err := c.repo.ClaimAccount(ctx, cat, userID, filter)
		if err != nil {
			c.rollback(ctx, pack)
			return nil, err
		}
		pack[cat] = *acct
	}

	alloc := &Allocation{Pack: pack, Actions: PackActions(pack)}
	payload := Payload{Kind: PayloadPack, Pack: pack, Actions: alloc.Actions}
	if err := c.sink.Deliver(ctx, userID, payload); err != nil {
		// Same policy as single allocation: claimed accounts stay claimed.
		log.Printf("[Coordinator] pack delivery to %s failed: %v", userID, err)
		return alloc, &DeliveryError{User: userID, Err: err}
	}
	return alloc, nil
}

// rollback releases every account claimed in a failed pack attempt.
// Best effort: a failed release is logged and must not mask the original
// allocation outcome.
func (c *Coordinator) rollback(ctx context.Context, pack Pack) {
	for _, id := range pack.Identifiers() {
		if err := c.repo.ReleaseAccount(ctx, id); err != nil {
			log.Printf("[Coordinator] rollback release of %s failed: %v", id, err)
		}
	}
}

// =============================================================================
// GUARDS
// =============================================================================

// begin runs the guard sequence and, when the request is accepted, marks
// the user in flight and stamps the cooldown. The cooldown applies from
// acceptance so a slow claim does not invite burst retries.
func (c *Coordinator) begin(userID string, window time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[userID]; busy {
		return ErrBusy
	}
	now := c.Now()
	if until, ok := c.cooldowns[userID]; ok && now.Before(until) {
		return &CooldownError{Remaining: until.Sub(now)}
	}
	c.inflight[userID] = struct{}{}
	c.cooldowns[userID] = now.Add(window)
	return nil
}

// end removes the in-flight marker. Runs on every exit path.
func (c *Coordinator) end(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, userID)
}

// InFlight reports whether the user currently has a request in progress.
func (c *Coordinator) InFlight(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[userID]
	return busy
}

// CooldownRemaining returns how long the user must still wait, or zero.
func (c *Coordinator) CooldownRemaining(userID string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.cooldowns[userID]
	if !ok {
		return 0
	}
	if rem := until.Sub(c.Now()); rem > 0 {
		return rem
	}
	return 0
}

// AsCooldown extracts a CooldownError when err carries one.
func AsCooldown(err error) (*CooldownError, bool) {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
