/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface, decoupled from the domain types
  so the wire contract can evolve without touching the engine.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/account-pool/pool"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ClaimRequest asks for one account of a category.
type ClaimRequest struct {
	User     string `json:"user"`
	Category string `json:"category"`
	Filter   string `json:"filter,omitempty"` // ban-exclusion server name
}

// PackRequest asks for one account from every category.
type PackRequest struct {
	User   string `json:"user"`
	Filter string `json:"filter,omitempty"`
}

// ReleaseRequest returns an account to the pool.
type ReleaseRequest struct {
	Identifier string `json:"identifier"`
}

// BanRequest reports a ban for an account.
type BanRequest struct {
	Identifier string `json:"identifier"`
	Server     string `json:"server"`
}

// ImportRequest uploads raw account lines for one category.
type ImportRequest struct {
	Category string `json:"category"`
	Lines    string `json:"lines"`
}

// DispatchRequest replays a follow-up action token.
type DispatchRequest struct {
	User   string `json:"user"`
	Ref    string `json:"ref"`
	Server string `json:"server,omitempty"` // required for ban actions
}

// VerifyRequest checks an access code for a user.
type VerifyRequest struct {
	User string `json:"user"`
	Code string `json:"code"`
}

// MintRequest creates fresh access codes.
type MintRequest struct {
	Count   int `json:"count"`
	TTLDays int `json:"ttl_days,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AccountDTO is a delivered account in API responses.
type AccountDTO struct {
	Category   string   `json:"category"`
	Identifier string   `json:"identifier"`
	Secret     string   `json:"secret"`
	Token      string   `json:"token,omitempty"`
	Bans       []string `json:"bans,omitempty"`
}

// AllocationDTO is the outcome of a claim or pack request.
type AllocationDTO struct {
	Account   *AccountDTO           `json:"account,omitempty"`
	Pack      map[string]AccountDTO `json:"pack,omitempty"`
	Actions   []string              `json:"actions"`
	Delivered bool                  `json:"delivered"`
}

// CategoryStatsDTO mirrors pool.CategoryStats on the wire.
type CategoryStatsDTO struct {
	Total          int            `json:"total"`
	Claimed        int            `json:"claimed"`
	Available      int            `json:"available"`
	FullyAvailable int            `json:"fully_available"`
	BannedOn       map[string]int `json:"banned_on,omitempty"`
	Utilization    string         `json:"utilization"` // percentage, 1dp
}

// ImportResultDTO reports a bulk import batch.
type ImportResultDTO struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Malformed  int `json:"malformed"`
}

// CodeDTO is a retrieved one-time code.
type CodeDTO struct {
	Code        string `json:"code"`
	SecondsLeft int    `json:"seconds_left,omitempty"`
}

// MintedCodesDTO lists freshly minted access codes.
type MintedCodesDTO struct {
	Codes []string `json:"codes"`
}

// RawRowDTO is an operator's view of one ledger row.
type RawRowDTO struct {
	Category string   `json:"category"`
	Row      int      `json:"row"`
	Cells    []string `json:"cells"`
}

// MessageResponse is a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a human-readable failure. Internal detail stays in
// operator logs, never here.
type ErrorResponse struct {
	Error      string  `json:"error"`
	RetryAfter float64 `json:"retry_after_seconds,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAccountDTO(a pool.Account) AccountDTO {
	return AccountDTO{
		Category:   string(a.Category),
		Identifier: a.Identifier,
		Secret:     a.Secret,
		Token:      a.Token,
		Bans:       a.Bans,
	}
}

func toAllocationDTO(alloc *pool.Allocation, delivered bool) AllocationDTO {
	dto := AllocationDTO{Delivered: delivered}
	if alloc.Account != nil {
		a := toAccountDTO(*alloc.Account)
		dto.Account = &a
	}
	if len(alloc.Pack) > 0 {
		dto.Pack = make(map[string]AccountDTO, len(alloc.Pack))
		for cat, acct := range alloc.Pack {
			dto.Pack[string(cat)] = toAccountDTO(acct)
		}
	}
	for _, ref := range alloc.Actions {
		dto.Actions = append(dto.Actions, string(ref))
	}
	return dto
}

func toStatsDTO(stats map[pool.Category]pool.CategoryStats) map[string]CategoryStatsDTO {
	out := make(map[string]CategoryStatsDTO, len(stats))
	for cat, cs := range stats {
		out[string(cat)] = CategoryStatsDTO{
			Total:          cs.Total,
			Claimed:        cs.Claimed,
			Available:      cs.Available,
			FullyAvailable: cs.FullyAvailable,
			BannedOn:       cs.BannedOn,
			Utilization:    cs.Utilization.String(),
		}
	}
	return out
}
