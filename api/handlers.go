/*
handlers.go - HTTP handlers for the account distribution engine

PURPOSE:
  Exposes the allocation engine over REST. Handles request parsing,
  validation, JSON serialization, and delegates to the domain packages.
  The chat-gateway adapter in front of this API owns all rendering and
  the verified-role authorization gate; requests arriving here are
  assumed authorized.

ENDPOINTS:
  Accounts:
    POST /api/accounts/claim    Claim one account of a category
    POST /api/accounts/pack     Claim one account from every category
    POST /api/accounts/release  Return an account to the pool
    POST /api/accounts/ban      Report a ban for an account
    POST /api/accounts/import   Bulk-import account lines

  Follow-ups:
    POST /api/actions/dispatch  Replay a delivered action token

  Access codes:
    POST /api/auth/verify       Verify an access code
    POST /api/admin/authcodes   Mint fresh access codes

  Operations:
    GET  /api/stats                     Availability dashboard numbers
    GET  /api/admin/rows/{category}/{n} Raw ledger row (debugging)

ERROR HANDLING:
  Expected-empty outcomes map to 404/409/429 with informational
  messages; store and delivery failures map to 502 and are retryable.
  Internal error detail goes to the operator log only.

SEE ALSO:
  - dto.go: Request/response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/account-pool/factory"
	"github.com/warp/account-pool/otp"
	"github.com/warp/account-pool/pool"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo    *pool.Repository
	Coord   *pool.Coordinator
	Stats   *pool.Stats
	Codes   *pool.AuthCodes
	Factory *factory.RecordFactory
	OTP     *otp.Client
	Mail    otp.MailCodeSource // nil when mail retrieval is not configured

	AuthCodeTTL time.Duration
}

// NewHandler wires a handler over a single ledger-backed engine.
func NewHandler(repo *pool.Repository, coord *pool.Coordinator, stats *pool.Stats, codes *pool.AuthCodes) *Handler {
	return &Handler{
		Repo:        repo,
		Coord:       coord,
		Stats:       stats,
		Codes:       codes,
		Factory:     factory.NewRecordFactory(),
		OTP:         otp.NewClient(),
		AuthCodeTTL: 30 * 24 * time.Hour,
	}
}

// =============================================================================
// ALLOCATION
// =============================================================================

// ClaimAccount handles POST /api/accounts/claim.
func (h *Handler) ClaimAccount(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	cat, err := pool.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alloc, err := h.Coord.RequestSingle(r.Context(), req.User, cat, strings.TrimSpace(req.Filter))
	claimsTotal.WithLabelValues(string(cat), outcomeLabel(err)).Inc()
	if err != nil && !errors.Is(err, pool.ErrDeliveryFailed) {
		h.writeDomainError(w, r, err)
		return
	}
	if err != nil {
		deliveryFailures.Inc()
	}
	writeJSON(w, http.StatusOK, toAllocationDTO(alloc, err == nil))
}

// ClaimPack handles POST /api/accounts/pack.
func (h *Handler) ClaimPack(w http.ResponseWriter, r *http.Request) {
	var req PackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}

	alloc, err := h.Coord.RequestPack(r.Context(), req.User, strings.TrimSpace(req.Filter))
	packsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil && !errors.Is(err, pool.ErrDeliveryFailed) {
		h.writeDomainError(w, r, err)
		return
	}
	if err != nil {
		deliveryFailures.Inc()
	}
	writeJSON(w, http.StatusOK, toAllocationDTO(alloc, err == nil))
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// ReleaseAccount handles POST /api/accounts/release.
func (h *Handler) ReleaseAccount(w http.ResponseWriter, r *http.Request) {
	var req ReleaseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	if err := h.Repo.ReleaseAccount(r.Context(), req.Identifier); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	releasesTotal.Inc()
	writeJSON(w, http.StatusOK, MessageResponse{Message: "account returned to the pool"})
}

// ReportBan handles POST /api/accounts/ban.
func (h *Handler) ReportBan(w http.ResponseWriter, r *http.Request) {
	var req BanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Identifier == "" || strings.TrimSpace(req.Server) == "" {
		writeError(w, http.StatusBadRequest, "identifier and server are required")
		return
	}

	added, err := h.Repo.AnnotateBan(r.Context(), req.Identifier, req.Server)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if !added {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "ban was already recorded"})
		return
	}
	bansTotal.Inc()
	writeJSON(w, http.StatusOK, MessageResponse{Message: "ban recorded"})
}

// ImportAccounts handles POST /api/accounts/import.
func (h *Handler) ImportAccounts(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cat, err := pool.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accounts, malformed := h.Factory.ParseLines(cat, req.Lines)
	result, err := h.Repo.ImportAccounts(r.Context(), cat, accounts)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResultDTO{
		Added:      result.Added,
		Duplicates: result.Duplicates,
		Malformed:  malformed,
	})
}

// =============================================================================
// FOLLOW-UP ACTIONS
// =============================================================================

// DispatchAction handles POST /api/actions/dispatch: the UI layer sends
// back an action token from an earlier delivery and the engine replays
// it against the right operation.
func (h *Handler) DispatchAction(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	action, err := pool.ParseActionRef(pool.ActionRef(req.Ref))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed action ref")
		return
	}

	switch action.Kind {
	case pool.ActionRelease:
		if err := h.Repo.ReleaseAccount(r.Context(), action.Args[0]); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		releasesTotal.Inc()
		writeJSON(w, http.StatusOK, MessageResponse{Message: "account returned to the pool"})

	case pool.ActionPackRelease:
		released := 0
		for _, id := range action.Args {
			if err := h.Repo.ReleaseAccount(r.Context(), id); err != nil {
				log.Printf("[API] pack release of %s failed: %v", id, err)
				continue
			}
			released++
			releasesTotal.Inc()
		}
		writeJSON(w, http.StatusOK, MessageResponse{
			Message: "pack released: " + strconv.Itoa(released) + " accounts returned",
		})

	case pool.ActionBan:
		if strings.TrimSpace(req.Server) == "" {
			writeError(w, http.StatusBadRequest, "server is required for ban actions")
			return
		}
		added, err := h.Repo.AnnotateBan(r.Context(), action.Args[0], req.Server)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		if added {
			bansTotal.Inc()
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "ban recorded"})

	case pool.ActionPackBan:
		if strings.TrimSpace(req.Server) == "" {
			writeError(w, http.StatusBadRequest, "server is required for ban actions")
			return
		}
		annotated := 0
		for _, id := range action.Args {
			added, err := h.Repo.AnnotateBan(r.Context(), id, req.Server)
			if err != nil {
				log.Printf("[API] pack ban of %s failed: %v", id, err)
				continue
			}
			if added {
				annotated++
				bansTotal.Inc()
			}
		}
		writeJSON(w, http.StatusOK, MessageResponse{
			Message: "ban recorded on " + strconv.Itoa(annotated) + " accounts",
		})

	case pool.Action2FA:
		code, err := h.OTP.Fetch(r.Context(), action.Args[0])
		if err != nil {
			log.Printf("[API] 2fa fetch failed: %v", err)
			writeError(w, http.StatusBadGateway, "could not retrieve the 2FA code, try again")
			return
		}
		writeJSON(w, http.StatusOK, CodeDTO{Code: code.Value, SecondsLeft: code.SecondsLeft})

	case pool.ActionOTP:
		if h.Mail == nil {
			writeError(w, http.StatusServiceUnavailable, "mail code retrieval is not configured")
			return
		}
		acct, err := h.Repo.FindAccount(r.Context(), action.Args[0])
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		code, err := h.Mail.LatestCode(r.Context(), acct.Identifier, acct.Secret)
		if err != nil {
			log.Printf("[API] mail code fetch for %s failed: %v", acct.Identifier, err)
			writeError(w, http.StatusBadGateway, "could not retrieve the mail code, try again")
			return
		}
		writeJSON(w, http.StatusOK, CodeDTO{Code: code})

	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

// =============================================================================
// ACCESS CODES
// =============================================================================

// VerifyCode handles POST /api/auth/verify.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.User == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "user and code are required")
		return
	}

	switch err := h.Codes.Verify(r.Context(), req.Code, req.User); {
	case err == nil:
		writeJSON(w, http.StatusOK, MessageResponse{Message: "code verified"})
	case errors.Is(err, pool.ErrCodeInvalid):
		writeError(w, http.StatusBadRequest, "the code is not valid")
	case errors.Is(err, pool.ErrCodeUsed):
		writeError(w, http.StatusConflict, "this code has already been used")
	case errors.Is(err, pool.ErrCodeExpired):
		writeError(w, http.StatusGone, "this code has expired")
	default:
		h.writeDomainError(w, r, err)
	}
}

// MintCodes handles POST /api/admin/authcodes.
func (h *Handler) MintCodes(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	ttl := h.AuthCodeTTL
	if req.TTLDays > 0 {
		ttl = time.Duration(req.TTLDays) * 24 * time.Hour
	}

	codes, err := h.Codes.Mint(r.Context(), req.Count, ttl)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MintedCodesDTO{Codes: codes})
}

// =============================================================================
// OPERATIONS
// =============================================================================

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Compute(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

// GetRawRow handles GET /api/admin/rows/{category}/{n}.
func (h *Handler) GetRawRow(w http.ResponseWriter, r *http.Request) {
	cat, err := pool.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "row number must be a positive integer")
		return
	}

	cells, err := h.Repo.RawRow(r.Context(), cat, n)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RawRowDTO{Category: string(cat), Row: n, Cells: cells})
}

// =============================================================================
// ERROR MAPPING & HELPERS
// =============================================================================

// writeDomainError maps engine errors onto HTTP responses. User-facing
// outcomes carry actionable messages; infrastructure detail goes to the
// operator log only.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pool.ErrBusy):
		writeError(w, http.StatusConflict, "already processing your request")

	case errors.Is(err, pool.ErrCoolingDown):
		resp := ErrorResponse{Error: "please wait before requesting again"}
		if ce, ok := pool.AsCooldown(err); ok {
			resp.RetryAfter = ce.Remaining.Seconds()
		}
		writeJSON(w, http.StatusTooManyRequests, resp)

	case errors.Is(err, pool.ErrNoStock):
		// The error text names the category (and filter) that ran dry.
		writeError(w, http.StatusNotFound, err.Error())

	case pool.IsNotFound(err):
		writeError(w, http.StatusNotFound, "account not found")

	case errors.Is(err, pool.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, pool.ErrStoreUnavailable):
		log.Printf("[API] %s %s: store failure: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadGateway, "the account store is unavailable, try again shortly")

	case errors.Is(err, pool.ErrDeliveryFailed):
		log.Printf("[API] %s %s: delivery failure: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadGateway, "delivery failed - check your settings")

	default:
		log.Printf("[API] %s %s: internal error: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
