/*
Package factory parses bulk-import text into typed account records.

PURPOSE:
  Each category has its own record grammar for the one-account-per-line
  import format:

    discord:        E-Mail: <addr> | Password: <pass> | 2FA Token: <token>
    fivem / steam:  <user>:<pass>        (also | or ; as separator)

  Malformed lines are dropped, never fatal: a bad line must not abort
  the batch. The caller gets the parsed records plus a malformed count.

SEE ALSO:
  - pool/repository.go: ImportAccounts dedupes and appends the records
  - api/handlers.go: Wires upload text through here into the repository
*/
package factory

import (
	"regexp"
	"strings"

	"github.com/warp/account-pool/pool"
)

// =============================================================================
// RECORD FACTORY
// =============================================================================

// RecordFactory parses import lines according to per-category grammars.
type RecordFactory struct {
	email *regexp.Regexp
	pass  *regexp.Regexp
	token *regexp.Regexp
	sep   *regexp.Regexp
}

// NewRecordFactory compiles the grammar patterns once.
func NewRecordFactory() *RecordFactory {
	return &RecordFactory{
		email: regexp.MustCompile(`(?i)E-?Mail:\s*([^|]+)`),
		pass:  regexp.MustCompile(`(?i)Password:\s*([^|]+)`),
		token: regexp.MustCompile(`(?i)2FA Token:\s*(\w+)`),
		sep:   regexp.MustCompile(`[:|;]`),
	}
}

// ParseLine parses one import line for the category. Returns false for
// lines that don't match the category's grammar.
func (f *RecordFactory) ParseLine(cat pool.Category, line string) (*pool.Account, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	if cat == pool.CategoryDiscord {
		return f.parseLabeled(cat, line)
	}
	return f.parseDelimited(cat, line)
}

// parseLabeled handles the labeled-field grammar. All three fields are
// required; the token column is what makes the record usable for 2FA
// retrieval later.
func (f *RecordFactory) parseLabeled(cat pool.Category, line string) (*pool.Account, bool) {
	email := f.email.FindStringSubmatch(line)
	pass := f.pass.FindStringSubmatch(line)
	token := f.token.FindStringSubmatch(line)
	if email == nil || pass == nil || token == nil {
		return nil, false
	}
	id := strings.TrimSpace(email[1])
	if id == "" {
		return nil, false
	}
	return &pool.Account{
		Category:   cat,
		Identifier: id,
		Secret:     strings.TrimSpace(pass[1]),
		Token:      strings.TrimSpace(token[1]),
	}, true
}

// parseDelimited handles the user:pass grammar.
func (f *RecordFactory) parseDelimited(cat pool.Category, line string) (*pool.Account, bool) {
	parts := f.sep.Split(line, -1)
	if len(parts) < 2 {
		return nil, false
	}
	id := strings.TrimSpace(parts[0])
	if id == "" {
		return nil, false
	}
	return &pool.Account{
		Category:   cat,
		Identifier: id,
		Secret:     strings.TrimSpace(parts[1]),
	}, true
}

// ParseLines parses a whole upload. Blank lines are ignored; lines that
// fail the grammar are counted as malformed and dropped.
func (f *RecordFactory) ParseLines(cat pool.Category, text string) (accounts []pool.Account, malformed int) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		acct, ok := f.ParseLine(cat, line)
		if !ok {
			malformed++
			continue
		}
		accounts = append(accounts, *acct)
	}
	return accounts, malformed
}
