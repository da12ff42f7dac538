/*
records_test.go - Unit tests for the import record grammars
*/
package factory_test

import (
	"testing"

	"github.com/warp/account-pool/factory"
	"github.com/warp/account-pool/pool"
)

func TestParseLine_DelimitedGrammar(t *testing.T) {
	f := factory.NewRecordFactory()

	tests := []struct {
		line   string
		wantID string
		wantPW string
		ok     bool
	}{
		{"user@mail.com:hunter2", "user@mail.com", "hunter2", true},
		{"user@mail.com | hunter2", "user@mail.com", "hunter2", true},
		{"user@mail.com;hunter2", "user@mail.com", "hunter2", true},
		{"  spaced@mail.com : pw  ", "spaced@mail.com", "pw", true},
		{"lonely-field", "", "", false},
		{":pass-without-user", "", "", false},
	}

	for _, tt := range tests {
		acct, ok := f.ParseLine(pool.CategoryFiveM, tt.line)
		if ok != tt.ok {
			t.Errorf("%q: expected ok=%v, got %v", tt.line, tt.ok, ok)
			continue
		}
		if !ok {
			continue
		}
		if acct.Identifier != tt.wantID || acct.Secret != tt.wantPW {
			t.Errorf("%q: got %q/%q", tt.line, acct.Identifier, acct.Secret)
		}
	}
}

func TestParseLine_LabeledGrammar(t *testing.T) {
	f := factory.NewRecordFactory()

	line := "E-Mail: disc@mail.com | Password: hunter2 | 2FA Token: JBSWY3DPEHPK3PXP"
	acct, ok := f.ParseLine(pool.CategoryDiscord, line)
	if !ok {
		t.Fatal("Expected labeled line to parse")
	}
	if acct.Identifier != "disc@mail.com" || acct.Secret != "hunter2" || acct.Token != "JBSWY3DPEHPK3PXP" {
		t.Errorf("Unexpected record: %+v", acct)
	}
}

func TestParseLine_LabeledGrammarIsCaseInsensitive(t *testing.T) {
	f := factory.NewRecordFactory()

	line := "email: disc@mail.com | PASSWORD: pw | 2fa token: abc123"
	if _, ok := f.ParseLine(pool.CategoryDiscord, line); !ok {
		t.Error("Expected case-insensitive labels to parse")
	}
}

func TestParseLine_LabeledGrammarRequiresAllFields(t *testing.T) {
	f := factory.NewRecordFactory()

	// Missing the token field
	line := "E-Mail: disc@mail.com | Password: hunter2"
	if _, ok := f.ParseLine(pool.CategoryDiscord, line); ok {
		t.Error("Expected line without token to be rejected")
	}
}

func TestParseLines_CountsMalformed(t *testing.T) {
	f := factory.NewRecordFactory()

	text := "good@mail.com:pw\n\n   \nbroken-line\nother@mail.com:pw2\n"
	accounts, malformed := f.ParseLines(pool.CategoryFiveM, text)

	if len(accounts) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(accounts))
	}
	if malformed != 1 {
		t.Errorf("Expected 1 malformed line, got %d", malformed)
	}
}
