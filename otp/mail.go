package otp

import "context"

// MailCodeSource retrieves the latest one-time code delivered to an
// account's inbox. The mailbox transport (IMAP or otherwise) lives
// outside this module; implementations are expected to apply a bounded
// timeout and to extract the code with ExtractCode.
type MailCodeSource interface {
	// LatestCode logs into the account's mailbox and returns the most
	// recent one-time code, or an error wrapping ErrCodeUnavailable.
	LatestCode(ctx context.Context, identifier, secret string) (string, error)
}
