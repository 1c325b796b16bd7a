package repositories

import (
	"context"
)

// CredentialSource supplies the API credential. It is consulted on every
// request and clone rather than once at startup, so short-lived tokens can
// be rotated while a long deep-scan phase is still running.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}
