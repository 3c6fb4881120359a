// Package identity derives the storage namespace key from the signed-in
// account. Detection is best-effort: the account indicator renders late or
// not at all, so resolution waits a bounded time and then degrades to a
// shared fallback namespace rather than failing.
package identity

import (
	"context"
	"time"
)

// UnknownUser is the shared fallback namespace used when no account could
// be detected. Operations stay fully usable under it, at the cost of
// cross-session identity mismatch when detection fails transiently.
const UnknownUser = "unknown_user"

// resolveTimeout bounds how long Resolve waits for the account indicator
// to appear.
const resolveTimeout = 5 * time.Second

// Source is the slice of the page adapter that identity resolution needs.
type Source interface {
	AccountEmail() (string, bool)
	Subscribe() (<-chan struct{}, func())
}

// Resolve returns the user namespace key: the account email when the page
// exposes it within the timeout, otherwise UnknownUser. It never fails;
// cancellation also yields UnknownUser.
func Resolve(ctx context.Context, src Source) string {
	if email, ok := src.AccountEmail(); ok {
		return email
	}

	changes, cancel := src.Subscribe()
	defer cancel()

	deadline := time.NewTimer(resolveTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return UnknownUser
		case <-deadline.C:
			return UnknownUser
		case <-changes:
			if email, ok := src.AccountEmail(); ok {
				return email
			}
		}
	}
}
