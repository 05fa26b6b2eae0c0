package utils

import (
	"context"
	"errors"
	"time"

	"github.com/UltimateTournament/backoff/v4"
)

// ReliableExec runs f with exponential backoff until it succeeds, returns a
// PermError, the context ends, or maxRuntime elapses.
func ReliableExec(ctx context.Context, maxRuntime time.Duration, f func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = maxRuntime

	return backoff.Retry(func() error {
		err := f(ctx)
		var perm PermError
		if errors.As(err, &perm) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}
