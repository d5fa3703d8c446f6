// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCancelled is returned by every stage when the request context fires.
	// The context's own error is wrapped alongside it.
	ErrCancelled = errors.New("recommendation cancelled")

	// ErrSuperseded is returned by Session when a newer request replaced this one.
	ErrSuperseded = errors.New("recommendation superseded by a newer request")

	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid recommendation request")
)

// IsCancellation reports whether err means the request was abandoned.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// cancelled wraps cause in ErrCancelled unless it already is.
func cancelled(cause error) error {
	if errors.Is(cause, ErrCancelled) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// checkContext returns a cancellation error when ctx is done.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	return nil
}
