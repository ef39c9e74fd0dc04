package workflow

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxParallel bounds concurrent branches.
const DefaultMaxParallel = 4

// ErrBranchPanic marks a branch whose function panicked.
var ErrBranchPanic = errors.New("branch panicked")

// Dispatch runs fn once per item with at most limit calls in flight and
// waits for all of them. Results and errors are returned in item order. A
// failing branch never cancels its siblings; a panic in fn is recovered and
// reported as that branch's error.
func Dispatch[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}
	if limit <= 0 {
		limit = DefaultMaxParallel
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: item %d: %v", ErrBranchPanic, i, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = fn(ctx, i, item)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}
