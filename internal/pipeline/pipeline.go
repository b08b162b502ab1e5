// Package pipeline implements the generic three-stage ETL kernel of
// spec.md §4.6: a typed Extractor/Transformer/Loader composition with a
// bounded concurrent worker pool sized to the HTTP client's semaphore
// capacity.
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Extractor produces the sequence of items a pipeline run processes.
type Extractor[T any] func(ctx context.Context) ([]T, error)

// Transformer is a pure, synchronous mapping between pipeline stages.
// Stage composition is static: Map's type parameters make an In/Out
// mismatch a compile-time error, not a runtime one.
type Transformer[In, Out any] func(in In) (Out, error)

// Loader consumes the final-stage sequence, one item at a time, and
// returns a non-nil error when the item was not written. Concurrent: Loader implementations
// must be safe for concurrent use across the worker pool.
type Loader[T any] func(ctx context.Context, item T) error

// ItemResult is one item's outcome, collected whether or not it failed.
type ItemResult[T any] struct {
	Item T
	Err  error
}

// Summary is the aggregate result of a Run: how many items were
// processed, and the per-item failures. Run returns a non-nil error
// (recognized by IsFailuresError) when any item failed, per spec.md §4.6 ("the overall
// pipeline result is Err if any item failed").
type Summary[T any] struct {
	Results []ItemResult[T]
}

// Succeeded returns the items that loaded without error.
func (s Summary[T]) Succeeded() []T {
	out := make([]T, 0, len(s.Results))
	for _, r := range s.Results {
		if r.Err == nil {
			out = append(out, r.Item)
		}
	}
	return out
}

// Failed returns the items that failed to load, paired with their error.
func (s Summary[T]) Failed() []ItemResult[T] {
	out := make([]ItemResult[T], 0)
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// HasFailures reports whether any item failed.
func (s Summary[T]) HasFailures() bool { return len(s.Failed()) > 0 }

// Run extracts, transforms, and loads a sequence of T, with per-item
// stages mapped over the input by a worker pool bounded to concurrency.
// One item's failure does not cancel its siblings; in-flight items
// complete and release their slot even when ctx is canceled, but no new
// item starts once cancellation is observed (spec.md §4.6).
func Run[T any](ctx context.Context, extract Extractor[T], load Loader[T], concurrency int) (Summary[T], error) {
	items, err := extract(ctx)
	if err != nil {
		return Summary[T]{}, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]ItemResult[T], len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = ItemResult[T]{Item: item, Err: err}
				return nil
			}
			err := load(ctx, item)
			results[i] = ItemResult[T]{Item: item, Err: err}
			return nil
		})
	}
	// g.Wait only ever returns nil: per-item errors are recorded in
	// results, not propagated as a group error, so one failure never
	// cancels its siblings.
	_ = g.Wait()

	summary := Summary[T]{Results: results}
	if summary.HasFailures() {
		return summary, errFailures
	}
	return summary, nil
}

var errFailures = &failuresError{}

type failuresError struct{}

func (*failuresError) Error() string { return "pipeline: one or more items failed" }

// IsFailuresError reports whether err is the sentinel Run returns when
// Summary.HasFailures() is true (as opposed to an extractor error).
func IsFailuresError(err error) bool {
	_, ok := err.(*failuresError)
	return ok
}

// Map applies a Transformer over a slice, short-circuiting on the first
// error (used to compose pure stages before Run, e.g. decode-then-
// sanitize).
func Map[In, Out any](in []In, t Transformer[In, Out]) ([]Out, error) {
	out := make([]Out, 0, len(in))
	for _, item := range in {
		o, err := t(item)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
