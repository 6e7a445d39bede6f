// Package chunk splits large row streams into bounded sequential batches.
// Batching caps peak memory per downstream call and the explicit yield point
// between batches keeps one huge upload from monopolizing the process.
package chunk

import (
	"context"
	"fmt"
	"runtime"
)

// DefaultSize is the batch size used when the caller passes size <= 0.
const DefaultSize = 1000

// Split cuts items into contiguous batches of at most size elements,
// preserving order within and across batches. The batches alias the input
// slice; they are views, not copies.
func Split[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultSize
	}
	if len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

// Process feeds items through fn one batch at a time, strictly in sequence;
// batches are never run concurrently, so downstream writes stay ordered.
// Between batches it checks ctx and yields the processor.
//
// The first failing batch aborts the remainder. Effects of already-processed
// batches are not rolled back here; that is the persistence layer's business.
func Process[T, R any](ctx context.Context, items []T, size int, fn func(ctx context.Context, batch []T) ([]R, error)) ([]R, error) {
	batches := Split(items, size)
	results := make([]R, 0, len(items))
	for i, batch := range batches {
		out, err := fn(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}
		results = append(results, out...)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			runtime.Gosched()
		}
	}
	return results, nil
}
