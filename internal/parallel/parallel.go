// Package parallel provides bounded data-parallel helpers on top of errgroup.
// Workers only ever touch their own partial result; merging happens on the
// calling goroutine after every worker has returned.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers is the default concurrency limit.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

// MapReduce splits items into contiguous chunks, folds each chunk into a fresh
// partial from newPartial, then merges the partials in chunk order.
func MapReduce[T, P any](
	ctx context.Context,
	items []T,
	newPartial func() P,
	fold func(acc P, item T) P,
	merge func(acc, part P) P,
) (P, error) {
	chunks := split(len(items), Workers())
	partials := make([]P, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		g.Go(func() error {
			acc := newPartial()
			for _, item := range items[c.lo:c.hi] {
				if err := ctx.Err(); err != nil {
					return err
				}
				acc = fold(acc, item)
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var zero P
		return zero, err
	}

	result := newPartial()
	for _, part := range partials {
		result = merge(result, part)
	}
	return result, nil
}

// Map applies fn to every item concurrently and returns the results in input order.
func Map[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers())
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SumMerge adds every count of part into acc.
func SumMerge[K comparable, V int | float64](acc, part map[K]V) map[K]V {
	for k, v := range part {
		acc[k] += v
	}
	return acc
}

type chunk struct{ lo, hi int }

func split(n, parts int) []chunk {
	if n == 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	chunks := make([]chunk, 0, parts)
	for lo := 0; lo < n; lo += size {
		chunks = append(chunks, chunk{lo: lo, hi: min(lo+size, n)})
	}
	return chunks
}
