package seed

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// batches splits items into consecutive chunks of at most size. A size below 1 yields one chunk.
func batches[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 || size > len(items) {
		size = len(items)
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// insertInBatches runs insert for every item. Items within a batch run concurrently and the
// whole batch is awaited before the next one starts; the first failure stops the run.
func insertInBatches[T any](ctx context.Context, items []T, size int, insert func(context.Context, T) (int64, error)) (int64, error) {
	var inserted atomic.Int64

	for _, batch := range batches(items, size) {
		g, gctx := errgroup.WithContext(ctx)
		for _, item := range batch {
			g.Go(func() error {
				n, err := insert(gctx, item)
				if err != nil {
					return err
				}
				inserted.Add(n)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return inserted.Load(), err
		}
	}

	return inserted.Load(), nil
}
