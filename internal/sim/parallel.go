package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel runs independent jobs concurrently, at most limit at a time
// (limit <= 0 means no limit). The first error cancels the shared context
// and is returned.
func Parallel(ctx context.Context, limit int, jobs ...func(ctx context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, job := range jobs {
		g.Go(func() error { return job(ctx) })
	}
	return g.Wait()
}
