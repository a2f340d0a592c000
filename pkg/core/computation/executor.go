package computation

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Executor runs fn once for every index in [0, n). Each call writes only to
// its own index, so implementations are free to schedule calls in any order.
type Executor interface {
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// Serial runs every index in order on the calling goroutine.
type Serial struct{}

func (Serial) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Parallel fans the indexes out over at most Workers goroutines. Zero or a
// negative value uses GOMAXPROCS. The first error cancels the remaining work.
type Parallel struct {
	Workers int
}

func (p Parallel) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ExecutorFor returns Serial for a single worker and Parallel otherwise.
func ExecutorFor(workers int) Executor {
	if workers == 1 {
		return Serial{}
	}
	return Parallel{Workers: workers}
}
