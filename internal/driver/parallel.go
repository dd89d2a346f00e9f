package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"sable/internal/trace"
)

// CheckAll checks independent programs in parallel. Every program gets its
// own builder, tables and pipeline state, so nothing is shared between
// workers. Results are in the order of paths. Every path is announced to
// opts.Progress as queued before any worker starts.
func CheckAll(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "check-all")
	defer span.End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range paths {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			res, err := CheckFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
