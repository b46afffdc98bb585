package install

import (
	"context"
	"runtime"

	"github.com/datawire/dlib/derror"
	"github.com/datawire/dlib/dlog"
	"golang.org/x/sync/errgroup"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

// BatchOptions configure an install of a set of wheels.
type BatchOptions struct {
	Options

	// Workers bounds the number of concurrent wheel installs; zero means
	// GOMAXPROCS.  Installs into one shared environment still serialize
	// on the environment lock; installs into distinct store slots
	// genuinely run in parallel.
	Workers int

	// FailFast cancels the remaining batch on the first failure.  The
	// default is to keep going and report an aggregate error.
	FailFast bool
}

func (opts *BatchOptions) workers() int {
	if opts.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return opts.Workers
}

// InstallAll installs a set of wheels into one environment with a bounded
// worker pool.  The returned slice is parallel to wheelPaths; entries whose
// install failed are nil.
func InstallAll(ctx context.Context, env *python.Environment, wheelPaths []string, opts BatchOptions) ([]*Installed, error) {
	return installBatch(ctx, wheelPaths, opts, func(ctx context.Context, wheelPath string) (*Installed, error) {
		return Install(ctx, env, wheelPath, opts.Options)
	})
}

func installBatch(
	ctx context.Context,
	wheelPaths []string,
	opts BatchOptions,
	one func(context.Context, string) (*Installed, error),
) ([]*Installed, error) {
	results := make([]*Installed, len(wheelPaths))
	errs := make([]error, len(wheelPaths))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(opts.workers())
	for i, wheelPath := range wheelPaths {
		i, wheelPath := i, wheelPath
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			installed, err := one(gctx, wheelPath)
			if err != nil {
				if opts.FailFast {
					return err
				}
				dlog.Errorf(gctx, "%s: %v", wheelPath, err)
				errs[i] = err
				return nil
			}
			results[i] = installed
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return results, err
	}

	var multi derror.MultiError
	for _, err := range errs {
		if err != nil {
			multi = append(multi, err)
		}
	}
	if len(multi) > 0 {
		return results, multi
	}
	return results, nil
}
