package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

// SentinelName marks a store slot as completely installed.  It is written
// last, under the slot's lock, and its presence makes repeat installs a
// no-op.  The name is shared with the reference implementation's store.
const SentinelName = ".monotrail-install-complete"

// A Store is the shared, content-addressed installation root: each
// (name, version, tag) triple gets its own self-contained slot at
// `<root>/<name>/<version>/<tag>/`, holding the wheel's categories verbatim
// under `<name>-<version>.data/` plus the `.dist-info` and the sentinel.
type Store struct {
	Root string
}

// Slot returns the directory a wheel installs into.
func (s *Store) Slot(fn *wheel.Filename) string {
	return filepath.Join(s.Root, fn.Distribution, fn.Version, fn.Tag.String())
}

// Installed reports whether the slot for a wheel is completely installed,
// i.e. whether its sentinel exists.
func (s *Store) Installed(fn *wheel.Filename) (bool, error) {
	_, err := os.Stat(filepath.Join(s.Slot(fn), SentinelName))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// slotEnvironment derives the per-slot environment: every category lands
// under the slot's `.data` directory, and the dist-info lands at the slot
// root.
func (s *Store) slotEnvironment(base *python.Environment, slot, dataDir string) python.Environment {
	dataBase := filepath.Join(slot, dataDir)
	return python.Environment{
		Interpreter:    base.Interpreter,
		Implementation: base.Implementation,
		Version:        base.Version,
		Launcher:       base.Launcher,
		Tags:           base.Tags,
		SitePackages:   slot,
		Scheme: python.Scheme{
			PureLib: filepath.Join(dataBase, "purelib"),
			PlatLib: filepath.Join(dataBase, "platlib"),
			Headers: filepath.Join(dataBase, "headers"),
			Scripts: filepath.Join(dataBase, "scripts"),
			Data:    filepath.Join(dataBase, "data"),
		},
	}
}

// Install installs one wheel into its store slot.  If the slot's sentinel
// already exists the call is a no-op that only stats the sentinel.  The
// environment argument supplies the interpreter and tag set; all paths come
// from the slot.
func (s *Store) Install(ctx context.Context, base *python.Environment, wheelPath string, opts Options) (*Installed, error) {
	fn, err := wheel.ParseFilename(filepath.Base(wheelPath))
	if err != nil {
		return nil, err
	}
	if err := fn.Compatible(base.Tags); err != nil {
		return nil, fmt.Errorf("%s: %w", wheelPath, err)
	}

	slot := s.Slot(fn)
	if done, err := s.Installed(fn); err != nil {
		return nil, err
	} else if done {
		return &Installed{
			Name:        fn.Distribution,
			Version:     fn.Version,
			Tag:         fn.Tag.String(),
			DistInfoDir: "",
		}, nil
	}

	if err := os.MkdirAll(slot, 0o755); err != nil {
		return nil, err
	}
	release, err := acquireLock(ctx, filepath.Join(slot, LockFileName), opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	// Whoever held the lock before us may have completed the install.
	if done, err := s.Installed(fn); err != nil {
		return nil, err
	} else if done {
		dlog.Debugf(ctx, "%s %s: already installed, skipping", fn.Distribution, fn.Version)
		return &Installed{
			Name:        fn.Distribution,
			Version:     fn.Version,
			Tag:         fn.Tag.String(),
			DistInfoDir: "",
		}, nil
	}

	a, err := wheel.OpenArchive(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wheelPath, err)
	}
	defer func() {
		_ = a.Close()
	}()
	dataDir, err := a.DataDir()
	if err != nil {
		return nil, err
	}

	env := s.slotEnvironment(base, slot, dataDir)
	if err := env.Init(); err != nil {
		return nil, err
	}

	installed, err := installCore(ctx, &env, a, fn, wheelPath, opts)
	if err != nil {
		return nil, fmt.Errorf("install %s: %w", filepath.Base(wheelPath), err)
	}

	// The sentinel is the very last write; anything short of it reads as
	// "not installed" to the next caller.
	if err := os.WriteFile(filepath.Join(slot, SentinelName), nil, 0o644); err != nil {
		return nil, err
	}
	return installed, nil
}

// InstallAll installs a set of wheels into the store with a bounded worker
// pool.  Distinct slots install genuinely in parallel; duplicate wheels
// serialize on their slot lock, with the loser short-circuiting on the
// sentinel.
func (s *Store) InstallAll(ctx context.Context, base *python.Environment, wheelPaths []string, opts BatchOptions) ([]*Installed, error) {
	return installBatch(ctx, wheelPaths, opts, func(ctx context.Context, wheelPath string) (*Installed, error) {
		return s.Install(ctx, base, wheelPath, opts.Options)
	})
}
