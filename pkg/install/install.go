// Package install materializes Python wheel archives into a target
// environment on disk, producing a layout equivalent to the reference
// installer's, plus the post-install RECORD/INSTALLER markers.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/datawire/dlib/dlog"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

// InstallerName is what gets written to the INSTALLER marker file.
const InstallerName = "wheelinstall"

// Options are the caller-visible knobs of a single wheel install.
type Options struct {
	// CompileBytecode spawns the target interpreter after extraction to
	// pre-compile the installed .py files.
	CompileBytecode bool

	// SkipHashes weakens archive integrity checking to what the zip CRC
	// provides: RECORD/archive set equality is still enforced, but
	// per-file SHA-256 and sizes are not verified.
	SkipHashes bool

	// LockPath overrides the advisory lock location; default is
	// LockFileName inside the environment's site-packages.
	LockPath string

	// LockTimeout bounds lock acquisition; zero blocks indefinitely.
	LockTimeout time.Duration

	// Jobs bounds the extraction worker pool; zero means GOMAXPROCS.
	Jobs int

	// Installer overrides the INSTALLER marker content.
	Installer string

	// DirectURL is the PEP 610 origin record to write.  When nil, one is
	// derived from the wheel's local path.  NoDirectURL suppresses the
	// file entirely.
	DirectURL   *DirectURL
	NoDirectURL bool
}

func (opts *Options) installer() string {
	if opts.Installer == "" {
		return InstallerName
	}
	return opts.Installer
}

// Installed describes the outcome of one wheel install.
type Installed struct {
	Name    string
	Version string
	Tag     string

	// DistInfoDir is the absolute path of the installed .dist-info.
	DistInfoDir string

	// Record is the content of the final RECORD, paths relative to the
	// dist-info's parent.  Nil when the install short-circuited on a
	// store sentinel.
	Record []wheel.RecordEntry
}

// Install installs one wheel file into the environment, holding the
// environment's advisory lock for the whole duration.
//
// On failure partial state may remain on disk; the environment lock
// guarantees no other installer saw it half-written.
func Install(ctx context.Context, env *python.Environment, wheelPath string, opts Options) (*Installed, error) {
	envCopy := *env
	env = &envCopy
	if err := env.Init(); err != nil {
		return nil, err
	}

	fn, err := wheel.ParseFilename(filepath.Base(wheelPath))
	if err != nil {
		return nil, err
	}
	if err := fn.Compatible(env.Tags); err != nil {
		return nil, fmt.Errorf("%s: %w", wheelPath, err)
	}

	a, err := wheel.OpenArchive(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wheelPath, err)
	}
	defer func() {
		_ = a.Close()
	}()

	lockPath := opts.LockPath
	if lockPath == "" {
		lockPath = filepath.Join(env.SitePackages, LockFileName)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, err
	}
	release, err := acquireLock(ctx, lockPath, opts.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	installed, err := installCore(ctx, env, a, fn, wheelPath, opts)
	if err != nil {
		return nil, fmt.Errorf("install %s: %w", filepath.Base(wheelPath), err)
	}
	return installed, nil
}

// installCore runs the install pipeline against an opened archive.  The
// caller holds whatever lock protects the destination.
func installCore(
	ctx context.Context,
	env *python.Environment,
	a *wheel.Archive,
	fn *wheel.Filename,
	wheelPath string,
	opts Options,
) (*Installed, error) {
	md, err := a.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.CheckDistInfoName(fn); err != nil {
		return nil, err
	}
	if err := md.CrossCheck(fn); err != nil {
		return nil, err
	}

	recordEntries, err := a.Record()
	if err != nil {
		return nil, err
	}
	if err := a.Verify(recordEntries, opts.SkipHashes); err != nil {
		return nil, err
	}

	plan, err := BuildPlan(a, env, md)
	if err != nil {
		return nil, err
	}

	rec := NewRecord(env.SitePackages)
	if err := extractAll(ctx, env, plan, rec, opts.Jobs); err != nil {
		return nil, err
	}

	eps, err := a.EntryPoints()
	if err != nil {
		return nil, err
	}
	if len(eps) > 0 {
		if err := os.MkdirAll(env.Scheme.Scripts, 0o755); err != nil {
			return nil, err
		}
		extracted := make(map[string]struct{})
		for _, item := range plan {
			if item.Kind == KindScript {
				extracted[item.Dest] = struct{}{}
				extracted[windowsScriptName(item.Dest)] = struct{}{}
			}
		}
		if err := synthesizeScripts(ctx, env, eps, extracted, rec); err != nil {
			return nil, err
		}
	}

	if opts.CompileBytecode {
		if err := compileBytecode(ctx, env, plan, rec); err != nil {
			dlog.Warnf(ctx, "%s: %v", fn.Distribution, err)
		}
	}

	infoDir, err := a.DistInfoDir()
	if err != nil {
		return nil, err
	}
	distInfoAbs := filepath.Join(env.SitePackages, infoDir)

	if !opts.NoDirectURL {
		du := opts.DirectURL
		if du == nil {
			if du, err = DirectURLForPath(wheelPath); err != nil {
				return nil, err
			}
		}
		if err := du.write(distInfoAbs, rec); err != nil {
			return nil, err
		}
	}

	// RECORD and INSTALLER land strictly after every data write.
	finalEntries, err := rec.Write(distInfoAbs, opts.installer())
	if err != nil {
		return nil, err
	}
	return &Installed{
		Name:        fn.Distribution,
		Version:     fn.Version,
		Tag:         fn.Tag.String(),
		DistInfoDir: distInfoAbs,
		Record:      finalEntries,
	}, nil
}
