package install

import (
	"context"
	"fmt"
	"strings"

	"github.com/datawire/dlib/dlog"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

// compileBytecode invokes the target interpreter once to byte-compile every
// .py file this wheel placed under purelib/platlib, and appends the emitted
// `__pycache__` entries to the post-install record.
//
// Compilation failures of individual files are warnings, not errors: wheels
// routinely ship intentionally broken .py files as test fixtures.  Only a
// failure to run the interpreter at all, or to hash an emitted .pyc for the
// record, is reported, and even that is wrapped as ErrBytecompile so callers
// can choose to downgrade it.
func compileBytecode(ctx context.Context, env *python.Environment, plan []Item, rec *Record) error {
	var sources []string
	for _, item := range plan {
		if !strings.HasSuffix(item.Dest, ".py") {
			continue
		}
		switch item.Kind {
		case KindLib:
			sources = append(sources, item.Dest)
		case KindData:
			if item.Category == "purelib" || item.Category == "platlib" {
				sources = append(sources, item.Dest)
			}
		}
	}
	if len(sources) == 0 {
		return nil
	}

	compiled, failed, err := python.Compile(ctx, env.Interpreter, sources)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBytecompile, err)
	}
	for _, src := range failed {
		dlog.Warnf(ctx, "bytecompile: skipping %q: does not compile", src)
	}
	for _, pyc := range compiled {
		if err := rec.AddFileOnDisk(pyc); err != nil {
			return fmt.Errorf("%w: record %q: %v", ErrBytecompile, pyc, err)
		}
	}
	return nil
}
