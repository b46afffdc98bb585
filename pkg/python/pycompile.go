package python

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/datawire/dlib/dexec"
)

// compileSource is the program the target interpreter runs to byte-compile
// installed .py files.  Paths are fed one-per-line on stdin, and results come
// back one-per-line on stdout, so that the interpreter is spawned exactly
// once no matter how many files there are.  A file that fails to compile
// (e.g. a setuptools vendored template with a syntax error) is reported and
// skipped rather than aborting the batch.
const compileSource = `
import py_compile
import sys

for line in sys.stdin:
    path = line.strip()
    if not path:
        continue
    try:
        out = py_compile.compile(path, doraise=True)
        print("ok\t" + out)
    except Exception:
        print("fail\t" + path)
    sys.stdout.flush()
`

// Compile invokes interpreter once to byte-compile the given .py files.  It
// returns the paths of the emitted .pyc files and the paths of the sources
// that failed to compile.  An error is returned only if the interpreter
// itself could not be run.
func Compile(ctx context.Context, interpreter string, files []string) (compiled, failed []string, err error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	cmd := dexec.CommandContext(ctx, interpreter, "-c", compileSource)
	cmd.Stdin = strings.NewReader(strings.Join(files, "\n") + "\n")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, nil, fmt.Errorf("run %q: %w", interpreter, err)
	}

	for _, line := range strings.Split(stdout.String(), "\n") {
		status, path, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		switch status {
		case "ok":
			compiled = append(compiled, path)
		case "fail":
			failed = append(failed, path)
		}
	}
	return compiled, failed, nil
}
