package install

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/monotrail-dev/wheelinstall/pkg/install/launcher"
	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

// A dirCache remembers directories known to exist so each mkdir runs once
// even with many extraction workers racing over a shared tree.  "Already
// exists" is success.
type dirCache struct {
	m sync.Map
}

func (c *dirCache) ensure(dir string) error {
	if _, ok := c.m.Load(dir); ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
		return err
	}
	c.m.Store(dir, struct{}{})
	return nil
}

type extractor struct {
	env  *python.Environment
	rec  *Record
	dirs dirCache
}

// extractAll streams every plan item to disk with a bounded worker pool,
// hashing each emitted file in to the post-install record.  Archive entries
// are dispatched in archive order; completion order is unspecified.
func extractAll(ctx context.Context, env *python.Environment, plan []Item, rec *Record, jobs int) error {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	x := &extractor{env: env, rec: rec}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)
	for _, item := range plan {
		item := item
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := x.one(item); err != nil {
				return fmt.Errorf("extract %q: %w", item.Source.Name, err)
			}
			return nil
		})
	}
	return group.Wait()
}

func (x *extractor) one(item Item) error {
	if err := x.dirs.ensure(filepath.Dir(item.Dest)); err != nil {
		return err
	}

	src, err := item.Source.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = src.Close()
	}()
	reader := bufio.NewReader(src)

	if item.Kind == KindScript {
		if head, _ := reader.Peek(len("#!pythonw")); bytes.HasPrefix(head, []byte("#!python")) {
			return x.rewriteScript(item, reader, bytes.Equal(head, []byte("#!pythonw")))
		}
	}

	mode := fs.FileMode(0o644)
	if item.Exec || item.Kind == KindScript {
		mode = 0o755
	}
	return x.writeDest(item.Dest, mode, reader)
}

// rewriteScript handles a `*.data/scripts/` file whose first line is
// `#!python` or `#!pythonw`.  On POSIX the line becomes
// `#!<interpreter>`; on Windows the remainder of the file becomes the
// payload of a launcher-wrapped NAME.exe.
func (x *extractor) rewriteScript(item Item, reader *bufio.Reader, gui bool) error {
	// Drop the `#!python(w)` line, newline included.
	if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
		return err
	}

	if x.env.Launcher.Windows() {
		payload, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		exe, err := launcher.Wrap(x.env.Launcher, x.env.Interpreter, gui, payload)
		if err != nil {
			return err
		}
		return x.writeDest(windowsScriptName(item.Dest), 0o755, bytes.NewReader(exe))
	}

	return x.writeDest(item.Dest, 0o755,
		io.MultiReader(strings.NewReader("#!"+x.env.Interpreter+"\n"), reader))
}

// writeDest streams content to a sibling temp file, hashing as it goes, then
// renames it in to place and records the post-install hash and size.
func (x *extractor) writeDest(dest string, mode fs.FileMode, content io.Reader) error {
	tmp := dest + ".tmp"
	fh, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(fh, hasher), content)
	if err != nil {
		_ = fh.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// OpenFile's mode is subject to the umask.
	if err := os.Chmod(tmp, mode); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	x.rec.AddFile(dest, "sha256="+base64.RawURLEncoding.EncodeToString(hasher.Sum(nil)), size)
	return nil
}

// windowsScriptName turns an extracted script destination in to its
// launcher-wrapped executable name.
func windowsScriptName(dest string) string {
	return strings.TrimSuffix(dest, ".py") + ".exe"
}
