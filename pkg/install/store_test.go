package install_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotrail-dev/wheelinstall/pkg/install"
	"github.com/monotrail-dev/wheelinstall/pkg/testutil"
	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

func listTree(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			paths = append(paths, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

func TestStoreInstall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &install.Store{Root: t.TempDir()}
	env := testEnv(t.TempDir())

	wheelPath := testutil.WriteWheel(t, t.TempDir(),
		"tqdm-4.62.3-py2.py3-none-any.whl", testutil.WheelBytes(t, tqdmSpec()))

	installed, err := store.Install(ctx, env, wheelPath, install.Options{})
	require.NoError(t, err)
	require.NotNil(t, installed.Record)

	slot := filepath.Join(store.Root, "tqdm", "4.62.3", "py2.py3-none-any")
	assert.Equal(t, slot, store.Slot(mustParse(t, "tqdm-4.62.3-py2.py3-none-any.whl")))

	// categories live verbatim under the wheel's .data directory
	assert.FileExists(t, filepath.Join(slot, "tqdm-4.62.3.data", "purelib", "tqdm", "__init__.py"))
	assert.FileExists(t, filepath.Join(slot, "tqdm-4.62.3.data", "scripts", "tqdm"))
	// the dist-info and the sentinel live at the slot root
	assert.FileExists(t, filepath.Join(slot, "tqdm-4.62.3.dist-info", "RECORD"))
	assert.FileExists(t, filepath.Join(slot, install.SentinelName))

	done, err := store.Installed(mustParse(t, "tqdm-4.62.3-py2.py3-none-any.whl"))
	require.NoError(t, err)
	assert.True(t, done)
}

// Installing the same wheel twice must leave the slot byte-identical and
// short-circuit on the sentinel.
func TestStoreInstallIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &install.Store{Root: t.TempDir()}
	env := testEnv(t.TempDir())

	wheelPath := testutil.WriteWheel(t, t.TempDir(),
		"tqdm-4.62.3-py2.py3-none-any.whl", testutil.WheelBytes(t, tqdmSpec()))

	first, err := store.Install(ctx, env, wheelPath, install.Options{})
	require.NoError(t, err)
	require.NotNil(t, first.Record)
	before := listTree(t, store.Root)

	second, err := store.Install(ctx, env, wheelPath, install.Options{})
	require.NoError(t, err)
	assert.Nil(t, second.Record, "second install must be a sentinel-check no-op")
	assert.Equal(t, "tqdm", second.Name)

	assert.Equal(t, before, listTree(t, store.Root))
}

func TestStoreInstallAllParallel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &install.Store{Root: t.TempDir()}
	env := testEnv(t.TempDir())
	wheelDir := t.TempDir()

	var wheelPaths []string
	for _, name := range []string{"alpha", "beta", "gamma", "delta"} {
		spec := testutil.WheelSpec{
			Name:    name,
			Version: "1.0",
			Files: []testutil.ZipEntry{
				{Name: name + "/__init__.py", Content: "# " + name + "\n"},
			},
		}
		wheelPaths = append(wheelPaths, testutil.WriteWheel(t, wheelDir,
			name+"-1.0-py3-none-any.whl", testutil.WheelBytes(t, spec)))
	}
	// the same wheel twice in one batch: the loser must serialize on the
	// slot lock and no-op on the sentinel
	wheelPaths = append(wheelPaths, wheelPaths[0])

	results, err := store.InstallAll(ctx, env, wheelPaths, install.BatchOptions{Workers: 4})
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, name := range []string{"alpha", "beta", "gamma", "delta"} {
		assert.FileExists(t, filepath.Join(store.Root, name, "1.0", "py3-none-any", install.SentinelName))
	}
}

func mustParse(t *testing.T, filename string) *wheel.Filename {
	t.Helper()
	fn, err := wheel.ParseFilename(filename)
	require.NoError(t, err)
	return fn
}
