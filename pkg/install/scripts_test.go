package install_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotrail-dev/wheelinstall/pkg/install"
	"github.com/monotrail-dev/wheelinstall/pkg/install/launcher"
	"github.com/monotrail-dev/wheelinstall/pkg/python"
	"github.com/monotrail-dev/wheelinstall/pkg/testutil"
)

func TestInstallShebangRewrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	env := testEnv(root)

	spec := testutil.WheelSpec{
		Name:    "pkg",
		Version: "1.0",
		Files: []testutil.ZipEntry{
			{Name: "pkg-1.0.data/scripts/console-tool", Content: "#!python\nprint('console')\n"},
			{Name: "pkg-1.0.data/scripts/gui-tool", Content: "#!pythonw\nprint('gui')\n"},
			{Name: "pkg-1.0.data/scripts/plain.sh", Content: "#!/bin/sh\necho hi\n", Exec: true},
		},
	}
	wheelPath := testutil.WriteWheel(t, t.TempDir(),
		"pkg-1.0-py3-none-any.whl", testutil.WheelBytes(t, spec))

	_, err := install.Install(ctx, env, wheelPath, install.Options{})
	require.NoError(t, err)

	interp := filepath.Join(root, "bin", "python3.8")

	console := readFile(t, filepath.Join(root, "bin", "console-tool"))
	assert.Equal(t, "#!"+interp+"\nprint('console')\n", console)
	gui := readFile(t, filepath.Join(root, "bin", "gui-tool"))
	assert.Equal(t, "#!"+interp+"\nprint('gui')\n", gui)

	// a script with a non-#!python shebang is copied verbatim, mode 0755
	plain := filepath.Join(root, "bin", "plain.sh")
	assert.Equal(t, "#!/bin/sh\necho hi\n", readFile(t, plain))
	info, err := os.Stat(plain)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestInstallWindowsLaunchers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	env := testEnv(root)
	env.Launcher = python.LauncherWindowsX64
	env.Interpreter = filepath.Join(root, "Scripts", "python.exe")

	spec := testutil.WheelSpec{
		Name:    "pkg",
		Version: "1.0",
		Files: []testutil.ZipEntry{
			{Name: "pkg/cli.py", Content: "def main():\n    pass\n"},
			{Name: "pkg-1.0.data/scripts/legacy", Content: "#!python\nprint('legacy')\n"},
		},
		ExtraDistInfo: []testutil.ZipEntry{
			{Name: "entry_points.txt", Content: "[console_scripts]\ntool = pkg.cli:main\n"},
		},
	}
	wheelPath := testutil.WriteWheel(t, t.TempDir(),
		"pkg-1.0-py3-none-any.whl", testutil.WheelBytes(t, spec))

	_, err := install.Install(ctx, env, wheelPath, install.Options{})
	require.NoError(t, err)

	blob, err := launcher.Blob(python.LauncherWindowsX64)
	require.NoError(t, err)

	for _, name := range []string{"tool.exe", "legacy.exe"} {
		exePath := filepath.Join(root, "bin", name)
		exe, err := os.ReadFile(exePath)
		require.NoError(t, err, "launcher %q", name)

		// launcher_exe || shebang_line || zip(__main__.py)
		assert.True(t, bytes.HasPrefix(exe, blob))
		rest := exe[len(blob):]
		shebang := `#!"` + env.Interpreter + `"` + "\r\n"
		assert.True(t, bytes.HasPrefix(rest, []byte(shebang)), "launcher %q", name)

		zipReader, err := zip.NewReader(bytes.NewReader(exe), int64(len(exe)))
		require.NoError(t, err, "launcher %q", name)
		require.Len(t, zipReader.File, 1)
		assert.Equal(t, "__main__.py", zipReader.File[0].Name)
	}

	// the interpreter-level twin of the entry-point launcher
	twin := readFile(t, filepath.Join(root, "bin", "tool-script.py"))
	assert.True(t, strings.HasPrefix(twin, "#!"+env.Interpreter+"\n"))
	assert.Contains(t, twin, "from pkg.cli import main")

	// the payload of the wrapped entry point is the trampoline
	exe, err := os.ReadFile(filepath.Join(root, "bin", "tool.exe"))
	require.NoError(t, err)
	zipReader, err := zip.NewReader(bytes.NewReader(exe), int64(len(exe)))
	require.NoError(t, err)
	payload, err := zipReader.File[0].Open()
	require.NoError(t, err)
	payloadBytes, err := io.ReadAll(payload)
	require.NoError(t, err)
	require.NoError(t, payload.Close())
	assert.Contains(t, string(payloadBytes), "sys.exit(main())")
}

func TestInstallGuiScriptLauncher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	env := testEnv(root)
	env.Launcher = python.LauncherWindowsARM64

	spec := testutil.WheelSpec{
		Name:    "pkg",
		Version: "1.0",
		Files: []testutil.ZipEntry{
			{Name: "pkg/gui.py", Content: "def run():\n    pass\n"},
		},
		ExtraDistInfo: []testutil.ZipEntry{
			{Name: "entry_points.txt", Content: "[gui_scripts]\npkg-gui = pkg.gui:run\n"},
		},
	}
	wheelPath := testutil.WriteWheel(t, t.TempDir(),
		"pkg-1.0-py3-none-any.whl", testutil.WheelBytes(t, spec))

	_, err := install.Install(ctx, env, wheelPath, install.Options{})
	require.NoError(t, err)

	exe, err := os.ReadFile(filepath.Join(root, "bin", "pkg-gui.exe"))
	require.NoError(t, err)
	assert.Contains(t, string(exe), `" gui`+"\r\n")

	blob, err := launcher.Blob(python.LauncherWindowsARM64)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(exe, blob))
}
