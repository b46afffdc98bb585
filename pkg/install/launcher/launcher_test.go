package launcher_test

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotrail-dev/wheelinstall/pkg/install/launcher"
	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

func TestBlob(t *testing.T) {
	t.Parallel()
	for _, kind := range []python.LauncherKind{
		python.LauncherWindowsX86,
		python.LauncherWindowsX64,
		python.LauncherWindowsARM64,
	} {
		blob, err := launcher.Blob(kind)
		require.NoError(t, err, "kind %q", kind)
		assert.NotEmpty(t, blob, "kind %q", kind)
	}

	_, err := launcher.Blob(python.LauncherPOSIX)
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	t.Parallel()
	script := []byte("import sys\nsys.exit(0)\n")
	exe, err := launcher.Wrap(python.LauncherWindowsX64, `C:\venv\Scripts\python.exe`, false, script)
	require.NoError(t, err)

	blob, err := launcher.Blob(python.LauncherWindowsX64)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(exe, blob))
	assert.True(t, bytes.HasPrefix(exe[len(blob):],
		[]byte(`#!"C:\venv\Scripts\python.exe"`+"\r\n")))

	zipReader, err := zip.NewReader(bytes.NewReader(exe), int64(len(exe)))
	require.NoError(t, err)
	require.Len(t, zipReader.File, 1)
	require.Equal(t, "__main__.py", zipReader.File[0].Name)
	payload, err := zipReader.File[0].Open()
	require.NoError(t, err)
	payloadBytes, err := io.ReadAll(payload)
	require.NoError(t, err)
	require.NoError(t, payload.Close())
	assert.Equal(t, script, payloadBytes)
}

func TestWrapGui(t *testing.T) {
	t.Parallel()
	exe, err := launcher.Wrap(python.LauncherWindowsX86, "python.exe", true, []byte("pass\n"))
	require.NoError(t, err)
	assert.Contains(t, string(exe), `#!"python.exe" gui`+"\r\n")
}
