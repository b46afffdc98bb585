package wheel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotrail-dev/wheelinstall/pkg/testutil"
	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

func TestEntryPoints(t *testing.T) {
	t.Parallel()

	content := testutil.WheelBytes(t, testutil.WheelSpec{
		Name:    "tqdm",
		Version: "4.62.3",
		ExtraDistInfo: []testutil.ZipEntry{
			{Name: "entry_points.txt", Content: "" +
				"[console_scripts]\n" +
				"tqdm = tqdm.cli:main\n" +
				"tqdm-extra = tqdm.cli:main.sub [telegram, notebook]\n" +
				"\n" +
				"[gui_scripts]\n" +
				"tqdm-gui = tqdm.gui:main\n" +
				"\n" +
				"[some.plugin.group]\n" +
				"plugin = tqdm.plugins:Plugin\n"},
		},
	})
	a := openArchive(t, content)

	eps, err := a.EntryPoints()
	require.NoError(t, err)
	assert.Equal(t, []wheel.EntryPoint{
		{Group: "console_scripts", Name: "tqdm", Module: "tqdm.cli", Object: "main"},
		{
			Group: "console_scripts", Name: "tqdm-extra",
			Module: "tqdm.cli", Object: "main.sub",
			Extras: []string{"telegram", "notebook"},
		},
		{Group: "gui_scripts", Name: "tqdm-gui", Module: "tqdm.gui", Object: "main"},
		{Group: "some.plugin.group", Name: "plugin", Module: "tqdm.plugins", Object: "Plugin"},
	}, eps)
}

func TestEntryPointsAbsent(t *testing.T) {
	t.Parallel()

	a := openArchive(t, testutil.WheelBytes(t, testutil.WheelSpec{Name: "pkg", Version: "1.0"}))
	eps, err := a.EntryPoints()
	require.NoError(t, err)
	assert.Empty(t, eps)
}

func TestEntryPointsMalformed(t *testing.T) {
	t.Parallel()

	a := openArchive(t, testutil.WheelBytes(t, testutil.WheelSpec{
		Name:    "pkg",
		Version: "1.0",
		ExtraDistInfo: []testutil.ZipEntry{
			{Name: "entry_points.txt", Content: "[console_scripts]\nbroken = [oops\n"},
		},
	}))
	_, err := a.EntryPoints()
	assert.ErrorIs(t, err, wheel.ErrInvalid)
}
