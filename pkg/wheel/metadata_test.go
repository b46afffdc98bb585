package wheel_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotrail-dev/wheelinstall/pkg/python/pep425"
	"github.com/monotrail-dev/wheelinstall/pkg/testutil"
	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

func openArchive(t *testing.T, content []byte) *wheel.Archive {
	t.Helper()
	a, err := wheel.NewArchive(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	return a
}

func TestMetadata(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	content := testutil.WheelBytes(t, testutil.WheelSpec{
		Name:    "tqdm",
		Version: "4.62.3",
		Tag:     "py2.py3-none-any",
		Files: []testutil.ZipEntry{
			{Name: "tqdm/__init__.py", Content: "__version__ = '4.62.3'\n"},
		},
		ExtraDistInfo: []testutil.ZipEntry{
			{Name: "top_level.txt", Content: "tqdm\n"},
		},
	})
	a := openArchive(t, content)

	md, err := a.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0", md.WheelVersion)
	assert.True(t, md.RootIsPurelib)
	assert.Equal(t, []pep425.Tag{{Python: "py2.py3", ABI: "none", Platform: "any"}}, md.Tags)
	assert.Equal(t, "tqdm", md.Name)
	assert.Equal(t, "4.62.3", md.Version)
	assert.Equal(t, []string{"tqdm"}, md.TopLevel)

	fn, err := wheel.ParseFilename("tqdm-4.62.3-py2.py3-none-any.whl")
	require.NoError(t, err)
	assert.NoError(t, a.CheckDistInfoName(fn))
	assert.NoError(t, md.CrossCheck(fn))
}

func TestMetadataCrossCheckMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	content := testutil.WheelBytes(t, testutil.WheelSpec{
		Name:    "tqdm",
		Version: "4.62.3",
	})
	a := openArchive(t, content)
	md, err := a.Metadata(ctx)
	require.NoError(t, err)

	other, err := wheel.ParseFilename("tqdm-4.62.4-py2.py3-none-any.whl")
	require.NoError(t, err)
	assert.ErrorIs(t, md.CrossCheck(other), wheel.ErrInvalid)
	assert.ErrorIs(t, a.CheckDistInfoName(other), wheel.ErrInvalid)
}

func TestMetadataUnsupportedWheelVersion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	content := testutil.ZipBytes(t, []testutil.ZipEntry{
		{Name: "pkg-1.0.dist-info/WHEEL", Content: "Wheel-Version: 2.0\nRoot-Is-Purelib: true\n"},
		{Name: "pkg-1.0.dist-info/METADATA", Content: "Name: pkg\nVersion: 1.0\n"},
		{Name: "pkg-1.0.dist-info/RECORD", Content: "pkg-1.0.dist-info/RECORD,,\n"},
	})
	a := openArchive(t, content)
	_, err := a.Metadata(ctx)
	assert.ErrorIs(t, err, wheel.ErrInvalid)
}

func TestDistInfoDirAmbiguity(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		a := openArchive(t, testutil.ZipBytes(t, []testutil.ZipEntry{
			{Name: "pkg/__init__.py", Content: ""},
		}))
		_, err := a.DistInfoDir()
		assert.ErrorIs(t, err, wheel.ErrInvalid)
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		a := openArchive(t, testutil.ZipBytes(t, []testutil.ZipEntry{
			{Name: "pkg-1.0.dist-info/WHEEL", Content: "Wheel-Version: 1.0\n"},
			{Name: "other-2.0.dist-info/WHEEL", Content: "Wheel-Version: 1.0\n"},
		}))
		_, err := a.DistInfoDir()
		assert.ErrorIs(t, err, wheel.ErrInvalid)
	})

	t.Run("single", func(t *testing.T) {
		t.Parallel()
		a := openArchive(t, testutil.WheelBytes(t, testutil.WheelSpec{Name: "pkg", Version: "1.0"}))
		infoDir, err := a.DistInfoDir()
		require.NoError(t, err)
		assert.Equal(t, "pkg-1.0.dist-info", infoDir)
		dataDir, err := a.DataDir()
		require.NoError(t, err)
		assert.Equal(t, "pkg-1.0.data", dataDir)
	})
}
