package pep425_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotrail-dev/wheelinstall/pkg/python/pep425"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tag, err := pep425.Parse("py2.py3-none-any")
	require.NoError(t, err)
	assert.Equal(t, pep425.Tag{Python: "py2.py3", ABI: "none", Platform: "any"}, tag)

	for _, invalid := range []string{"", "py3", "py3-none", "py3-none-any-extra", "-none-any"} {
		_, err := pep425.Parse(invalid)
		assert.Error(t, err, "tag %q", invalid)
	}
}

func TestDecompress(t *testing.T) {
	t.Parallel()
	tag := pep425.Tag{Python: "py2.py3", ABI: "none", Platform: "manylinux1_x86_64.manylinux2010_x86_64"}
	assert.Equal(t, []pep425.Tag{
		{"py2", "none", "manylinux1_x86_64"},
		{"py2", "none", "manylinux2010_x86_64"},
		{"py3", "none", "manylinux1_x86_64"},
		{"py3", "none", "manylinux2010_x86_64"},
	}, tag.Decompress())
}

func TestIntersect(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		a, b     pep425.Tag
		expected bool
	}{
		"identical":      {pep425.Tag{"py3", "none", "any"}, pep425.Tag{"py3", "none", "any"}, true},
		"compressed":     {pep425.Tag{"py2.py3", "none", "any"}, pep425.Tag{"py3", "none", "any"}, true},
		"disjoint-py":    {pep425.Tag{"py2", "none", "any"}, pep425.Tag{"py3", "none", "any"}, false},
		"disjoint-plat":  {pep425.Tag{"py3", "none", "any"}, pep425.Tag{"py3", "none", "manylinux1_x86_64"}, false},
		"both-comp":      {pep425.Tag{"py2.py3", "none", "any"}, pep425.Tag{"py3.py4", "none", "any"}, true},
		"abi-compressed": {pep425.Tag{"cp39", "cp39.abi3", "any"}, pep425.Tag{"cp39", "abi3", "any"}, true},
	}
	for name, tc := range testcases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, pep425.Intersect([]pep425.Tag{tc.a}, []pep425.Tag{tc.b}))
		})
	}
}

func TestInstallerPreference(t *testing.T) {
	t.Parallel()
	inst := pep425.Installer{
		{"cp39", "cp39", "manylinux1_x86_64"},
		{"cp39", "abi3", "manylinux1_x86_64"},
		{"py3", "none", "any"},
	}
	assert.True(t, inst.Supports(pep425.Tag{"py2.py3", "none", "any"}))
	assert.False(t, inst.Supports(pep425.Tag{"cp38", "cp38", "manylinux1_x86_64"}))
	assert.Equal(t, 1, inst.Preference(pep425.Tag{"cp39", "cp39", "manylinux1_x86_64"}))
	assert.Equal(t, 3, inst.Preference(pep425.Tag{"py3", "none", "any"}))
	assert.Equal(t, 4, inst.Preference(pep425.Tag{"cp38", "cp38", "win32"}))
}
