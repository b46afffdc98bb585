package python_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

func validEnv() *python.Environment {
	return &python.Environment{
		Interpreter:    "/venv/bin/python3.9",
		Implementation: "cpython",
		Version:        python.VersionInfo{Major: 3, Minor: 9},
		Scheme: python.Scheme{
			PureLib: "/venv/lib/python3.9/site-packages",
			PlatLib: "/venv/lib/python3.9/site-packages",
			Headers: "/venv/include/python3.9",
			Scripts: "/venv/bin",
			Data:    "/venv",
		},
	}
}

func TestEnvironmentInit(t *testing.T) {
	t.Parallel()
	env := validEnv()
	require.NoError(t, env.Init())
	assert.Equal(t, python.LauncherPOSIX, env.Launcher)
	assert.Equal(t, env.Scheme.PureLib, env.SitePackages)
	assert.Equal(t, "3.9", env.Version.String())
}

func TestEnvironmentInitErrors(t *testing.T) {
	t.Parallel()
	t.Run("missing-interpreter", func(t *testing.T) {
		t.Parallel()
		env := validEnv()
		env.Interpreter = ""
		assert.Error(t, env.Init())
	})
	t.Run("relative-scheme-path", func(t *testing.T) {
		t.Parallel()
		env := validEnv()
		env.Scheme.Scripts = "bin"
		assert.Error(t, env.Init())
	})
	t.Run("bogus-launcher", func(t *testing.T) {
		t.Parallel()
		env := validEnv()
		env.Launcher = "windows-mips"
		assert.Error(t, env.Init())
	})
}

func TestCategoryDir(t *testing.T) {
	t.Parallel()
	env := validEnv()
	require.NoError(t, env.Init())

	for category, expected := range map[string]string{
		"purelib": env.Scheme.PureLib,
		"platlib": env.Scheme.PlatLib,
		"headers": env.Scheme.Headers,
		"scripts": env.Scheme.Scripts,
		"data":    env.Scheme.Data,
	} {
		dir, ok := env.CategoryDir(category)
		assert.True(t, ok, "category %q", category)
		assert.Equal(t, expected, dir, "category %q", category)
	}
	_, ok := env.CategoryDir("include")
	assert.False(t, ok)
}

func TestLauncherKindWindows(t *testing.T) {
	t.Parallel()
	assert.False(t, python.LauncherPOSIX.Windows())
	assert.True(t, python.LauncherWindowsX86.Windows())
	assert.True(t, python.LauncherWindowsX64.Windows())
	assert.True(t, python.LauncherWindowsARM64.Windows())
}
