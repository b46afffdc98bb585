package python

import (
	"fmt"
	"path/filepath"

	"github.com/monotrail-dev/wheelinstall/pkg/python/pep425"
)

// A LauncherKind selects the flavor of executable wrapper generated for
// entry-point scripts.
type LauncherKind string

const (
	LauncherPOSIX        LauncherKind = "posix"
	LauncherWindowsX86   LauncherKind = "windows-x86"
	LauncherWindowsX64   LauncherKind = "windows-x64"
	LauncherWindowsARM64 LauncherKind = "windows-arm64"
)

// Windows reports whether the launcher kind targets Windows (and thus scripts
// become launcher-wrapped .exe files rather than shebang text files).
func (k LauncherKind) Windows() bool {
	switch k {
	case LauncherWindowsX86, LauncherWindowsX64, LauncherWindowsARM64:
		return true
	default:
		return false
	}
}

type VersionInfo struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

func (vi VersionInfo) String() string {
	return fmt.Sprintf("%d.%d", vi.Major, vi.Minor)
}

// A Scheme holds the installation directories of a target environment.  These
// are the directories described in distutils.command.install.SCHEME_KEYS and
// distutils.command.install.INSTALL_SCHEMES.
type Scheme struct {
	PureLib string `json:"purelib"` // "/venv/lib/python3.9/site-packages"
	PlatLib string `json:"platlib"` // "/venv/lib64/python3.9/site-packages"
	Headers string `json:"headers"` // "/venv/include/python3.9/$name/"
	Scripts string `json:"scripts"` // "/venv/bin"
	Data    string `json:"data"`    // "/venv"
}

// An Environment describes the target Python environment of an install call.
// It is immutable for the duration of the call.
type Environment struct {
	Interpreter    string `json:"interpreter"`    // "/venv/bin/python3.9"
	Implementation string `json:"implementation"` // "cpython"

	Version VersionInfo `json:"version"`
	Scheme  Scheme      `json:"scheme"`

	// SitePackages is where .dist-info directories land; usually the same
	// as Scheme.PureLib.
	SitePackages string `json:"site_packages"`
	VenvRoot     string `json:"venv_root,omitempty"`

	Launcher LauncherKind `json:"launcher,omitempty"`

	// Tags is the ordered list of compatibility tags the environment
	// accepts.  Leave empty to skip the compatibility check.
	Tags pep425.Installer `json:"tags,omitempty"`
}

// Init fills in defaults and validates the environment description.
func (env *Environment) Init() error {
	if env.Interpreter == "" {
		return fmt.Errorf("environment does not specify an interpreter path")
	}
	if env.Launcher == "" {
		env.Launcher = LauncherPOSIX
	}
	switch env.Launcher {
	case LauncherPOSIX, LauncherWindowsX86, LauncherWindowsX64, LauncherWindowsARM64:
	default:
		return fmt.Errorf("invalid launcher kind: %q", env.Launcher)
	}
	if env.SitePackages == "" {
		env.SitePackages = env.Scheme.PureLib
	}
	for _, pair := range []struct {
		name string
		val  string
	}{
		{"purelib", env.Scheme.PureLib},
		{"platlib", env.Scheme.PlatLib},
		{"headers", env.Scheme.Headers},
		{"scripts", env.Scheme.Scripts},
		{"data", env.Scheme.Data},
		{"site_packages", env.SitePackages},
	} {
		if !filepath.IsAbs(pair.val) {
			return fmt.Errorf("environment install scheme %q is not an absolute path: %q",
				pair.name, pair.val)
		}
	}
	return nil
}

// CategoryDir returns the destination directory for a `*.data/<category>/`
// subtree.
func (env *Environment) CategoryDir(category string) (string, bool) {
	switch category {
	case "purelib":
		return env.Scheme.PureLib, true
	case "platlib":
		return env.Scheme.PlatLib, true
	case "headers":
		return env.Scheme.Headers, true
	case "scripts":
		return env.Scheme.Scripts, true
	case "data":
		return env.Scheme.Data, true
	default:
		return "", false
	}
}

// Roots returns the declared destination roots.  Every resolved destination
// path must be lexically contained in one of these.
func (env *Environment) Roots() []string {
	return []string{
		env.Scheme.PureLib,
		env.Scheme.PlatLib,
		env.Scheme.Headers,
		env.Scheme.Scripts,
		env.Scheme.Data,
		env.SitePackages,
	}
}
