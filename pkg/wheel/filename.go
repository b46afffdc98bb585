package wheel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/monotrail-dev/wheelinstall/pkg/python/pep425"
)

// The wheel filename is `{distribution}-{version}(-{build
// tag})?-{python tag}-{abi tag}-{platform tag}.whl`.  The build tag, when
// present, must start with a digit.
var reFilename = regexp.MustCompile(regexp.MustCompile(`\s+`).ReplaceAllString(`
		^(?P<distribution>[^-]+)
		-(?P<version>[^-]+)
		(?:-(?P<build_n>[0-9]+)(?P<build_l>[^-0-9][^-]*)?)?
		-(?P<python>[^-]+)
		-(?P<abi>[^-]+)
		-(?P<platform>[^-]+)
		\.whl$`, ``))

var reNameRun = regexp.MustCompile(`[-_.]+`)

// NormalizeName normalizes a distribution name per PEP 503: lowercase, with
// runs of `-`, `_`, and `.` collapsed to a single `-`.
func NormalizeName(name string) string {
	return reNameRun.ReplaceAllLiteralString(strings.ToLower(name), "-")
}

// escapeName is the inverse direction: a normalized name made safe for use
// inside a filename, where `-` is the field separator.
func escapeName(name string) string {
	return reNameRun.ReplaceAllLiteralString(name, "_")
}

// A BuildTag is an optional build number that acts as a tie-breaker between
// wheels that agree on every other filename component.
type BuildTag struct {
	Int int
	Str string
}

func (t BuildTag) String() string {
	return fmt.Sprintf("%d%s", t.Int, t.Str)
}

// Cmp compares two build tags; nil sorts before any non-nil tag.
func (a *BuildTag) Cmp(b *BuildTag) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if d := a.Int - b.Int; d != 0 {
		return d
	}
	return strings.Compare(a.Str, b.Str)
}

// A Filename holds the parsed components of a wheel filename.
type Filename struct {
	// Distribution is the normalized distribution name.
	Distribution string
	Version      string
	Build        *BuildTag

	// Tag is the (possibly compressed) compatibility tag triple from the
	// filename, e.g. {py2.py3, none, any}.
	Tag pep425.Tag
}

// ParseFilename parses the base name of a `.whl` file.  The returned
// Distribution is normalized.
func ParseFilename(filename string) (*Filename, error) {
	match := reFilename.FindStringSubmatch(filename)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	ret := &Filename{
		Distribution: NormalizeName(match[reFilename.SubexpIndex("distribution")]),
		Version:      match[reFilename.SubexpIndex("version")],
		Tag: pep425.Tag{
			Python:   match[reFilename.SubexpIndex("python")],
			ABI:      match[reFilename.SubexpIndex("abi")],
			Platform: match[reFilename.SubexpIndex("platform")],
		},
	}
	if buildN := match[reFilename.SubexpIndex("build_n")]; buildN != "" {
		n, _ := strconv.Atoi(buildN)
		ret.Build = &BuildTag{
			Int: n,
			Str: match[reFilename.SubexpIndex("build_l")],
		}
	}
	return ret, nil
}

// String reassembles the filename.  The distribution component is escaped
// with `_` so that it cannot collide with the `-` field separator.
func (fn *Filename) String() string {
	var ret strings.Builder
	ret.WriteString(escapeName(fn.Distribution))
	ret.WriteString("-")
	ret.WriteString(fn.Version)
	if fn.Build != nil {
		ret.WriteString("-")
		ret.WriteString(fn.Build.String())
	}
	ret.WriteString("-")
	ret.WriteString(fn.Tag.String())
	ret.WriteString(".whl")
	return ret.String()
}

// PyTags, ABITags, and PlatformTags return the `.`-split tag sets.

func (fn *Filename) PyTags() []string       { return strings.Split(fn.Tag.Python, ".") }
func (fn *Filename) ABITags() []string      { return strings.Split(fn.Tag.ABI, ".") }
func (fn *Filename) PlatformTags() []string { return strings.Split(fn.Tag.Platform, ".") }

// Compatible checks the wheel's tag triple against the tags accepted by an
// environment.  An empty accepted list skips the check.
func (fn *Filename) Compatible(accepted pep425.Installer) error {
	if len(accepted) == 0 {
		return nil
	}
	if !accepted.Supports(fn.Tag) {
		return fmt.Errorf("%w: %s does not match any of the environment's accepted tags",
			ErrIncompatibleTags, fn.Tag)
	}
	return nil
}
