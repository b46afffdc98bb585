package wheel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/textproto"
	"path"
	"strconv"
	"strings"

	"github.com/datawire/dlib/dlog"

	"github.com/monotrail-dev/wheelinstall/pkg/python/pep425"
)

// wheelSpecVersion is the latest Wheel-Version this installer implements.
var wheelSpecVersion = []int{1, 0}

// Metadata is the parsed content of a wheel's WHEEL and METADATA files (plus
// top_level.txt when present).
type Metadata struct {
	// From WHEEL:
	WheelVersion  string
	RootIsPurelib bool
	Tags          []pep425.Tag
	Generator     string
	Build         string

	// From METADATA:
	Name           string // normalized
	Version        string
	RequiresPython string
	RequiresDist   []string
	ProvidesExtra  []string

	// From top_level.txt (optional); importable top-level names, consumed
	// by import hooks downstream.
	TopLevel []string
}

// Metadata reads and validates the archive's WHEEL and METADATA files.
//
// A Wheel-Version with a greater major version than this installer supports
// is an error; a greater minor version is only a warning.
func (a *Archive) Metadata(ctx context.Context) (*Metadata, error) {
	infoDir, err := a.DistInfoDir()
	if err != nil {
		return nil, err
	}

	wheelHdr, err := a.readRFC822(path.Join(infoDir, "WHEEL"))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s/WHEEL: %v", ErrInvalid, infoDir, err)
	}

	md := &Metadata{
		WheelVersion: wheelHdr.Get("Wheel-Version"),
		Generator:    wheelHdr.Get("Generator"),
		Build:        wheelHdr.Get("Build"),
	}

	version, err := parseWheelVersion(md.WheelVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if version[0] > wheelSpecVersion[0] {
		return nil, fmt.Errorf("%w: Wheel-Version %s is not supported by this installer",
			ErrInvalid, md.WheelVersion)
	}
	if vercmp(version, wheelSpecVersion) > 0 {
		dlog.Warnf(ctx, "wheel's Wheel-Version (%s) is newer than this installer supports", md.WheelVersion)
	}

	switch rootIs := wheelHdr.Get("Root-Is-Purelib"); strings.ToLower(rootIs) {
	case "true":
		md.RootIsPurelib = true
	case "false", "":
		md.RootIsPurelib = false
	default:
		return nil, fmt.Errorf("%w: invalid Root-Is-Purelib value: %q", ErrInvalid, rootIs)
	}

	for _, tagStr := range wheelHdr.Values("Tag") {
		tag, err := pep425.Parse(tagStr)
		if err != nil {
			return nil, fmt.Errorf("%w: WHEEL Tag: %v", ErrInvalid, err)
		}
		md.Tags = append(md.Tags, tag)
	}

	metaHdr, err := a.readRFC822(path.Join(infoDir, "METADATA"))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s/METADATA: %v", ErrInvalid, infoDir, err)
	}
	md.Name = NormalizeName(metaHdr.Get("Name"))
	md.Version = metaHdr.Get("Version")
	md.RequiresPython = metaHdr.Get("Requires-Python")
	md.RequiresDist = metaHdr.Values("Requires-Dist")
	md.ProvidesExtra = metaHdr.Values("Provides-Extra")

	if topLevel, err := a.Open(path.Join(infoDir, "top_level.txt")); err == nil {
		scanner := bufio.NewScanner(topLevel)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				md.TopLevel = append(md.TopLevel, line)
			}
		}
		_ = topLevel.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: read %s/top_level.txt: %v", ErrInvalid, infoDir, err)
		}
	}

	return md, nil
}

// CrossCheck verifies that the metadata agrees with the wheel's filename.
func (md *Metadata) CrossCheck(fn *Filename) error {
	if md.Name != fn.Distribution {
		return fmt.Errorf("%w: METADATA Name %q does not match filename distribution %q",
			ErrInvalid, md.Name, fn.Distribution)
	}
	if md.Version != fn.Version {
		return fmt.Errorf("%w: METADATA Version %q does not match filename version %q",
			ErrInvalid, md.Version, fn.Version)
	}
	return nil
}

// readRFC822 reads an RFC 5322-ish key/value file (WHEEL, METADATA).
//
// textproto.Reader.ReadMIMEHeader() expects a blank line to mark the end of
// the header and the start of the body.  But in WHEEL there is no body, so
// the blank line should be optional.  So use an io.MultiReader to add a few
// trailing CRLFs to keep ReadMIMEHeader happy no matter what the file's
// trailing newline situation is.
func (a *Archive) readRFC822(filename string) (textproto.MIMEHeader, error) {
	fh, err := a.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = fh.Close()
	}()
	kvReader := textproto.NewReader(bufio.NewReader(io.MultiReader(
		fh,
		strings.NewReader("\r\n\r\n\r\n"),
	)))
	return kvReader.ReadMIMEHeader()
}

func parseWheelVersion(str string) ([]int, error) {
	if str == "" {
		return nil, fmt.Errorf("WHEEL is missing Wheel-Version")
	}
	parts := strings.Split(str, ".")
	ret := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("could not parse Wheel-Version: %q: %w", str, err)
		}
		ret = append(ret, n)
	}
	return ret, nil
}

func vercmp(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var aPart, bPart int
		if i < len(a) {
			aPart = a[i]
		}
		if i < len(b) {
			bPart = b[i]
		}
		if aPart != bPart {
			return aPart - bPart
		}
	}
	return 0
}
