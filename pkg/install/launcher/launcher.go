// Package launcher produces the Windows executable wrappers for scripts.
//
// A wrapped script is the byte sequence
//
//	launcher_exe || shebang_line || zip(__main__.py)
//
// where the launcher executable is a pre-baked binary selected by
// architecture, the shebang line is `#!"<interpreter>" [gui]\r\n` encoded
// UTF-8, and the trailing ZIP holds the script body as its single
// `__main__.py` entry.  This is the same scheme pip inherits from distlib's
// t32.exe/t64.exe/t64-arm.exe launchers.
package launcher

import (
	"archive/zip"
	"bytes"
	"embed"
	"fmt"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

// The launcher binaries are opaque vendored resources; nothing in this
// package interprets their content.
//
//go:embed t32.exe t64.exe t64-arm.exe
var blobs embed.FS

// Blob returns the pre-baked launcher executable for a launcher kind.
func Blob(kind python.LauncherKind) ([]byte, error) {
	var name string
	switch kind {
	case python.LauncherWindowsX86:
		name = "t32.exe"
	case python.LauncherWindowsX64:
		name = "t64.exe"
	case python.LauncherWindowsARM64:
		name = "t64-arm.exe"
	default:
		return nil, fmt.Errorf("no launcher executable for launcher kind %q", kind)
	}
	return blobs.ReadFile(name)
}

// Wrap assembles a launcher-wrapped executable around a Python script body.
func Wrap(kind python.LauncherKind, interpreter string, gui bool, script []byte) ([]byte, error) {
	exe, err := Blob(kind)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(exe)
	buf.WriteString(`#!"` + interpreter + `"`)
	if gui {
		buf.WriteString(" gui")
	}
	buf.WriteString("\r\n")

	zipWriter := zip.NewWriter(&buf)
	entry, err := zipWriter.Create("__main__.py")
	if err != nil {
		return nil, err
	}
	if _, err := entry.Write(script); err != nil {
		return nil, err
	}
	if err := zipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
