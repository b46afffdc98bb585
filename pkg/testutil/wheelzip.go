package testutil

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// A ZipEntry is one file to place in a test archive.
type ZipEntry struct {
	Name    string
	Content string
	Exec    bool
}

// ZipBytes assembles a ZIP archive in memory.
func ZipBytes(t *testing.T, entries []ZipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for _, entry := range entries {
		hdr := &zip.FileHeader{
			Name:   entry.Name,
			Method: zip.Deflate,
		}
		if entry.Exec {
			hdr.SetMode(0o755)
		} else {
			hdr.SetMode(0o644)
		}
		fw, err := zipWriter.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = fw.Write([]byte(entry.Content))
		require.NoError(t, err)
	}
	require.NoError(t, zipWriter.Close())
	return buf.Bytes()
}

// RecordRow formats the RECORD row for a file with the given content.
func RecordRow(name, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%s,sha256=%s,%d",
		name, base64.RawURLEncoding.EncodeToString(sum[:]), len(content))
}

// A WheelSpec describes a synthetic wheel for tests.  The dist-info's WHEEL,
// METADATA, and RECORD files are generated unless overridden.
type WheelSpec struct {
	Name    string // unnormalized distribution name, e.g. "tqdm"
	Version string

	RootIsPlatlib bool   // default is Root-Is-Purelib: true
	Tag           string // WHEEL Tag line; default "py3-none-any"

	// Files is the payload: package files and `*.data/...` entries.
	Files []ZipEntry

	// ExtraDistInfo are additional dist-info files (entry_points.txt,
	// top_level.txt, ...); names are relative to the dist-info dir.
	ExtraDistInfo []ZipEntry

	// OmitFromRecord leaves the named archive paths out of the generated
	// RECORD.
	OmitFromRecord []string

	// RecordOverride replaces the generated RECORD content entirely.
	RecordOverride string
}

// DistInfoDir returns the wheel's dist-info directory name.
func (spec WheelSpec) DistInfoDir() string {
	return fmt.Sprintf("%s-%s.dist-info", spec.Name, spec.Version)
}

// WheelBytes assembles a synthetic wheel archive.
func WheelBytes(t *testing.T, spec WheelSpec) []byte {
	t.Helper()
	infoDir := spec.DistInfoDir()

	rootIs := "true"
	if spec.RootIsPlatlib {
		rootIs = "false"
	}
	tag := spec.Tag
	if tag == "" {
		tag = "py3-none-any"
	}
	wheelFile := "Wheel-Version: 1.0\n" +
		"Generator: wheelinstall-test\n" +
		"Root-Is-Purelib: " + rootIs + "\n" +
		"Tag: " + tag + "\n"
	metadataFile := "Metadata-Version: 2.1\n" +
		"Name: " + spec.Name + "\n" +
		"Version: " + spec.Version + "\n"

	entries := make([]ZipEntry, 0, len(spec.Files)+len(spec.ExtraDistInfo)+3)
	entries = append(entries, spec.Files...)
	entries = append(entries,
		ZipEntry{Name: infoDir + "/WHEEL", Content: wheelFile},
		ZipEntry{Name: infoDir + "/METADATA", Content: metadataFile},
	)
	for _, extra := range spec.ExtraDistInfo {
		entries = append(entries, ZipEntry{
			Name:    infoDir + "/" + extra.Name,
			Content: extra.Content,
			Exec:    extra.Exec,
		})
	}

	record := spec.RecordOverride
	if record == "" {
		omit := make(map[string]bool, len(spec.OmitFromRecord))
		for _, name := range spec.OmitFromRecord {
			omit[name] = true
		}
		var rows []string
		for _, entry := range entries {
			if !omit[entry.Name] {
				rows = append(rows, RecordRow(entry.Name, entry.Content))
			}
		}
		rows = append(rows, infoDir+"/RECORD,,")
		record = strings.Join(rows, "\n") + "\n"
	}
	entries = append(entries, ZipEntry{Name: infoDir + "/RECORD", Content: record})

	return ZipBytes(t, entries)
}

// WriteWheel drops a wheel archive in to dir under the given filename and
// returns its path.
func WriteWheel(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}
