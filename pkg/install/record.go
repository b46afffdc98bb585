package install

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

// A Record accumulates the rows of the post-install RECORD while extraction
// workers run.  Paths are stored absolute and made relative to the base
// directory (the dist-info's parent) at write time.  Adding a path twice
// replaces the earlier row, which is what makes entry-point scripts win over
// extracted files of the same name.
type Record struct {
	base string

	mu   sync.Mutex
	rows map[string]wheel.RecordEntry
}

func NewRecord(base string) *Record {
	return &Record{
		base: base,
		rows: make(map[string]wheel.RecordEntry),
	}
}

// AddFile records an installed file with its post-install hash and size.
func (r *Record) AddFile(absPath, hash string, size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[absPath] = wheel.RecordEntry{
		Path: absPath,
		Hash: hash,
		Size: strconv.FormatInt(size, 10),
	}
}

// AddUnhashed records a file with empty hash and size columns (RECORD
// itself, INSTALLER).
func (r *Record) AddUnhashed(absPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[absPath] = wheel.RecordEntry{Path: absPath}
}

// AddFileOnDisk hashes an already-written file (generated scripts, .pyc
// output) and records it.
func (r *Record) AddFileOnDisk(absPath string) error {
	hash, size, err := HashFile(absPath)
	if err != nil {
		return err
	}
	r.AddFile(absPath, hash, size)
	return nil
}

// Entries returns the accumulated rows with paths relative to the record
// base, sorted by path.
func (r *Record) Entries() ([]wheel.RecordEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]wheel.RecordEntry, 0, len(r.rows))
	for _, row := range r.rows {
		rel, err := filepath.Rel(r.base, row.Path)
		if err != nil {
			return nil, err
		}
		row.Path = filepath.ToSlash(rel)
		entries = append(entries, row)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// Write finalizes the install markers: it writes INSTALLER (the tool name
// plus a newline) and then the RECORD CSV, both inside distInfoDir.  RECORD
// and INSTALLER appear in RECORD with empty hash and size; RECORD's own row
// is the last line; the line terminator is LF.  The returned entries are the
// final RECORD content.
func (r *Record) Write(distInfoDir, installer string) ([]wheel.RecordEntry, error) {
	installerPath := filepath.Join(distInfoDir, "INSTALLER")
	if err := os.WriteFile(installerPath, []byte(installer+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write INSTALLER: %w", err)
	}
	r.AddUnhashed(installerPath)

	// The archive's RECORD was extracted like any other dist-info file; drop
	// its row so that RECORD's only row is the empty one appended below.
	recordPath := filepath.Join(distInfoDir, "RECORD")
	r.mu.Lock()
	delete(r.rows, recordPath)
	r.mu.Unlock()

	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}
	recordRel, err := filepath.Rel(r.base, recordPath)
	if err != nil {
		return nil, err
	}
	entries = append(entries, wheel.RecordEntry{Path: filepath.ToSlash(recordRel)})

	fh, err := os.Create(recordPath)
	if err != nil {
		return nil, fmt.Errorf("write RECORD: %w", err)
	}
	csvWriter := csv.NewWriter(fh)
	for _, entry := range entries {
		if err := csvWriter.Write([]string{entry.Path, entry.Hash, entry.Size}); err != nil {
			_ = fh.Close()
			return nil, fmt.Errorf("write RECORD: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("write RECORD: %w", err)
	}
	if err := fh.Close(); err != nil {
		return nil, err
	}
	return entries, nil
}

func hashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return "sha256=" + base64.RawURLEncoding.EncodeToString(sum[:])
}

// HashFile streams a file on disk through SHA-256, returning the RECORD-style
// `sha256=<b64urlnopad>` string and the byte count.
func HashFile(filename string) (hash string, size int64, err error) {
	fh, err := os.Open(filename)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = fh.Close()
	}()
	hasher := sha256.New()
	size, err = io.Copy(hasher, fh)
	if err != nil {
		return "", 0, err
	}
	return "sha256=" + base64.RawURLEncoding.EncodeToString(hasher.Sum(nil)), size, nil
}
