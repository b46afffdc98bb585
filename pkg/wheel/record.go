package wheel

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/datawire/dlib/derror"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

// A RecordEntry is one row of a RECORD file: path, hash, size.  Hash has the
// form `alg=b64urlnopad` and may be empty; size is a decimal byte count and
// may be empty.
type RecordEntry struct {
	Path string
	Hash string
	Size string
}

// Record reads and parses the archive's RECORD file.
func (a *Archive) Record() ([]RecordEntry, error) {
	infoDir, err := a.DistInfoDir()
	if err != nil {
		return nil, err
	}
	recordName := path.Join(infoDir, "RECORD")
	reader, err := a.Open(recordName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = 3
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrInvalid, recordName, err)
	}

	entries := make([]RecordEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, RecordEntry{
			Path: row[0],
			Hash: row[1],
			Size: row[2],
		})
	}
	return entries, nil
}

// hashExempt returns whether a RECORD row is allowed to have an empty or
// non-sha256 hash: RECORD itself (which cannot contain its own hash), its
// detached signatures, and INSTALLER.
func hashExempt(infoDir, name string) bool {
	switch name {
	case path.Join(infoDir, "RECORD"),
		path.Join(infoDir, "RECORD.jws"),
		path.Join(infoDir, "RECORD.p7s"),
		path.Join(infoDir, "INSTALLER"):
		return true
	default:
		return false
	}
}

// Verify checks the archive's contents against its RECORD: the two must list
// exactly the same set of files, and (unless skipHashes is set) each entry's
// SHA-256 and size must match.  All findings are reported, not just the
// first.
func (a *Archive) Verify(entries []RecordEntry, skipHashes bool) error {
	infoDir, err := a.DistInfoDir()
	if err != nil {
		return err
	}

	todo := make(map[string]struct{})
	for _, file := range a.zip.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(file.Name)
		switch name {
		case path.Join(infoDir, "RECORD.jws"), path.Join(infoDir, "RECORD.p7s"):
			// signatures are not mentioned in RECORD
		default:
			todo[name] = struct{}{}
		}
	}

	var errs derror.MultiError
	for i, entry := range entries {
		name := path.Clean(entry.Path)
		if _, inArchive := todo[name]; !inArchive {
			errs = append(errs, fmt.Errorf("RECORD row %d: %w: %q", i, ErrExtraFile, name))
			continue
		}
		delete(todo, name)

		if entry.Hash == "" || entry.Size == "" {
			if !hashExempt(infoDir, name) {
				errs = append(errs, fmt.Errorf("%w: RECORD row %d: missing hash or size: %q",
					ErrInvalid, i, name))
			}
			continue
		}

		algo, _, _ := strings.Cut(entry.Hash, "=")
		if algo != "sha256" {
			if hashExempt(infoDir, name) {
				continue
			}
			if _, known := python.HashlibAlgorithmsGuaranteed[algo]; known {
				errs = append(errs, fmt.Errorf("%w: RECORD row %d: hash algorithm %q is not accepted (only sha256 is)",
					ErrInvalid, i, algo))
			} else {
				errs = append(errs, fmt.Errorf("%w: RECORD row %d: unknown hash algorithm %q",
					ErrInvalid, i, algo))
			}
			continue
		}

		if skipHashes {
			continue
		}

		actHash, actSize, err := a.digest(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("RECORD row %d: file %q: %w", i, name, err))
			continue
		}
		if actHash != entry.Hash {
			errs = append(errs, fmt.Errorf("%w: %q: RECORD=%q actual=%q",
				ErrHashMismatch, name, entry.Hash, actHash))
		}
		if strconv.FormatInt(actSize, 10) != entry.Size {
			errs = append(errs, fmt.Errorf("%w: %q: RECORD=%s actual=%d",
				ErrSizeMismatch, name, entry.Size, actSize))
		}
	}

	if len(todo) > 0 {
		names := make([]string, 0, len(todo))
		for name := range todo {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			errs = append(errs, fmt.Errorf("%w: %q", ErrMissingRecordEntry, name))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// digest streams an archive entry through SHA-256.
func (a *Archive) digest(filename string) (hashsum string, size int64, err error) {
	reader, err := a.Open(filename)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = reader.Close()
	}()

	hasher := sha256.New()
	size, err = io.Copy(hasher, reader)
	if err != nil {
		return "", 0, err
	}
	return "sha256=" + base64.RawURLEncoding.EncodeToString(hasher.Sum(nil)), size, nil
}
