package wheel

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// An Archive is an opened wheel file.
type Archive struct {
	zip    *zip.Reader
	closer io.Closer

	cachedDistInfoDir string
}

// OpenArchive opens the wheel file at the given path.
func OpenArchive(filename string) (*Archive, error) {
	zipReader, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open wheel: %w", err)
	}
	return &Archive{
		zip:    &zipReader.Reader,
		closer: zipReader,
	}, nil
}

// NewArchive wraps an already-open ZIP stream as a wheel.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open wheel: %w", err)
	}
	return &Archive{zip: zipReader}, nil
}

func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Files returns the archive entries in central-directory order.
func (a *Archive) Files() []*zip.File {
	return a.zip.File
}

// Open opens the named entry.
func (a *Archive) Open(filename string) (io.ReadCloser, error) {
	filename = path.Clean(filename)
	for _, file := range a.zip.File {
		if path.Clean(file.Name) == filename {
			return file.Open()
		}
	}
	return nil, fmt.Errorf("%w in wheel zip archive: %q", fs.ErrNotExist, filename)
}

// DistInfoDir returns the single "{name}-{version}.dist-info" directory of
// the archive.
//
// This is based off of `pip/_internal/utils/wheel.py:wheel_dist_info_dir()`,
// since PEP 427 doesn't actually have much to say about resolving ambiguity.
func (a *Archive) DistInfoDir() (string, error) {
	if a.cachedDistInfoDir != "" {
		return a.cachedDistInfoDir, nil
	}
	infoDirs := make(map[string]struct{})
	for _, file := range a.zip.File {
		dirname := strings.Split(path.Clean(file.Name), "/")[0]
		if !strings.HasSuffix(dirname, ".dist-info") {
			continue
		}
		infoDirs[dirname] = struct{}{}
	}

	switch len(infoDirs) {
	case 0:
		return "", fmt.Errorf("%w: .dist-info directory not found", ErrInvalid)
	case 1:
		for infoDir := range infoDirs {
			a.cachedDistInfoDir = infoDir
			return infoDir, nil
		}
		panic("not reached")
	default:
		list := make([]string, 0, len(infoDirs))
		for dir := range infoDirs {
			list = append(list, dir)
		}
		sort.Strings(list)
		return "", fmt.Errorf("%w: multiple .dist-info directories found: %v", ErrInvalid, list)
	}
}

// DataDir returns the "{name}-{version}.data" directory name that corresponds
// to the archive's dist-info directory (whether or not the archive actually
// contains one).
func (a *Archive) DataDir() (string, error) {
	infoDir, err := a.DistInfoDir()
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(infoDir, ".dist-info") + ".data", nil
}

// CheckDistInfoName verifies that the dist-info directory belongs to the
// given distribution, comparing normalized names the way pip's
// `canonicalize_name` comparison does.
func (a *Archive) CheckDistInfoName(fn *Filename) error {
	infoDir, err := a.DistInfoDir()
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(infoDir, ".dist-info")
	name, version, ok := splitNameVersion(base)
	if !ok || NormalizeName(name) != fn.Distribution || version != fn.Version {
		return fmt.Errorf("%w: .dist-info directory %q does not match wheel filename %s-%s",
			ErrInvalid, infoDir, fn.Distribution, fn.Version)
	}
	return nil
}

// splitNameVersion splits "{name}-{version}" at the last dash, since the
// name part may itself contain (escaped) dashes.
func splitNameVersion(base string) (name, version string, ok bool) {
	i := strings.LastIndex(base, "-")
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	return base[:i], base[i+1:], true
}
