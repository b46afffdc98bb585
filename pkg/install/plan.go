package install

import (
	"archive/zip"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

// A Kind classifies where a plan item came from, which controls shebang
// rewriting and executable bits.
type Kind int

const (
	// KindLib is a file from the archive root, going to purelib/platlib.
	KindLib Kind = iota
	// KindData is a `*.data/<category>/` file for a non-script category.
	KindData
	// KindScript is a `*.data/scripts/` file.
	KindScript
	// KindDistInfo is a `*.dist-info/` file.
	KindDistInfo
)

// An Item maps one archive entry to its destination on disk.
type Item struct {
	Source   *zip.File
	Dest     string // absolute
	Kind     Kind
	Category string // data category for KindData/KindScript
	Exec     bool   // executable bit from the zip external attributes
}

// BuildPlan decides the on-disk destination of every non-directory archive
// entry, per the wheel spread rules:
//
//   - `{name}-{version}.data/<category>/rest` goes to the scheme directory
//     for that category;
//   - `{name}-{version}.dist-info/rest` goes under site-packages;
//   - everything else goes to purelib or platlib per Root-Is-Purelib.
//
// Every destination is checked for lexical containment in the environment's
// declared roots; an entry that would escape fails the whole plan with
// ErrUnsafePath before anything is written.
func BuildPlan(a *wheel.Archive, env *python.Environment, md *wheel.Metadata) ([]Item, error) {
	infoDir, err := a.DistInfoDir()
	if err != nil {
		return nil, err
	}
	dataDir, err := a.DataDir()
	if err != nil {
		return nil, err
	}

	rootDir := env.Scheme.PureLib
	if !md.RootIsPurelib {
		rootDir = env.Scheme.PlatLib
	}
	roots := env.Roots()

	files := a.Files()
	plan := make([]Item, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name, "/") || file.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(file.Name)

		item := Item{
			Source: file,
			Exec:   python.ZIPEntryIsExecutable(file.FileHeader),
		}
		switch {
		case name == dataDir || strings.HasPrefix(name, dataDir+"/"):
			relName := strings.TrimPrefix(name, dataDir+"/")
			category, rest, ok := strings.Cut(relName, "/")
			if !ok || rest == "" {
				return nil, fmt.Errorf("%w: stray file in data directory: %q",
					wheel.ErrInvalid, name)
			}
			categoryDir, ok := env.CategoryDir(category)
			if !ok {
				return nil, fmt.Errorf("%w: unsupported wheel data type %q: %q",
					wheel.ErrInvalid, category, name)
			}
			dest, err := secureJoin(categoryDir, rest)
			if err != nil {
				return nil, err
			}
			item.Dest = dest
			item.Category = category
			if category == "scripts" {
				item.Kind = KindScript
			} else {
				item.Kind = KindData
			}
		case name == infoDir || strings.HasPrefix(name, infoDir+"/"):
			dest, err := secureJoin(env.SitePackages, name)
			if err != nil {
				return nil, err
			}
			item.Dest = dest
			item.Kind = KindDistInfo
		default:
			dest, err := secureJoin(rootDir, name)
			if err != nil {
				return nil, err
			}
			item.Dest = dest
			item.Kind = KindLib
		}
		if !underAnyRoot(roots, item.Dest) {
			return nil, fmt.Errorf("%w: %q resolves to %q", ErrUnsafePath, name, item.Dest)
		}
		plan = append(plan, item)
	}
	return plan, nil
}

// underAnyRoot reports whether dest is lexically contained in one of the
// environment's declared roots.
func underAnyRoot(roots []string, dest string) bool {
	for _, root := range roots {
		root = filepath.Clean(root)
		if dest == root || strings.HasPrefix(dest, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// secureJoin joins an archive-relative path onto a root, refusing paths that
// would lexically escape the root (`../`, absolute paths, drive-relative
// tricks).
func secureJoin(root, rel string) (string, error) {
	rel = path.Clean(rel)
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}
