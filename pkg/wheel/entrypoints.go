package wheel

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

// An EntryPoint is a named `module:object` reference from entry_points.txt.
type EntryPoint struct {
	Group  string // "console_scripts", "gui_scripts", ...
	Name   string
	Module string
	Object string // dotted attribute path within Module; may be empty
	Extras []string
}

// EntryPoints parses the archive's entry_points.txt, if it has one.  The
// result is sorted by (group, name) so that downstream script generation is
// deterministic.
func (a *Archive) EntryPoints() ([]EntryPoint, error) {
	infoDir, err := a.DistInfoDir()
	if err != nil {
		return nil, err
	}
	fh, err := a.Open(path.Join(infoDir, "entry_points.txt"))
	if err != nil {
		return nil, nil // optional file
	}
	defer func() {
		_ = fh.Close()
	}()

	config, err := python.ParseConfig(fh)
	if err != nil {
		return nil, fmt.Errorf("%w: entry_points.txt: %v", ErrInvalid, err)
	}

	var ret []EntryPoint
	for group, section := range config {
		for name, value := range section {
			ep, err := parseEntryPoint(group, name, value)
			if err != nil {
				return nil, fmt.Errorf("%w: entry_points.txt: %v", ErrInvalid, err)
			}
			ret = append(ret, ep)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Group != ret[j].Group {
			return ret[i].Group < ret[j].Group
		}
		return ret[i].Name < ret[j].Name
	})
	return ret, nil
}

// parseEntryPoint parses a `module:object [extra1,extra2]` value.
func parseEntryPoint(group, name, value string) (EntryPoint, error) {
	ep := EntryPoint{
		Group: group,
		Name:  name,
	}

	ref := value
	if i := strings.Index(value, "["); i >= 0 {
		if !strings.HasSuffix(strings.TrimSpace(value), "]") {
			return ep, fmt.Errorf("%s.%s: malformed extras: %q", group, name, value)
		}
		extras := strings.TrimSpace(value[i+1 : strings.LastIndex(value, "]")])
		for _, extra := range strings.Split(extras, ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				ep.Extras = append(ep.Extras, extra)
			}
		}
		ref = value[:i]
	}

	ep.Module, ep.Object, _ = strings.Cut(strings.TrimSpace(ref), ":")
	ep.Module = strings.TrimSpace(ep.Module)
	ep.Object = strings.TrimSpace(ep.Object)
	if ep.Module == "" {
		return ep, fmt.Errorf("%s.%s: empty module reference: %q", group, name, value)
	}
	return ep, nil
}
