package install

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/datawire/dlib/dlog"

	"github.com/monotrail-dev/wheelinstall/pkg/install/launcher"
	"github.com/monotrail-dev/wheelinstall/pkg/python"
	"github.com/monotrail-dev/wheelinstall/pkg/wheel"
)

// scriptTmpl is the trampoline emitted for each console_scripts/gui_scripts
// entry point: import the module, strip the wrapper suffix from argv[0], and
// hand control to the referenced callable.
var scriptTmpl = template.Must(template.
	New("entry_point.py").
	Parse(`# -*- coding: utf-8 -*-
import re
import sys
from {{ .Module }} import {{ .ImportName }}
if __name__ == '__main__':
    sys.argv[0] = re.sub(r'(-script\.pyw|\.exe)?$', '', sys.argv[0])
    sys.exit({{ .Func }}())
`))

func trampoline(ep wheel.EntryPoint) ([]byte, error) {
	if ep.Object == "" {
		return nil, fmt.Errorf("%w: entry point %s.%s has no object reference",
			wheel.ErrInvalid, ep.Group, ep.Name)
	}
	importName, _, _ := strings.Cut(ep.Object, ".")
	var buf bytes.Buffer
	if err := scriptTmpl.Execute(&buf, map[string]string{
		"Module":     ep.Module,
		"ImportName": importName,
		"Func":       ep.Object,
	}); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", ep.Group, ep.Name, err)
	}
	return buf.Bytes(), nil
}

// synthesizeScripts emits executable wrappers for the wheel's
// console_scripts and gui_scripts entry points.
//
// When an entry point and a `*.data/scripts/` file would produce the same
// destination name, the entry point wins; the collision is surfaced as a
// warning.  (The Record's replace-on-add semantics keep RECORD consistent.)
func synthesizeScripts(
	ctx context.Context,
	env *python.Environment,
	eps []wheel.EntryPoint,
	extracted map[string]struct{},
	rec *Record,
) error {
	for _, ep := range eps {
		var gui bool
		switch ep.Group {
		case "console_scripts":
			gui = false
		case "gui_scripts":
			gui = true
		default:
			continue
		}

		body, err := trampoline(ep)
		if err != nil {
			return err
		}
		dest := filepath.Join(env.Scheme.Scripts, ep.Name)

		if env.Launcher.Windows() {
			if err := writeWindowsScript(ctx, env, dest, gui, body, extracted, rec); err != nil {
				return err
			}
			continue
		}

		if _, collision := extracted[dest]; collision {
			dlog.Warnf(ctx, "script %q: entry point %s.%s overrides a file from the wheel's scripts directory",
				ep.Name, ep.Group, ep.Name)
		}
		content := append([]byte("#!"+env.Interpreter+"\n"), body...)
		if err := os.WriteFile(dest, content, 0o755); err != nil {
			return fmt.Errorf("write script %q: %w", ep.Name, err)
		}
		if err := os.Chmod(dest, 0o755); err != nil {
			return err
		}
		rec.AddFile(dest, hashBytes(content), int64(len(content)))
	}
	return nil
}

func writeWindowsScript(
	ctx context.Context,
	env *python.Environment,
	dest string,
	gui bool,
	body []byte,
	extracted map[string]struct{},
	rec *Record,
) error {
	exeDest := dest + ".exe"
	if _, collision := extracted[exeDest]; collision {
		dlog.Warnf(ctx, "script %q: entry point overrides a file from the wheel's scripts directory",
			filepath.Base(dest))
	}
	exe, err := launcher.Wrap(env.Launcher, env.Interpreter, gui, body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exeDest, exe, 0o755); err != nil {
		return fmt.Errorf("write launcher %q: %w", exeDest, err)
	}
	rec.AddFile(exeDest, hashBytes(exe), int64(len(exe)))

	// NAME-script.py allows interpreter-level invocation alongside the
	// launcher.
	scriptDest := dest + "-script.py"
	content := append([]byte("#!"+env.Interpreter+"\n"), body...)
	if err := os.WriteFile(scriptDest, content, 0o644); err != nil {
		return fmt.Errorf("write script %q: %w", scriptDest, err)
	}
	rec.AddFile(scriptDest, hashBytes(content), int64(len(content)))
	return nil
}
