// This file mimics `configparser.py`, which is the format that
// entry_points.txt is written in.

package python

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

type Config map[string]ConfigSection

type ConfigSection map[string]string

// ParseConfig parses an INI-shaped file the way Python's configparser does
// with its default options: sections in square brackets, `=` or `:`
// delimited options, `#`/`;` comment lines, indented continuation lines, and
// strict rejection of duplicate sections and options.
func ParseConfig(fp io.Reader) (Config, error) {
	config := make(Config)

	var (
		curIndent  int
		curSection ConfigSection
		curKey     string
		curVal     []string
	)

	flushKV := func() {
		if curVal != nil {
			curSection[curKey] = strings.TrimRight(strings.Join(curVal, "\n"), "\n")
			curKey = ""
			curVal = nil
		}
	}

	lines := bufio.NewReader(fp)
	lineno := 0
	keepGoing := true
	for keepGoing {
		line, err := lines.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			keepGoing = false
		}
		lineno++

		value := strings.TrimSpace(line)
		if strings.HasPrefix(value, "#") || strings.HasPrefix(value, ";") {
			continue
		}
		if value == "" {
			// blank lines are part of a value, but end nothing
			if curVal != nil {
				curVal = append(curVal, value)
			}
			continue
		}

		indent := 0
		for i, r := range line {
			if !unicode.IsSpace(r) {
				indent = i
				break
			}
		}
		switch {
		case curVal != nil && indent > 0 && indent > curIndent:
			// continuation line
			curVal = append(curVal, value)
		case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
			flushKV()
			curIndent = indent
			sectName := strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
			if _, exists := config[sectName]; exists {
				return nil, fmt.Errorf("line %d: duplicate section name %q", lineno, sectName)
			}
			config[sectName] = make(ConfigSection)
			curSection = config[sectName]
		default:
			flushKV()
			curIndent = indent
			if curSection == nil {
				return nil, fmt.Errorf("line %d: no section header", lineno)
			}
			sepPos := len(value)
			sepLen := 0
			for _, sep := range []string{"=", ":"} {
				if index := strings.Index(value, sep); index >= 0 && index < sepPos {
					sepPos = index
					sepLen = len(sep)
				}
			}
			if sepPos == len(value) {
				return nil, fmt.Errorf("line %d: invalid line: %q", lineno, value)
			}
			curKey = strings.ToLower(strings.TrimSpace(value[:sepPos]))
			curVal = []string{
				strings.TrimSpace(value[sepPos+sepLen:]),
			}
			if _, exists := curSection[curKey]; exists {
				return nil, fmt.Errorf("line %d: duplicate option name %q", lineno, curKey)
			}
		}
	}
	flushKV()

	return config, nil
}
