// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0
//
// The jsonDumps function is from ocibuild's pkg/python/pypa/direct_url.

package install

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// DirectURL is a PEP 610 "Recording the Direct URL Origin of installed
// distributions" record.
//
// https://packaging.python.org/en/latest/specifications/direct-url/
type DirectURL struct {
	URL         string       `json:"url"`
	VCSInfo     *VCSInfo     `json:"vcs_info,omitempty"`     // if URL is a VCS reference
	ArchiveInfo *ArchiveInfo `json:"archive_info,omitempty"` // if URL is a sdist or bdist
	DirInfo     *DirInfo     `json:"dir_info,omitempty"`     // if URL is a local directory
}

type VCSInfo struct {
	VCS               string `json:"vcs"`
	RequestedRevision string `json:"requested_revision,omitempty"`
	CommitID          string `json:"commit_id"`
}

type ArchiveInfo struct {
	Hash string `json:"hash,omitempty"`
}

type DirInfo struct {
	Editable bool `json:"editable,omitempty"`
}

// DirectURLForPath builds the DirectURL record for a wheel installed from a
// local file.
func DirectURLForPath(wheelPath string) (*DirectURL, error) {
	abs, err := filepath.Abs(wheelPath)
	if err != nil {
		return nil, err
	}
	fileURL := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(abs),
	}
	return &DirectURL{
		URL:         fileURL.String(),
		ArchiveInfo: &ArchiveInfo{},
	}, nil
}

// write emits direct_url.json inside distInfoDir and records it.
func (du *DirectURL) write(distInfoDir string, rec *Record) error {
	content, err := jsonDumps(du)
	if err != nil {
		return fmt.Errorf("serialize direct_url.json: %w", err)
	}
	dest := filepath.Join(distInfoDir, "direct_url.json")
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return fmt.Errorf("write direct_url.json: %w", err)
	}
	rec.AddFile(dest, hashBytes(content), int64(len(content)))
	return nil
}

// jsonDumps is like `json.Marshal`, but mimics the whitespace of Python
// stdlib `json.dumps`, so that the emitted file is byte-identical to what
// the reference installer writes.
func jsonDumps(typedObj interface{}) ([]byte, error) {
	// Round-trip through JSON first to discard type information.
	src, err := json.Marshal(typedObj)
	if err != nil {
		return nil, err
	}
	var untypedObj interface{}
	if err := json.Unmarshal(src, &untypedObj); err != nil {
		return nil, err
	}
	src, err = json.Marshal(untypedObj)
	if err != nil {
		return nil, err
	}
	// Re-emit token-by-token, inserting `json.dumps`-style separators.
	var dst bytes.Buffer
	decoder := json.NewDecoder(bytes.NewReader(src))
	stack := []int{-1}
	completeObj := func() {
		depth := len(stack) - 1
		if stack[depth] < 0 {
			// inside an array
			stack[depth]--
		} else {
			// inside a map
			if stack[depth]%2 == 1 {
				_, _ = dst.WriteString(": ")
			}
			stack[depth]++
		}
	}
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return dst.Bytes(), nil
			}
			return nil, err
		}

		switch tok := tok.(type) {
		case json.Delim:
			switch tok {
			case '[':
				stack = append(stack, -1)
			case '{':
				stack = append(stack, 1)
			case '}', ']':
				stack = stack[:len(stack)-1]
				completeObj()
			}
			dst.WriteRune(rune(tok))
		default:
			if depth := len(stack) - 1; stack[depth] < -1 {
				// inside an array
				_, _ = dst.WriteString(", ")
			} else if stack[depth] > 1 && stack[depth]%2 == 1 {
				// inside a map
				_, _ = dst.WriteString(", ")
			}

			bs, err := json.Marshal(tok)
			if err != nil {
				return nil, err
			}
			_, _ = dst.Write(bs)
			completeObj()
		}
	}
}
