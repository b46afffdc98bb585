// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
)

//nolint:gochecknoglobals // Would be 'const'.
var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// AssertEqual is like assert.Equal, but shows a line-based unified diff of
// the spew dumps on mismatch, which is much easier to read for multi-line
// file content and nested structs.
func AssertEqual(t *testing.T, expected, actual interface{}, msgAndArgs ...interface{}) bool {
	t.Helper()
	expStr := spewConfig.Sdump(expected)
	actStr := spewConfig.Sdump(actual)
	if expStr == actStr {
		return true
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expStr),
		B:        difflib.SplitLines(actStr),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return assert.Equal(t, expected, actual, msgAndArgs...)
	}
	return assert.Fail(t, "Not equal:\n"+diff, msgAndArgs...)
}

// AssertTextEqual diffs two multi-line strings directly, without the spew
// dump.
func AssertTextEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) bool {
	t.Helper()
	if expected == actual {
		return true
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil || strings.TrimSpace(diff) == "" {
		return assert.Equal(t, expected, actual, msgAndArgs...)
	}
	return assert.Fail(t, "Not equal:\n"+diff, msgAndArgs...)
}
