// This file mimics the bits of `stat.py` that wheel archives care about.

package python

import (
	"io/fs"
)

// A StatMode represents a file's mode and permission bits as represented in
// Python (i.e. `os.stat()`'s `st_mode` member).  Python's bits match those of
// the Linux kernel, which is also what ZIP archives created on UNIX store in
// the high bytes of the external-attributes field.
type StatMode uint16

const (
	ModeFmt StatMode = 0o17_0000 // mask for the type bits

	ModeFmtDir     StatMode = 0o04_0000 // type: directory
	ModeFmtRegular StatMode = 0o10_0000 // type: regular file
	ModeFmtSymlink StatMode = 0o12_0000 // type: symbolic link

	ModePerm StatMode = 0o00_7777 // mask for permission bits

	ModePermUsrX StatMode = 0o00_0100 // permission: user: execute
	ModePermGrpX StatMode = 0o00_0010 // permission: group: execute
	ModePermOthX StatMode = 0o00_0001 // permission: other: execute
)

// IsDir reports whether pm describes a directory.
func (pm StatMode) IsDir() bool {
	return pm&ModeFmt == ModeFmtDir
}

// IsRegular reports whether pm describes a regular file.
func (pm StatMode) IsRegular() bool {
	return pm&ModeFmt == ModeFmtRegular
}

// ToGo translates pm from a StatMode to an fs.FileMode.
func (pm StatMode) ToGo() fs.FileMode {
	gm := fs.FileMode(pm & 0o777)
	switch pm & ModeFmt {
	case ModeFmtDir:
		gm |= fs.ModeDir
	case ModeFmtSymlink:
		gm |= fs.ModeSymlink
	}
	return gm
}
