// This file mimics the parts of `zipfile.py` that deal with the ZIP
// "external file attributes" field.

package python

import (
	"archive/zip"
)

// A ZIPExternalAttributes represents Python's view of a ZIP file's "external
// file attributes" field.
//
// The ZIP file format specification specifies a 4-byte "external file
// attributes" field for each file, the meaning of which depends on the
// platform on which the ZIP file was created.  On the "UNIX" (0x03) platform
// only the upper 2 bytes are used, and hold the `st_mode`.  Python's
// `zipfile` doesn't actually check the "version made by" field, and just
// parses it both ways; so do we.
type ZIPExternalAttributes struct {
	UNIX   StatMode
	Unused uint8
	MSDOS  uint8
}

// Raw turns a ZIPExternalAttributes struct in to an unstructured 32-bit
// unsigned integer.
func (ea ZIPExternalAttributes) Raw() uint32 {
	return uint32(ea.UNIX)<<16 | uint32(ea.Unused)<<8 | uint32(ea.MSDOS)
}

// ParseZIPExternalAttributes turns an unstructured 32-bit unsigned integer in
// to a ZIPExternalAttributes struct.
func ParseZIPExternalAttributes(raw uint32) ZIPExternalAttributes {
	return ZIPExternalAttributes{
		UNIX:   StatMode(raw >> 16),
		Unused: uint8(raw >> 8),
		MSDOS:  uint8(raw),
	}
}

// ZIPEntryIsExecutable reports whether a zip entry's external attributes mark
// it as an executable regular file.
//
// This is based off of pip/_internal/utils/unpacking.py:zip_item_is_executable().
func ZIPEntryIsExecutable(fh zip.FileHeader) bool {
	externalAttrs := ParseZIPExternalAttributes(fh.ExternalAttrs)
	return externalAttrs.UNIX.IsRegular() && (externalAttrs.UNIX&0o111 != 0)
}
