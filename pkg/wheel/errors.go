package wheel

import (
	"errors"
)

// The error taxonomy of wheel parsing and verification.  Errors returned from
// this package wrap one of these sentinels; use errors.Is to classify.
var (
	// ErrInvalidName means a filename fails the wheel filename grammar.
	ErrInvalidName = errors.New("invalid wheel filename")

	// ErrIncompatibleTags means the wheel shares no compatibility tag
	// with the target environment.
	ErrIncompatibleTags = errors.New("wheel is incompatible with the target environment")

	// ErrInvalid means the wheel archive itself is malformed: missing or
	// duplicate .dist-info, malformed WHEEL/METADATA/RECORD, or an
	// unexpected hash algorithm.
	ErrInvalid = errors.New("invalid wheel")

	// ErrHashMismatch and ErrSizeMismatch are integrity failures of
	// individual archive entries against RECORD.
	ErrHashMismatch = errors.New("wheel entry hash mismatch")
	ErrSizeMismatch = errors.New("wheel entry size mismatch")

	// ErrMissingRecordEntry means the archive contains a file that RECORD
	// does not list; ErrExtraFile means RECORD lists a file that the
	// archive does not contain.
	ErrMissingRecordEntry = errors.New("file not mentioned in RECORD")
	ErrExtraFile          = errors.New("file in RECORD but not in archive")
)
