package install

import (
	"errors"
)

var (
	// ErrUnsafePath means an archive entry's resolved destination escapes
	// every declared environment root (zip-slip).
	ErrUnsafePath = errors.New("archive entry resolves outside the environment roots")

	// ErrLockTimeout means the advisory install lock could not be
	// acquired within the configured timeout.
	ErrLockTimeout = errors.New("timed out waiting for the install lock")

	// ErrBytecompile wraps failures of the bytecode-compiler subprocess.
	// It is surfaced as a warning by default, not a hard failure.
	ErrBytecompile = errors.New("bytecode compilation failed")
)
