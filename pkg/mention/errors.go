package mention

import "errors"

var (
	// ErrDirectoryNil is returned when an Extractor is created without a Directory.
	ErrDirectoryNil = errors.New("mention: directory cannot be nil")

	// ErrLookupFailed wraps failures of the user directory.
	ErrLookupFailed = errors.New("mention: username lookup failed")
)
