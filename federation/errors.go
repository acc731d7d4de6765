package federation

import "errors"

var (
	// ErrMalformedIdentifier is returned when a composite identifier does
	// not split into exactly 2 or 3 non-empty segments.
	ErrMalformedIdentifier = errors.New("malformed composite identifier")
	// ErrInvalidSegment is returned when encoding with an empty segment or
	// one containing the delimiter.
	ErrInvalidSegment = errors.New("invalid identifier segment")
	// ErrBackendNotFound is returned when the decoded backend name has no
	// activated instance.
	ErrBackendNotFound = errors.New("backend not activated")
	// ErrInvalidBackend is returned when activating a value that does not
	// implement the backend capability surface.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrUnsupportedOperation is returned when a backend lacks a capability
	// and no emulation exists for it.
	ErrUnsupportedOperation = errors.New("operation not supported by backend")
	// ErrBackendOperationFailed wraps failures reported by a backend that
	// attempted an operation.
	ErrBackendOperationFailed = errors.New("backend operation failed")
	// ErrUIDNotIndexed is returned by FindObjectByUID for UIDs the
	// federation layer has not observed. The UID index is best-effort, not
	// a full backend search.
	ErrUIDNotIndexed = errors.New("uid not indexed")
)
