package bridge

import "errors"

// Sentinel errors of the bridge. Transport failures are returned as-is
// (wrapped) and match none of these.
var (
	// ErrInvalidCredentials means the portal issued no session token for
	// the supplied id/password pair.
	ErrInvalidCredentials = errors.New("portal rejected the credentials")

	// ErrUpstreamSession means the portal login succeeded but the library
	// subsystem did not grant its own session.
	ErrUpstreamSession = errors.New("library session was not granted")

	// ErrParse means a host page did not have the expected shape, either
	// because the host changed or because the session is no longer valid.
	ErrParse = errors.New("unexpected host page structure")

	// ErrNotFound means the referenced booking does not exist on the host.
	ErrNotFound = errors.New("booking not found on the host")
)
