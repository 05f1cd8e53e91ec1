package retrieval

import "errors"

// Error taxonomy for retrieval operations. The backend client maps HTTP
// failures onto these sentinels, preserving server detail text through
// wrapping; callers branch with errors.Is.
var (
	// ErrNotFound means the file is absent or deleted. Not retryable.
	ErrNotFound = errors.New("file not found")
	// ErrCredentialRequired means the server rejected the request for
	// lack of a valid download code. Handled locally by the challenge
	// flow; callers normally never see it.
	ErrCredentialRequired = errors.New("download code required")
	// ErrUnsupportedType means preview was attempted on a type the
	// server does not render. Not retryable.
	ErrUnsupportedType = errors.New("file type not previewable")
	// ErrDecodeFailure means text content could not be decoded under
	// either attempted encoding. Distinct from transport failures.
	ErrDecodeFailure = errors.New("text content could not be decoded")
	// ErrTransport covers network and timeout failures. Retryable by
	// re-invoking the operation; nothing retries automatically.
	ErrTransport = errors.New("transport failure")
	// ErrDenied means the access gate refused the operation outright.
	// No current gate rule emits it; kept for the decision contract.
	ErrDenied = errors.New("access denied")
)
