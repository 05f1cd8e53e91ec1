package retrieval

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/fileshare/core/challenge"
	"github.com/dmitrymomot/fileshare/core/file"
	"github.com/dmitrymomot/fileshare/core/preview"
)

// Backend is the external collaborator that owns file metadata and
// bytes. Implementations attach the process-wide bearer credential when
// one is present; its absence must not block public-file flows.
type Backend interface {
	// FileInfo fetches a fresh file record. An empty downloadCode
	// omits the query parameter.
	FileInfo(ctx context.Context, fileID, downloadCode string) (file.Record, error)

	// DownloadFile fetches the raw bytes, incrementing the server-side
	// download counter on success.
	DownloadFile(ctx context.Context, fileID, downloadCode string) (Payload, error)

	// PreviewFile fetches preview bytes with their declared content
	// type.
	PreviewFile(ctx context.Context, fileID, downloadCode string) (Payload, error)
}

// Payload is a fetched response body with the transport metadata the
// resolvers need.
type Payload struct {
	Data        []byte
	ContentType string
	Header      http.Header
}

// DownloadOutcome is the tagged result of ResolveDownload. When Pending
// is set a challenge session is open and no bytes were fetched;
// otherwise Filename and Data carry the retrieved file.
type DownloadOutcome struct {
	Pending  bool
	Session  challenge.Session
	Filename string
	Data     []byte
}

// PreviewOutcome is the tagged result of ResolvePreview. When Pending is
// set a challenge session is open; otherwise Plan is ready to render.
type PreviewOutcome struct {
	Pending bool
	Session challenge.Session
	Plan    *preview.Plan
}

// Resumption is what SubmitCode returns after resuming the suspended
// operation: exactly one of Download or Preview is non-nil, matching
// Operation.
type Resumption struct {
	Operation challenge.Operation
	Download  *DownloadOutcome
	Preview   *PreviewOutcome
}
