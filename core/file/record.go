package file

import "time"

// Visibility is the per-file access level set at upload time.
// It is immutable from the client's perspective.
type Visibility int

const (
	// Public files are retrievable by anyone holding the link.
	Public Visibility = iota
	// Private files additionally require a download code from non-owners.
	Private
)

// String returns the backend's wire spelling of the visibility level.
func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// Record describes a shared file as reported by the backend.
type Record struct {
	// ID is the opaque unique file identifier.
	ID string

	// Filename is the display name recorded at upload time.
	Filename string

	// Owner is the uploader's identity string.
	Owner string

	Visibility Visibility

	// DownloadCode is the 4-character secret bound to a private file.
	// The backend populates it only on the owner's own query of the
	// record; for everyone else it is empty.
	DownloadCode string

	// ContentType is the declared MIME type of the stored bytes.
	ContentType string

	// CanPreview is the server-declared previewability. It is
	// authoritative and never re-derived from ContentType client-side.
	CanPreview bool

	Size      int64
	Uploaded  time.Time
	Downloads int
}

// IsPrivate reports whether non-owners need a download code.
func (r Record) IsPrivate() bool {
	return r.Visibility == Private
}
