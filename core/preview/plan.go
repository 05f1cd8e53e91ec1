package preview

// KnownTypes lists the declared MIME types the backend accepts for
// preview. Display hint only: the server-declared CanPreview flag on the
// file record is authoritative and is never re-derived from this list.
var KnownTypes = []string{
	"text/plain",
	"image/jpeg",
	"image/png",
	"application/pdf",
}

// IsKnownType reports whether the declared type appears in KnownTypes.
func IsKnownType(contentType string) bool {
	for _, t := range KnownTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// Plan is the resolved, ready-to-render description of a successfully
// retrieved file. Exactly one of Text or Content carries the payload,
// depending on the strategy; Unsupported plans carry neither.
type Plan struct {
	Strategy Strategy

	// DisplayTitle is what a viewer shows above the content.
	DisplayTitle string

	// ResolvedFilename is used only when the viewer offers a download.
	ResolvedFilename string

	// Text holds the decoded content for textual strategies.
	Text string

	// Content holds the binary payload for Image and EmbeddedDocument.
	Content *Blob
}

// Discard releases any binary payload backing the plan. Viewers call it
// on dismissal; calling it on a plan without binary content is a no-op.
func (p *Plan) Discard() {
	if p.Content != nil {
		p.Content.Release()
	}
}
