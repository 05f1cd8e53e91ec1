package preview

import "strings"

// Strategy is the rendering mode selected for retrieved content.
type Strategy int

const (
	// InlineText renders decoded plain text directly.
	InlineText Strategy = iota
	// InlineHTML renders decoded markup in a sandboxed frame.
	InlineHTML
	// Image renders the binary payload as an image.
	Image
	// EmbeddedDocument embeds the binary payload in a document viewer.
	// Plain-text files normally arrive on this path: the server
	// converts them to PDF before serving preview bytes.
	EmbeddedDocument
	// Unsupported means the declared type has no preview rendering.
	Unsupported
)

// String implements fmt.Stringer for log output.
func (s Strategy) String() string {
	switch s {
	case InlineText:
		return "inline_text"
	case InlineHTML:
		return "inline_html"
	case Image:
		return "image"
	case EmbeddedDocument:
		return "embedded_document"
	default:
		return "unsupported"
	}
}

// Classify maps a declared MIME type to its preview strategy. Matching is
// exact and case-sensitive on the declared type, except the image/ prefix
// which admits any subtype.
//
// text/plain classifies as InlineText for the direct-preview path; on the
// normal path the server has already converted plain text to
// application/pdf before the type reaches this function.
func Classify(contentType string) Strategy {
	switch {
	case contentType == "text/html":
		return InlineHTML
	case strings.HasPrefix(contentType, "image/"):
		return Image
	case contentType == "application/pdf":
		return EmbeddedDocument
	case contentType == "text/plain":
		return InlineText
	default:
		return Unsupported
	}
}

// Textual reports whether the strategy requires decoding bytes to text.
func (s Strategy) Textual() bool {
	return s == InlineText || s == InlineHTML
}
