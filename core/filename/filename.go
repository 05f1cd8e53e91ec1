package filename

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/fileshare/core/file"
)

// DefaultName is the last-resort filename when nothing else resolves.
const DefaultName = "download"

// Resolve derives the download filename from the response headers,
// falling back to the file record's display name and finally to
// DefaultName. It never fails.
func Resolve(headers http.Header, fallback file.Record) string {
	if name, ok := FromDisposition(headers.Get("Content-Disposition")); ok {
		return name
	}
	if fallback.Filename != "" {
		return fallback.Filename
	}
	return DefaultName
}

// FromDisposition extracts a filename from a Content-Disposition header
// value. The RFC 5987 extended parameter (filename*) wins over the plain
// one; an extended parameter that fails to decode is skipped rather than
// surfaced, and a plain value with malformed percent-escapes is returned
// as the raw token.
func FromDisposition(disposition string) (string, bool) {
	if disposition == "" {
		return "", false
	}

	var plainValue string
	var havePlain bool
	for _, part := range strings.Split(disposition, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch {
		case strings.EqualFold(key, "filename*"):
			if name, ok := decodeExtended(value); ok {
				return name, true
			}
		case strings.EqualFold(key, "filename"):
			if !havePlain {
				plainValue, havePlain = value, true
			}
		}
	}

	if havePlain {
		if name, ok := decodePlain(plainValue); ok {
			return name, true
		}
	}
	return "", false
}

// decodeExtended handles the RFC 5987 form: UTF-8''percent-encoded-name.
// Other charsets and undecodable escapes are rejected so resolution can
// fall through to the plain parameter.
func decodeExtended(value string) (string, bool) {
	const prefix = "utf-8''"
	if len(value) <= len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return "", false
	}
	decoded, err := url.PathUnescape(value[len(prefix):])
	if err != nil || decoded == "" {
		return "", false
	}
	return decoded, true
}

// decodePlain handles quoted and bare filename values. Malformed
// percent-escapes degrade to the raw token instead of failing.
func decodePlain(value string) (string, bool) {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if value == "" {
		return "", false
	}
	if decoded, err := url.PathUnescape(value); err == nil && decoded != "" {
		return decoded, true
	}
	return value, true
}
