// Package filename derives the canonical display filename for a download
// from transport metadata.
//
// Resolution walks a fixed precedence order — the RFC 5987 extended
// filename parameter, the plain filename parameter, the file record's
// own name, and finally a literal default — and is total: every failure
// degrades to the next tier, never to an error.
package filename
