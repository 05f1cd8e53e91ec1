// Package retrieval coordinates the access gate, the challenge flow, the
// backend collaborator and the preview pipeline into the two public
// operations of the subsystem: resolving a download and resolving a
// preview.
//
// Authorization states are values, not faults: a private file without a
// code yields a pending outcome with an open challenge session, and a
// rejected code reopens the session flagged wrong-code instead of
// surfacing a transport error. Everything else — missing files,
// unsupported types, undecodable text, network failures — surfaces
// through the error taxonomy in this package.
package retrieval
