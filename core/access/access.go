package access

import "github.com/dmitrymomot/fileshare/core/file"

// Kind enumerates the possible access decisions.
type Kind int

const (
	// Granted means retrieval may proceed, optionally carrying an
	// effective download code to attach to the request.
	Granted Kind = iota
	// NeedCredential means the caller must supply a download code
	// before retrieval can be attempted.
	NeedCredential
	// Denied means retrieval must not be attempted at all.
	Denied
)

// Decision is the ephemeral outcome of gating a single request.
type Decision struct {
	Kind Kind

	// EffectiveCode is the download code to attach to the retrieval
	// call. Empty for owner and public-file grants.
	EffectiveCode string

	// Reason carries human-readable context for Denied decisions.
	Reason string
}

// Decide gates a retrieval attempt against a file record.
//
// Public files are granted unconditionally. Private files are granted to
// their owner without a code, and to anyone else who supplies a non-empty
// code. The gate does not verify code correctness; the server remains
// authoritative and may still reject the granted request with a
// credential error. Absent any code, the decision is NeedCredential.
func Decide(rec file.Record, callerIsOwner bool, suppliedCode string) Decision {
	if !rec.IsPrivate() {
		return Decision{Kind: Granted}
	}
	if callerIsOwner {
		return Decision{Kind: Granted}
	}
	if suppliedCode != "" {
		return Decision{Kind: Granted, EffectiveCode: suppliedCode}
	}
	return Decision{Kind: NeedCredential}
}
