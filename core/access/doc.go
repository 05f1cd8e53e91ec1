// Package access decides whether a caller may retrieve a shared file.
//
// The gate is a pure decision function over the file's visibility, the
// caller's ownership and an optionally supplied download code. It is a
// client-side hint only: code correctness is authoritative at the server
// boundary, which may still reject a granted request. The gate exists to
// spare the caller an unnecessary round trip when no code was ever
// supplied, not to provide security.
//
// Usage:
//
//	decision := access.Decide(file, callerIsOwner, code)
//	switch decision.Kind {
//	case access.Granted:
//		// proceed with decision.EffectiveCode (may be empty)
//	case access.NeedCredential:
//		// prompt the caller for a download code
//	case access.Denied:
//		// surface decision.Reason
//	}
package access
