// Package challenge implements the download-code challenge flow: a small
// state machine that owns the "ask the caller for a secret code"
// interaction and resumes the suspended preview or download once a valid
// code is submitted.
//
// The flow is independent of any rendering layer. A UI observes the
// current session via Session and renders a prompt while the flow is
// awaiting input; the orchestrator wires the resume hook at construction.
//
// At most one session is open at a time. Opening a new session silently
// replaces any unresolved one; the abandoned operation is discarded, not
// queued.
package challenge
