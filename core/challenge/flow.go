package challenge

import (
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CodeLength is the fixed length of a download code, counted in runes.
const CodeLength = 4

// Operation identifies which retrieval operation a challenge suspends.
type Operation int

const (
	// Preview resumes into a preview retrieval.
	Preview Operation = iota
	// Download resumes into a download retrieval.
	Download
)

// String implements fmt.Stringer for log output.
func (op Operation) String() string {
	if op == Download {
		return "download"
	}
	return "preview"
}

// State is the flow's lifecycle position.
type State int

const (
	// Idle means no challenge session is open.
	Idle State = iota
	// AwaitingInput means a session is open and waiting for a code.
	AwaitingInput
)

// Session is a snapshot of the open challenge.
type Session struct {
	// ID correlates the session in logs. It changes on every Open.
	ID uuid.UUID

	// FileID is the target of the suspended operation.
	FileID string

	// Operation is resumed once a valid code is submitted.
	Operation Operation

	// WrongCode marks a session reopened after the server rejected a
	// previously submitted code. A UI renders this distinctly from a
	// first-time prompt.
	WrongCode bool
}

// ResumeFunc is invoked exactly once per successful Submit, with the
// suspended operation's target and the code the caller supplied.
type ResumeFunc func(fileID string, op Operation, code string)

// Flow owns the single challenge session. Safe for concurrent use.
type Flow struct {
	mu      sync.Mutex
	state   State
	session Session
	resume  ResumeFunc
}

// NewFlow creates a flow that resumes suspended operations through the
// given hook. Panics on a nil hook: a flow without a resume target can
// never complete a challenge.
func NewFlow(resume ResumeFunc) *Flow {
	if resume == nil {
		panic("challenge: nil resume hook")
	}
	return &Flow{resume: resume}
}

// Open starts a challenge session for the given file and operation,
// silently replacing any unresolved session. Returns the new session.
func (f *Flow) Open(fileID string, op Operation) Session {
	return f.open(fileID, op, false)
}

// OpenWrongCode starts a session flagged as a retry after the server
// rejected a submitted code. Replacement semantics match Open.
func (f *Flow) OpenWrongCode(fileID string, op Operation) Session {
	return f.open(fileID, op, true)
}

func (f *Flow) open(fileID string, op Operation, wrongCode bool) Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = AwaitingInput
	f.session = Session{
		ID:        uuid.New(),
		FileID:    fileID,
		Operation: op,
		WrongCode: wrongCode,
	}
	return f.session
}

// Submit validates the code and, if valid, closes the session and fires
// the resume hook with the suspended operation. Validation failures are
// local: no hook fires and the session stays open.
//
// The hook runs outside the flow lock, so it may immediately reopen the
// flow (the wrong-code path does exactly that).
func (f *Flow) Submit(code string) error {
	f.mu.Lock()
	if f.state != AwaitingInput {
		f.mu.Unlock()
		return ErrNoSession
	}
	if code == "" || utf8.RuneCountInString(code) != CodeLength {
		f.mu.Unlock()
		return ErrInvalidCode
	}

	sess := f.session
	f.state = Idle
	f.session = Session{}
	f.mu.Unlock()

	f.resume(sess.FileID, sess.Operation, code)
	return nil
}

// Cancel closes the open session without resuming anything. Cancelling
// an idle flow returns ErrNoSession.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != AwaitingInput {
		return ErrNoSession
	}
	f.state = Idle
	f.session = Session{}
	return nil
}

// State reports the flow's current lifecycle position.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns a snapshot of the open session, or false when idle.
func (f *Flow) Session() (Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != AwaitingInput {
		return Session{}, false
	}
	return f.session, true
}
