package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/fileshare/core/access"
	"github.com/dmitrymomot/fileshare/core/challenge"
	"github.com/dmitrymomot/fileshare/core/filename"
	"github.com/dmitrymomot/fileshare/core/logger"
	"github.com/dmitrymomot/fileshare/core/preview"
)

// DefaultBlobGrace bounds how long an unreleased preview blob keeps its
// payload before auto-release kicks in.
const DefaultBlobGrace = 5 * time.Minute

// Orchestrator resolves downloads and previews against a backend,
// suspending on the challenge flow whenever a download code is needed.
type Orchestrator struct {
	backend   Backend
	flow      *challenge.Flow
	log       *slog.Logger
	blobGrace time.Duration

	// Submit plumbing. The resume hook runs synchronously inside
	// flow.Submit on the submitting goroutine; submitMu serializes
	// submissions so the captured context and result slots are safe.
	submitMu  sync.Mutex
	resumeCtx context.Context
	resumed   *Resumption
	resumeErr error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log.With(logger.Component("retrieval"))
		}
	}
}

// WithBlobGrace overrides the auto-release grace period for preview
// blobs. Zero or negative disables auto-release entirely.
func WithBlobGrace(grace time.Duration) Option {
	return func(o *Orchestrator) {
		o.blobGrace = grace
	}
}

// New creates an orchestrator over the given backend collaborator.
func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:   backend,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		blobGrace: DefaultBlobGrace,
	}
	o.flow = challenge.NewFlow(o.resume)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ResolveDownload resolves a download request for the caller.
//
// A private file without a usable code suspends on the challenge flow
// and returns a pending outcome; no bytes are fetched. A code rejected
// by the server reopens the challenge flagged wrong-code instead of
// surfacing an error, so the caller can retry without re-navigating.
func (o *Orchestrator) ResolveDownload(ctx context.Context, fileID string, callerIsOwner bool, knownCode string) (DownloadOutcome, error) {
	rec, err := o.backend.FileInfo(ctx, fileID, knownCode)
	if err != nil {
		if errors.Is(err, ErrCredentialRequired) {
			return DownloadOutcome{Pending: true, Session: o.reopen(fileID, challenge.Download, knownCode != "")}, nil
		}
		return DownloadOutcome{}, err
	}

	decision := access.Decide(rec, callerIsOwner, knownCode)
	switch decision.Kind {
	case access.NeedCredential:
		sess := o.flow.Open(fileID, challenge.Download)
		o.log.InfoContext(ctx, "download suspended on challenge", logger.File(fileID))
		return DownloadOutcome{Pending: true, Session: sess}, nil
	case access.Denied:
		return DownloadOutcome{}, fmt.Errorf("%w: %s", ErrDenied, decision.Reason)
	}

	payload, err := o.backend.DownloadFile(ctx, fileID, decision.EffectiveCode)
	if err != nil {
		if errors.Is(err, ErrCredentialRequired) {
			return DownloadOutcome{Pending: true, Session: o.reopen(fileID, challenge.Download, decision.EffectiveCode != "")}, nil
		}
		return DownloadOutcome{}, err
	}

	name := filename.Resolve(payload.Header, rec)
	o.log.InfoContext(ctx, "download resolved",
		logger.File(fileID),
		slog.String("filename", name),
		slog.Int("size", len(payload.Data)),
	)
	return DownloadOutcome{Filename: name, Data: payload.Data}, nil
}

// ResolvePreview resolves a preview request for the caller.
//
// Access handling matches ResolveDownload. Once granted, a file the
// server declares non-previewable short-circuits to an Unsupported plan
// without fetching bytes. Text-like content is decoded with the UTF-8 →
// GBK fallback; binary content is wrapped in a grace-bounded blob.
func (o *Orchestrator) ResolvePreview(ctx context.Context, fileID string, callerIsOwner bool, knownCode string) (PreviewOutcome, error) {
	rec, err := o.backend.FileInfo(ctx, fileID, knownCode)
	if err != nil {
		if errors.Is(err, ErrCredentialRequired) {
			return PreviewOutcome{Pending: true, Session: o.reopen(fileID, challenge.Preview, knownCode != "")}, nil
		}
		return PreviewOutcome{}, err
	}

	decision := access.Decide(rec, callerIsOwner, knownCode)
	switch decision.Kind {
	case access.NeedCredential:
		sess := o.flow.Open(fileID, challenge.Preview)
		o.log.InfoContext(ctx, "preview suspended on challenge", logger.File(fileID))
		return PreviewOutcome{Pending: true, Session: sess}, nil
	case access.Denied:
		return PreviewOutcome{}, fmt.Errorf("%w: %s", ErrDenied, decision.Reason)
	}

	// CanPreview is server-authoritative; skipping the fetch here only
	// skips the preview strategy, never the access decision above.
	if !rec.CanPreview {
		return PreviewOutcome{Plan: &preview.Plan{
			Strategy:         preview.Unsupported,
			DisplayTitle:     rec.Filename,
			ResolvedFilename: rec.Filename,
		}}, nil
	}

	payload, err := o.backend.PreviewFile(ctx, fileID, decision.EffectiveCode)
	if err != nil {
		if errors.Is(err, ErrCredentialRequired) {
			return PreviewOutcome{Pending: true, Session: o.reopen(fileID, challenge.Preview, decision.EffectiveCode != "")}, nil
		}
		return PreviewOutcome{}, err
	}

	strategy := preview.Classify(payload.ContentType)
	plan := &preview.Plan{
		Strategy:         strategy,
		DisplayTitle:     rec.Filename,
		ResolvedFilename: filename.Resolve(payload.Header, rec),
	}

	switch {
	case strategy.Textual():
		text, err := preview.DecodeText(payload.Data)
		if err != nil {
			return PreviewOutcome{}, errors.Join(ErrDecodeFailure, err)
		}
		plan.Text = text
	case strategy == preview.Image || strategy == preview.EmbeddedDocument:
		plan.Content = preview.NewBlob(payload.Data, o.blobGrace)
	}

	o.log.InfoContext(ctx, "preview resolved",
		logger.File(fileID),
		slog.String("strategy", strategy.String()),
	)
	return PreviewOutcome{Plan: plan}, nil
}

// SubmitCode submits a download code to the open challenge session and
// resumes the suspended operation with it. Validation failures
// (challenge.ErrInvalidCode, challenge.ErrNoSession) are local and leave
// the session untouched; retrieval failures from the resumed operation
// propagate as-is.
func (o *Orchestrator) SubmitCode(ctx context.Context, code string) (Resumption, error) {
	o.submitMu.Lock()
	defer o.submitMu.Unlock()

	o.resumeCtx = ctx
	o.resumed = nil
	o.resumeErr = nil
	defer func() { o.resumeCtx = nil }()

	if err := o.flow.Submit(code); err != nil {
		return Resumption{}, err
	}
	if o.resumeErr != nil {
		return Resumption{}, o.resumeErr
	}
	return *o.resumed, nil
}

// CancelChallenge abandons the open challenge session, if any.
func (o *Orchestrator) CancelChallenge() error {
	return o.flow.Cancel()
}

// Challenge returns the open challenge session, or false when none is.
func (o *Orchestrator) Challenge() (challenge.Session, bool) {
	return o.flow.Session()
}

// resume is the flow's hook: it re-runs the suspended operation with the
// submitted code. The challenged caller is by definition not the owner.
func (o *Orchestrator) resume(fileID string, op challenge.Operation, code string) {
	ctx := o.resumeCtx
	if ctx == nil {
		ctx = context.Background()
	}

	switch op {
	case challenge.Download:
		out, err := o.ResolveDownload(ctx, fileID, false, code)
		if err != nil {
			o.resumeErr = err
			return
		}
		o.resumed = &Resumption{Operation: op, Download: &out}
	default:
		out, err := o.ResolvePreview(ctx, fileID, false, code)
		if err != nil {
			o.resumeErr = err
			return
		}
		o.resumed = &Resumption{Operation: op, Preview: &out}
	}
}

// reopen restarts the challenge after the server rejected a request. A
// previously supplied code marks the new session wrong-code.
func (o *Orchestrator) reopen(fileID string, op challenge.Operation, codeWasSupplied bool) challenge.Session {
	if codeWasSupplied {
		o.log.Info("download code rejected, reopening challenge",
			logger.File(fileID),
			slog.String("operation", op.String()),
		)
		return o.flow.OpenWrongCode(fileID, op)
	}
	return o.flow.Open(fileID, op)
}
