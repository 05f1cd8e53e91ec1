// Package client is the HTTP client for the file-sharing backend.
//
// It implements the retrieval.Backend collaborator (file metadata,
// download bytes, preview bytes) plus the rest of the backend surface:
// listing, uploading and deleting files and fetching the current user.
//
// Authentication is a bearer token supplied by an injected
// CredentialProvider; requests without a token are legal and serve
// anonymous public-file access. HTTP authorization failures map onto the
// retrieval error taxonomy so the orchestrator can recover them through
// the challenge flow.
package client
