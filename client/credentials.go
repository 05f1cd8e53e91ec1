package client

import "context"

// CredentialProvider supplies the process-wide bearer token attached to
// every backend call. Returning false means no credential is available,
// which is legal: anonymous callers can still reach public files.
type CredentialProvider interface {
	Token(ctx context.Context) (string, bool)
}

// StaticToken is a fixed-token CredentialProvider. The empty string
// provides no credential.
type StaticToken string

// Token implements CredentialProvider.
func (t StaticToken) Token(context.Context) (string, bool) {
	return string(t), t != ""
}

// CredentialFunc adapts a function to the CredentialProvider interface.
type CredentialFunc func(ctx context.Context) (string, bool)

// Token implements CredentialProvider.
func (f CredentialFunc) Token(ctx context.Context) (string, bool) {
	return f(ctx)
}
