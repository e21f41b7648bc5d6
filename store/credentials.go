package store

import "context"

// CredentialProvider supplies the database password at connect time. The
// pool asks for a fresh token before every physical connection, so
// providers backed by short-lived IAM tokens can refresh internally
// without any shared mutable state.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticCredentials is the plain password-from-env case.
type StaticCredentials string

func (s StaticCredentials) Token(ctx context.Context) (string, error) {
	return string(s), nil
}
