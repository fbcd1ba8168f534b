package credentials

import (
	"context"
	"errors"
)

// Static is a Provider that always returns the same fixed snapshot.
type Static struct {
	value Value
}

// NewStatic returns a Provider for fixed access and secret keys. The session
// token may be empty.
func NewStatic(accessKeyID, secretAccessKey, sessionToken string) *Static {
	return &Static{value: Value{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		SessionToken:    sessionToken,
	}}
}

// Retrieve returns the fixed snapshot.
func (s *Static) Retrieve(_ context.Context) (Value, error) {
	if !s.value.HasKeys() {
		return Value{}, errors.New("static credentials are incomplete")
	}
	return s.value, nil
}
