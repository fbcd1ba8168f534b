package credentials

import (
	"context"
	"errors"
	"os"
)

// Env is a Provider that reads credentials from the process environment. It
// understands both the AWS and the MinIO variable names:
//
//	AWS_ACCESS_KEY_ID or MINIO_ACCESS_KEY
//	AWS_SECRET_ACCESS_KEY or MINIO_SECRET_KEY
//	AWS_SESSION_TOKEN
type Env struct{}

// NewEnv returns an environment-backed Provider.
func NewEnv() *Env {
	return &Env{}
}

// Retrieve reads the environment on every call.
func (e *Env) Retrieve(_ context.Context) (Value, error) {
	v := Value{
		AccessKeyID:     firstEnv("AWS_ACCESS_KEY_ID", "MINIO_ACCESS_KEY"),
		SecretAccessKey: firstEnv("AWS_SECRET_ACCESS_KEY", "MINIO_SECRET_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	}
	if !v.HasKeys() {
		return Value{}, errors.New("credentials not found in environment")
	}
	return v, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
