package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andrebq/toolshelf/internal/valid"
)

type (
	// FieldError describes why a single input field was rejected
	FieldError = valid.FieldError

	ValidationError struct {
		Message string
		Fields  []FieldError
	}

	Conflict struct {
		Username string
	}

	Unauthorized struct {
		Message string
	}

	Forbidden struct {
		Message string
	}

	// UpstreamFailure means the Directory or the SessionStore could not
	// complete a request. The cause is kept for logging, never for clients.
	UpstreamFailure struct {
		Op    string
		cause error
	}
)

var (
	// ErrUsernameTaken must be returned (possibly wrapped) by Directory.Create
	// when the username is already in use.
	ErrUsernameTaken = errors.New("auth: username already taken")
	// ErrAccountNotFound must be returned (possibly wrapped) by Directory
	// lookups that find nothing.
	ErrAccountNotFound = errors.New("auth: account not found")
	// ErrSessionNotFound is returned by SessionStore.Read for unknown or
	// expired sessions.
	ErrSessionNotFound = errors.New("auth: session not found")

	ErrBadCredentials   = Unauthorized{Message: "Invalid username or password"}
	ErrNotAuthenticated = Unauthorized{Message: "Not authenticated"}
	ErrAdminRequired    = Forbidden{Message: "Admin access required"}
)

func (v ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return v.Message
	}
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, fmt.Sprintf("%v: %v", f.Field, f.Message))
	}
	return fmt.Sprintf("%v (%v)", v.Message, strings.Join(parts, ", "))
}

func (c Conflict) Error() string {
	return "Username already exists"
}

func (u Unauthorized) Error() string {
	return u.Message
}

func (f Forbidden) Error() string {
	return f.Message
}

func (u UpstreamFailure) Error() string {
	return fmt.Sprintf("auth: unable to %v, cause %v", u.Op, u.cause)
}

func (u UpstreamFailure) Unwrap() error {
	return u.cause
}
