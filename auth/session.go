package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

type (
	// SessionStore keeps the association between an opaque session id
	// and the account that opened it.
	//
	// Implementations must be safe for concurrent use. Read returns
	// ErrSessionNotFound for unknown and expired sessions, Destroy of an
	// unknown session is not an error.
	SessionStore interface {
		Create(ctx context.Context, accountID int64) (string, error)
		Read(ctx context.Context, sessionID string) (int64, error)
		Destroy(ctx context.Context, sessionID string) error
	}

	Clock func() time.Time
)

const (
	sessionIDSize = 32

	DefaultSessionTTL = 7 * 24 * time.Hour
)

func newSessionID() (string, error) {
	var buf [sessionIDSize]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("unable to generate session id, cause %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}
