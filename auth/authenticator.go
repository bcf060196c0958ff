package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/andrebq/toolshelf/internal/valid"
)

type (
	// Authenticator opens and closes sessions for the accounts kept in a
	// Directory.
	Authenticator struct {
		dir      Directory
		sessions SessionStore
		hasher   *Hasher
	}

	registration struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Password string `json:"password" validate:"required,min=6,max=128"`
	}

	login struct {
		Username string `json:"username" validate:"required,max=64"`
		Password string `json:"password" validate:"required,max=128"`
	}
)

func NewAuthenticator(dir Directory, sessions SessionStore, hasher *Hasher) *Authenticator {
	if hasher == nil {
		hasher = NewHasher(0)
	}
	return &Authenticator{
		dir:      dir,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Register creates a new account and opens a session for it.
func (a *Authenticator) Register(ctx context.Context, username string, passwd PlainText) (Account, string, error) {
	if err := check("Invalid registration data", registration{Username: username, Password: string(passwd)}); err != nil {
		return Account{}, "", err
	}
	_, err := a.dir.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return Account{}, "", Conflict{Username: username}
	case !errors.Is(err, ErrAccountNotFound):
		return Account{}, "", upstream("look up account", err)
	}
	credential, err := a.hasher.Hash(ctx, passwd)
	if err != nil {
		return Account{}, "", upstream("hash password", err)
	}
	acc, err := a.dir.Create(ctx, username, credential)
	if errors.Is(err, ErrUsernameTaken) {
		return Account{}, "", Conflict{Username: username}
	} else if err != nil {
		return Account{}, "", upstream("create account", err)
	}
	sid, err := a.sessions.Create(ctx, acc.ID)
	if err != nil {
		return Account{}, "", upstream("create session", err)
	}
	return acc, sid, nil
}

// Login checks the password of username and opens a session. An unknown
// username and a wrong password produce the same error.
func (a *Authenticator) Login(ctx context.Context, username string, passwd PlainText) (Account, string, error) {
	if err := check("Invalid login data", login{Username: username, Password: string(passwd)}); err != nil {
		return Account{}, "", err
	}
	acc, err := a.dir.FindByUsername(ctx, username)
	if errors.Is(err, ErrAccountNotFound) {
		a.hasher.Verify(ctx, passwd, dummyCredential)
		return Account{}, "", ErrBadCredentials
	} else if err != nil {
		return Account{}, "", upstream("look up account", err)
	}
	if !a.hasher.Verify(ctx, passwd, acc.Credential) {
		if err := ctx.Err(); err != nil {
			return Account{}, "", upstream("verify password", err)
		}
		return Account{}, "", ErrBadCredentials
	}
	sid, err := a.sessions.Create(ctx, acc.ID)
	if err != nil {
		return Account{}, "", upstream("create session", err)
	}
	return acc, sid, nil
}

// Logout destroys the session, closing an unknown session is not an error.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := a.sessions.Destroy(ctx, sessionID); err != nil {
		return upstream("destroy session", err)
	}
	return nil
}

// CurrentUser returns the account behind sessionID.
func (a *Authenticator) CurrentUser(ctx context.Context, sessionID string) (Account, error) {
	if sessionID == "" {
		return Account{}, ErrNotAuthenticated
	}
	id, err := a.sessions.Read(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return Account{}, ErrNotAuthenticated
	} else if err != nil {
		return Account{}, upstream("read session", err)
	}
	acc, err := a.dir.FindByID(ctx, id)
	if errors.Is(err, ErrAccountNotFound) {
		if err := a.sessions.Destroy(ctx, sessionID); err != nil {
			return Account{}, upstream("destroy stale session", err)
		}
		return Account{}, ErrNotAuthenticated
	} else if err != nil {
		return Account{}, upstream("look up account", err)
	}
	return acc, nil
}

func check(msg string, v interface{}) error {
	fields := valid.Struct(v)
	if len(fields) == 0 {
		return nil
	}
	return ValidationError{Message: msg, Fields: fields}
}

func upstream(op string, err error) error {
	return UpstreamFailure{Op: op, cause: errors.WithStack(err)}
}
