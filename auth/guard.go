package auth

import "context"

// RequireAuthenticated returns the account behind sessionID or ErrNotAuthenticated.
func (a *Authenticator) RequireAuthenticated(ctx context.Context, sessionID string) (Account, error) {
	return a.CurrentUser(ctx, sessionID)
}

// RequireAdmin is like RequireAuthenticated but also demands the admin flag.
func (a *Authenticator) RequireAdmin(ctx context.Context, sessionID string) (Account, error) {
	acc, err := a.CurrentUser(ctx, sessionID)
	if err != nil {
		return Account{}, err
	}
	if !acc.IsAdmin {
		return Account{}, ErrAdminRequired
	}
	return acc, nil
}
