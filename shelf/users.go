package shelf

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/andrebq/toolshelf/auth"
)

var _ auth.Directory = (*Shelf)(nil)

func (s *Shelf) Create(ctx context.Context, username, credential string) (auth.Account, error) {
	acc := auth.Account{
		Username:   username,
		Credential: credential,
		CreatedAt:  fromUnix(toUnix(s.now())),
	}
	res, err := s.db.ExecContext(ctx, `insert into accounts(username, credential, is_admin, created_at)
	values (?, ?, 0, ?)`, username, credential, toUnix(acc.CreatedAt))
	if isConstraint(err, sqlite3.ErrConstraintUnique) {
		return auth.Account{}, fmt.Errorf("unable to create account %v, cause %w", username, auth.ErrUsernameTaken)
	} else if err != nil {
		return auth.Account{}, fmt.Errorf("unable to create account %v, cause %w", username, err)
	}
	acc.ID, err = res.LastInsertId()
	if err != nil {
		return auth.Account{}, fmt.Errorf("unable to create account %v, cause %w", username, err)
	}
	return acc, nil
}

func (s *Shelf) FindByUsername(ctx context.Context, username string) (auth.Account, error) {
	return s.findAccount(ctx, `where username = ?`, username)
}

func (s *Shelf) FindByID(ctx context.Context, id int64) (auth.Account, error) {
	return s.findAccount(ctx, `where account_id = ?`, id)
}

// SetAdmin grants (or revokes) the admin flag of username.
func (s *Shelf) SetAdmin(ctx context.Context, username string, admin bool) error {
	res, err := s.db.ExecContext(ctx, `update accounts set is_admin = ? where username = ?`, admin, username)
	if err != nil {
		return fmt.Errorf("unable to update account %v, cause %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to update account %v, cause %w", username, err)
	} else if n == 0 {
		return fmt.Errorf("unable to update account %v, cause %w", username, auth.ErrAccountNotFound)
	}
	return nil
}

func (s *Shelf) findAccount(ctx context.Context, where string, arg interface{}) (auth.Account, error) {
	var acc auth.Account
	var created int64
	err := s.db.QueryRowContext(ctx, `select account_id, username, credential, is_admin, created_at from accounts `+where, arg).
		Scan(&acc.ID, &acc.Username, &acc.Credential, &acc.IsAdmin, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Account{}, auth.ErrAccountNotFound
	} else if err != nil {
		return auth.Account{}, fmt.Errorf("unable to load account, cause %w", err)
	}
	acc.CreatedAt = fromUnix(created)
	return acc, nil
}
