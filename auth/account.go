package auth

import (
	"context"
	"time"
)

type (
	// Account is what the Directory keeps for every registered user
	Account struct {
		ID         int64
		Username   string
		Credential string
		IsAdmin    bool
		CreatedAt  time.Time
	}

	// Public is the only view of an Account that leaves the process
	Public struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		IsAdmin  bool   `json:"isAdmin"`
	}

	// Directory persists accounts.
	//
	// Create must enforce username uniqueness and return ErrUsernameTaken
	// when the username is in use, lookups return ErrAccountNotFound when
	// nothing matches.
	Directory interface {
		Create(ctx context.Context, username, credential string) (Account, error)
		FindByUsername(ctx context.Context, username string) (Account, error)
		FindByID(ctx context.Context, id int64) (Account, error)
	}
)

func (a Account) Public() Public {
	return Public{
		ID:       a.ID,
		Username: a.Username,
		IsAdmin:  a.IsAdmin,
	}
}
