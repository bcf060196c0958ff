package auth

import (
	"context"
	"sync"
	"time"
)

type memDirectory struct {
	sync.Mutex
	byID   map[int64]Account
	nextID int64
	fail   error
}

func newMemDirectory() *memDirectory {
	return &memDirectory{byID: map[int64]Account{}}
}

func (m *memDirectory) Create(ctx context.Context, username, credential string) (Account, error) {
	m.Lock()
	defer m.Unlock()
	if m.fail != nil {
		return Account{}, m.fail
	}
	for _, a := range m.byID {
		if a.Username == username {
			return Account{}, ErrUsernameTaken
		}
	}
	m.nextID++
	acc := Account{ID: m.nextID, Username: username, Credential: credential, CreatedAt: time.Now()}
	m.byID[acc.ID] = acc
	return acc, nil
}

func (m *memDirectory) FindByUsername(ctx context.Context, username string) (Account, error) {
	m.Lock()
	defer m.Unlock()
	if m.fail != nil {
		return Account{}, m.fail
	}
	for _, a := range m.byID {
		if a.Username == username {
			return a, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (m *memDirectory) FindByID(ctx context.Context, id int64) (Account, error) {
	m.Lock()
	defer m.Unlock()
	if m.fail != nil {
		return Account{}, m.fail
	}
	a, ok := m.byID[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (m *memDirectory) promote(id int64) {
	m.Lock()
	defer m.Unlock()
	a := m.byID[id]
	a.IsAdmin = true
	m.byID[id] = a
}

func (m *memDirectory) remove(id int64) {
	m.Lock()
	defer m.Unlock()
	delete(m.byID, id)
}
