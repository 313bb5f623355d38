package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/restaurant-api/internal/domain"
)

type fakeUserRepo struct {
	users map[uint]domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return domain.User{}, ErrUserExists
		}
	}
	user.ID = uint(len(f.users) + 1)
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, ErrUserNotFound
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	u := f.users[id]
	u.Password = hash
	f.users[id] = u
	return nil
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	repo := &fakeUserRepo{users: map[uint]domain.User{}}
	svc := NewAuthService(repo)

	user, err := svc.Register(ctx, domain.User{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWaiter, user.Role)
	assert.NotEqual(t, "secret123", repo.users[user.ID].Password)

	_, err = svc.Register(ctx, domain.User{Username: "alice", Email: "other@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Register(ctx, domain.User{Username: "bob", Password: "secret123", Role: "sommelier"})
	assert.ErrorIs(t, err, ErrUnknownRole)

	loggedIn, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrUserNotFound)

	actor := domain.Actor{UserID: user.ID, Role: user.Role}
	assert.ErrorIs(t, svc.ChangePassword(ctx, actor, "wrong", "newpass99"), ErrInvalidPassword)
	require.NoError(t, svc.ChangePassword(ctx, actor, "secret123", "newpass99"))

	_, err = svc.Login(ctx, "alice", "newpass99")
	assert.NoError(t, err)
}
