package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collegebuddy/backend/internal/model/user"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateAndGetUser(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)
	ctx := context.Background()

	created, err := st.CreateUser(ctx, user.User{
		Username: "alice",
		Email:    "Alice@campus.edu",
		Password: "hashed",
		Name:     "Alice",
		Branch:   "CSE",
		Year:     3,
	})
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.False(created.CreatedAt.IsZero())

	byID, err := st.GetUser(ctx, created.ID)
	req.NoError(err)
	req.Equal(created, byID)

	// Email lookup is case-insensitive.
	byEmail, err := st.GetUserByEmail(ctx, "alice@campus.edu")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)

	byUsername, err := st.GetUserByUsername(ctx, "alice")
	req.NoError(err)
	req.Equal(created.ID, byUsername.ID)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.CreateUser(ctx, user.User{Username: "alice", Email: "alice@campus.edu", Name: "Alice"})
	req.NoError(err)

	_, err = st.CreateUser(ctx, user.User{Username: "other", Email: "alice@campus.edu", Name: "Other"})
	req.ErrorIs(err, ErrEmailTaken)

	_, err = st.CreateUser(ctx, user.User{Username: "alice", Email: "second@campus.edu", Name: "Second"})
	req.ErrorIs(err, ErrUsernameTaken)
}

func TestGetUserNotFound(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)

	_, err := st.GetUser(context.Background(), "missing")
	req.ErrorIs(err, ErrNotFound)

	_, err = st.GetUserByEmail(context.Background(), "nobody@campus.edu")
	req.ErrorIs(err, ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)
	ctx := context.Background()

	created, err := st.CreateUser(ctx, user.User{Username: "alice", Email: "alice@campus.edu", Name: "Alice"})
	req.NoError(err)

	updated, err := st.UpdateUser(ctx, created.ID, func(u *user.User) {
		u.Rating = 4.5
		u.RatingCount = 2
	})
	req.NoError(err)
	req.InDelta(4.5, updated.Rating, 0.001)

	reloaded, err := st.GetUser(ctx, created.ID)
	req.NoError(err)
	req.Equal(2, reloaded.RatingCount)
}
