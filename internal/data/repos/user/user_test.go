package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harryc904/Studio/internal/data/repos/testutil"
	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	dbc := dbctx.Background(ctx)
	repo := NewUserRepo(db, testutil.Logger(t))

	phone := "13800000001"
	created, err := repo.Create(dbc, []*types.User{{
		Username:    "alice",
		Email:       "Alice@Example.com",
		Password:    "hash",
		PhoneNumber: &phone,
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.NotZero(t, created[0].ID)

	byEmail, err := repo.GetByEmail(dbc, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, created[0].ID, byEmail.ID)

	byPhone, err := repo.GetByPhone(dbc, phone)
	require.NoError(t, err)
	require.Equal(t, "alice", byPhone.Username)

	missing, err := repo.GetByID(dbc, created[0].ID+100)
	require.NoError(t, err)
	require.Nil(t, missing)

	taken, err := repo.TakenBy(dbc, 0, "alice", "nobody@example.com", phone)
	require.NoError(t, err)
	require.True(t, taken.Username)
	require.False(t, taken.Email)
	require.True(t, taken.Phone)

	self, err := repo.TakenBy(dbc, created[0].ID, "alice", "", phone)
	require.NoError(t, err)
	require.False(t, self.Any(), "a user never collides with itself")

	require.NoError(t, repo.UpdateFields(dbc, created[0].ID, map[string]interface{}{"user_name": "alice2"}))
	got, err := repo.GetByID(dbc, created[0].ID)
	require.NoError(t, err)
	require.Equal(t, "alice2", got.Username)
}

func TestSessionRepoOrdering(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	dbc := dbctx.Background(ctx)
	repo := NewSessionRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, db, "sess")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		s, err := repo.Create(dbc, &types.Session{UserID: u.ID, Name: "s", StartTime: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	list, err := repo.ListByUser(dbc, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, ids[2], list[0].ID, "newest start first")

	none, err := repo.LatestEndedByUser(dbc, u.ID)
	require.NoError(t, err)
	require.Nil(t, none)

	require.NoError(t, repo.UpdateFields(dbc, ids[0], map[string]interface{}{"end_time": base.Add(10 * time.Hour)}))
	require.NoError(t, repo.UpdateFields(dbc, ids[1], map[string]interface{}{"end_time": base.Add(5 * time.Hour)}))
	latest, err := repo.LatestEndedByUser(dbc, u.ID)
	require.NoError(t, err)
	require.Equal(t, ids[0], latest.ID)

	n, err := repo.Delete(dbc, ids[1])
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	gone, err := repo.GetByID(dbc, ids[1])
	require.NoError(t, err)
	require.Nil(t, gone)
}
