package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/harryc904/Studio/internal/data/repos/testutil"
	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

func TestConversationRepoRoundTripsChildIndex(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	repo := NewConversationRepo(db, log)
	dbc := dbctx.Background(ctx)

	u := testutil.SeedUser(t, ctx, db, "conv")
	s := testutil.SeedSession(t, ctx, db, u.ID)

	now := time.Now().UTC()
	root := &types.Conversation{ID: uuid.New(), SessionID: s.ID, CreatedAt: now, Content: "hi", Version: 1}
	child := &types.Conversation{ID: uuid.New(), SessionID: s.ID, CreatedAt: now.Add(time.Second), Content: "hello", Version: 1, ParentID: &root.ID, Type: types.ConversationTypeModelResponse}
	_, err := repo.Create(dbc, []*types.Conversation{root, child})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateChildVersions(dbc, root.ID, types.ChildVersionIndex{"1": child.ID}))

	got, err := repo.GetInSession(dbc, s.ID, root.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, types.ChildVersionIndex{"1": child.ID}, got.ChildVersions)

	var raw string
	require.NoError(t, db.Raw("SELECT conversation_child_version FROM conversations WHERE conversation_id = ?", root.ID).Scan(&raw).Error)
	require.JSONEq(t, `{"1":"`+child.ID.String()+`"}`, raw)

	missing, err := repo.GetInSession(dbc, s.ID+1, root.ID)
	require.NoError(t, err)
	require.Nil(t, missing)

	all, err := repo.ListBySession(dbc, s.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, root.ID, all[0].ID)
	require.Nil(t, all[1].ChildVersions)
}

func TestConversationRepoRejectsDuplicateSiblingVersion(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	repo := NewConversationRepo(db, testutil.Logger(t))
	dbc := dbctx.Background(ctx)

	u := testutil.SeedUser(t, ctx, db, "dup")
	s := testutil.SeedSession(t, ctx, db, u.ID)
	parent := &types.Conversation{ID: uuid.New(), SessionID: s.ID, CreatedAt: time.Now().UTC(), Content: "p", Version: 1}
	_, err := repo.Create(dbc, []*types.Conversation{parent})
	require.NoError(t, err)

	a := &types.Conversation{ID: uuid.New(), SessionID: s.ID, CreatedAt: time.Now().UTC(), Content: "a", Version: 1, ParentID: &parent.ID}
	b := &types.Conversation{ID: uuid.New(), SessionID: s.ID, CreatedAt: time.Now().UTC(), Content: "b", Version: 1, ParentID: &parent.ID}
	_, err = repo.Create(dbc, []*types.Conversation{a})
	require.NoError(t, err)
	_, err = repo.Create(dbc, []*types.Conversation{b})
	require.Error(t, err)

	// Roots never collide: their parent is NULL.
	r2 := &types.Conversation{ID: uuid.New(), SessionID: s.ID, CreatedAt: time.Now().UTC(), Content: "r2", Version: 1}
	_, err = repo.Create(dbc, []*types.Conversation{r2})
	require.NoError(t, err)
}

func TestPRDRepoLatestAndDemote(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	repo := NewPRDRepo(db, testutil.Logger(t))
	dbc := dbctx.Background(ctx)

	u := testutil.SeedUser(t, ctx, db, "prd")
	s := testutil.SeedSession(t, ctx, db, u.ID)
	convA, convB := uuid.New(), uuid.New()

	top, err := repo.MaxVersion(dbc, s.ID)
	require.NoError(t, err)
	require.Zero(t, top)

	none, err := repo.LatestForSession(dbc, s.ID)
	require.NoError(t, err)
	require.Nil(t, none)

	for v, conv := range []uuid.UUID{convA, convB, convA} {
		_, err := repo.DemoteLatest(dbc, s.ID)
		require.NoError(t, err)
		_, err = repo.Create(dbc, &types.PRD{
			SessionID: s.ID, ConversationID: conv, Version: v + 1,
			Content: "doc", CreatedBy: u.ID, Latest: true, CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	top, err = repo.MaxVersion(dbc, s.ID)
	require.NoError(t, err)
	require.Equal(t, 3, top)

	latest, err := repo.LatestForSession(dbc, s.ID)
	require.NoError(t, err)
	require.Equal(t, 3, latest.Version)
	require.True(t, latest.Latest)

	byConv, err := repo.LatestForConversations(dbc, s.ID, []uuid.UUID{convA, convB, uuid.New()})
	require.NoError(t, err)
	require.Len(t, byConv, 2)
	require.Equal(t, 3, byConv[convA].Version)
	require.Equal(t, 2, byConv[convB].Version)

	one, err := repo.LatestForConversation(dbc, s.ID, convB)
	require.NoError(t, err)
	require.Equal(t, 2, one.Version)

	rows, err := repo.ListBySession(dbc, s.ID)
	require.NoError(t, err)
	latestCount := 0
	for _, r := range rows {
		if r.Latest {
			latestCount++
		}
	}
	require.Equal(t, 1, latestCount)

	ok, err := repo.VersionExists(dbc, s.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.VersionExists(dbc, s.ID, 9)
	require.NoError(t, err)
	require.False(t, ok)
}
