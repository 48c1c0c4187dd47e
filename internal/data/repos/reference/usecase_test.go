package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harryc904/Studio/internal/data/repos/testutil"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

func TestUseCaseRepoListsStoriesAndRequirementLinks(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	dbc := dbctx.Background(ctx)
	repo := NewUseCaseRepo(db, testutil.Logger(t))
	g := testutil.SeedUseCaseGraph(t, ctx, db)

	withStories, err := repo.ListWithStories(dbc)
	require.NoError(t, err)
	require.Len(t, withStories, 2)
	require.Equal(t, "Login", withStories[0].Name)
	require.Len(t, withStories[0].UserStories, 2)
	require.Equal(t, g.Stories[0].ID, withStories[0].UserStories[0].ID)
	require.Empty(t, withStories[1].UserStories)

	stories, err := repo.ListUserStories(dbc)
	require.NoError(t, err)
	require.Len(t, stories, 3)
	require.Nil(t, stories[2].UseCaseUUID)
	require.Equal(t, g.Login.UUID, *stories[0].UseCaseUUID)

	links, err := repo.ListRequirementLinks(dbc)
	require.NoError(t, err)
	require.Len(t, links, 3)
	require.Equal(t, g.Shared.ID, links[0].ID)
	require.Equal(t, g.Login.UUID, *links[0].UseCaseUUID)
	require.Equal(t, g.Export.UUID, *links[1].UseCaseUUID)
	require.Equal(t, g.Loose.ID, links[2].ID)
	require.Equal(t, g.Loose.UUID, links[2].UUID)
	require.Equal(t, "Dark mode", links[2].Name)
	require.Nil(t, links[2].UseCaseUUID)
}
