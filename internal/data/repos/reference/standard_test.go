package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/harryc904/Studio/internal/data/repos/testutil"
	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

func TestStandardRepoCanonicalLookupAndTerms(t *testing.T) {
	db := testutil.SQLite(t)
	dbc := dbctx.Background(context.Background())
	repo := NewStandardRepo(db, testutil.Logger(t))

	_, err := repo.CreateWithTerms(dbc, &types.Standard{
		StandardID:   "GB/T 19001-2016",
		DocumentName: "质量管理体系",
		Scope:        "scope",
		Terms: []types.Term{
			{TermID: 2, Term: "b", Notes: datatypes.JSON(`[{"ID":1,"content":"n"}]`)},
			{TermID: 1, Term: "a", Notes: datatypes.JSON(`[]`)},
		},
	})
	require.NoError(t, err)

	ok, err := repo.ExistsCanonical(dbc, "GB/T19001-2016")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.ExistsCanonical(dbc, "GB/T 19002")
	require.NoError(t, err)
	require.False(t, ok)

	bare, err := repo.List(dbc, false)
	require.NoError(t, err)
	require.Len(t, bare, 1)
	require.Empty(t, bare[0].Terms)

	full, err := repo.List(dbc, true)
	require.NoError(t, err)
	require.Len(t, full[0].Terms, 2)
	require.Equal(t, "a", full[0].Terms[0].Term)
	require.JSONEq(t, `[{"ID":1,"content":"n"}]`, string(full[0].Terms[1].Notes))
}
