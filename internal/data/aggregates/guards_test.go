package aggregates

import (
	"context"
	"testing"

	"github.com/harryc904/Studio/internal/platform/dbctx"
)

func TestUpdateScopedRequiresScope(t *testing.T) {
	g := NewCASGuard(nil)
	dbc := dbctx.Context{Ctx: context.Background()}
	if _, err := g.UpdateScoped(dbc, "prd", nil, map[string]any{"latest": false}); err == nil {
		t.Fatalf("expected validation error without db")
	}
}
