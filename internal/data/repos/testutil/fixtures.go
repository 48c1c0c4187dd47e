package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/harryc904/Studio/internal/domain"
)

var seedSeq atomic.Int64

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.User {
	tb.Helper()
	n := seedSeq.Add(1)
	phone := fmt.Sprintf("+86%d%d", time.Now().UnixNano()%1e9, n)
	u := &types.User{
		Username:    fmt.Sprintf("%s-%d-%d", name, time.Now().UnixNano(), n),
		Email:       fmt.Sprintf("%s-%d-%d@example.com", name, time.Now().UnixNano(), n),
		Password:    "pw",
		PhoneNumber: &phone,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID int64) *types.Session {
	tb.Helper()
	start := time.Now().UTC()
	s := &types.Session{
		UserID:    userID,
		Name:      types.DefaultSessionName(start),
		StartTime: start,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

// UseCaseGraph is the reference data seeded by SeedUseCaseGraph.
type UseCaseGraph struct {
	Login, Export *types.UseCase
	// Stories holds two stories of Login and one story without a use case.
	Stories []*types.UserStory
	// Shared is linked to both use cases, Loose to none.
	Shared, Loose *types.Requirement
}

func SeedUseCaseGraph(tb testing.TB, ctx context.Context, tx *gorm.DB) UseCaseGraph {
	tb.Helper()
	db := tx.WithContext(ctx)
	create := func(what string, v any) {
		if err := db.Create(v).Error; err != nil {
			tb.Fatalf("seed %s: %v", what, err)
		}
	}

	g := UseCaseGraph{
		Login:  &types.UseCase{UUID: uuid.New(), Name: "Login", Description: "sign in with a phone code"},
		Export: &types.UseCase{UUID: uuid.New(), Name: "Export", Description: "download the PRD"},
		Shared: &types.Requirement{UUID: uuid.New(), Name: "Audit log", Description: "record every access"},
		Loose:  &types.Requirement{UUID: uuid.New(), Name: "Dark mode", Description: "follow the system theme"},
	}
	create("use case", g.Login)
	create("use case", g.Export)
	for _, desc := range []string{"request a code", "enter the code"} {
		s := &types.UserStory{UUID: uuid.New(), UseCaseID: &g.Login.ID, UseCaseUUID: &g.Login.UUID, Description: desc}
		create("user story", s)
		g.Stories = append(g.Stories, s)
	}
	orphan := &types.UserStory{UUID: uuid.New(), Description: "unsorted idea"}
	create("user story", orphan)
	g.Stories = append(g.Stories, orphan)

	create("requirement", g.Shared)
	create("requirement", g.Loose)
	create("requirement link", &types.RequirementUseCase{RequirementID: g.Shared.ID, UseCaseID: g.Login.ID})
	create("requirement link", &types.RequirementUseCase{RequirementID: g.Shared.ID, UseCaseID: g.Export.ID})
	return g
}
