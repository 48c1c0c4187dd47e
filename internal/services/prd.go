package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type PRDService interface {
	LatestForSession(ctx context.Context, sessionID int64) (*types.PRD, error)
	// LatestForUser reads the latest revision of the caller's most recently ended session.
	LatestForUser(ctx context.Context) (*types.PRD, error)
	// Append writes a new latest revision attached to an existing node of the session.
	Append(ctx context.Context, sessionID int64, conversationID uuid.UUID, content string, restoreVersion *int) (*types.PRD, error)
}

type prdService struct {
	log         *logger.Logger
	sessionRepo repos.SessionRepo
	prdRepo     repos.PRDRepo
	revisions   domainagg.RevisionAggregate
}

func NewPRDService(log *logger.Logger, sessionRepo repos.SessionRepo, prdRepo repos.PRDRepo, revisions domainagg.RevisionAggregate) PRDService {
	return &prdService{
		log:         log.With("service", "PRDService"),
		sessionRepo: sessionRepo,
		prdRepo:     prdRepo,
		revisions:   revisions,
	}
}

func (ps *prdService) LatestForSession(ctx context.Context, sessionID int64) (*types.PRD, error) {
	const op = "Conversation.PRD.LatestForSession"
	if _, err := ownedSession(ctx, ps.sessionRepo, op, sessionID); err != nil {
		return nil, err
	}
	prd, err := ps.prdRepo.LatestForSession(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load latest prd: %w", err)
	}
	if prd == nil {
		return nil, notFound(op, "no PRD found for session %d", sessionID)
	}
	return prd, nil
}

func (ps *prdService) LatestForUser(ctx context.Context) (*types.PRD, error) {
	const op = "Conversation.PRD.LatestForUser"
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	dbc := dbctx.Context{Ctx: ctx}
	sess, err := ps.sessionRepo.LatestEndedByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest session: %w", err)
	}
	if sess == nil {
		return nil, notFound(op, "no active session found for user")
	}
	prd, err := ps.prdRepo.LatestForSession(dbc, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("load latest prd: %w", err)
	}
	if prd == nil {
		return nil, notFound(op, "no PRD found for session %d", sess.ID)
	}
	return prd, nil
}

func (ps *prdService) Append(ctx context.Context, sessionID int64, conversationID uuid.UUID, content string, restoreVersion *int) (*types.PRD, error) {
	const op = "Conversation.PRD.Append"
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	if conversationID == uuid.Nil {
		return nil, invalid(op, "missing conversation_id")
	}
	return ps.revisions.AppendRevision(ctx, domainagg.AppendRevisionInput{
		UserID:         userID,
		SessionID:      sessionID,
		ConversationID: conversationID,
		Content:        content,
		RestoreVersion: restoreVersion,
	})
}
