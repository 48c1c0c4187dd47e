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

type CreateConversationInput struct {
	SessionID      int64
	ConversationID uuid.UUID
	ParentID       *uuid.UUID
	Type           types.ConversationType
	Content        string
	Aux            types.AuxFields
	// PRDContent, when set, appends a PRD revision in the same transaction.
	PRDContent     *string
	RestoreVersion *int
}

type UpdateConversationInput struct {
	SessionID      int64
	ConversationID uuid.UUID
	Aux            types.AuxFields
	PRDContent     *string
	RestoreVersion *int
}

type ConversationService interface {
	Create(ctx context.Context, in CreateConversationInput) (ThreadEntry, error)
	Update(ctx context.Context, in UpdateConversationInput) (ThreadEntry, error)
	GetNode(ctx context.Context, sessionID int64, conversationID uuid.UUID) (ThreadEntry, error)
	Thread(ctx context.Context, sessionID int64, start *uuid.UUID) ([]ThreadEntry, error)
}

type conversationService struct {
	log         *logger.Logger
	sessionRepo repos.SessionRepo
	convRepo    repos.ConversationRepo
	prdRepo     repos.PRDRepo
	lineage     domainagg.LineageAggregate
}

func NewConversationService(
	log *logger.Logger,
	sessionRepo repos.SessionRepo,
	convRepo repos.ConversationRepo,
	prdRepo repos.PRDRepo,
	lineage domainagg.LineageAggregate,
) ConversationService {
	return &conversationService{
		log:         log.With("service", "ConversationService"),
		sessionRepo: sessionRepo,
		convRepo:    convRepo,
		prdRepo:     prdRepo,
		lineage:     lineage,
	}
}

// revisionInput treats an empty prd_content as absent.
func revisionInput(op string, content *string, restore *int) (*domainagg.RevisionInput, error) {
	if content == nil || *content == "" {
		if restore != nil {
			return nil, invalid(op, "restore_version requires prd_content")
		}
		return nil, nil
	}
	return &domainagg.RevisionInput{Content: *content, RestoreVersion: restore}, nil
}

func (cs *conversationService) Create(ctx context.Context, in CreateConversationInput) (ThreadEntry, error) {
	const op = "Conversation.Create"
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return ThreadEntry{}, errUnauthenticated
	}
	rev, err := revisionInput(op, in.PRDContent, in.RestoreVersion)
	if err != nil {
		return ThreadEntry{}, err
	}
	res, err := cs.lineage.AppendConversation(ctx, domainagg.AppendConversationInput{
		UserID:         userID,
		SessionID:      in.SessionID,
		ConversationID: in.ConversationID,
		ParentID:       in.ParentID,
		Type:           in.Type,
		Content:        in.Content,
		Aux:            in.Aux,
		Revision:       rev,
	})
	if err != nil {
		return ThreadEntry{}, err
	}
	var parentIndex types.ChildVersionIndex
	if res.Parent != nil {
		parentIndex = res.Parent.ChildVersions
	}
	return newThreadEntry(res.Conversation, parentIndex, res.Revision), nil
}

func (cs *conversationService) Update(ctx context.Context, in UpdateConversationInput) (ThreadEntry, error) {
	const op = "Conversation.Update"
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return ThreadEntry{}, errUnauthenticated
	}
	rev, err := revisionInput(op, in.PRDContent, in.RestoreVersion)
	if err != nil {
		return ThreadEntry{}, err
	}
	res, err := cs.lineage.UpdateConversation(ctx, domainagg.UpdateConversationInput{
		UserID:         userID,
		SessionID:      in.SessionID,
		ConversationID: in.ConversationID,
		Aux:            in.Aux,
		Revision:       rev,
	})
	if err != nil {
		return ThreadEntry{}, err
	}
	prd := res.Revision
	dbc := dbctx.Context{Ctx: ctx}
	if prd == nil {
		if prd, err = cs.prdRepo.LatestForConversation(dbc, in.SessionID, in.ConversationID); err != nil {
			return ThreadEntry{}, fmt.Errorf("load revision: %w", err)
		}
	}
	parentIndex, err := cs.parentIndex(dbc, res.Conversation)
	if err != nil {
		return ThreadEntry{}, err
	}
	return newThreadEntry(res.Conversation, parentIndex, prd), nil
}

func (cs *conversationService) GetNode(ctx context.Context, sessionID int64, conversationID uuid.UUID) (ThreadEntry, error) {
	const op = "Conversation.GetNode"
	if _, err := ownedSession(ctx, cs.sessionRepo, op, sessionID); err != nil {
		return ThreadEntry{}, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	node, err := cs.convRepo.GetInSession(dbc, sessionID, conversationID)
	if err != nil {
		return ThreadEntry{}, fmt.Errorf("load conversation: %w", err)
	}
	if node == nil {
		return ThreadEntry{}, notFound(op, "conversation not found: %s", conversationID)
	}
	prd, err := cs.prdRepo.LatestForConversation(dbc, sessionID, conversationID)
	if err != nil {
		return ThreadEntry{}, fmt.Errorf("load revision: %w", err)
	}
	parentIndex, err := cs.parentIndex(dbc, node)
	if err != nil {
		return ThreadEntry{}, err
	}
	return newThreadEntry(node, parentIndex, prd), nil
}

func (cs *conversationService) parentIndex(dbc dbctx.Context, c *types.Conversation) (types.ChildVersionIndex, error) {
	if c == nil || c.IsRoot() {
		return nil, nil
	}
	parent, err := cs.convRepo.GetByID(dbc, *c.ParentID)
	if err != nil {
		return nil, fmt.Errorf("load parent: %w", err)
	}
	if parent == nil {
		return nil, nil
	}
	return parent.ChildVersions, nil
}
