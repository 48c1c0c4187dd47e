package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/domain/conversation"
	"github.com/harryc904/Studio/internal/platform/clock"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/idgen"
)

type LineageAggregateDeps struct {
	Base BaseDeps

	Sessions      repos.SessionRepo
	Conversations repos.ConversationRepo
	PRDs          repos.PRDRepo
	Clock         clock.Clock
	IDs           idgen.Generator
}

type lineageAggregate struct {
	deps LineageAggregateDeps
}

func NewLineageAggregate(deps LineageAggregateDeps) domainagg.LineageAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.IDs == nil {
		deps.IDs = idgen.UUID()
	}
	return &lineageAggregate{deps: deps}
}

func (a *lineageAggregate) Contract() domainagg.Contract {
	return domainagg.LineageAggregateContract
}

func (a *lineageAggregate) configured() bool {
	return a.deps.Sessions != nil && a.deps.Conversations != nil && a.deps.PRDs != nil
}

func (a *lineageAggregate) AppendConversation(ctx context.Context, in domainagg.AppendConversationInput) (domainagg.AppendConversationResult, error) {
	const op = "Conversation.Lineage.AppendConversation"
	var out domainagg.AppendConversationResult
	if in.UserID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.SessionID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if !in.Type.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid conversation_type %d", int(in.Type)), nil)
	}
	if strings.TrimSpace(in.Content) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing content", nil)
	}
	if in.Revision != nil {
		if err := validateRevision(op, *in.Revision); err != nil {
			return out, err
		}
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "lineage aggregate repos not configured", nil)
	}

	parentID := in.ParentID
	if parentID != nil && *parentID == uuid.Nil {
		parentID = nil
	}
	// The id is fixed before the first attempt so retries insert the same node.
	id := in.ConversationID
	if id == uuid.Nil {
		id = a.deps.IDs.New()
	}
	if parentID != nil && *parentID == id {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "conversation cannot be its own parent", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.AppendConversationResult{}
		sess, err := lockOwnedSession(dbc, a.deps.Sessions, op, in.UserID, in.SessionID)
		if err != nil {
			return err
		}
		exists, err := a.deps.Conversations.Exists(dbc, id)
		if err != nil {
			return err
		}
		if exists {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("conversation already exists: %s", id), nil)
		}

		now := a.deps.Clock.Now()
		node := &types.Conversation{
			ID:        id,
			SessionID: sess.ID,
			CreatedAt: now,
			Type:      in.Type,
			Content:   in.Content,
			Version:   1,
		}
		in.Aux.Apply(node)

		if parentID != nil {
			parent, err := a.deps.Conversations.LockByID(dbc, *parentID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("parent conversation not found: %s", *parentID), nil)
			}
			if err != nil {
				return err
			}
			if parent.SessionID != sess.ID {
				return InvariantError(fmt.Sprintf("parent %s belongs to session %d, not %d", parent.ID, parent.SessionID, sess.ID))
			}
			version, ix, err := conversation.AllocateVersion(parent.ChildVersions, id)
			if err != nil {
				return errors.Join(ErrInvariant, fmt.Errorf("parent %s: %w", parent.ID, err))
			}
			if err := a.deps.Conversations.UpdateChildVersions(dbc, parent.ID, ix); err != nil {
				return err
			}
			parent.ChildVersions = ix
			pid := parent.ID
			node.ParentID = &pid
			node.Version = version
			out.Parent = parent
		}

		if _, err := a.deps.Conversations.Create(dbc, []*types.Conversation{node}); err != nil {
			if isUniqueViolationOn(err, "idx_conversation_parent_version", "conversation_parent_id") {
				return RetryableError("sibling version collision")
			}
			return err
		}
		if err := a.deps.Sessions.UpdateFields(dbc, sess.ID, map[string]interface{}{"end_time": now}); err != nil {
			return err
		}
		out.Conversation = node

		if in.Revision != nil {
			prd, err := appendRevisionTx(dbc, a.deps.PRDs, op, revisionRow{
				userID:         in.UserID,
				sessionID:      sess.ID,
				conversationID: node.ID,
				now:            a.deps.Clock,
			}, *in.Revision)
			if err != nil {
				return err
			}
			out.Revision = prd
		}
		return nil
	})
	if err != nil {
		return domainagg.AppendConversationResult{}, err
	}
	a.deps.Base.Log.Debug("conversation appended",
		"conversation_id", out.Conversation.ID,
		"session_id", out.Conversation.SessionID,
		"version", out.Conversation.Version,
	)
	return out, nil
}

func (a *lineageAggregate) UpdateConversation(ctx context.Context, in domainagg.UpdateConversationInput) (domainagg.UpdateConversationResult, error) {
	const op = "Conversation.Lineage.UpdateConversation"
	var out domainagg.UpdateConversationResult
	if in.UserID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.SessionID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if in.ConversationID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing conversation_id", nil)
	}
	if in.Aux.Empty() && in.Revision == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "nothing to update", nil)
	}
	if in.Revision != nil {
		if err := validateRevision(op, *in.Revision); err != nil {
			return out, err
		}
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "lineage aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.UpdateConversationResult{}
		if _, err := lockOwnedSession(dbc, a.deps.Sessions, op, in.UserID, in.SessionID); err != nil {
			return err
		}
		node, err := a.deps.Conversations.GetInSession(dbc, in.SessionID, in.ConversationID)
		if err != nil {
			return err
		}
		if node == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("conversation not found: %s", in.ConversationID), nil)
		}
		if !in.Aux.Empty() {
			if err := a.patchAux(dbc, op, in.SessionID, in.ConversationID, in.Aux); err != nil {
				return err
			}
			in.Aux.Apply(node)
		}
		out.Conversation = node

		if in.Revision != nil {
			prd, err := appendRevisionTx(dbc, a.deps.PRDs, op, revisionRow{
				userID:         in.UserID,
				sessionID:      in.SessionID,
				conversationID: node.ID,
				now:            a.deps.Clock,
			}, *in.Revision)
			if err != nil {
				return err
			}
			out.Revision = prd
		}
		return nil
	})
	if err != nil {
		return domainagg.UpdateConversationResult{}, err
	}
	return out, nil
}

func (a *lineageAggregate) patchAux(dbc dbctx.Context, op string, sessionID int64, id uuid.UUID, aux conversation.AuxFields) error {
	ok, err := a.deps.Base.CASGuard.UpdateScoped(dbc, "conversations", map[string]any{
		"conversation_id": id,
		"session_id":      sessionID,
	}, aux.Updates())
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("conversation %s not found in session %d", id, sessionID), nil)
	}
	return nil
}
