package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/clock"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

type RevisionAggregateDeps struct {
	Base BaseDeps

	Sessions      repos.SessionRepo
	Conversations repos.ConversationRepo
	PRDs          repos.PRDRepo
	Clock         clock.Clock
}

type revisionAggregate struct {
	deps RevisionAggregateDeps
}

func NewRevisionAggregate(deps RevisionAggregateDeps) domainagg.RevisionAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	return &revisionAggregate{deps: deps}
}

func (a *revisionAggregate) Contract() domainagg.Contract {
	return domainagg.RevisionAggregateContract
}

func (a *revisionAggregate) AppendRevision(ctx context.Context, in domainagg.AppendRevisionInput) (*types.PRD, error) {
	const op = "Conversation.Revision.AppendRevision"
	if in.UserID <= 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.SessionID <= 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if in.ConversationID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing conversation_id", nil)
	}
	rev := domainagg.RevisionInput{Content: in.Content, RestoreVersion: in.RestoreVersion}
	if err := validateRevision(op, rev); err != nil {
		return nil, err
	}
	if a.deps.Sessions == nil || a.deps.Conversations == nil || a.deps.PRDs == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "revision aggregate repos not configured", nil)
	}

	var out *types.PRD
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if _, err := lockOwnedSession(dbc, a.deps.Sessions, op, in.UserID, in.SessionID); err != nil {
			return err
		}
		conv, err := a.deps.Conversations.GetInSession(dbc, in.SessionID, in.ConversationID)
		if err != nil {
			return err
		}
		if conv == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("conversation not found: %s", in.ConversationID), nil)
		}
		out, err = appendRevisionTx(dbc, a.deps.PRDs, op, revisionRow{
			userID:         in.UserID,
			sessionID:      in.SessionID,
			conversationID: in.ConversationID,
			now:            a.deps.Clock,
		}, rev)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type revisionRow struct {
	userID         int64
	sessionID      int64
	conversationID uuid.UUID
	now            clock.Clock
}

func validateRevision(op string, rev domainagg.RevisionInput) error {
	if rev.Content == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing prd_content", nil)
	}
	if rev.RestoreVersion != nil && *rev.RestoreVersion < 1 {
		return domainagg.NewError(domainagg.CodeValidation, op, "restore_version must be >= 1", nil)
	}
	return nil
}

// appendRevisionTx expects the caller to hold the session row lock.
func appendRevisionTx(dbc dbctx.Context, prds repos.PRDRepo, op string, row revisionRow, rev domainagg.RevisionInput) (*types.PRD, error) {
	if err := validateRevision(op, rev); err != nil {
		return nil, err
	}
	if rev.RestoreVersion != nil {
		ok, err := prds.VersionExists(dbc, row.sessionID, *rev.RestoreVersion)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domainagg.NewError(domainagg.CodeValidation, op,
				fmt.Sprintf("restore_version %d does not exist in session %d", *rev.RestoreVersion, row.sessionID), nil)
		}
	}
	top, err := prds.MaxVersion(dbc, row.sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := prds.DemoteLatest(dbc, row.sessionID); err != nil {
		return nil, err
	}
	created, err := prds.Create(dbc, &types.PRD{
		SessionID:      row.sessionID,
		ConversationID: row.conversationID,
		Version:        top + 1,
		Content:        rev.Content,
		CreatedBy:      row.userID,
		Latest:         true,
		RestoreVersion: rev.RestoreVersion,
		CreatedAt:      row.now.Now(),
	})
	if err != nil {
		if isUniqueViolationOn(err, "idx_prd_session_version", "prd_version") {
			return nil, RetryableError("prd version collision")
		}
		return nil, err
	}
	return created, nil
}
