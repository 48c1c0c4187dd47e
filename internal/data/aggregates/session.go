package aggregates

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

type SessionAggregateDeps struct {
	Base BaseDeps

	Sessions      repos.SessionRepo
	Conversations repos.ConversationRepo
	PRDs          repos.PRDRepo
}

type sessionAggregate struct {
	deps SessionAggregateDeps
}

func NewSessionAggregate(deps SessionAggregateDeps) domainagg.SessionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &sessionAggregate{deps: deps}
}

func (a *sessionAggregate) Contract() domainagg.Contract {
	return domainagg.SessionAggregateContract
}

func (a *sessionAggregate) DeleteSession(ctx context.Context, in domainagg.DeleteSessionInput) (domainagg.DeleteSessionResult, error) {
	const op = "User.Session.DeleteSession"
	var out domainagg.DeleteSessionResult
	if in.UserID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.SessionID <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if a.deps.Sessions == nil || a.deps.Conversations == nil || a.deps.PRDs == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if _, err := lockOwnedSession(dbc, a.deps.Sessions, op, in.UserID, in.SessionID); err != nil {
			return err
		}
		prds, err := a.deps.PRDs.DeleteBySession(dbc, in.SessionID)
		if err != nil {
			return err
		}
		convs, err := a.deps.Conversations.DeleteBySession(dbc, in.SessionID)
		if err != nil {
			return err
		}
		if _, err := a.deps.Sessions.Delete(dbc, in.SessionID); err != nil {
			return err
		}
		out = domainagg.DeleteSessionResult{SessionID: in.SessionID, Conversations: convs, Revisions: prds}
		return nil
	})
	if err != nil {
		return domainagg.DeleteSessionResult{}, err
	}
	a.deps.Base.Log.Info("session deleted",
		"session_id", in.SessionID,
		"conversations", out.Conversations,
		"revisions", out.Revisions,
	)
	return out, nil
}

// lockOwnedSession takes the session row lock that serializes every lineage and revision
// write of the session.
func lockOwnedSession(dbc dbctx.Context, sessions repos.SessionRepo, op string, userID, sessionID int64) (*types.Session, error) {
	s, err := sessions.LockByID(dbc, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && s == nil) {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("session not found: %d", sessionID), nil)
	}
	if err != nil {
		return nil, err
	}
	if userID > 0 && s.UserID != userID {
		return nil, domainagg.NewError(domainagg.CodeForbidden, op, "session belongs to another user", nil)
	}
	return s, nil
}
