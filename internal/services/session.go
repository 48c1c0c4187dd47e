package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/clock"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type SessionService interface {
	// Create starts a session for the caller; an empty name becomes the start timestamp.
	Create(ctx context.Context, name string) (*types.Session, error)
	List(ctx context.Context) ([]*types.Session, error)
	Rename(ctx context.Context, sessionID int64, name string) (*types.Session, error)
	Delete(ctx context.Context, sessionID int64) (domainagg.DeleteSessionResult, error)
}

type sessionService struct {
	log         *logger.Logger
	sessionRepo repos.SessionRepo
	sessions    domainagg.SessionAggregate
	clock       clock.Clock
}

func NewSessionService(log *logger.Logger, sessionRepo repos.SessionRepo, sessions domainagg.SessionAggregate, clk clock.Clock) SessionService {
	if clk == nil {
		clk = clock.System()
	}
	return &sessionService{
		log:         log.With("service", "SessionService"),
		sessionRepo: sessionRepo,
		sessions:    sessions,
		clock:       clk,
	}
}

func (ss *sessionService) Create(ctx context.Context, name string) (*types.Session, error) {
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	start := ss.clock.Now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = types.DefaultSessionName(start)
	}
	created, err := ss.sessionRepo.Create(dbctx.Context{Ctx: ctx}, &types.Session{
		UserID:    userID,
		Name:      name,
		StartTime: start,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

func (ss *sessionService) List(ctx context.Context) ([]*types.Session, error) {
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	out, err := ss.sessionRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if out == nil {
		out = []*types.Session{}
	}
	return out, nil
}

func (ss *sessionService) Rename(ctx context.Context, sessionID int64, name string) (*types.Session, error) {
	const op = "User.Session.Rename"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(op, "session_name must not be empty")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := ss.owned(ctx, op, sessionID); err != nil {
		return nil, err
	}
	if err := ss.sessionRepo.UpdateFields(dbc, sessionID, map[string]interface{}{"session_name": name}); err != nil {
		return nil, fmt.Errorf("rename session: %w", err)
	}
	return ss.sessionRepo.GetByID(dbc, sessionID)
}

func (ss *sessionService) Delete(ctx context.Context, sessionID int64) (domainagg.DeleteSessionResult, error) {
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return domainagg.DeleteSessionResult{}, errUnauthenticated
	}
	return ss.sessions.DeleteSession(ctx, domainagg.DeleteSessionInput{UserID: userID, SessionID: sessionID})
}

// owned loads a session and requires the caller to own it.
func (ss *sessionService) owned(ctx context.Context, op string, sessionID int64) (*types.Session, error) {
	return ownedSession(ctx, ss.sessionRepo, op, sessionID)
}

func ownedSession(ctx context.Context, sessionRepo repos.SessionRepo, op string, sessionID int64) (*types.Session, error) {
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	if sessionID <= 0 {
		return nil, invalid(op, "missing session_id")
	}
	s, err := sessionRepo.GetByID(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, notFound(op, "session not found: %d", sessionID)
	}
	if s.UserID != userID {
		return nil, forbidden(op, "session belongs to another user")
	}
	return s, nil
}
