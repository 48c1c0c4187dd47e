package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	dataagg "github.com/harryc904/Studio/internal/data/aggregates"
	"github.com/harryc904/Studio/internal/data/repos"
	repotest "github.com/harryc904/Studio/internal/data/repos/testutil"
	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/clock"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
)

type testEnv struct {
	db    *gorm.DB
	clock *clock.Manual

	userRepo    repos.UserRepo
	sessionRepo repos.SessionRepo
	convRepo    repos.ConversationRepo
	prdRepo     repos.PRDRepo

	codes  *memCodeStore
	sender *captureSender

	verification  VerificationService
	auth          AuthService
	users         UserService
	sessions      SessionService
	conversations ConversationService
	prds          PRDService
	standards     StandardService
	useCases      UseCaseService
}

type tick struct{ m *clock.Manual }

func (t tick) Now() time.Time { return t.m.Tick(time.Second) }

// newTestEnv wires every service against a fresh SQLite database. Verification is
// disabled unless withCodes is true.
func newTestEnv(t *testing.T, withCodes bool) *testEnv {
	t.Helper()
	db := repotest.SQLite(t)
	log := repotest.Logger(t)
	e := &testEnv{
		db:          db,
		clock:       clock.NewManual(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)),
		userRepo:    repos.NewUserRepo(db, log),
		sessionRepo: repos.NewSessionRepo(db, log),
		convRepo:    repos.NewConversationRepo(db, log),
		prdRepo:     repos.NewPRDRepo(db, log),
		codes:       newMemCodeStore(),
		sender:      &captureSender{},
	}
	clk := tick{m: e.clock}
	base := dataagg.BaseDeps{DB: db, Log: log}
	lineage := dataagg.NewLineageAggregate(dataagg.LineageAggregateDeps{
		Base: base, Sessions: e.sessionRepo, Conversations: e.convRepo, PRDs: e.prdRepo, Clock: clk,
	})
	revisions := dataagg.NewRevisionAggregate(dataagg.RevisionAggregateDeps{
		Base: base, Sessions: e.sessionRepo, Conversations: e.convRepo, PRDs: e.prdRepo, Clock: clk,
	})
	sessionAgg := dataagg.NewSessionAggregate(dataagg.SessionAggregateDeps{
		Base: base, Sessions: e.sessionRepo, Conversations: e.convRepo, PRDs: e.prdRepo,
	})

	var store CodeStore
	if withCodes {
		store = e.codes
	}
	e.verification = NewVerificationService(log, store, e.sender, e.userRepo, nil, e.clock, VerificationConfig{})
	e.auth = NewAuthService(log, e.userRepo, e.verification, e.clock, AuthConfig{JWTSecret: "test-secret", AccessTTL: time.Hour})
	e.users = NewUserService(log, e.userRepo)
	e.sessions = NewSessionService(log, e.sessionRepo, sessionAgg, clk)
	e.conversations = NewConversationService(log, e.sessionRepo, e.convRepo, e.prdRepo, lineage)
	e.prds = NewPRDService(log, e.sessionRepo, e.prdRepo, revisions)
	e.standards = NewStandardService(db, log, repos.NewStandardRepo(db, log))
	e.useCases = NewUseCaseService(log, repos.NewUseCaseRepo(db, log))
	return e
}

func (e *testEnv) seedUser(t *testing.T, name string) (*types.User, context.Context) {
	t.Helper()
	u := repotest.SeedUser(t, context.Background(), e.db, name)
	return u, asUser(u.ID)
}

func asUser(id int64) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: id})
}

type memCodeStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemCodeStore() *memCodeStore { return &memCodeStore{codes: map[string]string{}} }

func (m *memCodeStore) Put(_ context.Context, purpose, phone, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[purpose+":"+phone] = code
	return nil
}

func (m *memCodeStore) Take(_ context.Context, purpose, phone string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[purpose+":"+phone]
	delete(m.codes, purpose+":"+phone)
	return code, ok, nil
}

type captureSender struct {
	mu   sync.Mutex
	last map[string]string
}

func (c *captureSender) Send(_ context.Context, phone, code string, purpose CodePurpose) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		c.last = map[string]string{}
	}
	c.last[purpose.String()+":"+phone] = code
	return nil
}

func (c *captureSender) code(purpose CodePurpose, phone string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last[purpose.String()+":"+phone]
}
