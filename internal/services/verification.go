package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/harryc904/Studio/internal/data/repos"
	"github.com/harryc904/Studio/internal/observability"
	"github.com/harryc904/Studio/internal/platform/apierr"
	"github.com/harryc904/Studio/internal/platform/clock"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

// CodePurpose is the reason a verification code was issued. The numeric values are
// part of the public API.
type CodePurpose int

const (
	PurposeRegister CodePurpose = 0
	PurposeLogin    CodePurpose = 1
)

func (p CodePurpose) Valid() bool { return p == PurposeRegister || p == PurposeLogin }

func (p CodePurpose) String() string {
	switch p {
	case PurposeRegister:
		return "register"
	case PurposeLogin:
		return "login"
	default:
		return "unknown"
	}
}

var errVerificationUnavailable = apierr.New(http.StatusServiceUnavailable, "verification_unavailable",
	errors.New("verification codes are not available"))

type VerificationConfig struct {
	TTL            time.Duration `koanf:"ttl"`
	ResendInterval time.Duration `koanf:"resend_interval"`
}

// CodeStore holds pending codes. Take must consume the code it returns.
type CodeStore interface {
	Put(ctx context.Context, purpose, phone, code string, ttl time.Duration) error
	Take(ctx context.Context, purpose, phone string) (code string, ok bool, err error)
}

// CodeSender delivers a code to a phone.
type CodeSender interface {
	Send(ctx context.Context, phone, code string, purpose CodePurpose) error
}

type logCodeSender struct {
	log *logger.Logger
}

// NewLogCodeSender returns a CodeSender that only writes the delivery to the log.
func NewLogCodeSender(log *logger.Logger) CodeSender {
	return &logCodeSender{log: log.With("service", "LogCodeSender")}
}

func (s *logCodeSender) Send(_ context.Context, phone, code string, purpose CodePurpose) error {
	s.log.Info("verification code issued", "phone", phone, "purpose", purpose.String(), "code", code)
	return nil
}

type VerificationService interface {
	Enabled() bool
	Issue(ctx context.Context, phone string, purpose CodePurpose) error
	Verify(ctx context.Context, phone string, purpose CodePurpose, code string) error
}

type verificationService struct {
	log      *logger.Logger
	store    CodeStore
	sender   CodeSender
	userRepo repos.UserRepo
	metrics  *observability.Metrics
	clock    clock.Clock
	ttl      time.Duration
	resend   time.Duration

	mu       sync.Mutex
	limiters map[string]*phoneLimiter
}

type phoneLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

const limiterSweepThreshold = 1024

// NewVerificationService returns a disabled service when store is nil.
func NewVerificationService(log *logger.Logger, store CodeStore, sender CodeSender, userRepo repos.UserRepo, metrics *observability.Metrics, clk clock.Clock, cfg VerificationConfig) VerificationService {
	if clk == nil {
		clk = clock.System()
	}
	if sender == nil {
		sender = NewLogCodeSender(log)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	resend := cfg.ResendInterval
	if resend <= 0 {
		resend = time.Minute
	}
	return &verificationService{
		log:      log.With("service", "VerificationService"),
		store:    store,
		sender:   sender,
		userRepo: userRepo,
		metrics:  metrics,
		clock:    clk,
		ttl:      ttl,
		resend:   resend,
		limiters: map[string]*phoneLimiter{},
	}
}

func (vs *verificationService) Enabled() bool { return vs != nil && vs.store != nil }

func (vs *verificationService) Issue(ctx context.Context, phone string, purpose CodePurpose) error {
	if !vs.Enabled() {
		return errVerificationUnavailable
	}
	phone = strings.TrimSpace(phone)
	if !validPhone(phone) {
		return apierr.Newf(http.StatusBadRequest, "validation", "invalid phone_number")
	}
	if !purpose.Valid() {
		return apierr.Newf(http.StatusBadRequest, "validation", "invalid purpose %d", int(purpose))
	}

	existing, err := vs.userRepo.GetByPhone(dbctx.Context{Ctx: ctx}, phone)
	if err != nil {
		return fmt.Errorf("check phone: %w", err)
	}
	if purpose == PurposeLogin && existing == nil {
		return apierr.Newf(http.StatusBadRequest, "validation", "phone number not registered")
	}
	if purpose == PurposeRegister && existing != nil {
		return apierr.Newf(http.StatusConflict, "conflict", "phone number already registered")
	}

	if !vs.allow(purpose.String() + ":" + phone) {
		vs.metrics.IncVerificationCode(purpose.String(), "throttled")
		return apierr.Newf(http.StatusTooManyRequests, "rate_limited", "verification code requested too often; retry later")
	}

	code, err := newCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := vs.store.Put(ctx, purpose.String(), phone, code, vs.ttl); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if err := vs.sender.Send(ctx, phone, code, purpose); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	vs.metrics.IncVerificationCode(purpose.String(), "issued")
	return nil
}

func (vs *verificationService) Verify(ctx context.Context, phone string, purpose CodePurpose, code string) error {
	if !vs.Enabled() {
		return errVerificationUnavailable
	}
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if code == "" {
		return apierr.Newf(http.StatusBadRequest, "validation", "verification_code is required")
	}
	stored, ok, err := vs.store.Take(ctx, purpose.String(), phone)
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}
	if !ok {
		vs.metrics.IncVerificationCode(purpose.String(), "missing")
		return apierr.Newf(http.StatusBadRequest, "validation", "verification code expired or not sent")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		vs.metrics.IncVerificationCode(purpose.String(), "rejected")
		return apierr.Newf(http.StatusBadRequest, "validation", "invalid verification code")
	}
	vs.metrics.IncVerificationCode(purpose.String(), "verified")
	return nil
}

// allow admits one code per resend interval for each key.
func (vs *verificationService) allow(key string) bool {
	now := vs.clock.Now()
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if len(vs.limiters) >= limiterSweepThreshold {
		for k, pl := range vs.limiters {
			if now.Sub(pl.seen) > vs.resend {
				delete(vs.limiters, k)
			}
		}
	}
	pl, ok := vs.limiters[key]
	if !ok {
		pl = &phoneLimiter{lim: rate.NewLimiter(rate.Every(vs.resend), 1)}
		vs.limiters[key] = pl
	}
	pl.seen = now
	return pl.lim.AllowN(now, 1)
}

var codeSpan = big.NewInt(900000)

// newCode returns a uniformly random code in [100000, 999999].
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func validPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 5 || len(digits) > 20 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
