package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/apierr"
	"github.com/harryc904/Studio/internal/platform/clock"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

const minPasswordLength = 6

var errInvalidCredentials = apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("incorrect username or password"))

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	AccessTTL time.Duration `koanf:"access_ttl"`
}

type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	PhoneNumber      string
	VerificationCode string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, string, error)
	// Login accepts an email (anything containing "@") or a phone number as identifier.
	Login(ctx context.Context, identifier, password string) (*types.User, string, error)
	LoginWithCode(ctx context.Context, phone, code string) (*types.User, string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	verification VerificationService
	clock        clock.Clock
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, verification VerificationService, clk clock.Clock, cfg AuthConfig) AuthService {
	if clk == nil {
		clk = clock.System()
	}
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		verification: verification,
		clock:        clk,
		jwtSecretKey: cfg.JWTSecret,
		accessTTL:    ttl,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	switch {
	case in.Username == "":
		return nil, "", apierr.Newf(http.StatusBadRequest, "validation", "username is required")
	case !strings.Contains(in.Email, "@"):
		return nil, "", apierr.Newf(http.StatusBadRequest, "validation", "a valid email is required")
	case in.PhoneNumber == "":
		return nil, "", apierr.Newf(http.StatusBadRequest, "validation", "phone_number is required")
	case len(in.Password) < minPasswordLength:
		return nil, "", apierr.Newf(http.StatusBadRequest, "validation", "password must be at least %d characters", minPasswordLength)
	}

	if as.verification != nil && as.verification.Enabled() {
		if err := as.verification.Verify(ctx, in.PhoneNumber, PurposeRegister, in.VerificationCode); err != nil {
			return nil, "", err
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	taken, err := as.userRepo.TakenBy(dbc, 0, in.Username, in.Email, in.PhoneNumber)
	if err != nil {
		return nil, "", fmt.Errorf("check registration uniqueness: %w", err)
	}
	if err := takenError(taken); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	phone := in.PhoneNumber
	created, err := as.userRepo.Create(dbc, []*types.User{{
		Username:    in.Username,
		Email:       in.Email,
		Password:    string(hash),
		PhoneNumber: &phone,
	}})
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	user := created[0]
	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, identifier, password string) (*types.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", apierr.Newf(http.StatusBadRequest, "validation", "username and password are required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	var (
		user *types.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = as.userRepo.GetByEmail(dbc, identifier)
	} else {
		user, err = as.userRepo.GetByPhone(dbc, identifier)
	}
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		as.log.Warn("login failed: unknown identifier", "email", identifier)
		return nil, "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		as.log.Warn("login failed: bad password", "user_id", user.ID)
		return nil, "", errInvalidCredentials
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

func (as *authService) LoginWithCode(ctx context.Context, phone, code string) (*types.User, string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.TrimSpace(code) == "" {
		return nil, "", apierr.Newf(http.StatusBadRequest, "validation", "phone_number and verification_code are required")
	}
	if as.verification == nil || !as.verification.Enabled() {
		return nil, "", errVerificationUnavailable
	}
	user, err := as.userRepo.GetByPhone(dbctx.Context{Ctx: ctx}, phone)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, "", apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("phone number not registered"))
	}
	if err := as.verification.Verify(ctx, phone, PurposeLogin, code); err != nil {
		return nil, "", err
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("user logged in with code", "user_id", user.ID)
	return user, token, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.clock.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.clock.Now))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired JWT token")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return ctx, fmt.Errorf("invalid user id in token")
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return ctx, fmt.Errorf("load token user: %w", err)
	}
	if user == nil {
		return ctx, fmt.Errorf("token user no longer exists")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func takenError(t repos.TakenFields) error {
	switch {
	case t.Phone:
		return apierr.Newf(http.StatusConflict, "conflict", "phone number already registered")
	case t.Email:
		return apierr.Newf(http.StatusConflict, "conflict", "email already registered")
	case t.Username:
		return apierr.Newf(http.StatusConflict, "conflict", "username already registered")
	}
	return nil
}
