package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/apierr"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateMe(ctx context.Context, patch types.UserPatch) (*types.User, error)
	UpdatePassword(ctx context.Context, newPassword string) error
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	const op = "User.GetMe"
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	user, err := us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, notFound(op, "user not found: %d", userID)
	}
	return user, nil
}

func (us *userService) UpdateMe(ctx context.Context, patch types.UserPatch) (*types.User, error) {
	const op = "User.UpdateMe"
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return nil, errUnauthenticated
	}
	if patch.Empty() {
		return nil, invalid(op, "no fields to update")
	}

	updates := map[string]interface{}{}
	var username, email, phone string
	if patch.Username != nil {
		username = strings.TrimSpace(*patch.Username)
		if username == "" {
			return nil, invalid(op, "username must not be empty")
		}
		updates["user_name"] = username
	}
	if patch.Email != nil {
		email = normalizeEmail(*patch.Email)
		if !strings.Contains(email, "@") {
			return nil, invalid(op, "a valid email is required")
		}
		updates["email"] = email
	}
	if patch.PhoneNumber != nil {
		phone = strings.TrimSpace(*patch.PhoneNumber)
		if phone == "" {
			updates["phone_number"] = nil
		} else {
			updates["phone_number"] = phone
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	taken, err := us.userRepo.TakenBy(dbc, userID, username, email, phone)
	if err != nil {
		return nil, fmt.Errorf("check uniqueness: %w", err)
	}
	if err := takenError(taken); err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateFields(dbc, userID, updates); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return us.GetMe(ctx)
}

func (us *userService) UpdatePassword(ctx context.Context, newPassword string) error {
	userID := ctxutil.UserID(ctx)
	if userID == 0 {
		return errUnauthenticated
	}
	if len(newPassword) < minPasswordLength {
		return apierr.Newf(http.StatusBadRequest, "validation", "password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := us.userRepo.UpdateFields(dbctx.Context{Ctx: ctx}, userID, map[string]interface{}{"password": string(hash)}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	us.log.Info("password updated", "user_id", userID)
	return nil
}
