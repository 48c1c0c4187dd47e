package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harryc904/Studio/internal/platform/apierr"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apierr.FromError(err).Status
}

func TestRegisterAndLoginWithPassword(t *testing.T) {
	e := newTestEnv(t, false)
	ctx := context.Background()

	u, token, err := e.auth.Register(ctx, RegisterInput{
		Username:    "ada",
		Email:       " Ada@Example.com ",
		Password:    "secret1",
		PhoneNumber: "13800000001",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "ada@example.com", u.Email)
	require.NotEqual(t, "secret1", u.Password)

	byEmail, _, err := e.auth.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byPhone, _, err := e.auth.Login(ctx, "13800000001", "secret1")
	require.NoError(t, err)
	require.Equal(t, u.ID, byPhone.ID)

	_, _, err = e.auth.Login(ctx, "ada@example.com", "wrong-pass")
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	_, _, err = e.auth.Login(ctx, "nobody@example.com", "secret1")
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	e := newTestEnv(t, false)
	ctx := context.Background()
	base := RegisterInput{Username: "grace", Email: "grace@example.com", Password: "secret1", PhoneNumber: "13800000002"}
	_, _, err := e.auth.Register(ctx, base)
	require.NoError(t, err)

	cases := map[string]struct {
		mutate func(*RegisterInput)
		status int
	}{
		"same phone":     {func(in *RegisterInput) { in.Username, in.Email = "g2", "g2@example.com" }, http.StatusConflict},
		"same email":     {func(in *RegisterInput) { in.Username, in.PhoneNumber = "g3", "13800000003" }, http.StatusConflict},
		"same username":  {func(in *RegisterInput) { in.Email, in.PhoneNumber = "g4@example.com", "13800000004" }, http.StatusConflict},
		"short password": {func(in *RegisterInput) { in.Password = "123" }, http.StatusBadRequest},
		"bad email":      {func(in *RegisterInput) { in.Email = "nope" }, http.StatusBadRequest},
		"no username":    {func(in *RegisterInput) { in.Username = " " }, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, _, err := e.auth.Register(ctx, in)
			require.Equal(t, tc.status, statusOf(t, err))
		})
	}
}

func TestTokenRoundTripAndExpiry(t *testing.T) {
	e := newTestEnv(t, false)
	u, token, err := e.auth.Register(context.Background(), RegisterInput{
		Username: "linus", Email: "linus@example.com", Password: "secret1", PhoneNumber: "13800000005",
	})
	require.NoError(t, err)

	ctx, err := e.auth.SetContextFromToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, u.ID, ctxutil.UserID(ctx))
	require.Equal(t, token, ctxutil.GetRequestData(ctx).TokenString)

	_, err = e.auth.SetContextFromToken(context.Background(), token+"x")
	require.Error(t, err)

	e.clock.Advance(e.auth.GetAccessTTL() + time.Minute)
	_, err = e.auth.SetContextFromToken(context.Background(), token)
	require.Error(t, err)
}

func TestLoginWithCodeRequiresVerification(t *testing.T) {
	e := newTestEnv(t, false)
	_, _, err := e.auth.LoginWithCode(context.Background(), "13800000006", "123456")
	require.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))

	e = newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, e.verification.Issue(ctx, "13800000006", PurposeRegister))
	_, _, err = e.auth.Register(ctx, RegisterInput{
		Username: "ken", Email: "ken@example.com", Password: "secret1", PhoneNumber: "13800000006",
		VerificationCode: e.sender.code(PurposeRegister, "13800000006"),
	})
	require.NoError(t, err)

	require.NoError(t, e.verification.Issue(ctx, "13800000006", PurposeLogin))
	u, token, err := e.auth.LoginWithCode(ctx, "13800000006", e.sender.code(PurposeLogin, "13800000006"))
	require.NoError(t, err)
	require.Equal(t, "ken", u.Username)
	require.NotEmpty(t, token)

	// Codes are single use.
	_, _, err = e.auth.LoginWithCode(ctx, "13800000006", e.sender.code(PurposeLogin, "13800000006"))
	require.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, _, err = e.auth.LoginWithCode(ctx, "13899999999", "123456")
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestRegisterNeedsCodeWhenVerificationEnabled(t *testing.T) {
	e := newTestEnv(t, true)
	_, _, err := e.auth.Register(context.Background(), RegisterInput{
		Username: "barbara", Email: "barbara@example.com", Password: "secret1", PhoneNumber: "13800000007",
	})
	require.Equal(t, http.StatusBadRequest, statusOf(t, err))
}
