package services

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyCode(t *testing.T) {
	e := newTestEnv(t, true)
	ctx := context.Background()
	const phone = "+8613800000010"

	require.NoError(t, e.verification.Issue(ctx, phone, PurposeRegister))
	code := e.sender.code(PurposeRegister, phone)
	require.Len(t, code, 6)
	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 100000)
	require.LessOrEqual(t, n, 999999)

	require.NoError(t, e.verification.Verify(ctx, phone, PurposeRegister, code))
	err = e.verification.Verify(ctx, phone, PurposeRegister, code)
	require.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestVerifyConsumesCodeOnMismatch(t *testing.T) {
	e := newTestEnv(t, true)
	ctx := context.Background()
	const phone = "13800000011"

	require.NoError(t, e.verification.Issue(ctx, phone, PurposeRegister))
	code := e.sender.code(PurposeRegister, phone)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	require.Equal(t, http.StatusBadRequest, statusOf(t, e.verification.Verify(ctx, phone, PurposeRegister, wrong)))
	require.Equal(t, http.StatusBadRequest, statusOf(t, e.verification.Verify(ctx, phone, PurposeRegister, code)))
}

func TestIssueIsThrottledPerPhoneAndPurpose(t *testing.T) {
	e := newTestEnv(t, true)
	ctx := context.Background()
	const phone = "13800000012"

	require.NoError(t, e.verification.Issue(ctx, phone, PurposeRegister))
	require.Equal(t, http.StatusTooManyRequests, statusOf(t, e.verification.Issue(ctx, phone, PurposeRegister)))
	require.NoError(t, e.verification.Issue(ctx, "13800000013", PurposeRegister))

	e.clock.Advance(time.Minute + time.Second)
	require.NoError(t, e.verification.Issue(ctx, phone, PurposeRegister))
}

func TestIssueChecksRegistrationState(t *testing.T) {
	e := newTestEnv(t, true)
	ctx := context.Background()
	u, _ := e.seedUser(t, "known")

	require.Equal(t, http.StatusConflict, statusOf(t, e.verification.Issue(ctx, *u.PhoneNumber, PurposeRegister)))
	require.Equal(t, http.StatusBadRequest, statusOf(t, e.verification.Issue(ctx, "13800000014", PurposeLogin)))
	require.NoError(t, e.verification.Issue(ctx, *u.PhoneNumber, PurposeLogin))

	require.Equal(t, http.StatusBadRequest, statusOf(t, e.verification.Issue(ctx, "12ab", PurposeRegister)))
	require.Equal(t, http.StatusBadRequest, statusOf(t, e.verification.Issue(ctx, "13800000015", CodePurpose(7))))
}

func TestVerificationDisabledWithoutStore(t *testing.T) {
	e := newTestEnv(t, false)
	require.False(t, e.verification.Enabled())
	err := e.verification.Issue(context.Background(), "13800000016", PurposeRegister)
	require.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
}
