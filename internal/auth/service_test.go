package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashng7/zero-grid/internal/shared"
)

func registerOperative(t *testing.T, svc *Service) *Result {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{Email: "Op@ZeroGrid.io", Password: "hunter22", Name: "Operative"})
	require.NoError(t, err)
	return res
}

func TestRegisterHashesPasswordAndIssuesTokens(t *testing.T) {
	svc, store, notifier := newTestService()

	res := registerOperative(t, svc)

	assert.Equal(t, "op@zerogrid.io", res.User.Email)
	stored := store.users[res.User.ID]
	assert.NotEqual(t, "hunter22", stored.Password)
	assert.True(t, svc.hasher.Verify("hunter22", stored.Password))

	payload, err := svc.Issuer().VerifyAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, payload.UserID)
	_, err = svc.Issuer().VerifyRefresh(res.Tokens.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, notice{kind: "welcome", to: "op@zerogrid.io", name: "Operative"}, notifier.last())
}

func TestRegisterDuplicateEmailAnyCasing(t *testing.T) {
	svc, _, _ := newTestService()
	registerOperative(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "OP@zerogrid.IO", Password: "another1", Name: "Clone"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
	assert.Equal(t, "User with this email already exists", err.Error())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService()
	registerOperative(t, svc)

	_, wrongPassword := svc.Login(context.Background(), LoginInput{Email: "op@zerogrid.io", Password: "nope"})
	_, unknownEmail := svc.Login(context.Background(), LoginInput{Email: "ghost@zerogrid.io", Password: "hunter22"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.True(t, errors.Is(wrongPassword, shared.ErrUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, "Invalid credentials", unknownEmail.Error())
}

func TestLoginSucceedsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService()
	registered := registerOperative(t, svc)

	res, err := svc.Login(context.Background(), LoginInput{Email: "OP@ZEROGRID.IO", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Tokens.AccessToken)
}

func TestCurrentUserMissing(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CurrentUser(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))
	assert.Equal(t, "User not found", err.Error())
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _, _ := newTestService()
	registered := registerOperative(t, svc)

	res, err := svc.Refresh(context.Background(), registered.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, res.User.ID)

	_, err = svc.Refresh(context.Background(), registered.Tokens.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	svc, store, notifier := newTestService()

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@zerogrid.io"))
	assert.Empty(t, store.tokens)
	assert.Empty(t, notifier.sent)
}

func TestForgotPasswordKeepsOnlyNewestToken(t *testing.T) {
	svc, store, notifier := newTestService()
	registered := registerOperative(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), "op@zerogrid.io"))
	first := notifier.last().token
	require.NoError(t, svc.ForgotPassword(context.Background(), "OP@zerogrid.io"))
	second := notifier.last().token

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
	assert.Len(t, store.tokensFor(registered.User.ID), 1)

	valid, err := svc.VerifyResetToken(context.Background(), first)
	require.NoError(t, err)
	assert.False(t, valid)
	valid, err = svc.VerifyResetToken(context.Background(), second)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "Operative", notifier.last().name)
}

func TestResetPasswordFlow(t *testing.T) {
	svc, store, notifier := newTestService()
	registered := registerOperative(t, svc)
	require.NoError(t, svc.ForgotPassword(context.Background(), "op@zerogrid.io"))
	token := notifier.last().token

	require.NoError(t, svc.ResetPassword(context.Background(), token, "n3wpass"))

	assert.True(t, svc.hasher.Verify("n3wpass", store.users[registered.User.ID].Password))
	assert.Empty(t, store.tokensFor(registered.User.ID))
	assert.Equal(t, "changed", notifier.last().kind)

	err := svc.ResetPassword(context.Background(), token, "again1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, "Invalid or expired reset token", err.Error())

	_, err = svc.Login(context.Background(), LoginInput{Email: "op@zerogrid.io", Password: "n3wpass"})
	require.NoError(t, err)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	svc, store, _ := newTestService()
	registered := registerOperative(t, svc)
	_, err := memoryTokens{store}.Create(context.Background(), registered.User.ID, "stale", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), "stale", "n3wpass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	n, err := svc.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestResetPasswordTransactionFailureLeavesTokenUsable(t *testing.T) {
	svc, store, notifier := newTestService()
	registerOperative(t, svc)
	require.NoError(t, svc.ForgotPassword(context.Background(), "op@zerogrid.io"))
	token := notifier.last().token
	store.txErr = errors.New("serialization failure")

	err := svc.ResetPassword(context.Background(), token, "n3wpass")
	require.Error(t, err)

	valid, err := svc.VerifyResetToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "reset", notifier.last().kind)
}

func TestResetPasswordRejectsTokenConsumedConcurrently(t *testing.T) {
	svc, store, notifier := newTestService()
	registered := registerOperative(t, svc)
	require.NoError(t, svc.ForgotPassword(context.Background(), "op@zerogrid.io"))
	token := notifier.last().token
	original := store.users[registered.User.ID].Password

	store.beforeTx = func() {
		for _, rt := range store.tokensFor(registered.User.ID) {
			require.NoError(t, memoryTokens{store}.MarkAsUsed(context.Background(), rt.ID))
		}
	}

	err := svc.ResetPassword(context.Background(), token, "n3wpass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, "Invalid or expired reset token", err.Error())

	assert.Equal(t, original, store.users[registered.User.ID].Password)
	assert.Equal(t, "reset", notifier.last().kind)
}

func TestValidateRegister(t *testing.T) {
	cases := []struct {
		in   RegisterInput
		want string
	}{
		{RegisterInput{}, "Email is required"},
		{RegisterInput{Email: "bad"}, "Invalid email format"},
		{RegisterInput{Email: "a@b.io"}, "Password is required"},
		{RegisterInput{Email: "a@b.io", Password: "12345"}, "Password must be at least 6 characters"},
		{RegisterInput{Email: "a@b.io", Password: "123456"}, "Name is required"},
		{RegisterInput{Email: "a@b.io", Password: "123456", Name: "Z"}, "Name must be at least 2 characters"},
	}
	for _, tc := range cases {
		err := ValidateRegister(tc.in)
		require.Error(t, err)
		assert.Equal(t, tc.want, err.Error())
	}
	assert.NoError(t, ValidateRegister(RegisterInput{Email: "a@b.io", Password: "123456", Name: "Zed"}))
}

func TestValidateResetPassword(t *testing.T) {
	cases := []struct {
		in   ResetPasswordInput
		want string
	}{
		{ResetPasswordInput{}, "Reset token is required"},
		{ResetPasswordInput{Token: "t"}, "Password is required"},
		{ResetPasswordInput{Token: "t", Password: "123"}, "Password must be at least 6 characters"},
		{ResetPasswordInput{Token: "t", Password: "123456", ConfirmPassword: "654321"}, "Passwords do not match"},
	}
	for _, tc := range cases {
		err := ValidateResetPassword(tc.in)
		require.Error(t, err)
		assert.Equal(t, tc.want, err.Error())
	}
	assert.NoError(t, ValidateResetPassword(ResetPasswordInput{Token: "t", Password: "123456", ConfirmPassword: "123456"}))
}

func TestValidateLoginAndForgot(t *testing.T) {
	assert.EqualError(t, ValidateLogin(LoginInput{}), "Email is required")
	assert.EqualError(t, ValidateLogin(LoginInput{Email: "x"}), "Password is required")
	assert.NoError(t, ValidateLogin(LoginInput{Email: "x", Password: "y"}))
	assert.EqualError(t, ValidateForgotPassword(ForgotPasswordInput{Email: "x"}), "Invalid email format")
}
