package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
	"github.com/oksasatya/go-social-graph/pkg/mailer"
)

func newAuth(t *testing.T) (*AuthService, *memUsers, *memSessions, *memPublisher) {
	t.Helper()
	users := newMemUsers()
	sessions := newMemSessions()
	emails := &memPublisher{}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	notifier := &Notifier{Pub: emails, Enabled: true, CompanyName: "Acme"}
	return NewAuthService(users, sessions, jwt, notifier, helpers.NewNopLogger()), users, sessions, emails
}

func TestRegister_CreatesMember(t *testing.T) {
	svc, users, _, emails := newAuth(t)

	v, err := svc.Register(context.Background(), RegisterInput{Username: " alice ", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", v.Username)
	assert.Equal(t, string(entity.RoleMember), v.Role)
	assert.Empty(t, v.Followers)
	assert.NotNil(t, v.Followers)

	stored := users.get(v.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "secret1"))

	require.Len(t, emails.jobs, 1)
	job := emails.jobs[0].(mailer.EmailJob)
	assert.Equal(t, "alice@example.com", job.To)
}

func TestRegister_Conflicts(t *testing.T) {
	svc, _, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "alice@example.com", Password: "secret1"})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	svc, users, _, _ := newAuth(t)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "a", Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "username")
	assert.Contains(t, appErr.Details, "email")
	assert.Contains(t, appErr.Details, "password")
	assert.Zero(t, users.callCount("Create"))
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	svc, _, sessions, _ := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, login := range []string{"alice", "alice@example.com"} {
		res, err := svc.Login(ctx, login, "secret1")
		require.NoError(t, err, login)
		assert.Equal(t, reg.ID, res.User.ID)
		assert.NotEmpty(t, res.Tokens.AccessToken)
		assert.NotEmpty(t, res.Tokens.RefreshToken)
	}

	sess, err := sessions.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMember, sess.Role)
	assert.InDelta(t, (24 * time.Hour).Seconds(), sessions.ttl[reg.ID].Seconds(), 5)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.Equal(t, KindAuth, KindOf(err))

	_, err = svc.Login(ctx, "nobody", "secret1")
	assert.Equal(t, KindAuth, KindOf(err))
	assert.EqualError(t, err, errInvalidCredentials.Error(), "unknown user and wrong password look the same")
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	svc, _, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.VerifySession(ctx, first.Tokens.AccessToken)
	assert.Equal(t, KindAuth, KindOf(err))

	id, err := svc.VerifySession(ctx, second.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, second.User.ID, id.UserID)
}

func TestLogout_EndsSessionAndIsIdempotent(t *testing.T) {
	svc, _, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	svc.Logout(ctx, res.Tokens.AccessToken)
	svc.Logout(ctx, res.Tokens.AccessToken)
	svc.Logout(ctx, "")
	svc.Logout(ctx, "garbage")

	_, err = svc.VerifySession(ctx, res.Tokens.AccessToken)
	assert.Equal(t, KindAuth, KindOf(err))
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, _, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)

	_, err = svc.VerifySession(ctx, res.Tokens.AccessToken)
	assert.Equal(t, KindAuth, KindOf(err), "old session id is gone")
	_, err = svc.VerifySession(ctx, pair.AccessToken)
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.Equal(t, KindAuth, KindOf(err), "a refresh token is single use")

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.Equal(t, KindAuth, KindOf(err), "access tokens cannot refresh")
}

func TestVerifySession_DeletedUser(t *testing.T) {
	svc, users, sessions, _ := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, reg.ID))

	_, err = svc.VerifySession(ctx, res.Tokens.AccessToken)
	assert.Equal(t, KindAuth, KindOf(err))
	_, err = sessions.Get(ctx, reg.ID)
	assert.Error(t, err, "the orphaned session is dropped")
}

func TestVerifySession_RoleFromRecord(t *testing.T) {
	svc, users, _, _ := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	role := entity.RoleAdmin
	_, err = users.Patch(ctx, reg.ID, repo.UserPatch{Role: &role})
	require.NoError(t, err)

	id, err := svc.VerifySession(ctx, res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, id.Role)
}
