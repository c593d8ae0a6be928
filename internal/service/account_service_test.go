package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/config"
	"github.com/portalworks/portal-auth/internal/domain"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

func newAccountEnv(t *testing.T, mutate ...func(*config.AuthConfig)) (*authEnv, *AccountService, *auth.Principal) {
	t.Helper()
	env := newAuthEnv(t, mutate...)
	admin := env.register(t, "root", "root@example.com")
	require.NoError(t, env.users.UpdateStatus(context.Background(), admin.ID, domain.UserStatusApproved))
	adminUser := env.users.get(admin.ID)
	adminUser.Role = domain.RoleAdmin

	svc := NewAccountService(AccountDependencies{
		UserRepo:    env.users,
		SessionRepo: env.sessions,
		Dispatcher:  env.dispatcher,
		Clock:       env.clock.Now,
	})
	return env, svc, &auth.Principal{User: &adminUser}
}

func TestSetStatusApprovesPendingAccount(t *testing.T) {
	env, svc, admin := newAccountEnv(t)
	pending := env.register(t, "newbie", "newbie@example.com")
	require.NoError(t, env.users.UpdateStatus(context.Background(), pending.ID, domain.UserStatusPending))

	list, err := svc.ListByStatus(context.Background(), admin, domain.UserStatusPending, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	updated, err := svc.SetStatus(context.Background(), admin, pending.ID, domain.UserStatusApproved, domain.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusApproved, updated.Status)

	env.login(t, "newbie", false)

	require.NotEmpty(t, env.activity.entries)
	last := env.activity.entries[len(env.activity.entries)-1]
	assert.Equal(t, domain.ActionLoginSucceeded, last.Action)
	var statusEntry *domain.ActivityLogEntry
	for i := range env.activity.entries {
		if env.activity.entries[i].Action == domain.ActionStatusChanged {
			statusEntry = &env.activity.entries[i]
		}
	}
	require.NotNil(t, statusEntry)
	assert.Equal(t, admin.User.ID, *statusEntry.UserID)
	assert.Equal(t, pending.ID, statusEntry.RecordID)
	assert.Equal(t, domain.UserStatusPending, statusEntry.OldValue["status"])
}

func TestSuspendRevokesSessions(t *testing.T) {
	env, svc, admin := newAccountEnv(t)
	member := env.register(t, "member", "member@example.com")
	res := env.login(t, "member", true)

	_, err := svc.SetStatus(context.Background(), admin, member.ID, domain.UserStatusSuspended, domain.ClientInfo{})
	require.NoError(t, err)

	_, err = env.svc.ValidateSession(context.Background(), res.Token)
	requireCode(t, err, apperrors.CodeUnauthenticated)
}

func TestSetStatusGuards(t *testing.T) {
	env, svc, admin := newAccountEnv(t)
	member := env.register(t, "member", "member@example.com")
	memberUser := env.users.get(member.ID)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, &auth.Principal{User: &memberUser}, member.ID, domain.UserStatusActive, domain.ClientInfo{})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = svc.SetStatus(ctx, admin, admin.User.ID, domain.UserStatusSuspended, domain.ClientInfo{})
	requireCode(t, err, "CONFLICT")

	_, err = svc.SetStatus(ctx, admin, "missing", domain.UserStatusActive, domain.ClientInfo{})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = svc.SetStatus(ctx, admin, member.ID, domain.UserStatus("frozen"), domain.ClientInfo{})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = svc.ListByStatus(ctx, nil, domain.UserStatusPending, 10, 0)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestSetStatusSameValueIsNoop(t *testing.T) {
	env, svc, admin := newAccountEnv(t)
	member := env.register(t, "member", "member@example.com")
	before := len(env.activity.actions())

	user, err := svc.SetStatus(context.Background(), admin, member.ID, domain.UserStatusActive, domain.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.Len(t, env.activity.actions(), before)
}

func TestPendingAccountLogsInAfterApproval(t *testing.T) {
	env, svc, admin := newAccountEnv(t, func(c *config.AuthConfig) { c.RequireApproval = true })
	ctx := context.Background()

	alice, err := env.svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusPending, alice.Status)

	_, err = env.svc.Login(ctx, LoginInput{Identity: "alice", Password: "Str0ng!Pass"})
	requireCode(t, err, apperrors.CodeInvalidCredentials)

	_, err = svc.SetStatus(ctx, admin, alice.ID, domain.UserStatusApproved, domain.ClientInfo{})
	require.NoError(t, err)

	res, err := env.svc.Login(ctx, LoginInput{Identity: "alice@x.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, res.User.Role)
}
