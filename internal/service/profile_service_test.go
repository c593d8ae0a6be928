package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/storage"
	apperrors "github.com/portalworks/portal-auth/pkg/util/errorutil"
)

func TestReplacePhotoSwapsFiles(t *testing.T) {
	env := newAuthEnv(t)
	created := env.register(t, "alice", "alice@example.com")
	user := env.users.get(created.ID)
	store := newFakeStore()
	svc := NewProfileService(ProfileDependencies{
		UserRepo:   env.users,
		Store:      store,
		MaxBytes:   1 << 10,
		Dispatcher: env.dispatcher,
		Clock:      env.clock.Now,
	})
	ctx := context.Background()

	first, err := svc.ReplacePhoto(ctx, &user, "me.PNG", strings.NewReader("first"), domain.ClientInfo{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "users/"+user.ID+"/photo-"))
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.True(t, store.has(first))

	second, err := svc.ReplacePhoto(ctx, &user, "me.jpg", strings.NewReader("second"), domain.ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.False(t, store.has(first))
	assert.True(t, store.has(second))
	assert.Equal(t, second, env.users.get(user.ID).PhotoKey)
	assert.Contains(t, env.activity.actions(), domain.ActionPhotoUpdated)
}

func TestReplacePhotoRejections(t *testing.T) {
	env := newAuthEnv(t)
	created := env.register(t, "alice", "alice@example.com")
	user := env.users.get(created.ID)
	store := newFakeStore()
	svc := NewProfileService(ProfileDependencies{UserRepo: env.users, Store: store, MaxBytes: 4, Clock: env.clock.Now})
	ctx := context.Background()

	_, err := svc.ReplacePhoto(ctx, &user, "script.exe", strings.NewReader("x"), domain.ClientInfo{})
	requireCode(t, err, apperrors.CodeValidationFailed)

	store.putErr = storage.ErrTooLarge
	_, err = svc.ReplacePhoto(ctx, &user, "big.png", strings.NewReader("too large"), domain.ClientInfo{})
	requireCode(t, err, apperrors.CodeValidationFailed)
	store.putErr = nil

	env.users.failOn = "update_photo"
	_, err = svc.ReplacePhoto(ctx, &user, "ok.png", strings.NewReader("ok"), domain.ClientInfo{})
	requireCode(t, err, apperrors.CodeStoreUnavailable)
	store.mu.Lock()
	assert.Empty(t, store.objects)
	store.mu.Unlock()
	assert.Empty(t, user.PhotoKey)
}

func TestActivityReturnsOnlyOwnEntries(t *testing.T) {
	env := newAuthEnv(t)
	alice := env.register(t, "alice", "alice@example.com")
	env.register(t, "bob", "bob@example.com")
	env.login(t, "alice", false)
	svc := NewProfileService(ProfileDependencies{UserRepo: env.users, ActivityRepo: env.activity, Clock: env.clock.Now})

	entries, err := svc.Activity(context.Background(), alice.ID, 50)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		require.NotNil(t, e.UserID)
		assert.Equal(t, alice.ID, *e.UserID)
	}
	assert.Equal(t, domain.ActionLoginSucceeded, entries[len(entries)-1].Action)

	env.activity.failList = true
	_, err = svc.Activity(context.Background(), alice.ID, 50)
	requireCode(t, err, apperrors.CodeStoreUnavailable)
}
