package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/event"
	apperrors "github.com/openshelf/storefront/pkg/errors"
)

type recordedEvent struct {
	eventType string
	userID    string
}

type recordingPublisher struct {
	published []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, userID string, _ any) {
	p.published = append(p.published, recordedEvent{eventType: eventType, userID: userID})
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "user-1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func credFile(t *testing.T, cred persistedCredential) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credential.json")
	data, err := json.Marshal(cred)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestStore_RestoreValidCredential(t *testing.T) {
	path := credFile(t, persistedCredential{
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "user-1", Email: "ana@example.com"},
	})

	store := NewStore(path, newTestLogger())
	sess := store.Restore()

	assert.True(t, sess.Authenticated)
	assert.Equal(t, "user-1", sess.User.ID)
	assert.True(t, store.Authenticated())
	assert.NotEmpty(t, store.Token())
}

func TestStore_RestoreExpiredCredential(t *testing.T) {
	path := credFile(t, persistedCredential{
		Token: signedToken(t, time.Now().Add(-time.Hour)),
		User:  domain.User{ID: "user-1"},
	})

	store := NewStore(path, newTestLogger())
	sess := store.Restore()

	assert.False(t, sess.Authenticated)
	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
}

func TestStore_RestoreNoExpClaim(t *testing.T) {
	path := credFile(t, persistedCredential{
		Token: signedToken(t, time.Time{}),
		User:  domain.User{ID: "user-1"},
	})

	store := NewStore(path, newTestLogger())
	assert.True(t, store.Restore().Authenticated)
}

func TestStore_RestoreMissingOrMalformed(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "nope.json"), newTestLogger())
		assert.False(t, store.Restore().Authenticated)
	})

	t.Run("garbage json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credential.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		store := NewStore(path, newTestLogger())
		assert.False(t, store.Restore().Authenticated)
	})

	t.Run("token is not a jwt", func(t *testing.T) {
		path := credFile(t, persistedCredential{Token: "opaque-token", User: domain.User{ID: "u"}})
		store := NewStore(path, newTestLogger())
		assert.False(t, store.Restore().Authenticated)
	})
}

func TestStore_EstablishPersistsAndClearRemoves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credential.json")
	store := NewStore(path, newTestLogger())

	store.Establish(domain.AuthGrant{
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "user-2", Email: "bo@example.com"},
	})

	require.True(t, store.Authenticated())
	assert.Equal(t, "user-2", store.UserID())

	// A fresh store restores the same identity from disk.
	again := NewStore(path, newTestLogger())
	assert.True(t, again.Restore().Authenticated)

	store.Clear()
	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_InvalidateClearsSession(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	store.Establish(domain.AuthGrant{
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "user-3"},
	})

	store.Invalidate()

	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
	assert.Empty(t, store.UserID())
}

type stubAuthAPI struct {
	grant domain.AuthGrant
	err   error
	calls int
}

func (s *stubAuthAPI) Login(_ context.Context, _, _ string) (domain.AuthGrant, error) {
	s.calls++
	return s.grant, s.err
}

func (s *stubAuthAPI) Register(_ context.Context, _ domain.RegisterProfile) (domain.AuthGrant, error) {
	s.calls++
	return s.grant, s.err
}

func TestService_LoginEstablishesSession(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	api := &stubAuthAPI{grant: domain.AuthGrant{
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "user-4", Email: "cy@example.com"},
	}}
	svc := NewService(store, api, nil, newTestLogger())

	sess, err := svc.Login(context.Background(), "cy@example.com", "secret")

	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "user-4", sess.User.ID)
	assert.True(t, store.Authenticated())
}

func TestService_LoginValidatesInput(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	api := &stubAuthAPI{}
	svc := NewService(store, api, nil, newTestLogger())

	_, err := svc.Login(context.Background(), "  ", "secret")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, api.calls)
}

func TestService_LoginFailureLeavesSessionUntouched(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	api := &stubAuthAPI{err: apperrors.Remote(401, "invalid credentials")}
	svc := NewService(store, api, nil, newTestLogger())

	_, err := svc.Login(context.Background(), "cy@example.com", "wrong")

	require.Error(t, err)
	assert.False(t, store.Authenticated())
}

func TestService_RegisterSignsIn(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	api := &stubAuthAPI{grant: domain.AuthGrant{
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "user-5"},
	}}
	svc := NewService(store, api, nil, newTestLogger())

	sess, err := svc.Register(context.Background(), domain.RegisterProfile{
		Email:    "new@example.com",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
}

func TestService_LogoutIsLocalOnly(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	api := &stubAuthAPI{grant: domain.AuthGrant{
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "user-6"},
	}}
	svc := NewService(store, api, nil, newTestLogger())

	_, err := svc.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	callsAfterLogin := api.calls

	svc.Logout()

	assert.False(t, store.Authenticated())
	assert.Equal(t, callsAfterLogin, api.calls)
}

func TestService_PublishesSessionLifecycleEvents(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	api := &stubAuthAPI{grant: domain.AuthGrant{
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  domain.User{ID: "user-7"},
	}}
	events := &recordingPublisher{}
	svc := NewService(store, api, events, newTestLogger())

	_, err := svc.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	svc.Logout()

	require.Len(t, events.published, 2)
	assert.Equal(t, event.TypeSessionStarted, events.published[0].eventType)
	assert.Equal(t, "user-7", events.published[0].userID)
	assert.Equal(t, event.TypeSessionEnded, events.published[1].eventType)
	assert.Equal(t, "user-7", events.published[1].userID)
}

func TestService_LogoutAnonymousPublishesNothing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credential.json"), newTestLogger())
	events := &recordingPublisher{}
	svc := NewService(store, &stubAuthAPI{}, events, newTestLogger())

	svc.Logout()

	assert.Empty(t, events.published)
}
