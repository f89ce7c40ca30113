package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", time.Hour, false), mr
}

func roundTrip(t *testing.T, sm *SessionManager, sess *Session) *Session {
	t.Helper()
	ctx := context.Background()
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	return loaded
}

func TestSessionPersistsValuesAndFlashes(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sess.Set("key", "value")
	sess.AddFlash(FlashMessage{Kind: FlashSuccess, Message: "Catégorie créée"})

	loaded := roundTrip(t, sm, sess)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "value", loaded.Get("key"))

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Catégorie créée", flash.Message)
	assert.Nil(t, loaded.PopFlash())

	// The flash was consumed by the render, it does not come back.
	again := roundTrip(t, sm, loaded)
	assert.Empty(t, again.PopFlashes())
}

func TestSessionJSONValues(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	type draft struct {
		ClientID int64 `json:"client_id"`
	}
	require.NoError(t, sess.SetJSON("draft", draft{ClientID: 12}))

	loaded := roundTrip(t, sm, sess)
	var got draft
	ok, err := loaded.GetJSON("draft", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(12), got.ClientID)

	loaded.Delete("draft")
	ok, err = loaded.GetJSON("draft", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "forged"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "forged", sess.ID)
}

func TestDestroyRemovesSession(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set("k", "v")
	require.NoError(t, sm.Commit(context.Background(), httptest.NewRecorder(), sess))
	assert.True(t, mr.Exists("atelier:session:"+sess.ID))

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, sess))
	assert.False(t, mr.Exists("atelier:session:"+sess.ID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestFlashHelperUsesContextSession(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	ctx := ContextWithSession(context.Background(), sess)
	Flash(ctx, FlashError, "Échec")
	Flash(context.Background(), FlashError, "ignored without session")

	flashes := sess.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, FlashError, flashes[0].Kind)
}

func TestCSRFToken(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	csrf := NewCSRFManager("csrf-secret")

	token, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, csrf.VerifyToken(sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, csrf.VerifyToken(sess, token+"x"), ErrCSRFTokenMismatch)

	other := NewCSRFManager("other-secret")
	assert.ErrorIs(t, other.VerifyToken(sess, token), ErrCSRFTokenMismatch)

	_, err = csrf.EnsureToken(nil)
	assert.Error(t, err)
}
