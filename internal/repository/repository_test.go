package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sky24/web/internal/models"
)

func newTestRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client, "sky24", 24*time.Hour), mr
}

func TestSessionRepository_SaveGetClear(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	user := models.User{ID: "u1", Username: "asha", Role: models.UserRoleBroker, BrokerID: "B1"}
	require.NoError(t, repo.Save(ctx, "sid1", "abc", user))

	assert.True(t, mr.Exists("sky24:sid1:token"))
	assert.True(t, mr.Exists("sky24:sid1:user"))

	sess, err := repo.Get(ctx, "sid1")
	require.NoError(t, err)
	require.True(t, sess.LoggedIn())
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, "B1", sess.User.BrokerID)

	other, err := repo.Get(ctx, "sid2")
	require.NoError(t, err)
	assert.False(t, other.LoggedIn())

	require.NoError(t, repo.Clear(ctx, "sid1"))
	assert.False(t, mr.Exists("sky24:sid1:token"))
	assert.False(t, mr.Exists("sky24:sid1:user"))
}

func TestSessionRepository_InconsistentRecordIsWiped(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("sky24:sid1:token", "abc"))

	sess, err := repo.Get(ctx, "sid1")
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn())
	assert.False(t, mr.Exists("sky24:sid1:token"))

	require.NoError(t, mr.Set("sky24:sid2:token", "abc"))
	require.NoError(t, mr.Set("sky24:sid2:user", "{not json"))
	sess, err = repo.Get(ctx, "sid2")
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn())
	assert.False(t, mr.Exists("sky24:sid2:user"))
}

func TestSessionRepository_TTLFollowsTokenExpiry(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "sid1", token, models.User{ID: "u1"}))
	ttl := mr.TTL("sky24:sid1:token")
	assert.LessOrEqual(t, ttl, time.Hour)
	assert.Greater(t, ttl, 50*time.Minute)

	require.NoError(t, repo.Save(ctx, "sid2", "opaque", models.User{ID: "u2"}))
	assert.Equal(t, 24*time.Hour, mr.TTL("sky24:sid2:user"))
}

func TestSessionRepository_ExpiredTokenNotKeptForSessionTTL(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "sid1", token, models.User{ID: "u1"}))
	assert.Equal(t, expiredTokenTTL, mr.TTL("sky24:sid1:token"))
	assert.Equal(t, expiredTokenTTL, mr.TTL("sky24:sid1:user"))

	mr.FastForward(2 * expiredTokenTTL)
	sess, err := repo.Get(ctx, "sid1")
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn())
}

func TestSessionRepository_CookieConsentSurvivesLogout(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ok, err := repo.CookiesAccepted(ctx, "sid1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.AcceptCookies(ctx, "sid1"))
	require.NoError(t, repo.Clear(ctx, "sid1"))

	ok, err = repo.CookiesAccepted(ctx, "sid1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionRepository_Notice(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetNotice(ctx, "sid1", "Logged in"))

	msg, err := repo.PopNotice(ctx, "sid1")
	require.NoError(t, err)
	assert.Equal(t, "Logged in", msg)

	msg, err = repo.PopNotice(ctx, "sid1")
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestSessionRepository_InFlight(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	release, ok, err := repo.AcquireInFlight(ctx, "sid1", "login", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = repo.AcquireInFlight(ctx, "sid1", "login", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.AcquireInFlight(ctx, "sid1", "register", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	release()
	assert.False(t, mr.Exists("sky24:sid1:inflight:login"))

	_, ok, err = repo.AcquireInFlight(ctx, "sid1", "login", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListingRepository(t *testing.T) {
	sessions, mr := newTestRepo(t)
	repo := NewListingRepository(sessions, 5*time.Minute)
	ctx := context.Background()

	_, found, err := repo.List(ctx, "sid1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Replace(ctx, "sid1", []models.Listing{{ID: "L1", Title: "Flat"}, {ID: "L9"}}))

	got, found, err := repo.List(ctx, "sid1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got, 2)
	assert.Equal(t, 5*time.Minute, mr.TTL("sky24:sid1:listings"), "cache does not live as long as the session")

	l, err := repo.GetByID(ctx, "sid1", "L1")
	require.NoError(t, err)
	assert.Equal(t, "Flat", l.Title)

	_, err = repo.GetByID(ctx, "sid1", "nope")
	assert.ErrorIs(t, err, ErrListingNotFound)

	require.NoError(t, repo.Replace(ctx, "sid1", nil))
	got, found, err = repo.List(ctx, "sid1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestListingRepository_DefaultTTL(t *testing.T) {
	sessions, mr := newTestRepo(t)
	repo := NewListingRepository(sessions, 0)

	require.NoError(t, repo.Replace(context.Background(), "sid1", []models.Listing{{ID: "L1"}}))
	assert.Equal(t, defaultListingsTTL, mr.TTL("sky24:sid1:listings"))
}
