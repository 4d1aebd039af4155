package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sky24/web/internal/models"
	"sky24/web/internal/security"
)

// SessionRepository is the durable per-browser key/value storage. Every key
// lives under "<namespace>:<sid>:" so one browser never sees another's data.
type SessionRepository struct {
	client    redis.Cmdable
	namespace string
	ttl       time.Duration
	now       func() time.Time
}

func NewSessionRepository(client redis.Cmdable, namespace string, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		now:       time.Now,
	}
}

const (
	keyToken    = "token"
	keyUser     = "user"
	keyCookieOK = "cookie_ok"
	keyNotice   = "notice"
	keyListings = "listings"
	keyInFlight = "inflight"
)

func (r *SessionRepository) key(sid string, parts ...string) string {
	k := r.namespace + ":" + sid
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// Save stores the bearer token and the user together. The lifetime is
// capped at the token's own expiry when the token reveals one.
func (r *SessionRepository) Save(ctx context.Context, sid, token string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	ttl := r.ttlFor(token)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(sid, keyToken), token, ttl)
		pipe.Set(ctx, r.key(sid, keyUser), raw, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// expiredTokenTTL keeps a token that is already past its exp just long
// enough for the redirect that follows login; the next backend call drops it.
const expiredTokenTTL = time.Second

func (r *SessionRepository) ttlFor(token string) time.Duration {
	exp, ok := security.TokenExpiry(token)
	if !ok {
		return r.ttl
	}
	remaining := exp.Sub(r.now())
	switch {
	case remaining <= 0:
		return expiredTokenTTL
	case remaining > r.ttl:
		return r.ttl
	}
	return remaining
}

// Get returns the stored session. A record holding only one of token/user
// is inconsistent; it is wiped and reported as logged out.
func (r *SessionRepository) Get(ctx context.Context, sid string) (models.Session, error) {
	vals, err := r.client.MGet(ctx, r.key(sid, keyToken), r.key(sid, keyUser)).Result()
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	token, _ := vals[0].(string)
	rawUser, _ := vals[1].(string)
	if token == "" && rawUser == "" {
		return models.Session{}, nil
	}

	var user models.User
	if token == "" || rawUser == "" || json.Unmarshal([]byte(rawUser), &user) != nil {
		if err := r.Clear(ctx, sid); err != nil {
			return models.Session{}, err
		}
		return models.Session{}, nil
	}

	return models.Session{Token: token, User: &user}, nil
}

// Clear drops the token and user. Cookie consent survives logout.
func (r *SessionRepository) Clear(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, r.key(sid, keyToken), r.key(sid, keyUser)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) CookiesAccepted(ctx context.Context, sid string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(sid, keyCookieOK)).Result()
	if err != nil {
		return false, fmt.Errorf("cookie flag: %w", err)
	}
	return n > 0, nil
}

func (r *SessionRepository) AcceptCookies(ctx context.Context, sid string) error {
	return r.client.Set(ctx, r.key(sid, keyCookieOK), "1", 0).Err()
}

// SetNotice queues a message for the next rendered page.
func (r *SessionRepository) SetNotice(ctx context.Context, sid, msg string) error {
	return r.client.Set(ctx, r.key(sid, keyNotice), msg, 10*time.Minute).Err()
}

// PopNotice returns and removes the queued message.
func (r *SessionRepository) PopNotice(ctx context.Context, sid string) (string, error) {
	msg, err := r.client.GetDel(ctx, r.key(sid, keyNotice)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return msg, err
}

// AcquireInFlight marks action as running for this browser. ok is false when
// a previous submission of the same action has not finished. The key
// expires on its own so a crashed request cannot block the form forever.
func (r *SessionRepository) AcquireInFlight(ctx context.Context, sid, action string, ttl time.Duration) (release func(), ok bool, err error) {
	key := r.key(sid, keyInFlight, action)
	ok, err = r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", action, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func() {
		// detached from the request so a cancelled request still releases
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = r.client.Del(ctx, key).Err()
	}, true, nil
}
