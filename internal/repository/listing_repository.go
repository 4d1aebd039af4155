package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sky24/web/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

const defaultListingsTTL = 10 * time.Minute

// ListingRepository caches the last listing set fetched for a browser. The
// details, gallery and quick-filter views read from it; only the fetch flow
// writes it. Entries live for ttl, not for the session lifetime; a miss is
// refetched.
type ListingRepository struct {
	sessions *SessionRepository
	ttl      time.Duration
}

func NewListingRepository(sessions *SessionRepository, ttl time.Duration) *ListingRepository {
	if ttl <= 0 {
		ttl = defaultListingsTTL
	}
	return &ListingRepository{sessions: sessions, ttl: ttl}
}

func (r *ListingRepository) Replace(ctx context.Context, sid string, listings []models.Listing) error {
	if listings == nil {
		listings = []models.Listing{}
	}
	raw, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode listings: %w", err)
	}
	s := r.sessions
	return s.client.Set(ctx, s.key(sid, keyListings), raw, r.ttl).Err()
}

// List returns the cached set; found is false when nothing was cached yet.
func (r *ListingRepository) List(ctx context.Context, sid string) (listings []models.Listing, found bool, err error) {
	s := r.sessions
	raw, err := s.client.Get(ctx, s.key(sid, keyListings)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load listings: %w", err)
	}
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, false, fmt.Errorf("decode listings: %w", err)
	}
	return listings, true, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, sid, id string) (models.Listing, error) {
	listings, _, err := r.List(ctx, sid)
	if err != nil {
		return models.Listing{}, err
	}
	for _, l := range listings {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Listing{}, ErrListingNotFound
}
