package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/collegebuddy/backend/internal/model/market"
)

const ratingKeyPrefix = "rating:"

// RatingFilter narrows ListRatings; empty fields match everything.
type RatingFilter struct {
	RatedUserID string
	ItemID      string
	NoteID      string
}

// CreateRating persists a rating, assigning id and creation time.
func (s *Store) CreateRating(_ context.Context, r market.Rating) (market.Rating, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	if err := s.put(ratingKeyPrefix+r.ID, r); err != nil {
		return market.Rating{}, err
	}
	return r, nil
}

// ListRatings returns ratings matching the filter.
func (s *Store) ListRatings(_ context.Context, f RatingFilter) ([]market.Rating, error) {
	var all []market.Rating
	err := s.scanPrefix(ratingKeyPrefix, func(val []byte) error {
		var r market.Rating
		if err := json.Unmarshal(val, &r); err != nil {
			return err
		}
		all = append(all, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Filter(all, func(r market.Rating, _ int) bool {
		if f.RatedUserID != "" && r.RatedUserID != f.RatedUserID {
			return false
		}
		if f.ItemID != "" && r.ItemID != f.ItemID {
			return false
		}
		if f.NoteID != "" && r.NoteID != f.NoteID {
			return false
		}
		return true
	}), nil
}
