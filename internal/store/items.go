package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/collegebuddy/backend/internal/model/market"
)

const itemKeyPrefix = "item:"

// ItemFilter narrows ListItems; empty fields match everything.
type ItemFilter struct {
	Category string
	Search   string
	SellerID string
}

// CreateItem persists a new listing, assigning id and creation time.
func (s *Store) CreateItem(_ context.Context, it market.Item) (market.Item, error) {
	it.ID = uuid.NewString()
	it.CreatedAt = time.Now().UTC()
	if it.Images == nil {
		it.Images = []string{}
	}
	if err := s.put(itemKeyPrefix+it.ID, it); err != nil {
		return market.Item{}, err
	}
	return it, nil
}

// GetItem looks a listing up by id.
func (s *Store) GetItem(_ context.Context, id string) (market.Item, error) {
	var it market.Item
	if err := s.get(itemKeyPrefix+id, &it); err != nil {
		return market.Item{}, err
	}
	return it, nil
}

// UpdateItem loads the listing, applies mutate, and writes it back.
func (s *Store) UpdateItem(ctx context.Context, id string, mutate func(*market.Item)) (market.Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return market.Item{}, err
	}
	mutate(&it)
	if err := s.put(itemKeyPrefix+it.ID, it); err != nil {
		return market.Item{}, err
	}
	return it, nil
}

// ListItems returns listings matching the filter, newest first.
func (s *Store) ListItems(_ context.Context, f ItemFilter) ([]market.Item, error) {
	var all []market.Item
	err := s.scanPrefix(itemKeyPrefix, func(val []byte) error {
		var it market.Item
		if err := json.Unmarshal(val, &it); err != nil {
			return err
		}
		all = append(all, it)
		return nil
	})
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(f.Search)
	filtered := lo.Filter(all, func(it market.Item, _ int) bool {
		if f.Category != "" && it.Category != f.Category {
			return false
		}
		if f.SellerID != "" && it.SellerID != f.SellerID {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Title), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			return false
		}
		return true
	})

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// CountActiveItems reports listings still marked unsold.
func (s *Store) CountActiveItems(ctx context.Context) (int, error) {
	items, err := s.ListItems(ctx, ItemFilter{})
	if err != nil {
		return 0, err
	}
	return lo.CountBy(items, func(it market.Item) bool { return !it.Sold }), nil
}
