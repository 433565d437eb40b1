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

const noteKeyPrefix = "note:"

// NoteFilter narrows ListNotes; empty fields match everything.
type NoteFilter struct {
	Subject    string
	Search     string
	UploaderID string
}

// CreateNote persists an uploaded study note, assigning id and creation time.
func (s *Store) CreateNote(_ context.Context, n market.Note) (market.Note, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if err := s.put(noteKeyPrefix+n.ID, n); err != nil {
		return market.Note{}, err
	}
	return n, nil
}

// GetNote looks a note up by id.
func (s *Store) GetNote(_ context.Context, id string) (market.Note, error) {
	var n market.Note
	if err := s.get(noteKeyPrefix+id, &n); err != nil {
		return market.Note{}, err
	}
	return n, nil
}

// UpdateNote loads the note, applies mutate, and writes it back.
func (s *Store) UpdateNote(ctx context.Context, id string, mutate func(*market.Note)) (market.Note, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return market.Note{}, err
	}
	mutate(&n)
	if err := s.put(noteKeyPrefix+n.ID, n); err != nil {
		return market.Note{}, err
	}
	return n, nil
}

// ListNotes returns notes matching the filter, newest first.
func (s *Store) ListNotes(_ context.Context, f NoteFilter) ([]market.Note, error) {
	var all []market.Note
	err := s.scanPrefix(noteKeyPrefix, func(val []byte) error {
		var n market.Note
		if err := json.Unmarshal(val, &n); err != nil {
			return err
		}
		all = append(all, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(f.Search)
	filtered := lo.Filter(all, func(n market.Note, _ int) bool {
		if f.Subject != "" && n.Subject != f.Subject {
			return false
		}
		if f.UploaderID != "" && n.UploaderID != f.UploaderID {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), search) &&
			!strings.Contains(strings.ToLower(n.Description), search) {
			return false
		}
		return true
	})

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// CountNotes reports the number of uploaded notes.
func (s *Store) CountNotes(_ context.Context) (int, error) {
	return s.countPrefix(noteKeyPrefix)
}
