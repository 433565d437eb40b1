package store

import "context"

// Stats summarises site activity for the landing page.
type Stats struct {
	ActiveListings int `json:"activeListings"`
	StudyNotes     int `json:"studyNotes"`
	ActiveStudents int `json:"activeStudents"`
}

// GetStats counts unsold listings, uploaded notes and registered accounts.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	listings, err := s.CountActiveItems(ctx)
	if err != nil {
		return Stats{}, err
	}
	notes, err := s.CountNotes(ctx)
	if err != nil {
		return Stats{}, err
	}
	students, err := s.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{ActiveListings: listings, StudyNotes: notes, ActiveStudents: students}, nil
}
