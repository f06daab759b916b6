package db

import (
	"context"
	"encoding/json"
	"log"

	"matserver/models"
)

// normalizeUser gives every missing nested collection an empty value and
// reports whether anything changed.
func normalizeUser(u *models.User) bool {
	changed := false
	if u.Tenants == nil {
		u.Tenants = []models.Tenant{}
		changed = true
	}
	if u.ClientCredentials == nil {
		u.ClientCredentials = []models.ClientCredential{}
		changed = true
	}
	if u.FeedbackEntries == nil {
		u.FeedbackEntries = []models.FeedbackEntry{}
		changed = true
	}
	if u.OnPremCredentials == nil {
		u.OnPremCredentials = []models.OnPremCredential{}
		changed = true
	}
	if u.Assessments == nil {
		u.Assessments = []models.Assessment{}
		changed = true
	}
	return changed
}

func normalizeDocument(doc *models.Database) bool {
	changed := false
	if doc.Users == nil {
		doc.Users = []models.User{}
		changed = true
	}
	if doc.Feedback == nil {
		doc.Feedback = []json.RawMessage{}
		changed = true
	}
	for i := range doc.Users {
		if normalizeUser(&doc.Users[i]) {
			changed = true
		}
	}
	return changed
}

// maxID returns the largest id anywhere in the document.
func maxID(doc *models.Database) int64 {
	var m int64
	bump := func(id int64) {
		if id > m {
			m = id
		}
	}
	for _, u := range doc.Users {
		bump(u.ID)
		for _, t := range u.Tenants {
			bump(t.ID)
		}
		for _, c := range u.ClientCredentials {
			bump(c.ID)
		}
		for _, f := range u.FeedbackEntries {
			bump(f.ID)
		}
		for _, c := range u.OnPremCredentials {
			bump(c.ID)
		}
		for _, a := range u.Assessments {
			bump(a.ID)
		}
	}
	return m
}

// Migrate runs the startup normalization: every user gets all nested
// collections, and the document is saved once if anything had to be added.
// It reports whether a save happened.
func (s *Store) Migrate(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	s.ids.Observe(maxID(doc))

	if !normalizeDocument(doc) {
		log.Printf("DEBUG: User data already up to date (%d users).", len(doc.Users))
		return false, nil
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return false, err
	}
	log.Printf("INFO: User data migration completed.")
	return true, nil
}
