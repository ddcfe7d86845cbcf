package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// PendingDraft is an extracted draft waiting for the user to accept or discard it
type PendingDraft struct {
	ID        string       `json:"id"`
	Draft     models.Draft `json:"draft"`
	Image     *models.Blob `json:"-"`
	CreatedBy string       `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
}

// DraftStore holds pending drafts in memory. Drafts are never persisted.
type DraftStore struct {
	drafts map[string]*PendingDraft
	mu     sync.RWMutex
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[string]*PendingDraft),
	}
}

// Put stores a draft under a fresh id and returns it
func (s *DraftStore) Put(draft models.Draft, image *models.Blob, createdBy string) *PendingDraft {
	p := &PendingDraft{
		ID:        uuid.NewString(),
		Draft:     draft,
		Image:     image,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[p.ID] = p
	return p
}

func (s *DraftStore) Get(id string) (*PendingDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.drafts[id]
	return p, exists
}

// Take removes and returns a draft, so it can be accepted at most once
func (s *DraftStore) Take(id string) (*PendingDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.drafts[id]
	if exists {
		delete(s.drafts, id)
	}
	return p, exists
}

// Restore puts back a draft whose acceptance failed
func (s *DraftStore) Restore(p *PendingDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[p.ID] = p
}

func (s *DraftStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.drafts[id]
	delete(s.drafts, id)
	return exists
}

func (s *DraftStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
