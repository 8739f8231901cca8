package journal

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for journal storage. Every method is
// scoped to a single user.
type Repository interface {
	CreateSymptom(ctx context.Context, s *Symptom) error
	ListSymptoms(ctx context.Context, userID string) ([]*Symptom, error)
	CreatePhoto(ctx context.Context, p *Photo) error
	GetPhoto(ctx context.Context, userID, id string) (*Photo, error)
	ListPhotos(ctx context.Context, userID string) ([]*Photo, error)
	CreateTip(ctx context.Context, t *Tip) error
	History(ctx context.Context, userID string, limit int) (*History, error)
	DeleteUser(ctx context.Context, userID string) error
}

// InMemoryRepository is an in-memory implementation of Repository
type InMemoryRepository struct {
	mu       sync.RWMutex
	symptoms []*Symptom
	photos   []*Photo
	tips     []*Tip
	now      func() time.Time
}

// NewInMemoryRepository creates a new in-memory journal repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *InMemoryRepository) CreateSymptom(ctx context.Context, s *Symptom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.New().String()
	s.CreatedAt = r.now()
	stored := *s
	r.symptoms = append(r.symptoms, &stored)
	return nil
}

// ListSymptoms returns the user's symptoms oldest first.
func (r *InMemoryRepository) ListSymptoms(ctx context.Context, userID string) ([]*Symptom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Symptom, 0)
	for _, s := range r.symptoms {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) CreatePhoto(ctx context.Context, p *Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = r.now()
	stored := *p
	r.photos = append(r.photos, &stored)
	return nil
}

func (r *InMemoryRepository) GetPhoto(ctx context.Context, userID, id string) (*Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.photos {
		if p.ID == id && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// ListPhotos returns the user's photos newest first.
func (r *InMemoryRepository) ListPhotos(ctx context.Context, userID string) ([]*Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.photosFor(userID, 0), nil
}

func (r *InMemoryRepository) CreateTip(ctx context.Context, t *Tip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.New().String()
	t.CreatedAt = r.now()
	stored := *t
	r.tips = append(r.tips, &stored)
	return nil
}

// History returns up to limit entries of each kind, newest first.
func (r *InMemoryRepository) History(ctx context.Context, userID string, limit int) (*History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := &History{
		Symptoms: make([]*Symptom, 0),
		Photos:   r.photosFor(userID, limit),
		Tips:     make([]*Tip, 0),
	}
	for i := len(r.symptoms) - 1; i >= 0; i-- {
		if s := r.symptoms[i]; s.UserID == userID && (limit <= 0 || len(h.Symptoms) < limit) {
			copied := *s
			h.Symptoms = append(h.Symptoms, &copied)
		}
	}
	for i := len(r.tips) - 1; i >= 0; i-- {
		if t := r.tips[i]; t.UserID == userID && (limit <= 0 || len(h.Tips) < limit) {
			copied := *t
			h.Tips = append(h.Tips, &copied)
		}
	}
	return h, nil
}

func (r *InMemoryRepository) photosFor(userID string, limit int) []*Photo {
	out := make([]*Photo, 0)
	for i := len(r.photos) - 1; i >= 0; i-- {
		if p := r.photos[i]; p.UserID == userID && (limit <= 0 || len(out) < limit) {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out
}

// DeleteUser drops every entry owned by the user.
func (r *InMemoryRepository) DeleteUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symptoms = slices.DeleteFunc(r.symptoms, func(s *Symptom) bool { return s.UserID == userID })
	r.photos = slices.DeleteFunc(r.photos, func(p *Photo) bool { return p.UserID == userID })
	r.tips = slices.DeleteFunc(r.tips, func(t *Tip) bool { return t.UserID == userID })
	return nil
}
