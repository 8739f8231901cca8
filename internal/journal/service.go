package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/aika-health/internal/accounts"
	"github.com/wolfman30/aika-health/internal/advice"
	"github.com/wolfman30/aika-health/internal/observability/metrics"
	"github.com/wolfman30/aika-health/internal/uploads"
	"github.com/wolfman30/aika-health/pkg/logging"
)

var tracer = otel.Tracer("aika.internal.journal")

// Entry kinds recorded on aika_journal_entries_total.
const (
	kindSymptom = "symptom"
	kindPhoto   = "photo"
	kindTip     = "tip"
)

// Advisor produces disclaimer-bearing advice for a prompt. It never fails.
type Advisor interface {
	GetAdvice(ctx context.Context, prompt string) string
}

// Service coordinates journal storage, photo uploads and advice generation.
type Service struct {
	repo    Repository
	advisor Advisor
	store   uploads.Store
	metrics *metrics.AdviceMetrics
	logger  *logging.Logger
}

// NewService wires a journal service. metrics and logger may be nil.
func NewService(repo Repository, advisor Advisor, store uploads.Store, m *metrics.AdviceMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:    repo,
		advisor: advisor,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// DashboardAdvice returns a personalized tip for the profile. Nothing is stored.
func (s *Service) DashboardAdvice(ctx context.Context, profile accounts.Profile) string {
	ctx, span := tracer.Start(ctx, "journal.dashboard_advice")
	defer span.End()
	return s.advisor.GetAdvice(ctx, advice.ProfileAdvicePrompt(profile.Summary()))
}

// LogSymptom stores a symptom together with the advice generated for it.
func (s *Service) LogSymptom(ctx context.Context, userID, text string) (*Symptom, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxSymptomLength {
		return nil, ErrTextTooLong
	}

	ctx, span := tracer.Start(ctx, "journal.log_symptom")
	defer span.End()

	symptom := &Symptom{
		UserID: userID,
		Text:   text,
		Advice: s.advisor.GetAdvice(ctx, advice.SymptomPrompt(text)),
	}
	if err := s.repo.CreateSymptom(ctx, symptom); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveJournalEntry(kindSymptom)
	return symptom, nil
}

// Symptoms lists the user's symptoms oldest first.
func (s *Service) Symptoms(ctx context.Context, userID string) ([]*Symptom, error) {
	return s.repo.ListSymptoms(ctx, userID)
}

// UploadPhoto stores an image under the user's prefix and records the advice for it.
func (s *Service) UploadPhoto(ctx context.Context, userID, filename, contentType string, body io.Reader) (*Photo, error) {
	name := uploads.SecureFilename(filename)
	if name == "" {
		return nil, ErrInvalidFilename
	}
	defaultType, ok := imageContentTypes[uploads.Ext(name)]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = defaultType
	}

	ctx, span := tracer.Start(ctx, "journal.upload_photo")
	defer span.End()

	id := uuid.New().String()
	key := fmt.Sprintf("photos/%s/%s-%s", userID, id, name)
	span.SetAttributes(attribute.String("journal.photo_key", key))

	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("journal: store photo: %w", err)
	}

	photo := &Photo{
		ID:          id,
		UserID:      userID,
		Filename:    name,
		StorageKey:  key,
		ContentType: contentType,
		Advice:      s.advisor.GetAdvice(ctx, advice.PhotoPrompt()),
	}
	if err := s.repo.CreatePhoto(ctx, photo); err != nil {
		span.RecordError(err)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned photo", "error", delErr, "key", key)
		}
		return nil, err
	}
	s.metrics.ObserveJournalEntry(kindPhoto)
	return photo, nil
}

// OpenPhoto returns the photo record and a reader for its content.
// The caller closes the reader.
func (s *Service) OpenPhoto(ctx context.Context, userID, id string) (*Photo, io.ReadCloser, error) {
	photo, err := s.repo.GetPhoto(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, photo.StorageKey)
	if err != nil {
		if errors.Is(err, uploads.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("journal: open photo: %w", err)
	}
	return photo, rc, nil
}

// NewTip generates and stores a general wellness tip.
func (s *Service) NewTip(ctx context.Context, userID string) (*Tip, error) {
	ctx, span := tracer.Start(ctx, "journal.new_tip")
	defer span.End()

	tip := &Tip{
		UserID: userID,
		Text:   s.advisor.GetAdvice(ctx, advice.TipPrompt()),
	}
	if err := s.repo.CreateTip(ctx, tip); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveJournalEntry(kindTip)
	return tip, nil
}

// History returns the user's latest entries, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) (*History, error) {
	return s.repo.History(ctx, userID, limit)
}

// PurgeUser removes every stored photo object and journal entry of the user.
func (s *Service) PurgeUser(ctx context.Context, userID string) error {
	photos, err := s.repo.ListPhotos(ctx, userID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, p := range photos {
		if err := s.store.Delete(ctx, p.StorageKey); err != nil && !errors.Is(err, uploads.ErrNotFound) {
			s.logger.Warn("failed to delete photo object", "error", err, "key", p.StorageKey)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	return firstErr
}
