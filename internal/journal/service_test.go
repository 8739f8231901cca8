package journal

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/aika-health/internal/accounts"
	"github.com/wolfman30/aika-health/internal/advice"
	"github.com/wolfman30/aika-health/internal/observability/metrics"
	"github.com/wolfman30/aika-health/internal/uploads"
	"github.com/wolfman30/aika-health/pkg/logging"
)

type stubAdvisor struct {
	mu      sync.Mutex
	reply   string
	prompts []string
}

func (s *stubAdvisor) GetAdvice(_ context.Context, prompt string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply
}

func (s *stubAdvisor) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

type failingStore struct {
	uploads.Store
}

func (failingStore) Put(context.Context, string, string, io.Reader) error {
	return errors.New("bucket unavailable")
}

func newTestService(t *testing.T) (*Service, *stubAdvisor, *InMemoryRepository, uploads.Store) {
	t.Helper()
	store, err := uploads.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	repo := NewInMemoryRepository()
	adv := &stubAdvisor{reply: "Drink water. This is not a diagnosis."}
	return NewService(repo, adv, store, nil, logging.Default()), adv, repo, store
}

func TestServiceDashboardAdviceUsesProfileSummary(t *testing.T) {
	svc, adv, _, _ := newTestService(t)
	profile := accounts.Profile{Age: 30, Gender: "female"}

	got := svc.DashboardAdvice(context.Background(), profile)

	assert.Equal(t, "Drink water. This is not a diagnosis.", got)
	assert.Equal(t, advice.ProfileAdvicePrompt(profile.Summary()), adv.lastPrompt())
}

func TestServiceLogSymptom(t *testing.T) {
	svc, adv, _, _ := newTestService(t)

	s, err := svc.LogSymptom(context.Background(), "u1", "  mild headache  ")
	require.NoError(t, err)
	assert.Equal(t, "mild headache", s.Text)
	assert.Equal(t, "Drink water. This is not a diagnosis.", s.Advice)
	assert.Equal(t, advice.SymptomPrompt("mild headache"), adv.lastPrompt())

	listed, err := svc.Symptoms(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, s.ID, listed[0].ID)
}

func TestServiceLogSymptomValidation(t *testing.T) {
	svc, adv, _, _ := newTestService(t)

	_, err := svc.LogSymptom(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = svc.LogSymptom(context.Background(), "u1", strings.Repeat("a", maxSymptomLength+1))
	assert.ErrorIs(t, err, ErrTextTooLong)

	assert.Empty(t, adv.prompts)
}

func TestServiceUploadPhoto(t *testing.T) {
	svc, adv, _, store := newTestService(t)
	ctx := context.Background()

	photo, err := svc.UploadPhoto(ctx, "u1", "../../My Rash.PNG", "", strings.NewReader("pngdata"))
	require.NoError(t, err)
	assert.Equal(t, "My_Rash.PNG", photo.Filename)
	assert.Equal(t, "image/png", photo.ContentType)
	assert.Equal(t, "photos/u1/"+photo.ID+"-My_Rash.PNG", photo.StorageKey)
	assert.Equal(t, advice.PhotoPrompt(), adv.lastPrompt())

	rc, err := store.Open(ctx, photo.StorageKey)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "pngdata", string(data))

	opened, body, err := svc.OpenPhoto(ctx, "u1", photo.ID)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, photo.StorageKey, opened.StorageKey)

	_, _, err = svc.OpenPhoto(ctx, "u2", photo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceUploadPhotoRejects(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UploadPhoto(ctx, "u1", "../..", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidFilename)

	_, err = svc.UploadPhoto(ctx, "u1", "notes.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestServiceUploadPhotoStoreFailure(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, &stubAdvisor{}, failingStore{}, nil, nil)

	_, err := svc.UploadPhoto(context.Background(), "u1", "skin.jpg", "image/jpeg", strings.NewReader("x"))
	require.Error(t, err)

	photos, err := repo.ListPhotos(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestServiceNewTipRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAdviceMetrics(reg)
	adv := &stubAdvisor{reply: "Walk daily. This is not a diagnosis."}
	svc := NewService(NewInMemoryRepository(), adv, nil, m, nil)

	tip, err := svc.NewTip(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Walk daily. This is not a diagnosis.", tip.Text)
	assert.Equal(t, advice.TipPrompt(), adv.lastPrompt())

	count, err := testutil.GatherAndCount(reg, "aika_journal_entries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestServicePurgeUser(t *testing.T) {
	svc, _, repo, store := newTestService(t)
	ctx := context.Background()

	photo, err := svc.UploadPhoto(ctx, "u1", "skin.jpg", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = svc.LogSymptom(ctx, "u1", "itch")
	require.NoError(t, err)

	require.NoError(t, svc.PurgeUser(ctx, "u1"))

	_, err = store.Open(ctx, photo.StorageKey)
	assert.ErrorIs(t, err, uploads.ErrNotFound)
	symptoms, err := repo.ListSymptoms(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, symptoms)
}
