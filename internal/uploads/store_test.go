package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// mockS3Client keeps objects in memory.
type mockS3Client struct {
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = body
	m.contentTypes[*input.Key] = *input.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	client := newMockS3Client()
	store := NewS3Store(client, "photos-bucket", nil)
	ctx := context.Background()

	if err := store.Put(ctx, "photos/u1/a.jpg", "image/jpeg", bytes.NewBufferString("jpegdata")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if client.contentTypes["photos/u1/a.jpg"] != "image/jpeg" {
		t.Fatalf("expected content type recorded")
	}

	rc, err := store.Open(ctx, "photos/u1/a.jpg")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "jpegdata" {
		t.Fatalf("unexpected data %q", data)
	}

	if err := store.Delete(ctx, "photos/u1/a.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, "photos/u1/a.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestS3StorePutError(t *testing.T) {
	client := newMockS3Client()
	client.putErr = errors.New("access denied")
	store := NewS3Store(client, "b", nil)

	if err := store.Put(context.Background(), "k", "image/png", bytes.NewBufferString("x")); err == nil {
		t.Fatalf("expected error")
	}
	if err := store.Put(context.Background(), "", "image/png", bytes.NewBufferString("x")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected invalid key, got %v", err)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "photos/u1/b.png", "image/png", bytes.NewBufferString("pngdata")); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := store.Open(ctx, "photos/u1/b.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "pngdata" {
		t.Fatalf("unexpected data %q", data)
	}

	if err := store.Delete(ctx, "photos/u1/b.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "photos/u1/b.png"); err != nil {
		t.Fatalf("delete of missing file should be a no-op, got %v", err)
	}
	if _, err := store.Open(ctx, "photos/u1/b.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"", "../outside.txt", "photos/../../x"} {
		if err := store.Put(context.Background(), key, "text/plain", bytes.NewBufferString("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("key %q: expected invalid key, got %v", key, err)
		}
	}
}
