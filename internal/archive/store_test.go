package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client records PutObject/GetObject calls for testing.
type mockS3Client struct {
	mu       sync.Mutex
	putCalls []putCall
	objects  map[string][]byte
	getErr   error
}

type putCall struct {
	bucket      string
	key         string
	contentType string
	body        []byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls = append(m.putCalls, putCall{
		bucket:      *input.Bucket,
		key:         *input.Key,
		contentType: *input.ContentType,
		body:        body,
	})
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t,
		"calendar-snapshots/v1/anna-nowak/2026/03/04/1772614800.html",
		SnapshotKey("anna-nowak", at))
}

func TestStore_SaveSnapshot(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", nil)
	at := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

	key, err := store.SaveSnapshot(context.Background(), "anna-nowak", at, []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, SnapshotKey("anna-nowak", at), key)

	require.Len(t, mock.putCalls, 2)
	page := mock.putCalls[0]
	assert.Equal(t, "test-bucket", page.bucket)
	assert.Equal(t, key, page.key)
	assert.Equal(t, "text/html; charset=utf-8", page.contentType)
	assert.Equal(t, "<html></html>", string(page.body))

	manifest := mock.putCalls[1]
	assert.Equal(t, "calendar-snapshots/v1/manifests/2026-10.jsonl", manifest.key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(manifest.body), &entry))
	assert.Equal(t, "anna-nowak", entry.SpecialistID)
	assert.Equal(t, key, entry.S3Key)
	assert.Equal(t, "2026-10-19T08:30:00Z", entry.FetchedAt)
	assert.Equal(t, 13, entry.Bytes)
}

func TestStore_ManifestAppends(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", nil)
	at := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

	_, err := store.SaveSnapshot(context.Background(), "anna-nowak", at, []byte("a"))
	require.NoError(t, err)
	_, err = store.SaveSnapshot(context.Background(), "ewa-kaminska", at.Add(time.Minute), []byte("b"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(mock.objects["calendar-snapshots/v1/manifests/2026-10.jsonl"])), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "anna-nowak")
	assert.Contains(t, lines[1], "ewa-kaminska")
}

func TestStore_ManifestReadFailureKeepsSnapshot(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := NewStore(mock, "test-bucket", nil)

	key, err := store.SaveSnapshot(context.Background(), "anna-nowak", time.Now(), []byte("x"))
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Len(t, mock.putCalls, 1)
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(nil, "", nil)
	assert.False(t, store.Enabled())

	key, err := store.SaveSnapshot(context.Background(), "anna-nowak", time.Now(), []byte("x"))
	assert.NoError(t, err)
	assert.Empty(t, key)

	var nilStore *Store
	assert.False(t, nilStore.Enabled())
}
