package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
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
	objects  map[string][]byte // key -> body
	getErr   error
}

type putCall struct {
	bucket string
	key    string
	body   []byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls = append(m.putCalls, putCall{
		bucket: *input.Bucket,
		key:    *input.Key,
		body:   body,
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
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3Client) calls() []putCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]putCall(nil), m.putCalls...)
}

func TestStore_ArchiveSession(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", nil)

	started := time.Date(2026, 2, 12, 15, 0, 0, 0, time.UTC)
	record := &SessionRecord{
		Version:      RecordVersion,
		SessionID:    "sess-123",
		StartedAt:    started,
		ArchivedAt:   started.Add(time.Minute),
		MessageCount: 2,
		Messages: []Message{
			{Role: "user", Content: "How much is SEO?", Timestamp: started},
			{Role: "assistant", Content: "Plans start at $997/mo.", Timestamp: started},
		},
	}

	require.NoError(t, store.ArchiveSession(context.Background(), record, true))

	calls := mock.calls()
	// record + manifest
	require.Len(t, calls, 2)
	assert.Equal(t, "test-bucket", calls[0].bucket)
	assert.Equal(t, "chat/v1/by-date/2026/02/12/sess-123.json", calls[0].key)

	var decoded SessionRecord
	require.NoError(t, json.Unmarshal(calls[0].body, &decoded))
	assert.Equal(t, "sess-123", decoded.SessionID)
	assert.Len(t, decoded.Messages, 2)

	assert.Contains(t, calls[1].key, "chat/v1/manifests/")
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(calls[1].body), &entry))
	assert.Equal(t, "sess-123", entry.SessionID)
	assert.Equal(t, calls[0].key, entry.S3Key)
}

func TestStore_ArchiveSessionExistingSkipsManifest(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", nil)

	record := &SessionRecord{SessionID: "sess-1", StartedAt: time.Now()}
	require.NoError(t, store.ArchiveSession(context.Background(), record, false))
	assert.Len(t, mock.calls(), 1)
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(nil, "", nil)
	assert.False(t, store.Enabled())

	err := store.ArchiveSession(context.Background(), &SessionRecord{}, true)
	assert.NoError(t, err)

	var nilStore *Store
	assert.False(t, nilStore.Enabled())
}

func TestStore_ManifestAppend(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "test-bucket", nil)

	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{SessionID: "sess-1"}))
	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{SessionID: "sess-2"}))

	calls := mock.calls()
	lastPut := calls[len(calls)-1]
	lines := bytes.Split(bytes.TrimSpace(lastPut.body), []byte("\n"))
	assert.Len(t, lines, 2)
}

func TestStore_ManifestReadFailure(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := NewStore(mock, "test-bucket", nil)

	err := store.AppendManifest(context.Background(), ManifestEntry{SessionID: "sess-1"})
	assert.ErrorContains(t, err, "access denied")
	assert.Empty(t, mock.calls(), "manifest must not be overwritten when it cannot be read")
}

func TestSessionKey(t *testing.T) {
	local := time.Date(2026, 3, 1, 1, 0, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "chat/v1/by-date/2026/03/01/abc.json", SessionKey("abc", local))
}
