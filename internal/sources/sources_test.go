package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
)

type memorySnapshotStore struct {
	blobs map[string][]byte
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{blobs: make(map[string][]byte)}
}

func (m *memorySnapshotStore) Store(key string, data []byte) error {
	m.blobs[key] = data
	return nil
}

func (m *memorySnapshotStore) Retrieve(key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return data, nil
}

func (m *memorySnapshotStore) List(prefix string) ([]string, error) {
	var keys []string
	for k := range m.blobs {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *memorySnapshotStore) Delete(key string) error {
	delete(m.blobs, key)
	return nil
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "snapshots/google/place-123.json", SnapshotKey("place-123"))
}

func TestDecodeSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"Object shape", `{"reviews": [{"id": "r1"}]}`, false},
		{"Bare array shape", `[{"id": "r1"}]`, false},
		{"Garbage", `not json`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := decodeSnapshot([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			// both shapes normalize to an object with a reviews array
			reviews, ok := raw["reviews"].([]interface{})
			require.True(t, ok)
			assert.Len(t, reviews, 1)
		})
	}
}

func TestGoogleSource_Analyze(t *testing.T) {
	refreshCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/google/reviews/refresh", r.URL.Path)
		assert.Equal(t, "place-123", r.URL.Query().Get("placeId"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		refreshCalls++
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	snapshots := newMemorySnapshotStore()
	require.NoError(t, snapshots.Store(SnapshotKey("place-123"), []byte(`[{"review_id": "r1", "stars": 2}]`)))

	source := NewGoogleSource(server.URL, "test-key", snapshots)
	assert.True(t, source.IsEnabled())

	result, err := source.Analyze(context.Background(), "place-123")
	require.NoError(t, err)

	assert.Equal(t, 1, refreshCalls)
	reviews, ok := result.RawData["reviews"].([]interface{})
	require.True(t, ok)
	assert.Len(t, reviews, 1)
}

func TestGoogleSource_AnalyzeMissingSnapshot(t *testing.T) {
	source := NewGoogleSource("", "", newMemorySnapshotStore())

	_, err := source.Analyze(context.Background(), "place-404")
	assert.Error(t, err)
}

func TestGoogleSource_DisabledWithoutSnapshotStore(t *testing.T) {
	source := NewGoogleSource("http://localhost", "key", nil)
	assert.False(t, source.IsEnabled())

	_, err := source.Analyze(context.Background(), "place-123")
	assert.Error(t, err)
}

func TestInstagramSource_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/instagram/profile", r.URL.Path)
		assert.Equal(t, "joespizza", r.URL.Query().Get("username"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"profile": {"followersCount": 1200}, "rawData": {"posts": [{"id": "p1"}]}}`)
	}))
	defer server.Close()

	source := NewInstagramSource(server.URL, "test-key")
	result, err := source.Analyze(context.Background(), "joespizza")
	require.NoError(t, err)

	assert.Equal(t, float64(1200), result.Profile["followersCount"])
	posts, ok := result.RawData["posts"].([]interface{})
	require.True(t, ok)
	assert.Len(t, posts, 1)
}

func TestInstagramSource_AnalyzeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "profile not found", http.StatusNotFound)
	}))
	defer server.Close()

	source := NewInstagramSource(server.URL, "test-key")
	_, err := source.Analyze(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSourceIsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		source  Analyzer
		enabled bool
	}{
		{"Instagram with credentials", NewInstagramSource("http://localhost", "key"), true},
		{"Instagram without base URL", NewInstagramSource("", "key"), false},
		{"Instagram without API key", NewInstagramSource("http://localhost", ""), false},
		{"TikTok with credentials", NewTikTokSource("http://localhost", "key"), true},
		{"TikTok without credentials", NewTikTokSource("", ""), false},
		{"YouTube with credentials", NewYouTubeSource("http://localhost", "key"), true},
		{"YouTube without credentials", NewYouTubeSource("", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, tt.source.IsEnabled())
		})
	}
}

func TestSourceNetworks(t *testing.T) {
	assert.Equal(t, models.NetworkGoogle, NewGoogleSource("", "", nil).Network())
	assert.Equal(t, models.NetworkInstagram, NewInstagramSource("", "").Network())
	assert.Equal(t, models.NetworkTikTok, NewTikTokSource("", "").Network())
	assert.Equal(t, models.NetworkYouTube, NewYouTubeSource("", "").Network())
}
