package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchable-gallery/internal/catalog"
	"searchable-gallery/internal/database"
	"searchable-gallery/internal/media"
)

type itemResponse struct {
	ID           string   `json:"id"`
	FullPath     string   `json:"fullPath"`
	ThumbnailRef *string  `json:"thumbnailRef"`
	Tags         []string `json:"tags"`
}

type testServer struct {
	db       *database.Database
	handlers *Handlers
	router   *mux.Router
	thumbDir string
	ids      map[string]database.ItemID
}

// newTestServer catalogs A={nature}, B={landscape}, C={nature,landscape},
// D={} with creation times A < B < C < D. A's image exists on disk and has
// a thumbnail; the others point at missing files.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, filepath.Join(t.TempDir(), "gallery.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	imageDir := t.TempDir()
	thumbDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "A.png"), []byte("PNGBYTES"), 0o600))

	s := &testServer{db: db, thumbDir: thumbDir, ids: map[string]database.ItemID{}}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, fx := range []struct {
		name string
		tags []string
	}{
		{"A", []string{"nature"}},
		{"B", []string{"landscape"}},
		{"C", []string{"nature", "landscape"}},
		{"D", nil},
	} {
		id := database.NewItemID()
		var ref *string
		if fx.name == "A" {
			name := id.String() + ".jpg"
			require.NoError(t, os.WriteFile(filepath.Join(thumbDir, name), []byte("THUMB"), 0o600))
			ref = &name
		}
		_, err := db.InsertItem(ctx, database.NewItem{
			ID:           id,
			FullPath:     filepath.Join(imageDir, fx.name+".png"),
			ThumbnailRef: ref,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
			Tags:         fx.tags,
		})
		require.NoError(t, err)
		s.ids[fx.name] = id
	}

	s.handlers = New(catalog.NewService(db), media.NewResolver(thumbDir))
	s.router = mux.NewRouter()
	s.router.HandleFunc("/api/items", s.handlers.ListItems).Methods(http.MethodGet)
	s.router.HandleFunc("/api/items/query", s.handlers.QueryItems).Methods(http.MethodPost)
	s.router.HandleFunc("/api/items/{id}", s.handlers.GetItem).Methods(http.MethodGet)
	s.router.HandleFunc("/api/items/{id}/image", s.handlers.GetItemImage).Methods(http.MethodGet)
	s.router.HandleFunc("/api/items/{id}/image-data", s.handlers.GetItemImageData).Methods(http.MethodGet)
	s.router.HandleFunc("/api/thumbnails/{ref}", s.handlers.GetThumbnail).Methods(http.MethodGet)
	s.router.HandleFunc("/api/tags", s.handlers.ListTags).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handlers.HealthCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/livez", s.handlers.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/readyz", s.handlers.ReadinessCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/version", s.handlers.GetVersion).Methods(http.MethodGet)
	return s
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// names decodes an item list and maps ids back to fixture letters.
func (s *testServer) names(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var items []itemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	byID := map[string]string{}
	for name, id := range s.ids {
		byID[id.String()] = name
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, byID[it.ID])
	}
	return out
}

func TestListItemsQueryParams(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "no filter", target: "/api/items", want: []string{"D", "C", "B", "A"}},
		{name: "and", target: "/api/items?tag=nature&tag=landscape&join=and", want: []string{"C"}},
		{name: "or", target: "/api/items?tag=nature&tag=landscape&join=or", want: []string{"C", "B", "A"}},
		{name: "default join is or", target: "/api/items?tag=nature&tag=landscape", want: []string{"C", "B", "A"}},
		{name: "single tag", target: "/api/items?tag=nature&join=AND", want: []string{"C", "A"}},
		{name: "unknown tag", target: "/api/items?tag=nonexistent&join=and", want: []string{}},
		{name: "blank tag means all", target: "/api/items?tag=%20&join=and", want: []string{"D", "C", "B", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, s.names(t, w))
		})
	}
}

func TestListItemsReturnsCompleteTagSets(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/items?tag=nature&join=and", "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []itemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, []string{"landscape", "nature"}, items[0].Tags)
	assert.Equal(t, []string{"nature"}, items[1].Tags)
}

func TestListItemsEmptyTagsSerializeAsArray(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/items/"+s.ids["D"].String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tags":[]`)
}

func TestListItemsInvalidJoin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/items?tag=nature&join=xor", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = s.do(t, http.MethodGet, "/api/items?join=xor", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryItems(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		want   []string
	}{
		{name: "and", body: `{"tagNames":["nature","landscape"],"joinType":"and"}`, status: http.StatusOK, want: []string{"C"}},
		{name: "or", body: `{"tagNames":["nature","landscape"],"joinType":"or"}`, status: http.StatusOK, want: []string{"C", "B", "A"}},
		{name: "duplicates collapse", body: `{"tagNames":["nature","nature"],"joinType":"and"}`, status: http.StatusOK, want: []string{"C", "A"}},
		{name: "empty object", body: `{}`, status: http.StatusOK, want: []string{"D", "C", "B", "A"}},
		{name: "empty body", body: "", status: http.StatusOK, want: []string{"D", "C", "B", "A"}},
		{name: "bad join", body: `{"tagNames":["nature"],"joinType":"both"}`, status: http.StatusBadRequest},
		{name: "malformed json", body: `{"tagNames":`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"tags":["nature"]}`, status: http.StatusBadRequest},
		{name: "trailing whitespace", body: "{\"tagNames\":[\"nature\"]}\n", status: http.StatusOK, want: []string{"C", "A"}},
		{name: "second object", body: `{"tagNames":["nature"]}{"joinType":"xor"}`, status: http.StatusBadRequest},
		{name: "trailing garbage", body: `{"tagNames":["nature"]} x`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/items/query", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, s.names(t, w))
			}
		})
	}
}

func TestQueryItemsRepeatable(t *testing.T) {
	s := newTestServer(t)
	body := `{"tagNames":["landscape","nature"],"joinType":"or"}`

	first := s.do(t, http.MethodPost, "/api/items/query", body)
	second := s.do(t, http.MethodPost, "/api/items/query", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestGetItem(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/items/"+s.ids["C"].String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var item itemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, s.ids["C"].String(), item.ID)
	assert.Equal(t, []string{"landscape", "nature"}, item.Tags)

	w = s.do(t, http.MethodGet, "/api/items/"+database.NewItemID().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/items/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTags(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, w.Code)

	var tags []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"createdAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "landscape", tags[0].Name)
	assert.Equal(t, "nature", tags[1].Name)
	assert.NotEmpty(t, tags[0].CreatedAt)
}

func TestGetItemImage(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/items/"+s.ids["A"].String()+"/image", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "8", w.Header().Get("Content-Length"))
	assert.Equal(t, "PNGBYTES", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/items/"+s.ids["B"].String()+"/image", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "file missing on disk")

	w = s.do(t, http.MethodGet, "/api/items/"+database.NewItemID().String()+"/image", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetItemImageData(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/items/"+s.ids["A"].String()+"/image-data", "")
	require.Equal(t, http.StatusOK, w.Code)

	var url string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &url))
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("PNGBYTES")), url)
}

func TestGetThumbnail(t *testing.T) {
	s := newTestServer(t)
	ref := s.ids["A"].String() + ".jpg"

	w := s.do(t, http.MethodGet, "/api/thumbnails/"+ref, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "THUMB", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/thumbnails/missing.jpg", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Route variables never contain a slash, so call the handler directly.
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/thumbnails/x", http.NoBody), map[string]string{"ref": "../gallery.db"})
	rec := httptest.NewRecorder()
	s.handlers.GetThumbnail(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClosedStoreReturns503(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.db.Close())

	for _, target := range []string{"/api/items", "/api/items?tag=nature&join=and", "/api/tags", "/api/items/" + s.ids["A"].String()} {
		w := s.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
		assert.Contains(t, w.Body.String(), "catalog unavailable")
	}

	w := s.do(t, http.MethodGet, "/api/items?tag=nature&join=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "argument errors win before any query")
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, statusHealthy, health.Status)
	assert.True(t, health.Ready)
	assert.Equal(t, 4, health.TotalItems)
	assert.Equal(t, 2, health.TotalTags)

	w = s.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready"`)

	w = s.do(t, http.MethodHead, "/livez", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	require.NoError(t, s.db.Close())

	w = s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, statusUnhealthy, health.Status)
	assert.NotEmpty(t, health.Error)

	w = s.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodGet, "/livez", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetVersion(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["goVersion"])
}

func TestMetricsHandler(t *testing.T) {
	h := New(nil, nil)
	w := httptest.NewRecorder()
	h.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
