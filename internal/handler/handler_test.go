package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nearby/config"
	"nearby/internal/auth"
	"nearby/internal/middleware"
	"nearby/internal/models"
	"nearby/internal/repository"
	"nearby/internal/service"
	"nearby/pkg/media"
	"nearby/pkg/proximity"
)

func init() { gin.SetMode(gin.TestMode) }

var errDown = errors.New("store down")

type downLocations struct{}

func (downLocations) Upsert(context.Context, *models.UserLocation) error { return errDown }

func (downLocations) GetByUserID(context.Context, string) (*models.UserLocation, error) {
	return nil, errDown
}

func (downLocations) FindInBox(context.Context, proximity.Box) ([]models.UserLocation, error) {
	return nil, errDown
}

type fakeCloud struct {
	kind, folder string
}

func (f *fakeCloud) Upload(_ context.Context, u media.Upload) (string, error) {
	if _, err := io.ReadAll(u.Body); err != nil {
		return "", err
	}
	f.kind, f.folder = u.Kind, u.Folder
	return "https://cdn.example/" + u.PublicID, nil
}

type testServer struct {
	engine *gin.Engine
	store  *repository.MemoryStore
	jwt    *config.JWTConfig
}

func newTestServer(t *testing.T, locations service.LocationStore, cloud media.Uploader) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	if locations == nil {
		locations = store
	}
	log := zap.NewNop()
	jwtCfg := &config.JWTConfig{AccessSecret: "secret", AccessExpiry: time.Minute, Issuer: "nearby"}

	prox := service.NewProximityService(locations, store, proximity.DefaultRange, log)
	loc := NewLocationHandler(service.NewLocationService(locations, log))
	near := NewNearbyHandler(prox, 1)
	conv := NewConversationHandler(service.NewConversationService(prox, store, nil, log))
	feed := NewFeedHandler(service.NewFeedService(prox, store, 10, log))
	prof := NewProfileHandler(service.NewProfileService(store, log))
	up := NewUploadHandler(cloud, "nearby")

	r := gin.New()
	api := r.Group("/api/v1", middleware.AuthRequired(jwtCfg))
	api.GET("/me/location", loc.GetLocation)
	api.PATCH("/me/location", loc.UpdateLocation)
	api.GET("/me/profile", prof.GetMe)
	api.PUT("/me/profile", prof.UpdateMe)
	api.POST("/me/uploads", up.Upload)
	api.GET("/nearby", near.Nearby)
	api.GET("/conversations/:user_id", conv.Open)
	api.POST("/conversations/:user_id/messages", conv.Send)
	api.GET("/feed", feed.Feed)
	api.POST("/posts", feed.CreatePost)
	return &testServer{engine: r, store: store, jwt: jwtCfg}
}

func (s *testServer) do(t *testing.T, userID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	s.authorize(t, req, userID)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) authorize(t *testing.T, req *http.Request, userID string) {
	token, err := auth.GenerateAccessToken(s.jwt, userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

func (s *testServer) place(t *testing.T, userID, name string, lat, lng float64) {
	t.Helper()
	if name != "" {
		require.NoError(t, s.store.SaveProfile(context.Background(), &models.Profile{ID: userID, DisplayName: name, AvatarURL: "https://img/" + userID}))
	}
	w := s.do(t, userID, http.MethodPatch, "/api/v1/me/location", gin.H{"latitude": lat, "longitude": lng})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestUpdateLocation(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do(t, "alice", http.MethodPatch, "/api/v1/me/location", gin.H{"latitude": 37.77493, "longitude": -122.41942})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["visible"])
	assert.Equal(t, 37.77, body["short_latitude"])
	assert.Equal(t, -122.42, body["short_longitude"])

	stored, err := s.store.GetByUserID(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 37.77493, stored.FullLatitude)
}

func TestGetLocation(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do(t, "alice", http.MethodGet, "/api/v1/me/location", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"visible": false}, decode(t, w))

	s.place(t, "alice", "", 37.77493, -122.41942)
	w = s.do(t, "alice", http.MethodGet, "/api/v1/me/location", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["visible"])
	assert.Equal(t, 37.77, body["short_latitude"])
	assert.Equal(t, -122.42, body["short_longitude"])
	assert.NotContains(t, w.Body.String(), "37.77493")

	down := newTestServer(t, downLocations{}, nil)
	w = down.do(t, "alice", http.MethodGet, "/api/v1/me/location", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUpdateLocationRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do(t, "alice", http.MethodPatch, "/api/v1/me/location", gin.H{"latitude": 37.7})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice", http.MethodPatch, "/api/v1/me/location", gin.H{"latitude": 91.0, "longitude": 0.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateLocationGeolocationFailures(t *testing.T) {
	s := newTestServer(t, nil, nil)
	cases := map[string]string{
		"permission_denied":    "GEOLOCATION_DENIED",
		"position_unavailable": "GEOLOCATION_UNAVAILABLE",
		"timeout":              "GEOLOCATION_TIMEOUT",
		"weird":                "GEOLOCATION_UNAVAILABLE",
	}
	for reason, code := range cases {
		w := s.do(t, "alice", http.MethodPatch, "/api/v1/me/location", gin.H{"error": reason})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, reason)
		body := decode(t, w)
		assert.Equal(t, code, body["code"], reason)
		assert.Equal(t, false, body["visible"])
	}
	_, err := s.store.GetByUserID(context.Background(), "alice")
	assert.Error(t, err, "failures must not write a row")
}

func TestUpdateLocationPersistenceFailure(t *testing.T) {
	s := newTestServer(t, downLocations{}, nil)
	w := s.do(t, "alice", http.MethodPatch, "/api/v1/me/location", gin.H{"latitude": 1.0, "longitude": 1.0})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "PERSISTENCE_FAILED", body["code"])
	assert.Equal(t, false, body["visible"])
}

func TestNearby(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.place(t, "alice", "Alice", 37.7749, -122.4194)
	s.place(t, "bob", "Bob", 37.7800, -122.4100)
	s.place(t, "carol", "", 37.7600, -122.4300)
	s.place(t, "dave", "Dave", 40.7128, -74.0060)

	w := s.do(t, "alice", http.MethodGet, "/api/v1/nearby?lat=37.7749&lng=-122.4194", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Matches []service.NearbyMatch `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Matches, 2)
	assert.Equal(t, "bob", out.Matches[0].UserID)
	assert.Equal(t, "Bob", out.Matches[0].Profile.DisplayName)
	assert.Equal(t, "carol", out.Matches[1].UserID)
	assert.Equal(t, "Unknown", out.Matches[1].Profile.DisplayName)

	w = s.do(t, "alice", http.MethodGet, "/api/v1/nearby?lat=37.7749&lng=-122.4194&range=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"matches":[]}`, w.Body.String())
}

func TestNearbyValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do(t, "alice", http.MethodGet, "/api/v1/nearby", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice", http.MethodGet, "/api/v1/nearby?lat=abc&lng=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice", http.MethodGet, "/api/v1/nearby?lat=1&lng=1&range=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNearbyRejectsNonFiniteAndOversizedRange(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.place(t, "alice", "Alice", 37.7749, -122.4194)
	s.place(t, "bob", "Bob", 37.7750, -122.4190)
	s.place(t, "carol", "Carol", 51.5074, -0.1278)

	here := "/api/v1/nearby?lat=37.7749&lng=-122.4194"
	for _, rng := range []string{"NaN", "nan", "Inf", "%2BInf", "-Inf", "1e400", "180"} {
		w := s.do(t, "alice", http.MethodGet, here+"&range="+rng, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, rng)
		assert.Equal(t, "VALIDATION_FAILED", decode(t, w)["code"], rng)
		assert.NotContains(t, w.Body.String(), "carol", rng)
	}

	w := s.do(t, "alice", http.MethodGet, here+"&range=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob")
	assert.NotContains(t, w.Body.String(), "carol")
}

func TestNearbyQueryFailure(t *testing.T) {
	s := newTestServer(t, downLocations{}, nil)
	w := s.do(t, "alice", http.MethodGet, "/api/v1/nearby?lat=1&lng=1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "PROXIMITY_UNAVAILABLE", decode(t, w)["code"])
}

func TestConversationFollowsProximity(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.place(t, "alice", "Alice", 37.7749, -122.4194)
	s.place(t, "bob", "Bob", 37.7800, -122.4100)

	here := "?lat=37.7749&lng=-122.4194"
	w := s.do(t, "alice", http.MethodPost, "/api/v1/conversations/bob/messages"+here, gin.H{"text": "hi bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, "alice", http.MethodPost, "/api/v1/conversations/bob/messages"+here,
		gin.H{"type": "image", "media_url": "https://cdn.example/p.png"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, "alice", http.MethodGet, "/api/v1/conversations/bob"+here, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail service.ConversationDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "normal", string(detail.Kind))
	assert.Equal(t, "Bob", detail.Title)
	assert.Equal(t, "https://img/bob", detail.AvatarURL)
	assert.False(t, detail.ReadOnly)
	assert.Len(t, detail.VisibleMessages, 2)
	assert.Equal(t, "me", detail.VisibleMessages[0].SenderID)
	require.Len(t, detail.Days, 1)
	assert.Equal(t, "Today", detail.Days[0].Label)

	// Without a position the same conversation is anonymous and text-only.
	w = s.do(t, "alice", http.MethodGet, "/api/v1/conversations/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "anonymous", string(detail.Kind))
	assert.Equal(t, "Anonymous", detail.Title)
	assert.Empty(t, detail.AvatarURL)
	assert.True(t, detail.ReadOnly)
	require.Len(t, detail.VisibleMessages, 1)
	assert.Equal(t, "text", detail.VisibleMessages[0].Type)
	assert.NotContains(t, w.Body.String(), "Bob")

	w = s.do(t, "alice", http.MethodPost, "/api/v1/conversations/bob/messages", gin.H{"text": "still there?"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "CONVERSATION_READ_ONLY", decode(t, w)["code"])

	// Bob moves away: the next open re-classifies.
	s.place(t, "bob", "", 40.7128, -74.0060)
	w = s.do(t, "alice", http.MethodGet, "/api/v1/conversations/bob"+here, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "anonymous", string(detail.Kind))
}

func TestConversationValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.place(t, "alice", "Alice", 37.7749, -122.4194)
	s.place(t, "bob", "Bob", 37.7800, -122.4100)
	here := "?lat=37.7749&lng=-122.4194"

	w := s.do(t, "alice", http.MethodGet, "/api/v1/conversations/alice"+here, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice", http.MethodPost, "/api/v1/conversations/bob/messages"+here, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice", http.MethodPost, "/api/v1/conversations/bob/messages"+here, gin.H{"type": "system", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeed(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.place(t, "alice", "Alice", 37.7749, -122.4194)
	s.place(t, "bob", "Bob", 37.7800, -122.4100)
	s.place(t, "dave", "Dave", 40.7128, -74.0060)

	w := s.do(t, "bob", http.MethodPost, "/api/v1/posts", gin.H{"text": "coffee anyone?"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, "dave", http.MethodPost, "/api/v1/posts", gin.H{"text": "far away"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, "dave", http.MethodPost, "/api/v1/posts", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice", http.MethodGet, "/api/v1/feed?lat=37.7749&lng=-122.4194", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.FeedPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.True(t, page.Visible)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "coffee anyone?", page.Items[0].Text)
	assert.Equal(t, "Bob", page.Items[0].Author.DisplayName)

	w = s.do(t, "alice", http.MethodGet, "/api/v1/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"visible":false,"items":[]}`, w.Body.String())
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do(t, "alice", http.MethodGet, "/api/v1/me/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, "alice", http.MethodPut, "/api/v1/me/profile", gin.H{
		"display_name": " Alice ",
		"username":     "alice",
		"instagram":    "https://instagram.com/alice",
		"twitter":      "",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, "alice", http.MethodGet, "/api/v1/me/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Alice", p.DisplayName)
	require.NotNil(t, p.Instagram)
	assert.Nil(t, p.Twitter)
	assert.Nil(t, p.LinkedIn)

	w = s.do(t, "alice", http.MethodPut, "/api/v1/me/profile", gin.H{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *testServer) upload(t *testing.T, userID, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="clip"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	s.authorize(t, req, userID)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	cloud := &fakeCloud{}
	s := newTestServer(t, nil, cloud)

	w := s.upload(t, "alice", "audio/webm")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio", decode(t, w)["type"])
	assert.Equal(t, "audio", cloud.kind)
	assert.Equal(t, "nearby/chat/alice", cloud.folder)

	w = s.upload(t, "alice", "application/pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadDisabled(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.upload(t, "alice", "image/png")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
