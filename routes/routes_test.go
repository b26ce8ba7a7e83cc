package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"convoy-api/config"
	"convoy-api/controllers"
	"convoy-api/database"
	"convoy-api/middleware"
	"convoy-api/models"
	"convoy-api/repositories"
	"convoy-api/services"
	"convoy-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret = "route-test-secret"
	adminEmail = "ops@example.org"
)

var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 512)...)

func init() {
	gin.SetMode(gin.TestMode)
}

type storedObject struct {
	contentType string
	data        []byte
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
}

func (m *memStorage) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = storedObject{contentType: contentType, data: data}
	return key, nil
}

func (m *memStorage) PublicURL(bucket, path string) string {
	return "https://cdn.test/" + bucket + "/" + path
}

func (m *memStorage) Remove(ctx context.Context, bucket, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+path)
	return nil
}

func (m *memStorage) snapshot() map[string]storedObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]storedObject, len(m.objects))
	for k, v := range m.objects {
		out[k] = v
	}
	return out
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	events  *repositories.EventRepository
	storage *memStorage
	ids     map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Initialize("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		JWTSecret:          testSecret,
		AdminEmails:        adminEmail,
		RequestTimeout:     5 * time.Second,
		SubmissionTimeout:  5 * time.Second,
		RateLimitPerMinute: 60,
		PhotoBucket:        "car-photos",
		CoverBucket:        "blog-covers",
		DefaultEventSlug:   "monterey-car-week-2025",
	}

	dates := utils.NewDateFormatter(time.UTC)
	dates.Now = func() time.Time { return time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC) }

	eventRepo := repositories.NewEventRepository(db, true)
	registrationRepo := repositories.NewRegistrationRepository(db)
	storage := &memStorage{objects: map[string]storedObject{}}
	uploads := services.NewUploadService(storage)
	confirmations := services.NewConfirmationService(time.Minute)
	email := services.NewEmailServiceWithSender(cfg, nil)

	svc := Services{
		Events:        services.NewEventService(eventRepo, uploads, confirmations, dates, cfg.CoverBucket),
		Registrations: services.NewRegistrationService(eventRepo, registrationRepo, uploads, services.NewMemorySubmissionGuard(), email, dates, services.RegistrationServiceConfig{
			PhotoBucket:       cfg.PhotoBucket,
			DefaultEventSlug:  cfg.DefaultEventSlug,
			SubmissionTimeout: cfg.SubmissionTimeout,
		}),
		Admin:         services.NewRegistrationAdminService(registrationRepo, eventRepo, email, dates),
		Confirmations: confirmations,
		Limiter:       middleware.NewRateLimiter(60, 20),
		Ping:          func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(), SetupCORS([]string{"https://convoy.example.org"}))
	SetupRoutes(router, cfg, svc)

	ts := &testServer{router: router, db: db, events: eventRepo, storage: storage, ids: map[string]string{}}
	ts.seedEvent(t, "Monterey Car Week 2026", "2026-11-01", true, true)
	ts.seedEvent(t, "Spring Fling", "2026-04-01", true, false)
	ts.seedEvent(t, "Secret Draft", "2026-12-01", false, false)
	return ts
}

func (ts *testServer) seedEvent(t *testing.T, title, date string, published, active bool) {
	t.Helper()
	event := &models.Event{Title: title, Date: &date, Published: published, Active: active}
	require.NoError(t, ts.events.Create(context.Background(), event))
	ts.ids[title] = event.ID
}

func adminToken(t *testing.T, email string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) admin(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	headers := map[string]string{"Authorization": "Bearer " + adminToken(t, adminEmail)}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
		headers["Content-Type"] = "application/json"
	}
	return ts.do(t, method, path, body, headers)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

type fileField struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []fileField) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (ts *testServer) registrationFields() map[string]string {
	return map[string]string{
		"event_id":             ts.ids["Monterey Car Week 2026"],
		"full_name":            "Ada Driver",
		"email":                "ada@example.com",
		"phone":                "555-0100",
		"city":                 "Monterey",
		"state":                "CA",
		"car_year":             "1967",
		"car_make":             "Ford",
		"car_model":            "Mustang",
		"car_color":            "Red",
		"has_rally_experience": "no",
		"why_join":             "For the kids",
	}
}

func (ts *testServer) submit(t *testing.T, fields map[string]string, files []fileField) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	return ts.do(t, http.MethodPost, "/api/v1/registrations", body, map[string]string{"Content-Type": contentType})
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = ts.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cfc_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodOptions, "/api/v1/registrations", nil, map[string]string{"Origin": "https://convoy.example.org"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://convoy.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = ts.do(t, http.MethodOptions, "/api/v1/registrations", nil, map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPublicEvents(t *testing.T) {
	ts := newTestServer(t)

	var list struct {
		Events []services.EventView `json:"events"`
	}
	w := ts.do(t, http.MethodGet, "/api/v1/events", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list.Events, 2)
	assert.Equal(t, "Monterey Car Week 2026", list.Events[0].Title)
	assert.Equal(t, "11/1/2026", list.Events[0].DisplayDate)

	var one struct {
		Event services.EventView `json:"event"`
	}
	w = ts.do(t, http.MethodGet, "/api/v1/events/active", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &one)
	assert.Equal(t, "monterey-car-week-2026", one.Event.Slug)

	w = ts.do(t, http.MethodGet, "/api/v1/events/spring-fling", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/events/secret-draft", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActiveEventMissingIs404(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.events.SetInactive(context.Background(), ts.ids["Monterey Car Week 2026"]))

	w := ts.do(t, http.MethodGet, "/api/v1/events/active", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body utils.ErrorResponse
	decode(t, w, &body)
	assert.Equal(t, "No active event", body.Error)
}

func TestRegistrationForm(t *testing.T) {
	ts := newTestServer(t)

	var form services.IntakeForm
	w := ts.do(t, http.MethodGet, "/api/v1/registrations/form", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &form)

	assert.True(t, form.Available)
	require.Len(t, form.Events, 1)
	assert.Equal(t, ts.ids["Monterey Car Week 2026"], form.SelectedEventID)
	assert.Equal(t, services.MaxCarPhotos, form.MaxPhotos)
}

func TestSubmitRegistration(t *testing.T) {
	ts := newTestServer(t)

	fields := ts.registrationFields()
	fields["status"] = "approved"
	w := ts.submit(t, fields, []fileField{
		{controllers.PhotoField, "front.jpg", jpegBytes},
		{controllers.PhotoField, "side.jpg", jpegBytes},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result services.SubmissionResult
	decode(t, w, &result)
	assert.Equal(t, services.IntakeSubmitted, result.State)
	assert.Contains(t, result.Message, "Thank you for registering for Monterey Car Week 2026")

	var stored []models.Registration
	require.NoError(t, ts.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, models.StatusPending, stored[0].Status)
	assert.Equal(t, "monterey-car-week-2026", stored[0].EventSlug)
	require.Len(t, stored[0].CarPhotos, 2)
	assert.True(t, strings.HasSuffix(stored[0].CarPhotos[0], "front.jpg"))
	assert.True(t, strings.HasSuffix(stored[0].CarPhotos[1], "side.jpg"))

	objects := ts.storage.snapshot()
	require.Len(t, objects, 2)
	for _, obj := range objects {
		// multipart parts are declared octet-stream; the stored type is sniffed
		assert.Equal(t, "image/jpeg", obj.contentType)
	}
}

// largeJPEG is a JPEG-sniffing payload of the given size in MB.
func largeJPEG(mb float64) []byte {
	data := make([]byte, int(mb*1024*1024))
	copy(data, jpegBytes)
	return data
}

func TestSubmitRegistrationDropsPhotosPastThree(t *testing.T) {
	ts := newTestServer(t)
	photo := largeJPEG(4.5)

	w := ts.submit(t, ts.registrationFields(), []fileField{
		{controllers.PhotoField, "one.jpg", photo},
		{controllers.PhotoField, "two.jpg", photo},
		{controllers.PhotoField, "three.jpg", photo},
		{controllers.PhotoField, "four.jpg", photo},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored []models.Registration
	require.NoError(t, ts.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	require.Len(t, stored[0].CarPhotos, 3)
	assert.True(t, strings.HasSuffix(stored[0].CarPhotos[0], "one.jpg"))
	assert.True(t, strings.HasSuffix(stored[0].CarPhotos[2], "three.jpg"))

	objects := ts.storage.snapshot()
	require.Len(t, objects, 3)
	for key, obj := range objects {
		assert.NotContains(t, key, "four.jpg")
		assert.Len(t, obj.data, len(photo))
	}
}

func TestSubmitRegistrationRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(fields map[string]string)
		files  []fileField
		status int
		code   string
	}{
		{
			name:   "unknown field",
			mutate: func(f map[string]string) { f["admin_notes"] = "vip" },
			files:  []fileField{{controllers.PhotoField, "a.jpg", jpegBytes}},
			status: http.StatusBadRequest,
			code:   models.CodeUnexpectedFields,
		},
		{
			name:   "no photo",
			mutate: func(f map[string]string) {},
			status: http.StatusUnprocessableEntity,
			code:   models.CodeNoPhotoUploaded,
		},
		{
			name:   "text file named like a photo",
			mutate: func(f map[string]string) {},
			files:  []fileField{{controllers.PhotoField, "car.jpg", []byte("definitely not an image")}},
			status: http.StatusUnsupportedMediaType,
			code:   models.CodeInvalidType,
		},
		{
			name:   "no event",
			mutate: func(f map[string]string) { f["event_id"] = "" },
			files:  []fileField{{controllers.PhotoField, "a.jpg", jpegBytes}},
			status: http.StatusUnprocessableEntity,
			code:   models.CodeNoEventSelected,
		},
		{
			name:   "bad year",
			mutate: func(f map[string]string) { f["car_year"] = "1967.5" },
			files:  []fileField{{controllers.PhotoField, "a.jpg", jpegBytes}},
			status: http.StatusUnprocessableEntity,
			code:   models.CodeInvalidYear,
		},
		{
			name:   "photo over the size limit",
			mutate: func(f map[string]string) {},
			files:  []fileField{{controllers.PhotoField, "huge.jpg", largeJPEG(6)}},
			status: http.StatusRequestEntityTooLarge,
			code:   models.CodeTooLarge,
		},
		{
			name:   "unexpected file field",
			mutate: func(f map[string]string) {},
			files:  []fileField{{"avatar", "a.jpg", jpegBytes}},
			status: http.StatusBadRequest,
			code:   models.CodeUnexpectedFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			fields := ts.registrationFields()
			tt.mutate(fields)

			w := ts.submit(t, fields, tt.files)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var body utils.ErrorResponse
			decode(t, w, &body)
			assert.Equal(t, tt.code, body.ErrorCode)

			var count int64
			require.NoError(t, ts.db.Model(&models.Registration{}).Count(&count).Error)
			assert.Zero(t, count)
			assert.Empty(t, ts.storage.snapshot())
		})
	}
}

func TestAdminRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/admin/events", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/events", nil, map[string]string{
		"Authorization": "Bearer " + adminToken(t, "visitor@example.org"),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type noticeEnvelope[T any] struct {
	Message string         `json:"message"`
	Data    T              `json:"data"`
	Notice  *models.Notice `json:"notice"`
}

func TestAdminCreateEvent(t *testing.T) {
	ts := newTestServer(t)

	w := ts.admin(t, http.MethodPost, "/api/v1/admin/events", map[string]interface{}{
		"title": "Big Sur Run", "date": "2026-12-12", "published": true, "slug": "custom",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var failure utils.ErrorResponse
	decode(t, w, &failure)
	assert.Equal(t, models.CodeUnexpectedFields, failure.ErrorCode)
	require.NotNil(t, failure.Notice)
	assert.Equal(t, models.NoticeError, failure.Notice.Kind)

	w = ts.admin(t, http.MethodPost, "/api/v1/admin/events", map[string]interface{}{
		"title": "Big Sur Run", "date": "2026-12-12", "published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created noticeEnvelope[services.EventMutationResult]
	decode(t, w, &created)
	assert.Equal(t, "big-sur-run", created.Data.Event.Slug)
	assert.False(t, created.Data.Event.Active)
	assert.Len(t, created.Data.Events, 4)
	require.NotNil(t, created.Notice)
	assert.Equal(t, models.NoticeSuccess, created.Notice.Kind)
	assert.Equal(t, models.DefaultNoticeDismissMS, created.Notice.DismissAfterMS)

	w = ts.admin(t, http.MethodPost, "/api/v1/admin/events", map[string]interface{}{"title": "Big Sur Run"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminUpdateEventRejectsSlug(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ids["Spring Fling"]

	w := ts.admin(t, http.MethodPut, "/api/v1/admin/events/"+id, map[string]interface{}{"slug": "renamed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.admin(t, http.MethodPut, "/api/v1/admin/events/"+id, map[string]interface{}{"title": "Spring Fling (rained out)"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated noticeEnvelope[services.EventMutationResult]
	decode(t, w, &updated)
	assert.Equal(t, "spring-fling", updated.Data.Event.Slug)
	assert.Equal(t, "Spring Fling (rained out)", updated.Data.Event.Title)
}

func TestAdminActivationFlow(t *testing.T) {
	ts := newTestServer(t)
	target := ts.ids["Spring Fling"]

	w := ts.admin(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/events/%s/activate", target), nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var requested struct {
		Confirmation services.PendingConfirmation `json:"confirmation"`
	}
	decode(t, w, &requested)
	token := requested.Confirmation.Token
	require.NotEmpty(t, token)
	assert.True(t, requested.Confirmation.Prompt.DisableBackdropDismiss)

	// nothing changes before confirmation
	active, err := ts.events.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ts.ids["Monterey Car Week 2026"], active.ID)

	w = ts.admin(t, http.MethodPost, "/api/v1/admin/confirmations/"+token+"/cancel", map[string]string{"via": "backdrop"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.admin(t, http.MethodPost, "/api/v1/admin/confirmations/"+token+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed noticeEnvelope[services.EventMutationResult]
	decode(t, w, &confirmed)
	require.NotNil(t, confirmed.Notice)
	assert.Contains(t, confirmed.Notice.Message, "Spring Fling")

	active, err = ts.events.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, target, active.ID)

	w = ts.admin(t, http.MethodGet, "/api/v1/admin/events/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.admin(t, http.MethodPost, "/api/v1/admin/confirmations/"+token+"/confirm", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeactivateThenHealthConflict(t *testing.T) {
	ts := newTestServer(t)

	w := ts.admin(t, http.MethodPost, "/api/v1/admin/events/"+ts.ids["Monterey Car Week 2026"]+"/deactivate", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	var requested struct {
		Confirmation services.PendingConfirmation `json:"confirmation"`
	}
	decode(t, w, &requested)

	w = ts.admin(t, http.MethodPost, "/api/v1/admin/confirmations/"+requested.Confirmation.Token+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.admin(t, http.MethodGet, "/api/v1/admin/events/health", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	var health struct {
		Healthy bool                      `json:"healthy"`
		Report  models.ActiveStateReport `json:"report"`
	}
	decode(t, w, &health)
	assert.False(t, health.Healthy)
	assert.Equal(t, models.ActiveNone, health.Report.Status)
}

func TestAdminRegistrations(t *testing.T) {
	ts := newTestServer(t)
	w := ts.submit(t, ts.registrationFields(), []fileField{{controllers.PhotoField, "a.jpg", jpegBytes}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted services.SubmissionResult
	decode(t, w, &submitted)
	id := submitted.Registration.ID

	w = ts.admin(t, http.MethodGet, "/api/v1/admin/registrations?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list services.RegistrationListResult
	decode(t, w, &list)
	require.Len(t, list.Registrations, 1)
	assert.Equal(t, "all", list.Filter.EventSlug)

	w = ts.admin(t, http.MethodGet, "/api/v1/admin/registrations?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.admin(t, http.MethodGet, "/api/v1/admin/registrations/slugs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slugs struct {
		Slugs []string `json:"slugs"`
	}
	decode(t, w, &slugs)
	assert.Equal(t, "all", slugs.Slugs[0])
	assert.Contains(t, slugs.Slugs, "monterey-car-week-2026")

	w = ts.admin(t, http.MethodPut, "/api/v1/admin/registrations/"+id+"/status", map[string]interface{}{
		"status":    "approved",
		"filter":    map[string]string{"status": "pending"},
		"detail_id": id,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated noticeEnvelope[services.RegistrationListResult]
	decode(t, w, &updated)
	assert.Empty(t, updated.Data.Registrations)
	require.NotNil(t, updated.Data.Detail)
	assert.Equal(t, models.StatusApproved, updated.Data.Detail.Status)
	assert.Equal(t, "Registration marked as approved", updated.Notice.Message)

	w = ts.admin(t, http.MethodGet, "/api/v1/admin/registrations/counts", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var counts struct {
		Counts map[string]int64 `json:"counts"`
	}
	decode(t, w, &counts)
	assert.Equal(t, map[string]int64{"pending": 0, "approved": 1, "rejected": 0}, counts.Counts)

	w = ts.admin(t, http.MethodPut, "/api/v1/admin/registrations/"+id+"/status", map[string]interface{}{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.admin(t, http.MethodGet, "/api/v1/admin/registrations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCoverUpload(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{"Authorization": "Bearer " + adminToken(t, adminEmail)}

	body, contentType := multipartBody(t, nil, []fileField{{controllers.CoverField, "cover.jpg", jpegBytes}})
	headers["Content-Type"] = contentType
	w := ts.do(t, http.MethodPost, "/api/v1/admin/uploads/cover", body, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var uploaded noticeEnvelope[map[string]string]
	decode(t, w, &uploaded)
	assert.True(t, strings.HasPrefix(uploaded.Data["url"], "https://cdn.test/blog-covers/"))

	body, contentType = multipartBody(t, nil, []fileField{{controllers.CoverField, "notes.jpg", []byte("plain text")}})
	headers["Content-Type"] = contentType
	w = ts.do(t, http.MethodPost, "/api/v1/admin/uploads/cover", body, headers)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
