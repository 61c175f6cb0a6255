package routes

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staycation/config"
	"staycation/models"
	"staycation/services"
	"staycation/services/mail"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	svc    *Services
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	cfg := &config.Config{
		Server:  config.ServerConfig{Env: "test", BaseURL: "http://localhost:3000"},
		JWT:     config.JWTConfig{Secret: "test-secret", ExpiresIn: 24 * time.Hour},
		Upload:  config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
		Booking: config.BookingConfig{MaxNights: 30, PaymentTimeout: time.Hour, VerificationTTL: time.Hour, ResetTTL: time.Hour},
		Cron:    config.CronConfig{Secret: "cron-secret"},
	}
	log := zap.NewNop()
	svc, err := NewServices(Dependencies{DB: db, Config: cfg, Log: log, Mailer: mail.NewNoopMailer(log)})
	require.NoError(t, err)
	return &testAPI{t: t, db: db, svc: svc, router: NewRouter(cfg, svc, log)}
}

type envelope struct {
	Code       int                  `json:"code"`
	Mess       string               `json:"mess"`
	Data       json.RawMessage      `json:"data"`
	Pagination *services.Pagination `json:"pagination"`
}

func (a *testAPI) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token)
}

func (a *testAPI) send(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testAPI) user(email string, role models.Role, verified bool) (models.User, string) {
	a.t.Helper()
	hashed, err := services.HashPassword("password123")
	require.NoError(a.t, err)
	u := models.User{Name: strings.Split(email, "@")[0], Email: email, Password: hashed, Role: role, IsEmailVerified: verified}
	require.NoError(a.t, a.db.Create(&u).Error)
	token, err := a.svc.Tokens.Generate(u)
	require.NoError(a.t, err)
	return u, token
}

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format(services.DateLayout)
}

func TestBookingFlow(t *testing.T) {
	api := newTestAPI(t)
	_, hostToken := api.user("host@example.com", models.RoleTenant, true)
	_, guestToken := api.user("guest@example.com", models.RoleUser, true)
	_, otherToken := api.user("other@example.com", models.RoleUser, true)

	w, env := api.do(http.MethodPost, "/api/properties", hostToken, map[string]interface{}{
		"name": "Villa Ubud", "city": "Gianyar", "address": "Jl. Raya Ubud",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var property models.Property
	require.NoError(t, json.Unmarshal(env.Data, &property))

	w, env = api.do(http.MethodPost, "/api/rooms", hostToken, map[string]interface{}{
		"propertyId": property.ID, "name": "Deluxe", "capacity": 2, "basePrice": "750000", "totalUnits": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var room models.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))

	w, env = api.do(http.MethodGet, "/api/properties?city=gianyar", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)

	booking := map[string]interface{}{
		"propertyId": property.ID, "checkIn": day(10), "checkOut": day(12), "guests": 2,
		"items": []map[string]interface{}{{"roomId": room.ID, "units": 1}},
	}
	w, env = api.do(http.MethodPost, "/api/bookings", guestToken, booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.BookingPendingPayment, created.Status)
	assert.Equal(t, "1500000", created.TotalPrice.String())

	w, env = api.do(http.MethodPost, "/api/bookings", otherToken, booking)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, env.Code)

	w, _ = api.do(http.MethodGet, "/api/bookings/"+itoa(created.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// payment proof, then the file is served back
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/"+itoa(created.ID)+"/payment-proof", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env = api.send(req, guestToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var waiting models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &waiting))
	assert.Equal(t, models.BookingWaitingConfirmation, waiting.Status)
	require.True(t, strings.HasPrefix(waiting.PaymentProofURL, "/api/uploads/payment-proofs/"))

	w, _ = api.send(httptest.NewRequest(http.MethodGet, waiting.PaymentProofURL, nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w, _ = api.send(httptest.NewRequest(http.MethodGet, "/api/uploads/../../etc/passwd", nil), "")
	assert.NotEqual(t, http.StatusOK, w.Code)

	// guests cannot confirm, the host can
	w, _ = api.do(http.MethodPost, "/api/tenant/bookings/"+itoa(created.ID)+"/confirm", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = api.do(http.MethodPost, "/api/tenant/bookings/"+itoa(created.ID)+"/confirm", hostToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = api.do(http.MethodPost, "/api/bookings/"+itoa(created.ID)+"/cancel", guestToken, map[string]string{"reason": "changed plans"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.do(http.MethodGet, "/api/bookings?status=confirmed", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)
}

func itoa(id uint) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func TestUnverifiedUsersCannotBook(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.user("new@example.com", models.RoleUser, false)

	w, env := api.do(http.MethodPost, "/api/bookings", token, map[string]interface{}{
		"propertyId": 1, "checkIn": day(1), "checkOut": day(2), "guests": 1, "roomId": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "please verify your email first", env.Mess)
}

func TestLoginSetsCookie(t *testing.T) {
	api := newTestAPI(t)
	api.user("guest@example.com", models.RoleUser, true)

	w, env := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "guest@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user_info"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.Equal(t, "guest@example.com", data.User.Email)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	w, _ = api.send(req, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "guest@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.Code)

	w, env = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Mess)
}

func TestGoogleLoginWithoutClientID(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodPost, "/api/oauth/google", "", map[string]string{"idToken": "abc"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "google sign-in is not configured", env.Mess)
}

func TestCronRequiresSecret(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodPost, "/api/cron/cancel-expired", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := api.do(http.MethodPost, "/api/cron/cancel-expired", "cron-secret", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res services.SweepResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, services.JobCancelExpired, res.Job)
	assert.Zero(t, res.Processed)
}

func TestHolidaysAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	_, hostToken := api.user("host@example.com", models.RoleTenant, true)
	_, adminToken := api.user("admin@example.com", models.RoleAdmin, true)
	holiday := map[string]string{"name": "Nyepi", "startDate": "2026-03-19"}

	w, _ := api.do(http.MethodPost, "/api/holidays", hostToken, holiday)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodPost, "/api/holidays", adminToken, holiday)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := api.do(http.MethodGet, "/api/holidays?year=2026", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Holiday
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Nyepi", list[0].Name)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)
	w, _ := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.send(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
