package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/auth"
	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/notify"
	"github.com/Freeeeeet/tutorhub/internal/repository/memory"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type discardNotifier struct{}

func (discardNotifier) Notify(notify.Event) {}

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
}

type serverOption func(*Options)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store := memory.NewStore()
	tokens := auth.NewTokens("test-secret", time.Hour)
	ratings := service.NewRatingService(store.Ratings(), store.Users(), store.Bookings(), logger)

	svcs := Services{
		Users:        service.NewUserService(store.Users(), ratings, tokens, logger),
		Posts:        service.NewPostService(store.Posts(), logger),
		Applications: service.NewApplicationService(store.Applications(), store.Posts(), store.Users(), discardNotifier{}, logger),
		Bookings:     service.NewBookingService(store.Bookings(), store.Posts(), store.Users(), logger),
		Ledger:       service.NewLedgerService(store.Users(), store.Posts(), store.Applications(), store.Transactions(), discardNotifier{}, logger),
		Ratings:      ratings,
	}

	o := Options{
		Pager:          common.Pager{DefaultLimit: 20, MaxLimit: 100},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	for _, opt := range opts {
		opt(&o)
	}

	srv := NewServer(o, svcs, auth.NewAuthenticator(tokens, store.Users()), logger)
	return &testServer{t: t, handler: srv.Handler(), store: store}
}

// addUser создаёт пользователя и логинится через API
func (s *testServer) addUser(username string, balance int64, role model.Role) (model.Principal, string) {
	s.t.Helper()

	hash, err := auth.HashPassword("secret")
	require.NoError(s.t, err)
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Status:       model.UserStatusUnverified,
		Balance:      decimal.NewFromInt(balance),
	}
	require.NoError(s.t, s.store.Users().Create(context.Background(), u))

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "secret"}, http.StatusOK, &out)
	require.Equal(s.t, "bearer", out.TokenType)
	return u.Principal(), out.AccessToken
}

func (s *testServer) request(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) do(method, path, token string, body any, wantStatus int, out any) {
	s.t.Helper()
	rec := s.request(method, path, token, body)
	require.Equal(s.t, wantStatus, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestHealthPerService(t *testing.T) {
	s := newTestServer(t)
	for _, name := range AllServices {
		var out map[string]string
		s.do(http.MethodGet, "/api/"+name+"/health", "", nil, http.StatusOK, &out)
		assert.Equal(t, "ok", out["status"])
	}
}

func TestEnabledServices(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.EnabledServices = []string{ServicePost} })

	assert.Equal(t, http.StatusOK, s.request(http.MethodGet, "/api/post/health", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.request(http.MethodGet, "/api/transaction/health", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.request(http.MethodPost, "/api/auth/login", "", nil).Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodGet, "/api/auth/me/get-profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = s.request(http.MethodGet, "/api/auth/me/get-profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "incorrect username or password", detail(t, rec))
}

func TestLoginWithForm(t *testing.T) {
	s := newTestServer(t)
	s.addUser("bronya", 0, model.RoleCustomer)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("username=bronya&password=secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestProfileHidesBalanceFromOthers(t *testing.T) {
	s := newTestServer(t)
	tutor, tutorToken := s.addUser("jingyuan", 750_000, model.RoleCustomer)
	_, parentToken := s.addUser("bronya", 0, model.RoleCustomer)

	var own map[string]any
	s.do(http.MethodGet, "/api/auth/me/get-profile", tutorToken, nil, http.StatusOK, &own)
	assert.Equal(t, "750000", own["balance"])
	assert.NotContains(t, own, "PasswordHash")

	var public map[string]any
	s.do(http.MethodPost, "/api/auth/get-profile-by-user-id", parentToken, map[string]any{"user_id": tutor.ID}, http.StatusOK, &public)
	assert.Equal(t, "jingyuan@example.com", public["email"])
	assert.NotContains(t, public, "balance")
	assert.Nil(t, public["avg_rating"])
}

func TestMarketplaceFlow(t *testing.T) {
	s := newTestServer(t)
	parent, parentToken := s.addUser("bronya", 200_000, model.RoleCustomer)
	tutor, tutorToken := s.addUser("jingyuan", 100_000, model.RoleCustomer)
	_, strangerToken := s.addUser("herta", 0, model.RoleCustomer)

	var post model.Post
	s.do(http.MethodPost, "/api/post/add-post", parentToken, map[string]any{
		"title": "Math grade 9", "subject": "Math", "level": "9", "mode": "online", "salary_amount": 150000,
	}, http.StatusCreated, &post)
	assert.Equal(t, model.PostStatusInactive, post.PostStatus)
	assert.Equal(t, parent.ID, post.CreatorID)

	var open []model.Post
	s.do(http.MethodGet, "/api/post/get-post?scope=all&subject=math", tutorToken, nil, http.StatusOK, &open)
	require.Len(t, open, 1)

	var app model.Application
	s.do(http.MethodPost, "/api/application/add-application", tutorToken, map[string]any{"post_id": post.ID}, http.StatusCreated, &app)
	assert.Equal(t, tutor.ID, app.TutorID)

	rec := s.request(http.MethodPost, "/api/application/update-status", strangerToken, map[string]any{"id": app.ID, "application_status": "accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.request(http.MethodPost, "/api/application/update-status", parentToken, map[string]any{"id": app.ID, "application_status": "accepted_and_paid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.do(http.MethodPost, "/api/application/update-status", parentToken, map[string]any{"id": app.ID, "application_status": "accepted"}, http.StatusOK, &app)
	assert.Equal(t, model.ApplicationStatusAccepted, app.ApplicationStatus)

	rec = s.request(http.MethodPost, "/api/transaction/pay-application", tutorToken, map[string]any{"application_id": app.ID, "amount_money": 150000})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "your balance: 100000.00, required: 150000.00", detail(t, rec))

	var tx model.Transaction
	s.do(http.MethodPost, "/api/transaction/pay-application", tutorToken, map[string]any{"application_id": app.ID, "amount_money": "50000.50"}, http.StatusCreated, &tx)
	assert.Equal(t, model.TransactionStatusPaid, tx.TransactionStatus)
	assert.True(t, decimal.RequireFromString("50000.50").Equal(tx.AmountMoney))

	s.do(http.MethodGet, "/api/post/"+post.ID.String(), parentToken, nil, http.StatusOK, &post)
	assert.Equal(t, model.PostStatusActive, post.PostStatus)
	require.NotNil(t, post.AssignedTutor)
	assert.Equal(t, tutor.ID, *post.AssignedTutor)

	rec = s.request(http.MethodPost, "/api/transaction/add-transaction", parentToken, map[string]any{"post_id": post.ID, "amount_money": 1000})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var txs []model.Transaction
	s.do(http.MethodGet, "/api/transaction/me/get-transaction?transaction_status=paid", tutorToken, nil, http.StatusOK, &txs)
	assert.Len(t, txs, 1)

	rec = s.request(http.MethodGet, "/api/transaction/me/get-transaction", parentToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var booking model.Booking
	s.do(http.MethodPost, "/api/booking/add-booking", parentToken, map[string]any{
		"post_id": post.ID, "tutor_id": tutor.ID, "start_date": "2026-09-01T00:00:00Z", "end_date": "2026-12-01T00:00:00Z",
	}, http.StatusCreated, &booking)
	assert.Equal(t, model.DefaultContractStatus, booking.ContractStatus)
	assert.Equal(t, parent.ID, booking.ParentID)

	var rating model.Rating
	s.do(http.MethodPost, "/api/rating/add-rating", parentToken, map[string]any{
		"tutor_id": tutor.ID, "booking_id": booking.ID, "rating": 5, "comment": "great",
	}, http.StatusCreated, &rating)

	rec = s.request(http.MethodGet, "/api/rating/tutor/"+tutor.ID.String()+"/ratings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var ratings []model.Rating
	s.do(http.MethodGet, "/api/rating/tutor/"+tutor.ID.String()+"/ratings", parentToken, nil, http.StatusOK, &ratings)
	require.Len(t, ratings, 1)
	assert.Equal(t, rating.ID, ratings[0].ID)

	var profile map[string]any
	s.do(http.MethodGet, "/api/auth/me/get-profile", tutorToken, nil, http.StatusOK, &profile)
	assert.Equal(t, "49999.5", profile["balance"])
	assert.Equal(t, "5", profile["avg_rating"])
	assert.EqualValues(t, 1, profile["rating_count"])
}

func TestFundPostInsufficientBalance(t *testing.T) {
	s := newTestServer(t)
	_, token := s.addUser("bronya", 100_000, model.RoleCustomer)

	var post model.Post
	s.do(http.MethodPost, "/api/post/add-post", token, map[string]any{"title": "Physics"}, http.StatusCreated, &post)

	rec := s.request(http.MethodPost, "/api/transaction/add-transaction", token, map[string]any{"post_id": post.ID, "amount_money": 150000})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = s.request(http.MethodPost, "/api/transaction/add-transaction", token, map[string]any{"post_id": post.ID, "amount_money": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var funded model.Transaction
	s.do(http.MethodPost, "/api/transaction/add-transaction", token, map[string]any{"post_id": post.ID, "amount_money": 50000}, http.StatusCreated, &funded)

	var profile map[string]any
	s.do(http.MethodGet, "/api/auth/me/get-profile", token, nil, http.StatusOK, &profile)
	assert.Equal(t, "50000", profile["balance"])
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)
	_, token := s.addUser("bronya", 0, model.RoleCustomer)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"malformed post id", http.MethodGet, "/api/post/not-a-uuid", nil, http.StatusBadRequest},
		{"missing post id", http.MethodPost, "/api/application/add-application", map[string]any{}, http.StatusBadRequest},
		{"invalid uuid in body", http.MethodPost, "/api/post/delete-post", map[string]any{"post_id": "123"}, http.StatusBadRequest},
		{"negative skip", http.MethodGet, "/api/application/me/get-application?skip=-1", nil, http.StatusBadRequest},
		{"unknown scope", http.MethodGet, "/api/post/get-post?scope=everyone", nil, http.StatusBadRequest},
		{"unknown post", http.MethodGet, "/api/post/8b0c3f4e-6f67-4a8e-9a0a-8d5c2d4b7a11", nil, http.StatusNotFound},
		{"non admin status change", http.MethodPost, "/api/auth/admin/update-profile-status",
			map[string]any{"user_id": "8b0c3f4e-6f67-4a8e-9a0a-8d5c2d4b7a11", "status": "accepted"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.request(tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, detail(t, rec))
		})
	}
}

func TestAdminVerification(t *testing.T) {
	s := newTestServer(t)
	user, userToken := s.addUser("bronya", 0, model.RoleCustomer)
	_, adminToken := s.addUser("qui", 0, model.RoleAdmin)

	s.do(http.MethodPost, "/api/auth/me/request-profile-verification", userToken, nil, http.StatusOK, nil)

	var pending []map[string]any
	s.do(http.MethodPost, "/api/auth/get-profiles-by-status", adminToken, map[string]any{"status": "pending"}, http.StatusOK, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, user.ID.String(), pending[0]["id"])

	s.do(http.MethodPost, "/api/auth/admin/update-profile-status", adminToken,
		map[string]any{"user_id": user.ID, "status": "accepted"}, http.StatusOK, nil)

	// роль и статус перечитываются на каждом запросе, старый токен видит новый статус
	rec := s.request(http.MethodPost, "/api/auth/me/request-profile-verification", userToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(o *Options) {
		o.RateLimitRPS = 0.001
		o.RateLimitBurst = 1
	})

	rec := s.request(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "a", "password": "b"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "a", "password": "b"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	assert.Equal(t, http.StatusOK, s.request(http.MethodGet, "/api/auth/health", "", nil).Code, "health is not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.request(http.MethodGet, "/api/post/health", "", nil)

	rec := s.request(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tutorhub_http_requests_total{method="GET",route="/api/post/health",status="200"}`)
}
