package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"podcast-be/internal/controller"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/internal/service"
	"podcast-be/internal/testutil"
	"podcast-be/pkg/gateway"
	"podcast-be/pkg/idempotency"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJwtSecret     = "controller-test-secret"
	testWebhookSecret = "whsec_controller"
)

type envelope struct {
	Success bool              `json:"success"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	nop := logger.NewNopLogger()
	stripe := gateway.NewStripeClient("", testWebhookSecret)

	subscriptions := service.NewSubscriptionService(uowFactory, nil, stripe, nil, nop, service.SubscriptionOptions{FreePlanName: "Free"})
	plans := service.NewPlanService(uowFactory, nop, "USD")
	webhooks := service.NewWebhookService(stripe, subscriptions, idempotency.NewMemoryStore(time.Hour), time.Hour, nop, nop)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api/v1")
	jwt := serverutils.NewJwtMiddleware(testJwtSecret)

	controller.NewPlanController(plans).RegisterRoutes(api, jwt)
	controller.NewSubscriptionController(subscriptions).RegisterRoutes(api, jwt)
	controller.NewWebhookController(webhooks).RegisterRoutes(api)

	return &testServer{app: app, db: db}
}

func bearer(t *testing.T, userId uuid.UUID, role string) string {
	t.Helper()
	token, err := serverutils.GenerateToken(testJwtSecret, userId, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *testServer) do(t *testing.T, method, path, auth string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestPlanRoutes_AdminGuard(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{
		"name":          "Studio",
		"description":   "For teams",
		"price":         4999,
		"duration_days": 30,
	}

	status, env := s.do(t, http.MethodPost, "/api/v1/plans", "", body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = s.do(t, http.MethodPost, "/api/v1/plans", bearer(t, uuid.New(), "user"), body)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/plans", bearer(t, uuid.New(), "admin"), body)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)

	status, env = s.do(t, http.MethodGet, "/api/v1/plans", "", nil)
	require.Equal(t, http.StatusOK, status)
	var plans []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, "Studio", plans[0]["name"])
	assert.EqualValues(t, 4999, plans[0]["price"])
}

func TestPlanRoutes_ValidationEnvelope(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/plans", bearer(t, uuid.New(), "admin"), map[string]interface{}{
		"name": "X",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation failed", env.Message)
	assert.Contains(t, env.Errors, "description")
	assert.Contains(t, env.Errors, "price")

	status, env = s.do(t, http.MethodGet, "/api/v1/plans/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid id", env.Message)

	status, _ = s.do(t, http.MethodGet, "/api/v1/plans/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPlanRoutes_CurrencyNormalised(t *testing.T) {
	s := newTestServer(t)
	admin := bearer(t, uuid.New(), "admin")
	body := map[string]interface{}{
		"name":          "Euro",
		"description":   "Priced in euros",
		"price":         999,
		"duration_days": 30,
		"currency":      "eur",
	}

	status, env := s.do(t, http.MethodPost, "/api/v1/plans", admin, body)
	require.Equal(t, http.StatusCreated, status)
	var plan map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, "EUR", plan["currency"])

	body["name"] = "Yen"
	body["currency"] = "jpy"
	status, env = s.do(t, http.MethodPost, "/api/v1/plans", admin, body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "currency")
}

func TestSubscriptionRoutes(t *testing.T) {
	s := newTestServer(t)
	testutil.CreatePlan(t, s.db, "Free", 0, 7)
	user := testutil.CreateUser(t, s.db, "subroutes")
	auth := bearer(t, user.Id, string(entity.UserRoleUser))

	status, env := s.do(t, http.MethodPost, "/api/v1/subscriptions/createFreeSubscription/"+user.Id.String(), "", nil)
	require.Equal(t, http.StatusCreated, status)
	var sub map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.Equal(t, "active", sub["status"])

	status, _ = s.do(t, http.MethodPost, "/api/v1/subscriptions/createFreeSubscription/"+user.Id.String(), "", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/subscriptions/getUserSubscription", auth, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	subId := sub["id"].(string)

	status, _ = s.do(t, http.MethodGet, "/api/v1/subscriptions/getAllSubscriptions", auth, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPut, "/api/v1/subscriptions/updateSubscription/"+subId, auth, map[string]interface{}{
		"end_date": time.Now().Add(365 * 24 * time.Hour),
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/subscriptions/cancelSubscription/"+subId, auth, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.Equal(t, "cancelled", sub["status"])
	assert.Equal(t, false, sub["auto_renew"])
}

func TestWebhookRoute(t *testing.T) {
	s := newTestServer(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", testutil.SignStripePayload("whsec_wrong", payload, time.Now()))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Contains(t, env.Message, "Webhook Error")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", testutil.SignStripePayload(testWebhookSecret, payload, time.Now()))
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ack map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.True(t, ack["received"])
}
