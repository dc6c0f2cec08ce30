// routes/routes_test.go
package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalworks/billing-backend/config"
	"github.com/signalworks/billing-backend/handlers"
	"github.com/signalworks/billing-backend/models"
	"github.com/signalworks/billing-backend/payments"
	"github.com/signalworks/billing-backend/routes"
	"github.com/signalworks/billing-backend/store"
)

// stubStore satisfies store.RecordStore without a database.
type stubStore struct{}

func (stubStore) Account(context.Context, string) (*models.AccountRecord, error) {
	return nil, store.ErrNotFound
}

func (stubStore) EnsureAccount(_ context.Context, email, customerID string) (*models.AccountRecord, error) {
	return &models.AccountRecord{Email: email, CustomerID: customerID}, nil
}

func (stubStore) AddAllowedIP(_ context.Context, email string, _ models.AllowlistEntry) (*models.AccountRecord, error) {
	return &models.AccountRecord{Email: email}, nil
}

func (stubStore) RemoveAllowedIP(_ context.Context, email string, _ int) (*models.AccountRecord, error) {
	return &models.AccountRecord{Email: email}, nil
}

func (stubStore) AddResult(_ context.Context, email, _ string, _ interface{}) (*models.AccountRecord, error) {
	return &models.AccountRecord{Email: email}, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{
		StripePublishableKey: "pk_test_fake_key",
		PriceIDs:             map[string]string{"FOREX": "price_forex"},
		Environment:          "test",
		CorsAllowedOrigins:   []string{"*"},
	}
	client := payments.NewClient("sk_test_fake_key", "whsec_test")
	h := handlers.NewHandlers(cfg, client, stubStore{})
	return routes.SetupRoutes(cfg, h)
}

func TestHealthRoute(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestConfigRoute(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest("GET", "/config", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publishableKey":"pk_test_fake_key"}`, w.Body.String())
}

func TestReconcileRouteZeroValue(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest("POST", "/customer", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"found":false,"type":null,"sub":false,"Accounts":0,"result":null,"email":""}`, w.Body.String())
}

func TestWebhookRouteRejectsUnsigned(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"type":"invoice.paid"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorsPreflight(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest("OPTIONS", "/customer", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
