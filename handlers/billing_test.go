// handlers/billing_test.go
package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	h := NewHandlers(testConfig(), newFakePayments(), newFakeStore())

	req := httptest.NewRequest("GET", "/config", nil)
	w := httptest.NewRecorder()
	h.GetConfig(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publishableKey":"pk_test_fake_key"}`, w.Body.String())
}

func TestCreateSubscriptionAttachFailure(t *testing.T) {
	fp := newFakePayments()
	fp.attachErr = errors.New("Your card was declined.")
	h := NewHandlers(testConfig(), fp, newFakeStore())

	w, response := post(t, h.CreateSubscription,
		`{"paymentMethodId":"pm_1","customerId":"cus_123","priceId":"FOREX"}`)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	errBody := response["error"].(map[string]interface{})
	assert.Equal(t, "Your card was declined.", errBody["message"])

	// The decline short-circuits everything after the attach.
	assert.Equal(t, []string{"AttachPaymentMethod"}, fp.calls)
}

func TestCreateSubscriptionMapsCategoryToPrice(t *testing.T) {
	fp := newFakePayments()
	h := NewHandlers(testConfig(), fp, newFakeStore())

	w, response := post(t, h.CreateSubscription,
		`{"paymentMethodId":"pm_1","customerId":"cus_123","priceId":"CRYPTO"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, response, "plan")
	plan := response["plan"].(map[string]interface{})
	assert.Equal(t, "price_crypto", plan["id"])
}

func TestCreateSubscriptionUnknownCategory(t *testing.T) {
	fp := newFakePayments()
	h := NewHandlers(testConfig(), fp, newFakeStore())

	w, _ := post(t, h.CreateSubscription,
		`{"paymentMethodId":"pm_1","customerId":"cus_123","priceId":"BONDS"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckCoupon(t *testing.T) {
	h := NewHandlers(testConfig(), newFakePayments(), newFakeStore())

	_, response := post(t, h.CheckCoupon, `{"coupon":"WELCOME10"}`)
	assert.Nil(t, response["err"])
	require.NotNil(t, response["res"])
}
