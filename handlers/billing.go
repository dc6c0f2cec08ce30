// handlers/billing.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/signalworks/billing-backend/payments"
)

// GetConfig exposes the publishable key to the front-end.
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"publishableKey": h.config.StripePublishableKey,
	})
}

// CreateCustomer returns the Stripe customer for the given email, creating
// one if no customer with that email exists yet.
func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	customer, err := h.payments.CustomerByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, payments.ErrCustomerNotFound) {
			respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
			return
		}
		customer, err = h.payments.CreateCustomer(req.Email)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"customer": customer})
}

// CreateSubscription attaches the payment method, makes it the customer's
// default and subscribes the customer to the price configured for the
// requested category. Attach failures are card declines and map to 402.
func (h *Handlers) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethodID string `json:"paymentMethodId"`
		CustomerID      string `json:"customerId"`
		PriceID         string `json:"priceId"`
		Coupon          string `json:"coupon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.payments.AttachPaymentMethod(req.PaymentMethodID, req.CustomerID); err != nil {
		respondWithJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error": map[string]string{"message": payments.ErrorMessage(err)},
		})
		return
	}

	if err := h.payments.SetDefaultPaymentMethod(req.CustomerID, req.PaymentMethodID); err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	priceID, ok := h.config.PriceID(req.PriceID)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Unknown price identifier: "+req.PriceID)
		return
	}

	subscription, err := h.payments.CreateSubscription(req.CustomerID, priceID, req.Coupon)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, subscription)
}

// RetryInvoice re-attaches a payment method after a decline and returns the
// open invoice with its payment intent expanded.
func (h *Handlers) RetryInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethodID string `json:"paymentMethodId"`
		CustomerID      string `json:"customerId"`
		InvoiceID       string `json:"invoiceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.payments.AttachPaymentMethod(req.PaymentMethodID, req.CustomerID); err != nil {
		respondWithJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"result": map[string]interface{}{
				"error": map[string]string{"message": payments.ErrorMessage(err)},
			},
		})
		return
	}
	if err := h.payments.SetDefaultPaymentMethod(req.CustomerID, req.PaymentMethodID); err != nil {
		respondWithJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"result": map[string]interface{}{
				"error": map[string]string{"message": payments.ErrorMessage(err)},
			},
		})
		return
	}

	invoice, err := h.payments.Invoice(req.InvoiceID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, invoice)
}

// RetrieveUpcomingInvoice previews the proration produced by moving the
// subscription to a new price.
func (h *Handlers) RetrieveUpcomingInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID     string `json:"customerId"`
		SubscriptionID string `json:"subscriptionId"`
		NewPriceID     string `json:"newPriceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	priceID, ok := h.config.PriceID(req.NewPriceID)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Unknown price identifier: "+req.NewPriceID)
		return
	}

	invoice, err := h.payments.UpcomingInvoice(req.CustomerID, req.SubscriptionID, priceID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, invoice)
}

// CancelSubscription cancels a subscription immediately.
func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	deleted, err := h.payments.CancelSubscription(req.SubscriptionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, deleted)
}

// UpdateSubscription swaps the subscription to the price configured for the
// requested category.
func (h *Handlers) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubscriptionID string `json:"subscriptionId"`
		NewPriceID     string `json:"newPriceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	priceID, ok := h.config.PriceID(req.NewPriceID)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Unknown price identifier: "+req.NewPriceID)
		return
	}

	updated, err := h.payments.UpdateSubscriptionPrice(req.SubscriptionID, priceID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// RetrievePaymentMethod fetches a payment method so the front-end can show
// card details.
func (h *Handlers) RetrievePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethodID string `json:"paymentMethodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	pm, err := h.payments.PaymentMethod(req.PaymentMethodID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusOK, pm)
}

// CheckCoupon reports whether a coupon code exists. Lookup failures land in
// the err field rather than an error status.
func (h *Handlers) CheckCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coupon string `json:"coupon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result := struct {
		Res interface{} `json:"res"`
		Err *string     `json:"err"`
	}{}

	c, err := h.payments.Coupon(req.Coupon)
	if err != nil {
		msg := payments.ErrorMessage(err)
		result.Err = &msg
	} else {
		result.Res = c
	}

	respondWithJSON(w, http.StatusOK, result)
}
