// handlers/handlers.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stripe/stripe-go/v72"

	"github.com/signalworks/billing-backend/config"
	"github.com/signalworks/billing-backend/store"
)

// PaymentsClient is the slice of the Stripe API this service calls.
type PaymentsClient interface {
	Customer(id string) (*stripe.Customer, error)
	CustomerByEmail(email string) (*stripe.Customer, error)
	CreateCustomer(email string) (*stripe.Customer, error)
	AttachPaymentMethod(paymentMethodID, customerID string) error
	SetDefaultPaymentMethod(customerID, paymentMethodID string) error
	PaymentMethod(id string) (*stripe.PaymentMethod, error)
	CreateSubscription(customerID, priceID, couponID string) (*stripe.Subscription, error)
	Subscription(id string) (*stripe.Subscription, error)
	Subscriptions(customerID string) ([]*stripe.Subscription, error)
	CancelSubscription(id string) (*stripe.Subscription, error)
	UpdateSubscriptionPrice(id, priceID string) (*stripe.Subscription, error)
	Invoice(id string) (*stripe.Invoice, error)
	UpcomingInvoice(customerID, subscriptionID, priceID string) (*stripe.Invoice, error)
	Coupon(id string) (*stripe.Coupon, error)
	ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripe.Event, error)
}

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	config   *config.Config
	payments PaymentsClient
	records  store.RecordStore
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cfg *config.Config, payments PaymentsClient, records store.RecordStore) *Handlers {
	return &Handlers{
		config:   cfg,
		payments: payments,
		records:  records,
	}
}

// Helper functions for response handling
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Error encoding response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
