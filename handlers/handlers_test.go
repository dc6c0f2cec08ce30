// handlers/handlers_test.go
package handlers

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v72"

	"github.com/signalworks/billing-backend/config"
	"github.com/signalworks/billing-backend/models"
	"github.com/signalworks/billing-backend/payments"
	"github.com/signalworks/billing-backend/store"
)

func testConfig() *config.Config {
	return &config.Config{
		StripePublishableKey: "pk_test_fake_key",
		PriceIDs: map[string]string{
			"FOREX":   "price_forex",
			"CRYPTO":  "price_crypto",
			"INDICES": "price_indices",
			"STOCK":   "price_stock",
		},
		Version:            3,
		Message:            "please update your terminal",
		Port:               "8080",
		Environment:        "test",
		CorsAllowedOrigins: []string{"*"},
	}
}

// fakePayments serves canned Stripe data and records which calls were made.
type fakePayments struct {
	customersByEmail map[string]*stripe.Customer
	customersByID    map[string]*stripe.Customer
	subscriptions    map[string][]*stripe.Subscription
	attachErr        error
	calls            []string
}

func newFakePayments() *fakePayments {
	return &fakePayments{
		customersByEmail: map[string]*stripe.Customer{},
		customersByID:    map[string]*stripe.Customer{},
		subscriptions:    map[string][]*stripe.Subscription{},
	}
}

func (f *fakePayments) addCustomer(id, email string, subs ...*stripe.Subscription) {
	c := &stripe.Customer{ID: id, Email: email}
	if email != "" {
		f.customersByEmail[email] = c
	}
	f.customersByID[id] = c
	f.subscriptions[id] = subs
}

func (f *fakePayments) Customer(id string) (*stripe.Customer, error) {
	f.calls = append(f.calls, "Customer")
	c, ok := f.customersByID[id]
	if !ok {
		return nil, errors.New("no such customer")
	}
	return c, nil
}

func (f *fakePayments) CustomerByEmail(email string) (*stripe.Customer, error) {
	f.calls = append(f.calls, "CustomerByEmail")
	c, ok := f.customersByEmail[email]
	if !ok {
		return nil, payments.ErrCustomerNotFound
	}
	return c, nil
}

func (f *fakePayments) CreateCustomer(email string) (*stripe.Customer, error) {
	f.calls = append(f.calls, "CreateCustomer")
	c := &stripe.Customer{ID: "cus_created", Email: email}
	f.customersByEmail[email] = c
	f.customersByID[c.ID] = c
	return c, nil
}

func (f *fakePayments) AttachPaymentMethod(paymentMethodID, customerID string) error {
	f.calls = append(f.calls, "AttachPaymentMethod")
	return f.attachErr
}

func (f *fakePayments) SetDefaultPaymentMethod(customerID, paymentMethodID string) error {
	f.calls = append(f.calls, "SetDefaultPaymentMethod")
	return nil
}

func (f *fakePayments) PaymentMethod(id string) (*stripe.PaymentMethod, error) {
	f.calls = append(f.calls, "PaymentMethod")
	return &stripe.PaymentMethod{ID: id}, nil
}

func (f *fakePayments) CreateSubscription(customerID, priceID, couponID string) (*stripe.Subscription, error) {
	f.calls = append(f.calls, "CreateSubscription")
	return &stripe.Subscription{ID: "sub_new", Plan: &stripe.Plan{ID: priceID}}, nil
}

func (f *fakePayments) Subscription(id string) (*stripe.Subscription, error) {
	f.calls = append(f.calls, "Subscription")
	return &stripe.Subscription{ID: id}, nil
}

func (f *fakePayments) Subscriptions(customerID string) ([]*stripe.Subscription, error) {
	f.calls = append(f.calls, "Subscriptions")
	return f.subscriptions[customerID], nil
}

func (f *fakePayments) CancelSubscription(id string) (*stripe.Subscription, error) {
	f.calls = append(f.calls, "CancelSubscription")
	return &stripe.Subscription{ID: id, Status: stripe.SubscriptionStatusCanceled}, nil
}

func (f *fakePayments) UpdateSubscriptionPrice(id, priceID string) (*stripe.Subscription, error) {
	f.calls = append(f.calls, "UpdateSubscriptionPrice")
	return &stripe.Subscription{ID: id, Plan: &stripe.Plan{ID: priceID}}, nil
}

func (f *fakePayments) Invoice(id string) (*stripe.Invoice, error) {
	f.calls = append(f.calls, "Invoice")
	return &stripe.Invoice{ID: id}, nil
}

func (f *fakePayments) UpcomingInvoice(customerID, subscriptionID, priceID string) (*stripe.Invoice, error) {
	f.calls = append(f.calls, "UpcomingInvoice")
	return &stripe.Invoice{ID: "in_upcoming"}, nil
}

func (f *fakePayments) Coupon(id string) (*stripe.Coupon, error) {
	f.calls = append(f.calls, "Coupon")
	return &stripe.Coupon{ID: id}, nil
}

func (f *fakePayments) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripe.Event, error) {
	f.calls = append(f.calls, "ValidateWebhookEvent")
	return nil, errors.New("not implemented in fake")
}

// fakeStore is an in-memory RecordStore.
type fakeStore struct {
	records     map[string]*models.AccountRecord
	ensureCalls int
	addIPCalls  int
	failEnsure  bool
	failAddIP   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*models.AccountRecord{}}
}

func (f *fakeStore) Account(_ context.Context, email string) (*models.AccountRecord, error) {
	record, ok := f.records[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) EnsureAccount(_ context.Context, email, customerID string) (*models.AccountRecord, error) {
	f.ensureCalls++
	if f.failEnsure {
		return nil, errors.New("store unavailable")
	}
	if record, ok := f.records[email]; ok {
		return record, nil
	}
	record := &models.AccountRecord{Email: email, CustomerID: customerID, Accounts: []models.AllowlistEntry{}}
	f.records[email] = record
	return record, nil
}

func (f *fakeStore) AddAllowedIP(_ context.Context, email string, entry models.AllowlistEntry) (*models.AccountRecord, error) {
	f.addIPCalls++
	if f.failAddIP {
		return nil, errors.New("store unavailable")
	}
	record, ok := f.records[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	record.Accounts = append(record.Accounts, entry)
	return record, nil
}

func (f *fakeStore) RemoveAllowedIP(_ context.Context, email string, index int) (*models.AccountRecord, error) {
	record, ok := f.records[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	if index >= 0 && index < len(record.Accounts) {
		record.Accounts = append(record.Accounts[:index], record.Accounts[index+1:]...)
	}
	return record, nil
}

func (f *fakeStore) AddResult(_ context.Context, email, account string, data interface{}) (*models.AccountRecord, error) {
	record, ok := f.records[email]
	if !ok {
		record = &models.AccountRecord{Email: email, Accounts: []models.AllowlistEntry{}}
		f.records[email] = record
	}
	record.Results = append(record.Results, models.ResultEntry{Account: account, Data: data})
	return record, nil
}
