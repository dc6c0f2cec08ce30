// payments/client.go
package payments

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/coupon"
	"github.com/stripe/stripe-go/v72/customer"
	"github.com/stripe/stripe-go/v72/invoice"
	"github.com/stripe/stripe-go/v72/paymentmethod"
	"github.com/stripe/stripe-go/v72/sub"
	"github.com/stripe/stripe-go/v72/webhook"
)

// ErrCustomerNotFound is returned when no Stripe customer matches a lookup.
var ErrCustomerNotFound = errors.New("customer not found")

// Client wraps the Stripe API calls this service performs.
type Client struct {
	webhookSecret string
}

// NewClient sets the Stripe API key and returns a new client.
func NewClient(secretKey, webhookSecret string) *Client {
	stripe.Key = secretKey
	return &Client{webhookSecret: webhookSecret}
}

// Customer retrieves a customer by ID.
func (*Client) Customer(id string) (*stripe.Customer, error) {
	return customer.Get(id, nil)
}

// CustomerByEmail returns the first customer with the given email, or
// ErrCustomerNotFound.
func (*Client) CustomerByEmail(email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	iter := customer.List(params)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return nil, err
		}
		return nil, ErrCustomerNotFound
	}
	return iter.Customer(), nil
}

// CreateCustomer creates a new customer with the given email.
func (*Client) CreateCustomer(email string) (*stripe.Customer, error) {
	return customer.New(&stripe.CustomerParams{Email: stripe.String(email)})
}

// AttachPaymentMethod attaches a payment method to a customer.
func (*Client) AttachPaymentMethod(paymentMethodID, customerID string) error {
	_, err := paymentmethod.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	return err
}

// SetDefaultPaymentMethod sets the customer's invoice default payment method.
func (*Client) SetDefaultPaymentMethod(customerID, paymentMethodID string) error {
	_, err := customer.Update(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	return err
}

// PaymentMethod retrieves a payment method by ID.
func (*Client) PaymentMethod(id string) (*stripe.PaymentMethod, error) {
	return paymentmethod.Get(id, nil)
}

// CreateSubscription subscribes the customer to the given price, with the
// latest invoice's payment intent and any pending setup intent expanded.
func (*Client) CreateSubscription(customerID, priceID, couponID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
	}
	if couponID != "" {
		params.Coupon = stripe.String(couponID)
	}
	params.AddExpand("latest_invoice.payment_intent")
	params.AddExpand("pending_setup_intent")
	return sub.New(params)
}

// Subscription retrieves a subscription by ID.
func (*Client) Subscription(id string) (*stripe.Subscription, error) {
	return sub.Get(id, nil)
}

// Subscriptions lists all subscriptions for a customer.
func (*Client) Subscriptions(customerID string) ([]*stripe.Subscription, error) {
	var subscriptions []*stripe.Subscription
	iter := sub.List(&stripe.SubscriptionListParams{Customer: customerID})
	for iter.Next() {
		subscriptions = append(subscriptions, iter.Subscription())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// CancelSubscription cancels a subscription immediately.
func (*Client) CancelSubscription(id string) (*stripe.Subscription, error) {
	return sub.Cancel(id, nil)
}

// UpdateSubscriptionPrice swaps the subscription's first item to the given
// price and clears any pending cancellation.
func (*Client) UpdateSubscriptionPrice(id, priceID string) (*stripe.Subscription, error) {
	current, err := sub.Get(id, nil)
	if err != nil {
		return nil, err
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, fmt.Errorf("subscription %s has no items", id)
	}
	return sub.Update(id, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.Items.Data[0].ID),
				Price: stripe.String(priceID),
			},
		},
	})
}

// Invoice retrieves an invoice by ID with its payment intent expanded.
func (*Client) Invoice(id string) (*stripe.Invoice, error) {
	params := &stripe.InvoiceParams{}
	params.AddExpand("payment_intent")
	return invoice.Get(id, params)
}

// UpcomingInvoice previews the prorated invoice produced by swapping the
// subscription's first item to the given price.
func (*Client) UpcomingInvoice(customerID, subscriptionID, priceID string) (*stripe.Invoice, error) {
	current, err := sub.Get(subscriptionID, nil)
	if err != nil {
		return nil, err
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, fmt.Errorf("subscription %s has no items", subscriptionID)
	}
	params := &stripe.InvoiceParams{
		Customer:                      stripe.String(customerID),
		Subscription:                  stripe.String(subscriptionID),
		SubscriptionProrationBehavior: stripe.String("create_prorations"),
		SubscriptionItems: []*stripe.SubscriptionItemsParams{
			{
				ID:         stripe.String(current.Items.Data[0].ID),
				ClearUsage: stripe.Bool(true),
				Deleted:    stripe.Bool(true),
			},
			{
				Price:   stripe.String(priceID),
				Deleted: stripe.Bool(false),
			},
		},
	}
	return invoice.GetNext(params)
}

// Coupon retrieves a coupon by ID.
func (*Client) Coupon(id string) (*stripe.Coupon, error) {
	return coupon.Get(id, nil)
}

// ValidateWebhookEvent verifies the signature on a raw webhook payload and
// parses the event.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ErrorMessage extracts the human-readable message from a Stripe API error.
func ErrorMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
