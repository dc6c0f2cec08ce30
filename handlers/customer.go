// handlers/customer.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v72"

	"github.com/signalworks/billing-backend/models"
	"github.com/signalworks/billing-backend/payments"
)

type reconcileRequest struct {
	Email  string `json:"email"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	IP     string `json:"ip"`
	Server string `json:"server"`
}

// invalidEmailResponse is returned when neither identifier resolves to a
// customer with an email.
var invalidEmailResponse = map[string]string{"err": "invalid Email"}

// ReconcileCustomer merges the customer's Stripe subscriptions with the local
// account record: it resolves email<->customer id, reports whether any
// subscription (and any of the requested category) exists, counts local
// sub-accounts and, when ip+server are supplied, registers an allowlist
// entry. Record-store failures never abort the response.
func (h *Handlers) ReconcileCustomer(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result := models.CustomerResult{}
	if req.Email == "" && req.ID == "" {
		respondWithJSON(w, http.StatusOK, result)
		return
	}

	email := req.Email
	customerID := req.ID
	if customerID == "" {
		customer, err := h.payments.CustomerByEmail(email)
		if err != nil {
			if errors.Is(err, payments.ErrCustomerNotFound) {
				respondWithJSON(w, http.StatusOK, invalidEmailResponse)
				return
			}
			respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
			return
		}
		customerID = customer.ID
	}
	if email == "" {
		customer, err := h.payments.Customer(customerID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
			return
		}
		if customer.Email == "" {
			respondWithJSON(w, http.StatusOK, invalidEmailResponse)
			return
		}
		email = customer.Email
	}
	result.Email = email

	subscriptions, err := h.payments.Subscriptions(customerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, payments.ErrorMessage(err))
		return
	}

	// Best-effort local record work: failures are logged, never surfaced.
	ctx := r.Context()
	record, err := h.records.EnsureAccount(ctx, email, customerID)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("account record lookup failed")
	} else {
		result.Accounts = len(record.Accounts)
	}
	if req.IP != "" && req.Server != "" {
		entry := models.AllowlistEntry{ANo: req.IP, Server: req.Server}
		if _, err := h.records.AddAllowedIP(ctx, email, entry); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("allowlist append failed")
		}
	}

	if len(subscriptions) > 0 {
		result.Found = true
		result.Result = make([]models.SubscriptionEntry, 0, len(subscriptions))
		for _, s := range subscriptions {
			entry := models.SubscriptionEntry{
				Email: email,
				ID:    s.ID,
				Subs:  []*string{},
			}
			if plan := subscriptionPlan(s); plan != nil {
				category := h.config.Category(plan.ID)
				if category != nil && req.Type == *category {
					result.Sub = true
				}
				entry.Subs = append(entry.Subs, category)
				// The last subscription processed wins.
				result.Type = category
			}
			result.Result = append(result.Result, entry)
		}
	}

	respondWithJSON(w, http.StatusOK, result)
}

// subscriptionPlan returns the subscription's plan, falling back to the
// first item's plan when the legacy top-level field is unset.
func subscriptionPlan(s *stripe.Subscription) *stripe.Plan {
	if s.Plan != nil {
		return s.Plan
	}
	if s.Items != nil && len(s.Items.Data) > 0 {
		return s.Items.Data[0].Plan
	}
	return nil
}
