// handlers/webhook.go
package handlers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HandleStripeWebhook verifies the signature on incoming billing events and
// dispatches them by type. Verification failures always return 400 before
// any event handling happens.
func (h *Handlers) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error().Err(err).Msg("error reading webhook request body")
		respondWithError(w, http.StatusServiceUnavailable, "Error reading request body")
		return
	}

	event, err := h.payments.ValidateWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("webhook signature verification failed; check the configured webhook secret")
		respondWithError(w, http.StatusBadRequest, "Webhook signature verification failed")
		return
	}

	// Billing webhook reference: https://stripe.com/docs/billing/webhooks
	switch event.Type {
	case "invoice.paid":
		// Provisioning happens lazily on the next /customer call; the
		// paid invoice only needs acknowledging here.
		log.Info().Str("event", event.ID).Msg("invoice paid")
	case "invoice.payment_failed":
		log.Warn().Str("event", event.ID).Msg("invoice payment failed, subscription past due")
	case "invoice.finalized":
		log.Info().Str("event", event.ID).Msg("invoice finalized")
	case "customer.subscription.deleted":
		if event.Request != nil {
			log.Info().Str("event", event.ID).Msg("subscription cancelled by API request")
		} else {
			log.Info().Str("event", event.ID).Msg("subscription cancelled by billing settings")
		}
	case "customer.subscription.trial_will_end":
		log.Info().Str("event", event.ID).Msg("subscription trial ending soon")
	default:
		log.Info().Str("event", event.ID).Str("type", string(event.Type)).Msg("unhandled event type")
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
