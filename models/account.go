// models/account.go
package models

import (
	"time"
)

// AccountRecord is the per-email document held in the record store. The
// Accounts list doubles as the IP allowlist and the sub-account count source:
// every trading terminal a user registers contributes one entry.
type AccountRecord struct {
	Email      string           `bson:"_id" json:"Email"`
	CustomerID string           `bson:"customerId" json:"CustomerId"`
	Accounts   []AllowlistEntry `bson:"accounts" json:"Accounts"`
	Results    []ResultEntry    `bson:"results,omitempty" json:"Results,omitempty"`
	CreatedAt  time.Time        `bson:"createdAt" json:"CreatedAt"`
}

// AllowlistEntry pairs a network identifier with the trading server it
// originated from.
type AllowlistEntry struct {
	ANo    string `bson:"aNo" json:"ANo"`
	Server string `bson:"server" json:"server"`
}

// ResultEntry is an appended trading-result record for one sub-account.
type ResultEntry struct {
	Account string      `bson:"account" json:"account"`
	Data    interface{} `bson:"data" json:"data"`
	At      time.Time   `bson:"at" json:"at"`
}

// CustomerResult is the ephemeral aggregate returned by the reconciliation
// endpoint. Type carries the category of the last subscription processed;
// Sub reports whether any subscription matched the requested category.
type CustomerResult struct {
	Found    bool                `json:"found"`
	Type     *string             `json:"type"`
	Sub      bool                `json:"sub"`
	Accounts int                 `json:"Accounts"`
	Result   []SubscriptionEntry `json:"result"`
	Email    string              `json:"email"`
}

// SubscriptionEntry describes one subscription in the reconciliation result.
// Subs holds a single element: the derived category, or null when the plan
// matches none of the configured price IDs.
type SubscriptionEntry struct {
	Email string    `json:"email"`
	ID    string    `json:"id"`
	Subs  []*string `json:"subs"`
}
