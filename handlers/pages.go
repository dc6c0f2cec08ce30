// handlers/pages.go
package handlers

import (
	"net/http"
	"path/filepath"
)

// IndexPage serves the landing page.
func (h *Handlers) IndexPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.config.HTMLDir, "index.html"))
}

// AccountPage serves the account/billing page.
func (h *Handlers) AccountPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.config.HTMLDir, "account.html"))
}

// PricesPage serves the plan selection page, but only for a valid customer
// ID; anything else bounces back to the landing page.
func (h *Handlers) PricesPage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("customerId")
	if id == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if _, err := h.payments.Customer(id); err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.config.HTMLDir, "prices.html"))
}
