// handlers/records.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/signalworks/billing-backend/store"
)

// CheckIP reports whether the given ip is on the allowlist for the email.
// Missing fields or a missing record yield {valid:false, accounts:{}}.
func (h *Handlers) CheckIP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IP    string `json:"ip"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result := struct {
		Valid    bool        `json:"valid"`
		Accounts interface{} `json:"accounts"`
	}{Accounts: struct{}{}}

	if req.IP == "" || req.Email == "" {
		respondWithJSON(w, http.StatusOK, result)
		return
	}

	record, err := h.records.Account(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithJSON(w, http.StatusOK, result)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result.Accounts = record.Accounts
	for _, entry := range record.Accounts {
		if entry.ANo == req.IP {
			result.Valid = true
		}
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetIP returns the raw account record for an email.
func (h *Handlers) GetIP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" {
		respondWithJSON(w, http.StatusOK, struct{}{})
		return
	}

	record, err := h.records.Account(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithJSON(w, http.StatusOK, struct{}{})
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// RemoveIP deletes the allowlist entry at the given index.
func (h *Handlers) RemoveIP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Ind   *int   `json:"ind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Ind == nil {
		respondWithJSON(w, http.StatusOK, struct{}{})
		return
	}

	record, err := h.records.RemoveAllowedIP(r.Context(), req.Email, *req.Ind)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithJSON(w, http.StatusOK, struct{}{})
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// SaveResult appends a trading result for one of the email's sub-accounts.
func (h *Handlers) SaveResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string      `json:"email"`
		Account string      `json:"account"`
		Data    interface{} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	log.Info().Str("email", req.Email).Str("account", req.Account).Msg("result received")

	if req.Email == "" || req.Account == "" {
		respondWithJSON(w, http.StatusOK, struct{}{})
		return
	}

	record, err := h.records.AddResult(r.Context(), req.Email, req.Account, req.Data)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"r1":   record,
		"data": req.Data,
	})
}

// Message returns the broadcast message to clients running a version older
// than the configured one, and an empty string to everyone else.
func (h *Handlers) Message(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Version int `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	message := ""
	if h.config.Version > req.Version {
		message = h.config.Message
	}
	respondWithJSON(w, http.StatusOK, message)
}
