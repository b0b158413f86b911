// Package api serves the JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dukerupert/cadastro/internal/address"
	"github.com/dukerupert/cadastro/internal/domain"
	"github.com/dukerupert/cadastro/internal/handler"
	"github.com/dukerupert/cadastro/internal/middleware"
	"github.com/dukerupert/cadastro/internal/registration"
	"github.com/dukerupert/cadastro/internal/telemetry"
)

// AddressLookup resolves an 8-digit CEP.
type AddressLookup interface {
	Search(ctx context.Context, postalCode string) (*address.Address, error)
}

// AddressResponse is the JSON body of a resolved CEP.
type AddressResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento,omitempty"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
}

// CEPHandler handles CEP lookups for API clients
type CEPHandler struct {
	lookup  AddressLookup
	metrics *telemetry.BusinessMetrics
}

// NewCEPHandler creates a new CEP lookup handler
func NewCEPHandler(lookup AddressLookup, metrics *telemetry.BusinessMetrics) *CEPHandler {
	return &CEPHandler{
		lookup:  lookup,
		metrics: metrics,
	}
}

// Get handles GET /api/cep/{cep}
func (h *CEPHandler) Get(w http.ResponseWriter, r *http.Request) {
	cep := r.PathValue("cep")
	if msg := registration.ValidateField(registration.FieldPostalCode, cep); msg != "" {
		h.record(registration.StatusRejected, 0)
		handler.ValidationErrorResponse(w, r, domain.NewValidationError("api.cep", map[string]string{
			string(registration.FieldPostalCode): msg,
		}))
		return
	}

	start := time.Now()
	addr, err := h.lookup.Search(r.Context(), cep)
	if err == nil && !addr.Resolved() {
		err = address.ErrNotFound
	}
	if err != nil {
		h.record(registration.StatusFailed, time.Since(start))
		if !domain.IsCode(err, domain.ENOTFOUND) {
			middleware.GetLogger(r.Context()).Warn("CEP lookup failed", "cep", cep, "error", err)
		}
		handler.ErrorResponse(w, r, err)
		return
	}
	h.record(registration.StatusSucceeded, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_ = json.NewEncoder(w).Encode(AddressResponse{
		CEP:          cep,
		Street:       addr.Street,
		Complement:   addr.Complement,
		Neighborhood: addr.Neighborhood,
		City:         addr.City,
		State:        addr.State,
	})
}

func (h *CEPHandler) record(status registration.Status, d time.Duration) {
	if h.metrics != nil {
		h.metrics.RecordLookup(status.String(), d)
	}
}
