package address

import (
	"context"

	"github.com/dukerupert/cadastro/internal/domain"
)

// Lookup resolves a Brazilian postal code (CEP) to an address.
// Implementations can use external APIs like ViaCEP, BrasilAPI, Correios, etc.
// Callers must pass an 8-digit CEP; format validation is the caller's job.
type Lookup interface {
	Search(ctx context.Context, postalCode string) (*Address, error)
}

// Address is the part of a street address a CEP resolves to.
type Address struct {
	PostalCode   string
	Street       string // logradouro
	Complement   string
	Neighborhood string // bairro
	City         string // localidade
	State        string // uf
}

// Resolved reports whether the address carries both street and neighborhood,
// the minimum a registration needs.
func (a *Address) Resolved() bool {
	return a != nil && a.Street != "" && a.Neighborhood != ""
}

// ErrNotFound is returned when the CEP does not exist or resolves to an
// address without street and neighborhood.
var ErrNotFound = domain.Errorf(domain.ENOTFOUND, "address.search", "CEP não encontrado")
