package domain

import (
	"context"
	"time"
)

// =============================================================================
// USER REGISTRATION DOMAIN TYPES
// =============================================================================

// User is a registered user document as persisted by a UserStore.
type User struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"nome"`
	Age          int       `json:"idade"`
	Role         string    `json:"cargo"`
	PostalCode   string    `json:"cep"`
	Street       string    `json:"logradouro"`
	Neighborhood string    `json:"bairro"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

// UserStore persists registered users.
// Create leaves CreatedAt to the store; the returned id is store-generated.
type UserStore interface {
	Create(ctx context.Context, user User) (string, error)
	List(ctx context.Context, limit int) ([]User, error)
}
