// Package clients holds the client registry.
package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client is a registered customer.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"referencia"`
	Name      string    `json:"nome"`
	CNPJ      string    `json:"cnpj"`
	Address   string    `json:"endereco"`
	City      string    `json:"cidade"`
	State     string    `json:"estado"`
	Buyer     string    `json:"comprador"`
	Phone     string    `json:"telefone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
