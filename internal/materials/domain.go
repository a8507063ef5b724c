// Package materials holds the material catalog used to price orders and
// resolve commission rates.
package materials

import (
	"time"

	"github.com/google/uuid"
)

// Material is a catalog entry.
type Material struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"codigo"`
	Description   string    `json:"descricao"`
	Segment       string    `json:"segmento"`
	UnitWeight    float64   `json:"peso_unitario"`
	CommissionPct float64   `json:"porcentagem_comissao"`
	UnitPrice     float64   `json:"preco_unitario"`
	CreatedAt     time.Time `json:"created_at"`
}
