// Package orders holds the purchase order ledger.
package orders

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates the lifecycle of a purchase order.
type Status string

const (
	StatusPending         Status = "Pendente"
	StatusImplanted       Status = "Implantado"
	StatusInvoiced        Status = "Faturado"
	StatusPartiallyServed Status = "ParcialmenteAtendido"
	StatusServed          Status = "Atendido"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusImplanted, StatusInvoiced, StatusPartiallyServed, StatusServed:
		return true
	}
	return false
}

// LineItem is one priced material line of an order.
type LineItem struct {
	MaterialID      uuid.UUID `json:"material_id"`
	Quantity        int       `json:"quantidade"`
	UnitWeightTotal float64   `json:"peso_total"`
	UnitPrice       float64   `json:"valor_unitario"`
	TaxAmount       float64   `json:"ipi"`
	Subtotal        float64   `json:"subtotal"`
}

// Order is a purchase order. TotalValue and TotalWeight are always derived
// from the items; values supplied by callers are discarded.
type Order struct {
	ID            uuid.UUID  `json:"id"`
	OCNumber      string     `json:"numero_oc"`
	ClientID      uuid.UUID  `json:"cliente_id"`
	Items         []LineItem `json:"itens"`
	Status        Status     `json:"status"`
	FactoryNumber string     `json:"numero_pedido_fabrica,omitempty"`
	TotalValue    float64    `json:"valor_total"`
	TotalWeight   float64    `json:"peso_total"`
	PaymentTerms  string     `json:"condicao_pagamento,omitempty"`
	DeliveryDate  *time.Time `json:"data_entrega,omitempty"`
	Notes         string     `json:"observacoes,omitempty"`
	CommissionPct float64    `json:"porcentagem_comissao"`
	InvoiceID     *uuid.UUID `json:"nota_fiscal_id,omitempty"`
	CreatedAt     time.Time  `json:"data_criacao"`
}
