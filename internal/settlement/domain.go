// Package settlement turns invoiced orders into installment schedules and
// tracks their commission receivables.
package settlement

import (
	"time"

	"github.com/google/uuid"
)

// InstallmentStatus enumerates the receivable lifecycle.
type InstallmentStatus string

const (
	StatusPending InstallmentStatus = "Pendente"
	StatusPaid    InstallmentStatus = "Pago"
	StatusOverdue InstallmentStatus = "Atrasado"
)

// Valid reports whether the status is a known state.
func (s InstallmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice records the issuance of a nota fiscal against an order.
type Invoice struct {
	ID               uuid.UUID `json:"id"`
	Number           string    `json:"numero_nf"`
	OrderID          uuid.UUID `json:"pedido_id"`
	TotalValue       float64   `json:"valor_total"`
	InstallmentCount int       `json:"numero_parcelas"`
	CommissionPct    float64   `json:"porcentagem_comissao"`
	CommissionTotal  float64   `json:"comissao_total"`
	IssuedAt         time.Time `json:"data_emissao"`
}

// Installment is one slice of an invoice's value, with its share of the
// commission. ClientID is denormalized from the order at issue time.
type Installment struct {
	ID              uuid.UUID         `json:"id"`
	InvoiceID       uuid.UUID         `json:"nota_fiscal_id"`
	OrderID         uuid.UUID         `json:"pedido_id"`
	ClientID        uuid.UUID         `json:"cliente_id"`
	Index           int               `json:"parcela"`
	Of              int               `json:"total_parcelas"`
	DueDate         time.Time         `json:"data_vencimento"`
	Value           float64           `json:"valor"`
	CommissionValue float64           `json:"comissao_calculada"`
	Status          InstallmentStatus `json:"status"`
	PaymentDate     *time.Time        `json:"data_pagamento,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// InvoiceDetail is an invoice together with its schedule.
type InvoiceDetail struct {
	Invoice
	Installments []Installment `json:"parcelas"`
}
