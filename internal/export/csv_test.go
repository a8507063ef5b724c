package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteCommissionCSV(t *testing.T) {
	paid := time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)
	rows := []CommissionRow{
		{
			InstallmentIndex: 1, InstallmentOf: 3,
			InvoiceNumber: "NF-001", OCNumber: "OC-20260601120000",
			ClientName: "ACME Ltda",
			DueDate:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Value:      333.33, CommissionValue: 6.67,
			Status: "Pago", PaymentDate: &paid,
		},
		{
			InstallmentIndex: 2, InstallmentOf: 3,
			InvoiceNumber: "NF-001", OCNumber: "OC-20260601120000",
			ClientName: "ACME Ltda",
			DueDate:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			Value:      333.34, CommissionValue: 6.66,
			Status: "Pendente",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCommissionCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Parcela", "Nota Fiscal", "Pedido", "Cliente", "Vencimento", "Valor", "Comissao", "Status", "Pagamento"}, records[0])
	require.Equal(t, []string{"1/3", "NF-001", "OC-20260601120000", "ACME Ltda", "2026-06-01", "333.33", "6.67", "Pago", "2026-05-30"}, records[1])
	require.Equal(t, []string{"2/3", "NF-001", "OC-20260601120000", "ACME Ltda", "2026-07-01", "333.34", "6.66", "Pendente", ""}, records[2])
}

func TestWriteCommissionCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCommissionCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}
