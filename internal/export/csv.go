// Package export renders commission reports for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// CommissionRow is one line of the receivables report, joined across
// installment, invoice, order and client.
type CommissionRow struct {
	InstallmentIndex int
	InstallmentOf    int
	InvoiceNumber    string
	OCNumber         string
	ClientName       string
	DueDate          time.Time
	Value            float64
	CommissionValue  float64
	Status           string
	PaymentDate      *time.Time
}

// WriteCommissionCSV serialises the commission receivables report.
func WriteCommissionCSV(w io.Writer, rows []CommissionRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"Parcela", "Nota Fiscal", "Pedido", "Cliente", "Vencimento", "Valor", "Comissao", "Status", "Pagamento"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		payment := ""
		if row.PaymentDate != nil {
			payment = row.PaymentDate.Format("2006-01-02")
		}
		record := []string{
			strconv.Itoa(row.InstallmentIndex) + "/" + strconv.Itoa(row.InstallmentOf),
			row.InvoiceNumber,
			row.OCNumber,
			row.ClientName,
			row.DueDate.Format("2006-01-02"),
			formatFloat(row.Value),
			formatFloat(row.CommissionValue),
			row.Status,
			payment,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
