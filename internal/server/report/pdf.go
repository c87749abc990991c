// Package report renders expense listings into PDF documents.
package report

import (
	"bytes"
	"fmt"
	"time"

	"expensio/internal/server/models"

	"github.com/go-pdf/fpdf"
)

const dateLayout = "2006-01-02"

// PDFRenderer produces a one-or-more page A4 document with a heading, the
// applied filters, an expense table, and the grand total.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(expenses []*models.Expense, total float64, start, end time.Time, category string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Expense Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	if !start.IsZero() || !end.IsZero() {
		pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s", formatBound(start), formatBound(end)), "", 1, "L", false, 0, "")
	}
	if category != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Category: %s", category), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format(dateLayout)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{30, 75, 45, 40}
	headers := []string{"Date", "Title", "Category", "Amount"}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, e := range expenses {
		pdf.CellFormat(widths[0], 7, e.Date.Format(dateLayout), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, truncate(e.Title, 45), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, truncate(e.Category, 25), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", e.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total: %.2f", total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "..."
	}
	return t.Format(dateLayout)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
