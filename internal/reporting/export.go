package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/tavern-pos/tavern-pos/internal/shared"
)

// Exporter renders daily reports as PDF files under the export directory.
type Exporter struct {
	dir   string
	money *shared.MoneyFormatter
}

// NewExporter constructs the exporter.
func NewExporter(dir string, money *shared.MoneyFormatter) *Exporter {
	return &Exporter{dir: dir, money: money}
}

// ExportPDF writes the daily report to a PDF and returns the file path.
func (e *Exporter) ExportPDF(r DailyReport) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("reporting: create export dir: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Daily Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, shared.FormatDate(r.Date), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	row := func(label, value string) {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(95, 8, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 8, value, "1", 1, "R", false, 0, "")
	}
	row("Opening balance", e.money.Format(r.OpeningBalance))
	row(fmt.Sprintf("Revenue (%d bills)", r.BillCount), e.money.Format(r.Revenue))
	row("Spendings", e.money.Format(r.SpendingsTotal))
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 8, "Closing balance", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 8, e.money.Format(r.ClosingBalance), "1", 1, "R", false, 0, "")
	row("Transfers committed", fmt.Sprintf("%d", r.TransferCount))
	pdf.Ln(5)

	if len(r.Spendings) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Spendings", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(60, 7, "Category", "1", 0, "L", true, 0, "")
		pdf.CellFormat(90, 7, "Note", "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 7, "Amount", "1", 1, "R", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, sp := range r.Spendings {
			note := sp.Note
			if len(note) > 45 {
				note = note[:42] + "..."
			}
			pdf.CellFormat(60, 6, sp.Category, "1", 0, "L", false, 0, "")
			pdf.CellFormat(90, 6, note, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, e.money.Format(sp.Amount), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(5)
	}

	if len(r.LowStock) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Low Stock", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(90, 7, "Product", "1", 0, "L", true, 0, "")
		pdf.CellFormat(50, 7, "SKU", "1", 0, "L", true, 0, "")
		pdf.CellFormat(50, 7, "Stock left", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, p := range r.LowStock {
			name := p.Name
			if len(name) > 42 {
				name = name[:39] + "..."
			}
			pdf.CellFormat(90, 6, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, p.SKU, "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, fmt.Sprintf("%d", p.TotalStock), "1", 1, "C", false, 0, "")
		}
	}

	path := filepath.Join(e.dir, fmt.Sprintf("daily_report_%s.pdf", shared.FormatDate(r.Date)))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("reporting: write pdf: %w", err)
	}
	return path, nil
}
