package transfer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/tavern-pos/tavern-pos/internal/shared"
)

// Exporter renders transfer records as PDF files under the export directory.
type Exporter struct {
	dir string
}

// NewExporter constructs the exporter.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// ExportPDF writes the record to a PDF and returns the file path.
func (e *Exporter) ExportPDF(rec Record) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("transfer: create export dir: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Daily Stock Transfer", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Transfer %s - %s", rec.Code, shared.FormatDate(rec.TransferDate)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(80, 7, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Variant", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Quantity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Time", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range rec.Items {
		name := item.Name
		if len(name) > 38 {
			name = name[:35] + "..."
		}
		pdf.CellFormat(80, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, item.Variant, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, item.TransferTime.Format("15:04:05"), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Distinct products: %d", rec.TotalItems), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Total quantity: %d", rec.TotalQuantity), "1", 1, "C", false, 0, "")

	path := filepath.Join(e.dir, fmt.Sprintf("transfer_%s.pdf", rec.Code))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("transfer: write pdf: %w", err)
	}
	return path, nil
}
