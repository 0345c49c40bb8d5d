package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/ledger-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.AdminReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Ledger report", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Ledger report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s", formatBound(report.Window.Start), formatBound(report.Window.End)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Generated at "+report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Best profession", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	if report.BestProfession.Profession == "" {
		pdf.CellFormat(0, 6, "No paid jobs in this period.", "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s earned %s", report.BestProfession.Profession, formatAmount(report.BestProfession.Sum))), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Best clients", "", 1, "L", false, 0, "")

	colWidths := []float64{20, 30, 90, 40}
	drawTableRow(pdf, g.fontName, []string{"Rank", "Client ID", "Full name", "Paid"}, colWidths, true)
	for i, client := range report.BestClients {
		drawTableRow(pdf, g.fontName, []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(client.ClientID, 10),
			tr(client.FullName),
			formatAmount(client.Paid),
		}, colWidths, false)
	}
	if len(report.BestClients) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 8, "No clients paid in this period.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(model.MoneyPlaces)
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format("2006-01-02")
}
