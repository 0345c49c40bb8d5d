package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/ledger-service/internal/model"
)

const (
	summarySheet = "Summary"
	clientsSheet = "Best clients"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the report as a workbook with a summary sheet and a
// ranked client sheet.
func (g *Generator) Generate(report model.AdminReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, report); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(clientsSheet); err != nil {
		return nil, err
	}
	if err := g.writeClients(file, report.BestClients); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.AdminReport) error {
	rows := [][]interface{}{
		{"Period start", formatBound(report.Window.Start)},
		{"Period end", formatBound(report.Window.End)},
		{"Generated at", report.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Best profession", professionLabel(report.BestProfession)},
		{"Earned", money(report.BestProfession.Sum)},
		{"Clients listed", len(report.BestClients)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 20)
	_ = file.SetColWidth(summarySheet, "B", "B", 28)
	return nil
}

func (g *Generator) writeClients(file *excelize.File, clients []model.ClientPayment) error {
	header := []interface{}{"Rank", "Client ID", "Full name", "Paid"}
	if err := file.SetSheetRow(clientsSheet, "A1", &header); err != nil {
		return err
	}

	for i, client := range clients {
		row := []interface{}{i + 1, client.ClientID, client.FullName, money(client.Paid)}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(clientsSheet, cell, &row); err != nil {
			return err
		}
	}

	_ = file.SetColWidth(clientsSheet, "A", "B", 10)
	_ = file.SetColWidth(clientsSheet, "C", "C", 32)
	_ = file.SetColWidth(clientsSheet, "D", "D", 14)
	return nil
}

func professionLabel(best model.ProfessionEarnings) string {
	if best.Profession == "" {
		return "no paid jobs"
	}
	return best.Profession
}

// money keeps cells numeric so spreadsheet formulas work on them.
func money(value decimal.Decimal) float64 {
	return value.Round(model.MoneyPlaces).InexactFloat64()
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format("2006-01-02")
}
