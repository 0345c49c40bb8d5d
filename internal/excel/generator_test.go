package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/ledger-service/internal/model"
)

func TestGenerateWritesSummaryAndClients(t *testing.T) {
	start := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
	report := model.AdminReport{
		Window: model.Window{Start: &start},
		BestProfession: model.ProfessionEarnings{
			Sum:        decimal.RequireFromString("2020"),
			Profession: "Programmer",
		},
		BestClients: []model.ClientPayment{
			{Paid: decimal.RequireFromString("2020"), ClientID: 4, FullName: "Ash Kethcum"},
			{Paid: decimal.RequireFromString("442.5"), ClientID: 1, FullName: "Harry Potter"},
		},
		GeneratedAt: time.Date(2020, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{summarySheet, clientsSheet}, file.GetSheetList())

	value, err := file.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "2020-08-01", value)
	value, err = file.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "open", value)
	value, err = file.GetCellValue(summarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Programmer", value)

	rows, err := file.GetRows(clientsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Rank", "Client ID", "Full name", "Paid"}, rows[0])
	assert.Equal(t, []string{"1", "4", "Ash Kethcum", "2020"}, rows[1])
	assert.Equal(t, []string{"2", "1", "Harry Potter", "442.5"}, rows[2])
}

func TestGenerateEmptyReport(t *testing.T) {
	content, err := NewGenerator().Generate(model.AdminReport{BestProfession: model.ProfessionEarnings{Sum: decimal.Zero}})
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	value, err := file.GetCellValue(summarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "no paid jobs", value)
	rows, err := file.GetRows(clientsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
