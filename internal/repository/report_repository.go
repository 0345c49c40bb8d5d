package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/ledger-service/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

var _ ReportStore = (*ReportRepository)(nil)

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession ranks contractor professions by paid job price in the
// window. Ties resolve to the alphabetically first profession.
func (r *ReportRepository) BestProfession(ctx context.Context, window model.Window) (*model.ProfessionEarnings, error) {
	baseQuery := `
		SELECT
			p.profession AS profession,
			SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid = ?
	`
	args := []interface{}{true}
	baseQuery, args = appendWindowFilter(baseQuery, args, window)
	baseQuery += `
		GROUP BY p.profession
		ORDER BY SUM(j.price) DESC, p.profession ASC
		LIMIT 1
	`

	var rows []struct {
		Profession string
		Total      decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &model.ProfessionEarnings{
		Sum:        rows[0].Total.Round(model.MoneyPlaces),
		Profession: rows[0].Profession,
	}, nil
}

// BestClients ranks clients by paid job price in the window, highest first,
// ties broken by the higher client id.
func (r *ReportRepository) BestClients(ctx context.Context, window model.Window, limit int) ([]model.ClientPayment, error) {
	baseQuery := `
		SELECT
			c.client_id AS client_id,
			p.first_name AS first_name,
			p.last_name AS last_name,
			SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = ?
	`
	args := []interface{}{true}
	baseQuery, args = appendWindowFilter(baseQuery, args, window)
	baseQuery += `
		GROUP BY c.client_id, p.first_name, p.last_name
		ORDER BY SUM(j.price) DESC, c.client_id DESC
		LIMIT ?
	`
	args = append(args, limit)

	var rows []struct {
		ClientID  int64
		FirstName string
		LastName  string
		Total     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]model.ClientPayment, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.ClientPayment{
			Paid:     row.Total.Round(model.MoneyPlaces),
			ClientID: row.ClientID,
			FullName: model.Profile{FirstName: row.FirstName, LastName: row.LastName}.FullName(),
		})
	}
	return result, nil
}

func appendWindowFilter(baseQuery string, args []interface{}, window model.Window) (string, []interface{}) {
	if window.Start != nil {
		baseQuery += " AND j.payment_date >= ?"
		args = append(args, window.Start.UTC())
	}
	if window.End != nil {
		baseQuery += " AND j.payment_date < ?"
		args = append(args, window.End.UTC())
	}
	return baseQuery, args
}
