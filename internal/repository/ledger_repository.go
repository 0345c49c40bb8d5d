package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/ledger-service/internal/model"
)

type LedgerRepository struct {
	db *gorm.DB
}

var (
	_ LedgerStore = (*LedgerRepository)(nil)
	_ Writer      = (*LedgerRepository)(nil)
)

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

type profileRow struct {
	ID         int64
	FirstName  string
	LastName   string
	Profession string
	Balance    decimal.Decimal
	Type       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (row profileRow) toModel() model.Profile {
	return model.Profile{
		ID:         row.ID,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		Profession: row.Profession,
		Balance:    row.Balance.Round(model.MoneyPlaces),
		Type:       model.ProfileType(row.Type),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

type contractRow struct {
	ID           int64
	Terms        string
	Status       string
	ClientID     int64
	ContractorID int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (row contractRow) toModel() model.Contract {
	return model.Contract{
		ID:           row.ID,
		Terms:        row.Terms,
		Status:       model.ContractStatus(row.Status),
		ClientID:     row.ClientID,
		ContractorID: row.ContractorID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type jobRow struct {
	ID          int64
	Description string
	Price       decimal.Decimal
	Paid        bool
	PaymentDate *time.Time
	ContractID  int64
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (row jobRow) toModel() model.Job {
	return model.Job{
		ID:          row.ID,
		Description: row.Description,
		Price:       row.Price.Round(model.MoneyPlaces),
		Paid:        row.Paid,
		PaymentDate: row.PaymentDate,
		ContractID:  row.ContractID,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (r *LedgerRepository) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	var row profileRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, balance, type, created_at, updated_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, ErrNotFound
	}
	profile := row.toModel()
	return &profile, nil
}

func (r *LedgerRepository) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	var row contractRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id, created_at, updated_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, ErrNotFound
	}
	contract := row.toModel()
	return &contract, nil
}

func (r *LedgerRepository) ListContracts(ctx context.Context, filter model.ContractFilter) ([]model.Contract, error) {
	baseQuery := `
		SELECT id, terms, status, client_id, contractor_id, created_at, updated_at
		FROM contracts
		WHERE (client_id = ? OR contractor_id = ?)
	`
	args := []interface{}{filter.PartyID, filter.PartyID}
	baseQuery, args = appendStatusFilter(baseQuery, args, "status", filter.Statuses)
	baseQuery += " ORDER BY id ASC"

	var rows []contractRow
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	contracts := make([]model.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, row.toModel())
	}
	return contracts, nil
}

func (r *LedgerRepository) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error) {
	baseQuery := `
		SELECT
			j.id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			j.contract_id,
			j.version,
			j.created_at,
			j.updated_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE (c.client_id = ? OR c.contractor_id = ?)
	`
	args := []interface{}{filter.PartyID, filter.PartyID}
	if filter.Paid != nil {
		baseQuery += " AND j.paid = ?"
		args = append(args, *filter.Paid)
	}
	if filter.ContractStatus != "" {
		baseQuery += " AND c.status = ?"
		args = append(args, string(filter.ContractStatus))
	}
	baseQuery += " ORDER BY j.id ASC"

	var rows []jobRow
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	jobs := make([]model.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toModel())
	}
	return jobs, nil
}

func (r *LedgerRepository) GetJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error) {
	var row struct {
		ID                   int64
		Description          string
		Price                decimal.Decimal
		Paid                 bool
		PaymentDate          *time.Time
		ContractID           int64
		Version              int64
		CreatedAt            time.Time
		UpdatedAt            time.Time
		ContractTerms        string
		ContractStatus       string
		ClientID             int64
		ClientFirstName      string
		ClientLastName       string
		ClientProfession     string
		ClientBalance        decimal.Decimal
		ClientType           string
		ContractorID         int64
		ContractorFirstName  string
		ContractorLastName   string
		ContractorProfession string
		ContractorBalance    decimal.Decimal
		ContractorType       string
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			j.contract_id,
			j.version,
			j.created_at,
			j.updated_at,
			c.terms AS contract_terms,
			c.status AS contract_status,
			client.id AS client_id,
			client.first_name AS client_first_name,
			client.last_name AS client_last_name,
			client.profession AS client_profession,
			client.balance AS client_balance,
			client.type AS client_type,
			contractor.id AS contractor_id,
			contractor.first_name AS contractor_first_name,
			contractor.last_name AS contractor_last_name,
			contractor.profession AS contractor_profession,
			contractor.balance AS contractor_balance,
			contractor.type AS contractor_type
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles client ON client.id = c.client_id
		JOIN profiles contractor ON contractor.id = c.contractor_id
		WHERE j.id = ?
		LIMIT 1
	`, jobID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, ErrNotFound
	}

	return &model.JobSettlement{
		Job: jobRow{
			ID:          row.ID,
			Description: row.Description,
			Price:       row.Price,
			Paid:        row.Paid,
			PaymentDate: row.PaymentDate,
			ContractID:  row.ContractID,
			Version:     row.Version,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}.toModel(),
		Contract: model.Contract{
			ID:           row.ContractID,
			Terms:        row.ContractTerms,
			Status:       model.ContractStatus(row.ContractStatus),
			ClientID:     row.ClientID,
			ContractorID: row.ContractorID,
		},
		Client: model.Profile{
			ID:         row.ClientID,
			FirstName:  row.ClientFirstName,
			LastName:   row.ClientLastName,
			Profession: row.ClientProfession,
			Balance:    row.ClientBalance.Round(model.MoneyPlaces),
			Type:       model.ProfileType(row.ClientType),
		},
		Contractor: model.Profile{
			ID:         row.ContractorID,
			FirstName:  row.ContractorFirstName,
			LastName:   row.ContractorLastName,
			Profession: row.ContractorProfession,
			Balance:    row.ContractorBalance.Round(model.MoneyPlaces),
			Type:       model.ProfileType(row.ContractorType),
		},
	}, nil
}

func (r *LedgerRepository) SumUnpaidJobs(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(j.price), 0)
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ? AND j.paid = ?
	`, clientID, false).Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(model.MoneyPlaces), nil
}

func (r *LedgerRepository) WithinUnitOfWork(ctx context.Context, fn func(uow UnitOfWork) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormUnitOfWork{tx: tx})
	})
}

type gormUnitOfWork struct {
	tx *gorm.DB
}

func (u *gormUnitOfWork) MarkJobPaid(ctx context.Context, jobID, expectedVersion int64, paidAt time.Time) error {
	result := u.tx.WithContext(ctx).Exec(`
		UPDATE jobs
		SET
			paid = ?,
			payment_date = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ? AND paid = ?
	`, true, paidAt.UTC(), time.Now().UTC(), jobID, expectedVersion, false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (u *gormUnitOfWork) CreditBalance(ctx context.Context, profileID int64, amount decimal.Decimal) error {
	result := u.tx.WithContext(ctx).Exec(`
		UPDATE profiles
		SET balance = balance + ?, updated_at = ?
		WHERE id = ?
	`, amount, time.Now().UTC(), profileID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (u *gormUnitOfWork) DebitBalance(ctx context.Context, profileID int64, amount decimal.Decimal) error {
	result := u.tx.WithContext(ctx).Exec(`
		UPDATE profiles
		SET balance = balance - ?, updated_at = ?
		WHERE id = ? AND balance >= ?
	`, amount, time.Now().UTC(), profileID, amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (r *LedgerRepository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	now := time.Now().UTC()
	stampCreated(&profile.CreatedAt, &profile.UpdatedAt, now)
	return r.insertReturningID(ctx, &profile.ID, `
		INSERT INTO profiles (%s first_name, last_name, profession, balance, type, created_at, updated_at)
		VALUES (%s ?, ?, ?, ?, ?, ?, ?)
	`, profile.FirstName, profile.LastName, profile.Profession, profile.Balance, string(profile.Type),
		profile.CreatedAt, profile.UpdatedAt)
}

func (r *LedgerRepository) CreateContract(ctx context.Context, contract *model.Contract) error {
	now := time.Now().UTC()
	stampCreated(&contract.CreatedAt, &contract.UpdatedAt, now)
	return r.insertReturningID(ctx, &contract.ID, `
		INSERT INTO contracts (%s terms, status, client_id, contractor_id, created_at, updated_at)
		VALUES (%s ?, ?, ?, ?, ?, ?)
	`, contract.Terms, string(contract.Status), contract.ClientID, contract.ContractorID,
		contract.CreatedAt, contract.UpdatedAt)
}

func (r *LedgerRepository) CreateJob(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	stampCreated(&job.CreatedAt, &job.UpdatedAt, now)
	var paymentDate *time.Time
	if job.PaymentDate != nil {
		utc := job.PaymentDate.UTC()
		paymentDate = &utc
	}
	return r.insertReturningID(ctx, &job.ID, `
		INSERT INTO jobs (%s description, price, paid, payment_date, contract_id, version, created_at, updated_at)
		VALUES (%s ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.Description, job.Price, job.Paid, paymentDate, job.ContractID, job.Version,
		job.CreatedAt, job.UpdatedAt)
}

// insertReturningID inserts with an explicit id when *id is set, letting the
// database assign one otherwise, and writes the stored id back.
func (r *LedgerRepository) insertReturningID(ctx context.Context, id *int64, template string, args ...interface{}) error {
	idColumn, idPlaceholder := "", ""
	if *id != 0 {
		idColumn, idPlaceholder = "id,", "?,"
		args = append([]interface{}{*id}, args...)
	}
	query := fmt.Sprintf(strings.TrimSpace(template), idColumn, idPlaceholder) + " RETURNING id"

	var inserted int64
	if err := r.db.WithContext(ctx).Raw(query, args...).Row().Scan(&inserted); err != nil {
		return err
	}
	*id = inserted
	return nil
}

func stampCreated(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

func appendStatusFilter(baseQuery string, args []interface{}, column string, statuses []model.ContractStatus) (string, []interface{}) {
	if len(statuses) == 0 {
		return baseQuery, args
	}

	placeholders := make([]string, len(statuses))
	for i := range statuses {
		placeholders[i] = "?"
	}
	baseQuery += fmt.Sprintf(" AND %s IN (%s)", column, strings.Join(placeholders, ","))
	for _, status := range statuses {
		args = append(args, string(status))
	}
	return baseQuery, args
}
