package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"wellops-platform/internal/models"
	"wellops-platform/pkg/database"
	"wellops-platform/pkg/logging"
	"wellops-platform/pkg/metrics"
)

// defaultBatchSize is used when the configured insert batch size is unset.
const defaultBatchSize = 500

// ResultsRepository persists and queries classification results. Runs are
// grouped into named operations; re-creating an operation with an existing
// name atomically replaces the previous run and all of its rows.
type ResultsRepository interface {
	// Operation lifecycle
	CreateOperation(ctx context.Context, name, description, parameters string) (int64, error)
	UpdateOperationStatus(ctx context.Context, operationID int64, status string) error
	DeleteOperation(ctx context.Context, operationID int64) error
	ListOperations(ctx context.Context) ([]*models.Operation, error)
	GetLatestOperationID(ctx context.Context, name string) (int64, error)

	// Result writes
	SaveWellTypeRows(ctx context.Context, operationID int64, rows []models.WellTypeRow) error
	SaveCompletionStatusRows(ctx context.Context, operationID int64, rows []models.CompletionStatusRow) error

	// Result reads
	GetWellTypeRows(ctx context.Context, filter WellTypeFilter) ([]*models.WellTypeRow, int, error)
	GetCompletionStatusRows(ctx context.Context, filter CompletionStatusFilter) ([]*models.CompletionStatusRow, int, error)
	GetFleetSummary(ctx context.Context, operationID int64) (*FleetSummary, error)
}

// WellTypeFilter defines filters for querying well-level classifications
type WellTypeFilter struct {
	OperationID *int64
	WellName    *string
	Year        *int
	Month       *int
	Limit       int
	Offset      int
}

// CompletionStatusFilter defines filters for querying completion-level rows
type CompletionStatusFilter struct {
	OperationID    *int64
	WellName       *string
	CompletionName *string
	Reservoir      *string
	Year           *int
	Month          *int
	Limit          int
	Offset         int
}

// FleetSummary counts wells by classified type for the most recent month
// of one operation. Drives the map legend and status displays downstream.
type FleetSummary struct {
	OperationID  int64 `json:"operation_id" db:"operation_id"`
	Year         int   `json:"year" db:"year"`
	Month        int   `json:"month" db:"month"`
	Producers    int   `json:"producers" db:"producers"`
	Injectors    int   `json:"injectors" db:"injectors"`
	DualFunction int   `json:"dual_function" db:"dual_function"`
	Unknown      int   `json:"unknown" db:"unknown"`
}

// resultsRepository implements ResultsRepository
type resultsRepository struct {
	db        *database.PostgresDB
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
	batchSize int
}

// NewResultsRepository creates a new results repository. batchSize controls
// how many rows go into each insert batch; zero selects the default.
func NewResultsRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, batchSize int) ResultsRepository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &resultsRepository{
		db:        db,
		logger:    logger,
		metrics:   metricsCollector,
		batchSize: batchSize,
	}
}

// CreateOperation registers a new named run. Any existing operation with
// the same name is deleted first, together with all of its result rows,
// inside one transaction, so the name always refers to exactly one run.
func (r *resultsRepository) CreateOperation(ctx context.Context, name, description, parameters string) (int64, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var previousID int64
	err = tx.GetContext(ctx, &previousID,
		`SELECT operation_id FROM operations WHERE operation_name = $1`, name)
	switch {
	case err == sql.ErrNoRows:
		// First run under this name.
	case err != nil:
		return 0, fmt.Errorf("failed to look up operation: %w", err)
	default:
		if err := deleteOperationTx(ctx, tx, previousID); err != nil {
			return 0, err
		}
		r.logger.Info(ctx, "[RESULTS_REPLACE] Previous operation replaced", logging.Fields{
			"operation_name":        name,
			"previous_operation_id": previousID,
		})
	}

	var operationID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO operations (operation_name, description, parameters, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING operation_id
	`, name, description, parameters, models.OperationStatusRunning, time.Now().UTC()).Scan(&operationID)
	if err != nil {
		return 0, fmt.Errorf("failed to create operation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return operationID, nil
}

// UpdateOperationStatus sets the terminal status of a run
func (r *resultsRepository) UpdateOperationStatus(ctx context.Context, operationID int64, status string) error {
	result, err := r.db.ExecContext(ctx, "update_operation_status",
		`UPDATE operations SET status = $1 WHERE operation_id = $2`, status, operationID)
	if err != nil {
		return fmt.Errorf("failed to update operation status: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "operation", ID: fmt.Sprintf("%d", operationID)}
	}

	return nil
}

// DeleteOperation removes a run and every row attached to it
func (r *resultsRepository) DeleteOperation(ctx context.Context, operationID int64) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteOperationTx(ctx, tx, operationID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// deleteOperationTx deletes one operation and its rows inside an open
// transaction. Result rows go first so a failure never leaves orphans
// behind a deleted operation record.
func deleteOperationTx(ctx context.Context, tx *sqlx.Tx, operationID int64) error {
	statements := []string{
		`DELETE FROM well_monthly_type WHERE operation_id = $1`,
		`DELETE FROM well_completion_status WHERE operation_id = $1`,
		`DELETE FROM operations WHERE operation_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, operationID); err != nil {
			return fmt.Errorf("failed to delete operation %d: %w", operationID, err)
		}
	}

	return nil
}

// ListOperations retrieves all operations, newest first
func (r *resultsRepository) ListOperations(ctx context.Context) ([]*models.Operation, error) {
	query := `
		SELECT operation_id, operation_name, COALESCE(description, '') AS description,
		       COALESCE(parameters, '') AS parameters, status, created_at
		FROM operations
		ORDER BY created_at DESC
	`

	var operations []*models.Operation
	if err := r.db.SelectContext(ctx, "list_operations", &operations, query); err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	return operations, nil
}

// GetLatestOperationID retrieves the newest operation ID for a name
func (r *resultsRepository) GetLatestOperationID(ctx context.Context, name string) (int64, error) {
	query := `
		SELECT operation_id FROM operations
		WHERE operation_name = $1
		ORDER BY created_at DESC LIMIT 1
	`

	var operationID int64
	err := r.db.GetContext(ctx, "get_latest_operation", &operationID, query, name)
	if err == sql.ErrNoRows {
		return 0, &NotFoundError{Resource: "operation", ID: name}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest operation: %w", err)
	}

	return operationID, nil
}

// SaveWellTypeRows persists well-level classification rows in batches
func (r *resultsRepository) SaveWellTypeRows(ctx context.Context, operationID int64, rows []models.WellTypeRow) error {
	if len(rows) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		r.logger.Debug(ctx, "[RESULTS_SAVE_WELL] Well type rows saved", logging.Fields{
			"operation_id": operationID,
			"count":        len(rows),
			"duration_ms":  time.Since(timer).Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO well_monthly_type (
			operation_id, well_name, year, month, well_type,
			oil_rate, water_rate, water_inj_rate, has_dual_function, remarks
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (operation_id, well_name, year, month) DO UPDATE SET
			well_type = EXCLUDED.well_type,
			oil_rate = EXCLUDED.oil_rate,
			water_rate = EXCLUDED.water_rate,
			water_inj_rate = EXCLUDED.water_inj_rate,
			has_dual_function = EXCLUDED.has_dual_function,
			remarks = EXCLUDED.remarks
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for start := 0; start < len(rows); start += r.batchSize {
		end := start + r.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		for _, row := range rows[start:end] {
			_, err := stmt.ExecContext(ctx,
				operationID,
				row.WellName,
				row.Year,
				row.Month,
				row.WellType,
				row.OilRate,
				row.WaterRate,
				row.WaterInjRate,
				row.HasDualFunction,
				row.Remarks,
			)
			if err != nil {
				return fmt.Errorf("failed to insert well type row: %w", err)
			}
		}
		r.metrics.ResultBatchSize.Observe(float64(end - start))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.RecordClassifiedRows("well_monthly_type", len(rows))

	return nil
}

// SaveCompletionStatusRows persists completion-level rows in batches
func (r *resultsRepository) SaveCompletionStatusRows(ctx context.Context, operationID int64, rows []models.CompletionStatusRow) error {
	if len(rows) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		r.logger.Debug(ctx, "[RESULTS_SAVE_COMPLETION] Completion status rows saved", logging.Fields{
			"operation_id": operationID,
			"count":        len(rows),
			"duration_ms":  time.Since(timer).Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO well_completion_status (
			operation_id, well_name, completion_name, reservoir, year, month,
			is_active, well_type, oil_rate, water_rate, water_inj_rate
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (operation_id, well_name, completion_name, reservoir, year, month) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			well_type = EXCLUDED.well_type,
			oil_rate = EXCLUDED.oil_rate,
			water_rate = EXCLUDED.water_rate,
			water_inj_rate = EXCLUDED.water_inj_rate
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for start := 0; start < len(rows); start += r.batchSize {
		end := start + r.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		for _, row := range rows[start:end] {
			_, err := stmt.ExecContext(ctx,
				operationID,
				row.WellName,
				row.CompletionName,
				row.Reservoir,
				row.Year,
				row.Month,
				row.IsActive,
				row.WellType,
				row.OilRate,
				row.WaterRate,
				row.WaterInjRate,
			)
			if err != nil {
				return fmt.Errorf("failed to insert completion status row: %w", err)
			}
		}
		r.metrics.ResultBatchSize.Observe(float64(end - start))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.RecordClassifiedRows("well_completion_status", len(rows))

	return nil
}

// GetWellTypeRows retrieves well-level classifications with filtering and pagination
func (r *resultsRepository) GetWellTypeRows(ctx context.Context, filter WellTypeFilter) ([]*models.WellTypeRow, int, error) {
	query := `
		SELECT id, operation_id, well_name, year, month, well_type,
		       oil_rate, water_rate, water_inj_rate, has_dual_function, remarks
		FROM well_monthly_type
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.OperationID != nil {
		query += fmt.Sprintf(" AND operation_id = $%d", argNum)
		args = append(args, *filter.OperationID)
		argNum++
	}

	if filter.WellName != nil {
		query += fmt.Sprintf(" AND well_name = $%d", argNum)
		args = append(args, *filter.WellName)
		argNum++
	}

	if filter.Year != nil {
		query += fmt.Sprintf(" AND year = $%d", argNum)
		args = append(args, *filter.Year)
		argNum++
	}

	if filter.Month != nil {
		query += fmt.Sprintf(" AND month = $%d", argNum)
		args = append(args, *filter.Month)
		argNum++
	}

	// Get total count
	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_well_types", &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count well type rows: %w", err)
	}

	// Add ordering and pagination
	query += " ORDER BY well_name, year, month"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []*models.WellTypeRow
	if err := r.db.SelectContext(ctx, "get_well_types", &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get well type rows: %w", err)
	}

	return rows, totalCount, nil
}

// GetCompletionStatusRows retrieves completion-level rows with filtering and pagination
func (r *resultsRepository) GetCompletionStatusRows(ctx context.Context, filter CompletionStatusFilter) ([]*models.CompletionStatusRow, int, error) {
	query := `
		SELECT id, operation_id, well_name, completion_name, reservoir, year, month,
		       is_active, well_type, oil_rate, water_rate, water_inj_rate
		FROM well_completion_status
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.OperationID != nil {
		query += fmt.Sprintf(" AND operation_id = $%d", argNum)
		args = append(args, *filter.OperationID)
		argNum++
	}

	if filter.WellName != nil {
		query += fmt.Sprintf(" AND well_name = $%d", argNum)
		args = append(args, *filter.WellName)
		argNum++
	}

	if filter.CompletionName != nil {
		query += fmt.Sprintf(" AND completion_name = $%d", argNum)
		args = append(args, *filter.CompletionName)
		argNum++
	}

	if filter.Reservoir != nil {
		query += fmt.Sprintf(" AND reservoir = $%d", argNum)
		args = append(args, *filter.Reservoir)
		argNum++
	}

	if filter.Year != nil {
		query += fmt.Sprintf(" AND year = $%d", argNum)
		args = append(args, *filter.Year)
		argNum++
	}

	if filter.Month != nil {
		query += fmt.Sprintf(" AND month = $%d", argNum)
		args = append(args, *filter.Month)
		argNum++
	}

	// Get total count
	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_completion_status", &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count completion status rows: %w", err)
	}

	// Add ordering and pagination
	query += " ORDER BY well_name, completion_name, reservoir, year, month"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []*models.CompletionStatusRow
	if err := r.db.SelectContext(ctx, "get_completion_status", &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get completion status rows: %w", err)
	}

	return rows, totalCount, nil
}

// GetFleetSummary counts wells by type for the most recent month of a run
func (r *resultsRepository) GetFleetSummary(ctx context.Context, operationID int64) (*FleetSummary, error) {
	latestQuery := `
		SELECT year, month FROM well_monthly_type
		WHERE operation_id = $1
		ORDER BY year DESC, month DESC
		LIMIT 1
	`

	var latest struct {
		Year  int `db:"year"`
		Month int `db:"month"`
	}
	err := r.db.GetContext(ctx, "get_latest_month", &latest, latestQuery, operationID)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "classification results", ID: fmt.Sprintf("%d", operationID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest classified month: %w", err)
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE well_type = 'PRODUCTION') AS producers,
			COUNT(*) FILTER (WHERE well_type = 'INJECTION') AS injectors,
			COUNT(*) FILTER (WHERE has_dual_function = 1) AS dual_function,
			COUNT(*) FILTER (WHERE well_type = 'UNKNOWN') AS unknown
		FROM well_monthly_type
		WHERE operation_id = $1 AND year = $2 AND month = $3
	`

	summary := &FleetSummary{
		OperationID: operationID,
		Year:        latest.Year,
		Month:       latest.Month,
	}
	err = r.db.GetContext(ctx, "get_fleet_summary", summary, query, operationID, latest.Year, latest.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet summary: %w", err)
	}

	return summary, nil
}
