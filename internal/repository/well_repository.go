package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"wellops-platform/internal/models"
	"wellops-platform/pkg/database"
	"wellops-platform/pkg/logging"
	"wellops-platform/pkg/metrics"
)

// SourceRepository provides read access to the raw well data: the
// completion mapping tables and the monthly production/injection readings.
// The classifier never writes through this interface.
type SourceRepository interface {
	ListCompletions(ctx context.Context) ([]models.WellCompletion, error)
	ListWellNames(ctx context.Context) ([]string, error)
	GetProductionReadings(ctx context.Context, filter ReadingFilter) ([]models.ProductionReading, error)
	GetInjectionReadings(ctx context.Context, filter ReadingFilter) ([]models.InjectionReading, error)
	HealthCheck(ctx context.Context) error
}

// ReadingFilter restricts which raw readings are loaded.
type ReadingFilter struct {
	WellNames []string
	StartDate *time.Time
	EndDate   *time.Time
}

// sourceRepository implements SourceRepository
type sourceRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSourceRepository creates a new source-data repository
func NewSourceRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) SourceRepository {
	return &sourceRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListCompletions retrieves the full well/completion/reservoir mapping
func (r *sourceRepository) ListCompletions(ctx context.Context) ([]models.WellCompletion, error) {
	query := `
		SELECT well_name, completion_name, COALESCE(reservoir, '') AS reservoir,
		       coordinate_x, coordinate_y, created_at
		FROM well_completions
		ORDER BY well_name, completion_name
	`

	var completions []models.WellCompletion
	err := r.db.SelectContext(ctx, "list_completions", &completions, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	return completions, nil
}

// ListWellNames retrieves all distinct well names
func (r *sourceRepository) ListWellNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT well_name
		FROM well_completions
		ORDER BY well_name
	`

	var names []string
	err := r.db.SelectContext(ctx, "list_well_names", &names, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list well names: %w", err)
	}

	return names, nil
}

// GetProductionReadings retrieves raw monthly production rows
func (r *sourceRepository) GetProductionReadings(ctx context.Context, filter ReadingFilter) ([]models.ProductionReading, error) {
	query := `
		SELECT p.id, p.completion_name, p.reading_date, p.oil_volume, p.water_volume, p.created_at
		FROM production_monthly p
		WHERE 1=1
	`
	args := []interface{}{}

	query, args, err := applyReadingFilter(query, args, filter, "p")
	if err != nil {
		return nil, err
	}
	query += " ORDER BY p.completion_name, p.reading_date"

	query = r.db.DB().Rebind(query)

	var readings []models.ProductionReading
	if err := r.db.SelectContext(ctx, "get_production_readings", &readings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get production readings: %w", err)
	}

	return readings, nil
}

// GetInjectionReadings retrieves raw monthly water-injection rows
func (r *sourceRepository) GetInjectionReadings(ctx context.Context, filter ReadingFilter) ([]models.InjectionReading, error) {
	query := `
		SELECT i.id, i.completion_name, i.reading_date, i.water_volume, i.created_at
		FROM injection_monthly i
		WHERE 1=1
	`
	args := []interface{}{}

	query, args, err := applyReadingFilter(query, args, filter, "i")
	if err != nil {
		return nil, err
	}
	query += " ORDER BY i.completion_name, i.reading_date"

	query = r.db.DB().Rebind(query)

	var readings []models.InjectionReading
	if err := r.db.SelectContext(ctx, "get_injection_readings", &readings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get injection readings: %w", err)
	}

	return readings, nil
}

// applyReadingFilter appends the optional well-name and date range clauses.
// Built with ? placeholders; the caller rebinds for postgres.
func applyReadingFilter(query string, args []interface{}, filter ReadingFilter, alias string) (string, []interface{}, error) {
	if len(filter.WellNames) > 0 {
		inClause := fmt.Sprintf(`
			AND %s.completion_name IN (
				SELECT completion_name FROM well_completions WHERE well_name IN (?)
			)`, alias)
		expanded, inArgs, err := sqlx.In(inClause, filter.WellNames)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build well filter: %w", err)
		}
		query += expanded
		args = append(args, inArgs...)
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND %s.reading_date >= ?", alias)
		args = append(args, *filter.StartDate)
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND %s.reading_date <= ?", alias)
		args = append(args, *filter.EndDate)
	}

	return query, args, nil
}

// HealthCheck performs a repository health check
func (r *sourceRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
