package services

import (
	"context"

	"wellops-platform/internal/models"
	"wellops-platform/internal/repository"
	"wellops-platform/pkg/logging"
	"wellops-platform/pkg/metrics"
)

// QueryService serves read access to stored classification results.
type QueryService struct {
	source  repository.SourceRepository
	results repository.ResultsRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewQueryService creates a new query service
func NewQueryService(source repository.SourceRepository, results repository.ResultsRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *QueryService {
	return &QueryService{
		source:  source,
		results: results,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetWellTypes retrieves well-level classifications with filtering
func (s *QueryService) GetWellTypes(ctx context.Context, filter repository.WellTypeFilter) ([]*models.WellTypeRow, int, error) {
	return s.results.GetWellTypeRows(ctx, filter)
}

// GetCompletionStatus retrieves completion-level rows with filtering
func (s *QueryService) GetCompletionStatus(ctx context.Context, filter repository.CompletionStatusFilter) ([]*models.CompletionStatusRow, int, error) {
	return s.results.GetCompletionStatusRows(ctx, filter)
}

// ListOperations retrieves all classification runs
func (s *QueryService) ListOperations(ctx context.Context) ([]*models.Operation, error) {
	return s.results.ListOperations(ctx)
}

// GetLatestOperationID resolves an operation name to its newest run
func (s *QueryService) GetLatestOperationID(ctx context.Context, name string) (int64, error) {
	return s.results.GetLatestOperationID(ctx, name)
}

// GetFleetSummary counts wells by type for the latest month of a run
func (s *QueryService) GetFleetSummary(ctx context.Context, operationID int64) (*repository.FleetSummary, error) {
	return s.results.GetFleetSummary(ctx, operationID)
}

// ListWells retrieves all known well names from the source data
func (s *QueryService) ListWells(ctx context.Context) ([]string, error) {
	return s.source.ListWellNames(ctx)
}

// HealthCheck verifies the backing database is reachable
func (s *QueryService) HealthCheck(ctx context.Context) error {
	return s.source.HealthCheck(ctx)
}
