package services

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"testing"
	"time"

	"wellops-platform/internal/models"
	"wellops-platform/internal/repository"
	"wellops-platform/pkg/logging"
	"wellops-platform/pkg/metrics"
)

// One shared collector: prometheus registration is global per process.
var testMetrics = metrics.NewCollector("wellops_services_test")

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("wellops-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

// stubSource serves a fixed in-memory snapshot.
type stubSource struct {
	completions []models.WellCompletion
	production  []models.ProductionReading
	injection   []models.InjectionReading
}

func (s *stubSource) ListCompletions(ctx context.Context) ([]models.WellCompletion, error) {
	return s.completions, nil
}

func (s *stubSource) ListWellNames(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, c := range s.completions {
		if !seen[c.WellName] {
			seen[c.WellName] = true
			names = append(names, c.WellName)
		}
	}
	return names, nil
}

func (s *stubSource) GetProductionReadings(ctx context.Context, filter repository.ReadingFilter) ([]models.ProductionReading, error) {
	return s.production, nil
}

func (s *stubSource) GetInjectionReadings(ctx context.Context, filter repository.ReadingFilter) ([]models.InjectionReading, error) {
	return s.injection, nil
}

func (s *stubSource) HealthCheck(ctx context.Context) error { return nil }

// stubResults records saved rows and operation lifecycle in memory.
type stubResults struct {
	nextID         int64
	operations     map[int64]*models.Operation
	wellRows       map[int64][]models.WellTypeRow
	completionRows map[int64][]models.CompletionStatusRow
}

func newStubResults() *stubResults {
	return &stubResults{
		operations:     map[int64]*models.Operation{},
		wellRows:       map[int64][]models.WellTypeRow{},
		completionRows: map[int64][]models.CompletionStatusRow{},
	}
}

func (s *stubResults) CreateOperation(ctx context.Context, name, description, parameters string) (int64, error) {
	for id, op := range s.operations {
		if op.Name == name {
			delete(s.operations, id)
			delete(s.wellRows, id)
			delete(s.completionRows, id)
		}
	}
	s.nextID++
	s.operations[s.nextID] = &models.Operation{
		OperationID: s.nextID,
		Name:        name,
		Description: description,
		Parameters:  parameters,
		Status:      models.OperationStatusRunning,
		CreatedAt:   time.Now().UTC(),
	}
	return s.nextID, nil
}

func (s *stubResults) UpdateOperationStatus(ctx context.Context, operationID int64, status string) error {
	op, ok := s.operations[operationID]
	if !ok {
		return fmt.Errorf("operation %d not found", operationID)
	}
	op.Status = status
	return nil
}

func (s *stubResults) DeleteOperation(ctx context.Context, operationID int64) error {
	delete(s.operations, operationID)
	delete(s.wellRows, operationID)
	delete(s.completionRows, operationID)
	return nil
}

func (s *stubResults) ListOperations(ctx context.Context) ([]*models.Operation, error) {
	var ops []*models.Operation
	for _, op := range s.operations {
		ops = append(ops, op)
	}
	return ops, nil
}

func (s *stubResults) GetLatestOperationID(ctx context.Context, name string) (int64, error) {
	var latest int64
	for id, op := range s.operations {
		if op.Name == name && id > latest {
			latest = id
		}
	}
	if latest == 0 {
		return 0, fmt.Errorf("operation %q not found", name)
	}
	return latest, nil
}

func (s *stubResults) SaveWellTypeRows(ctx context.Context, operationID int64, rows []models.WellTypeRow) error {
	s.wellRows[operationID] = append(s.wellRows[operationID], rows...)
	return nil
}

func (s *stubResults) SaveCompletionStatusRows(ctx context.Context, operationID int64, rows []models.CompletionStatusRow) error {
	s.completionRows[operationID] = append(s.completionRows[operationID], rows...)
	return nil
}

func (s *stubResults) GetWellTypeRows(ctx context.Context, filter repository.WellTypeFilter) ([]*models.WellTypeRow, int, error) {
	return nil, 0, nil
}

func (s *stubResults) GetCompletionStatusRows(ctx context.Context, filter repository.CompletionStatusFilter) ([]*models.CompletionStatusRow, int, error) {
	return nil, 0, nil
}

func (s *stubResults) GetFleetSummary(ctx context.Context, operationID int64) (*repository.FleetSummary, error) {
	return nil, fmt.Errorf("not implemented")
}

func vol(v float64) *float64 { return &v }

func monthDate(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// fixtureSource builds a small field: three wells, five completions, a mix
// of producers, an injector, and a well that switches modes.
func fixtureSource() *stubSource {
	return &stubSource{
		completions: []models.WellCompletion{
			{WellName: "SAC-001", CompletionName: "SAC-001-UI", Reservoir: "U INFERIOR"},
			{WellName: "SAC-001", CompletionName: "SAC-001-TS", Reservoir: "T SUPERIOR"},
			{WellName: "SAC-002", CompletionName: "SAC-002-UI", Reservoir: "U INFERIOR"},
			{WellName: "SAC-003", CompletionName: "SAC-003-TI", Reservoir: "T INFERIOR"},
			{WellName: "SAC-003", CompletionName: "SAC-003-UI", Reservoir: "U INFERIOR"},
		},
		production: []models.ProductionReading{
			{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2023, 1), OilVolume: vol(310), WaterVolume: vol(62)},
			{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2023, 2), OilVolume: vol(280), WaterVolume: vol(56)},
			{CompletionName: "SAC-001-TS", ReadingDate: monthDate(2023, 1), OilVolume: vol(155)},
			{CompletionName: "SAC-003-TI", ReadingDate: monthDate(2023, 1), OilVolume: vol(93)},
			{CompletionName: "SAC-003-TI", ReadingDate: monthDate(2023, 3), OilVolume: vol(0), WaterVolume: vol(0)},
		},
		injection: []models.InjectionReading{
			{CompletionName: "SAC-002-UI", ReadingDate: monthDate(2023, 1), WaterVolume: vol(620)},
			{CompletionName: "SAC-002-UI", ReadingDate: monthDate(2023, 2), WaterVolume: vol(560)},
			{CompletionName: "SAC-003-UI", ReadingDate: monthDate(2023, 2), WaterVolume: vol(140)},
		},
	}
}

func newTestService(source *stubSource, results *stubResults, chunkSize int) *ClassificationService {
	return NewClassificationService(source, results, testLogger(), testMetrics, chunkSize)
}

func TestRunPersistsBothGranularities(t *testing.T) {
	source := fixtureSource()
	results := newStubResults()
	svc := newTestService(source, results, 2)

	runResult, err := svc.Run(context.Background(), RunOptions{
		OperationName: "monthly-2023",
		Description:   "test run",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if runResult.WellsClassified != 3 {
		t.Errorf("WellsClassified = %d, want 3", runResult.WellsClassified)
	}
	if runResult.CompletionsClassified != 5 {
		t.Errorf("CompletionsClassified = %d, want 5", runResult.CompletionsClassified)
	}

	op := results.operations[runResult.OperationID]
	if op == nil {
		t.Fatalf("operation %d not stored", runResult.OperationID)
	}
	if op.Status != models.OperationStatusCompleted {
		t.Errorf("operation status = %q, want %q", op.Status, models.OperationStatusCompleted)
	}

	wellRows := results.wellRows[runResult.OperationID]
	if len(wellRows) != runResult.WellRows {
		t.Errorf("stored %d well rows, summary says %d", len(wellRows), runResult.WellRows)
	}
	if len(wellRows) == 0 {
		t.Fatal("no well rows persisted")
	}

	// SAC-003 month 3 has zero volumes: carried PRODUCTION state, no
	// activity at either granularity.
	var carried *models.WellTypeRow
	for i := range wellRows {
		if wellRows[i].WellName == "SAC-003" && wellRows[i].Month == 3 {
			carried = &wellRows[i]
		}
	}
	if carried == nil {
		t.Fatal("SAC-003 month 3 missing from well rows")
	}
	if carried.WellType != models.WellTypeProduction {
		t.Errorf("SAC-003 month 3 well type = %q, want carried PRODUCTION", carried.WellType)
	}

	for _, row := range results.completionRows[runResult.OperationID] {
		if row.WellName == "SAC-003" && row.Month == 3 && row.IsActive != 0 {
			t.Errorf("SAC-003 month 3 completion row marked active with zero volumes")
		}
	}
}

func TestRunChunkSizeDoesNotChangeRows(t *testing.T) {
	var baseline []models.WellTypeRow
	var baselineCompl []models.CompletionStatusRow

	for i, chunkSize := range []int{1, 2, 100} {
		results := newStubResults()
		svc := newTestService(fixtureSource(), results, chunkSize)

		runResult, err := svc.Run(context.Background(), RunOptions{OperationName: "chunk-check"})
		if err != nil {
			t.Fatalf("Run(chunk=%d) error = %v", chunkSize, err)
		}

		wellRows := results.wellRows[runResult.OperationID]
		complRows := results.completionRows[runResult.OperationID]

		if i == 0 {
			baseline = wellRows
			baselineCompl = complRows
			continue
		}
		if !reflect.DeepEqual(wellRows, baseline) {
			t.Errorf("chunk size %d produced different well rows", chunkSize)
		}
		if !reflect.DeepEqual(complRows, baselineCompl) {
			t.Errorf("chunk size %d produced different completion rows", chunkSize)
		}
	}
}

func TestRunReplacesOperationWithSameName(t *testing.T) {
	results := newStubResults()
	svc := newTestService(fixtureSource(), results, 10)

	first, err := svc.Run(context.Background(), RunOptions{OperationName: "monthly"})
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := svc.Run(context.Background(), RunOptions{OperationName: "monthly"})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if first.OperationID == second.OperationID {
		t.Fatalf("replacement run reused operation ID %d", first.OperationID)
	}
	if _, ok := results.operations[first.OperationID]; ok {
		t.Errorf("replaced operation %d still stored", first.OperationID)
	}
	if rows := results.wellRows[first.OperationID]; len(rows) != 0 {
		t.Errorf("replaced operation %d still has %d well rows", first.OperationID, len(rows))
	}
	if len(results.wellRows[second.OperationID]) == 0 {
		t.Errorf("replacement operation %d has no well rows", second.OperationID)
	}
}

func TestRunCancelledContext(t *testing.T) {
	results := newStubResults()
	svc := newTestService(fixtureSource(), results, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, RunOptions{OperationName: "cancelled"})
	if err == nil {
		t.Fatal("Run() with cancelled context succeeded, want error")
	}

	for id, op := range results.operations {
		if op.Status == models.OperationStatusRunning {
			t.Errorf("operation %d left in running status after cancellation", id)
		}
	}
}

func TestRunRequiresOperationName(t *testing.T) {
	svc := newTestService(fixtureSource(), newStubResults(), 10)

	if _, err := svc.Run(context.Background(), RunOptions{}); err == nil {
		t.Fatal("Run() without operation name succeeded, want error")
	}
}

func TestRunReportsProgress(t *testing.T) {
	results := newStubResults()
	svc := newTestService(fixtureSource(), results, 2)

	var percents []float64
	_, err := svc.Run(context.Background(), RunOptions{
		OperationName: "progress",
		Progress:      func(p float64) { percents = append(percents, p) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(percents) == 0 {
		t.Fatal("no progress callbacks received")
	}
	last := percents[len(percents)-1]
	if last != 100 {
		t.Errorf("final progress = %.2f, want 100", last)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress went backwards: %.2f after %.2f", percents[i], percents[i-1])
		}
	}
}
