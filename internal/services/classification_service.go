package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wellops-platform/internal/calculator"
	"wellops-platform/internal/models"
	"wellops-platform/internal/repository"
	"wellops-platform/pkg/logging"
	"wellops-platform/pkg/metrics"
)

// ClassificationService runs full classification passes: load one snapshot
// of the raw data, classify it at both granularities, and persist the
// result under a named operation.
type ClassificationService struct {
	source    repository.SourceRepository
	results   repository.ResultsRepository
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
	chunkSize int
}

// RunOptions controls one classification run.
type RunOptions struct {
	// OperationName identifies the run. Re-using a name replaces the
	// previous run with that name.
	OperationName string
	Description   string
	// WellNames limits the run to the listed wells. Empty means all wells.
	WellNames []string
	StartDate *time.Time
	EndDate   *time.Time
	// Progress, when set, is called after each classified chunk with the
	// percentage of entities processed so far.
	Progress func(percent float64)
}

// RunResult summarizes one completed classification run.
type RunResult struct {
	OperationID           int64         `json:"operation_id"`
	OperationName         string        `json:"operation_name"`
	WellsClassified       int           `json:"wells_classified"`
	CompletionsClassified int           `json:"completions_classified"`
	WellRows              int           `json:"well_rows"`
	CompletionRows        int           `json:"completion_rows"`
	SkippedReadings       int           `json:"skipped_readings"`
	Duration              time.Duration `json:"-"`
	DurationSeconds       float64       `json:"duration_seconds"`
}

// NewClassificationService creates a new classification service. chunkSize
// is the number of entities classified per chunk; chunking bounds memory
// pressure and cancellation latency, never the result.
func NewClassificationService(
	source repository.SourceRepository,
	results repository.ResultsRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	chunkSize int,
) *ClassificationService {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	return &ClassificationService{
		source:    source,
		results:   results,
		logger:    logger,
		metrics:   metricsCollector,
		chunkSize: chunkSize,
	}
}

// Run executes one full classification pass. The operation record is
// created first with status running, flipped to completed or failed at the
// end; a replaced operation's rows are gone as soon as the new one exists.
func (s *ClassificationService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	startTime := time.Now()

	if opts.OperationName == "" {
		return nil, fmt.Errorf("operation name must not be empty")
	}

	ctx = context.WithValue(ctx, "operation_name", opts.OperationName)

	s.logger.Info(ctx, "[CLASSIFY_START] Starting classification run", logging.Fields{
		"operation_name": opts.OperationName,
		"well_filter":    len(opts.WellNames),
		"chunk_size":     s.chunkSize,
		"stage":          "INITIALIZATION",
	})

	input, err := s.loadSnapshot(ctx, opts)
	if err != nil {
		s.metrics.RecordRun("failed")
		return nil, err
	}

	operationID, err := s.results.CreateOperation(ctx, opts.OperationName, opts.Description, encodeParameters(opts))
	if err != nil {
		s.metrics.RecordRun("failed")
		return nil, fmt.Errorf("failed to create operation: %w", err)
	}

	result, err := s.classifyAndPersist(ctx, operationID, input, opts)
	if err != nil {
		if statusErr := s.results.UpdateOperationStatus(ctx, operationID, models.OperationStatusFailed); statusErr != nil {
			s.logger.Error(ctx, "[CLASSIFY_STATUS_ERROR] Failed to mark operation failed", logging.Fields{
				"operation_id": operationID,
			}, statusErr)
		}
		s.metrics.RecordRun("failed")
		return nil, err
	}

	if err := s.results.UpdateOperationStatus(ctx, operationID, models.OperationStatusCompleted); err != nil {
		s.metrics.RecordRun("failed")
		return nil, fmt.Errorf("failed to mark operation completed: %w", err)
	}

	result.OperationID = operationID
	result.OperationName = opts.OperationName
	result.Duration = time.Since(startTime)
	result.DurationSeconds = result.Duration.Seconds()

	s.metrics.RecordRun("completed")
	s.metrics.ClassificationDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[CLASSIFY_COMPLETE] Classification run completed", logging.Fields{
		"operation_id":           operationID,
		"wells_classified":       result.WellsClassified,
		"completions_classified": result.CompletionsClassified,
		"well_rows":              result.WellRows,
		"completion_rows":        result.CompletionRows,
		"skipped_readings":       result.SkippedReadings,
		"duration_seconds":       result.Duration.Seconds(),
		"stage":                  "COMPLETE",
	})

	return result, nil
}

// loadSnapshot reads the full raw-data snapshot for the run.
func (s *ClassificationService) loadSnapshot(ctx context.Context, opts RunOptions) (calculator.Input, error) {
	filter := repository.ReadingFilter{
		WellNames: opts.WellNames,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
	}

	completions, err := s.source.ListCompletions(ctx)
	if err != nil {
		return calculator.Input{}, fmt.Errorf("failed to load completions: %w", err)
	}

	production, err := s.source.GetProductionReadings(ctx, filter)
	if err != nil {
		return calculator.Input{}, fmt.Errorf("failed to load production readings: %w", err)
	}

	injection, err := s.source.GetInjectionReadings(ctx, filter)
	if err != nil {
		return calculator.Input{}, fmt.Errorf("failed to load injection readings: %w", err)
	}

	s.logger.Info(ctx, "[CLASSIFY_SNAPSHOT] Raw data snapshot loaded", logging.Fields{
		"completions":         len(completions),
		"production_readings": len(production),
		"injection_readings":  len(injection),
		"stage":               "SNAPSHOT",
	})

	return calculator.Input{
		Production:  production,
		Injection:   injection,
		Completions: completions,
	}, nil
}

// classifyAndPersist runs the rate aggregation and both classification
// walks, then writes the formatted rows. Entities are classified in chunks
// of whole timelines, so any chunk size yields identical rows; ctx is only
// checked between chunks.
func (s *ClassificationService) classifyAndPersist(ctx context.Context, operationID int64, input calculator.Input, opts RunOptions) (*RunResult, error) {
	maps := calculator.BuildCompletionMaps(input.Completions)

	wellRates, skipped := calculator.AggregateRates(input.Production, input.Injection, maps, calculator.GranularityWell)
	complRates, _ := calculator.AggregateRates(input.Production, input.Injection, maps, calculator.GranularityCompletion)

	if skipped > 0 {
		s.metrics.SkippedReadingsTotal.Add(float64(skipped))
		s.logger.Warn(ctx, "[CLASSIFY_SKIPPED] Readings dropped for unmapped completions", logging.Fields{
			"skipped_readings": skipped,
			"stage":            "AGGREGATION",
		})
	}

	wellHistory := calculator.BuildPresenceIndex(wellRates)
	complHistory := calculator.BuildPresenceIndex(complRates)

	wellKeys, wellByEntity := calculator.GroupByEntity(wellRates)
	complKeys, complByEntity := calculator.GroupByEntity(complRates)

	totalEntities := len(wellKeys) + len(complKeys)
	processed := 0
	progress := func(n int) {
		processed += n
		if opts.Progress != nil && totalEntities > 0 {
			opts.Progress(100 * float64(processed) / float64(totalEntities))
		}
	}

	wellMonths, err := s.classifyChunked(ctx, wellKeys, wellByEntity, wellHistory, progress)
	if err != nil {
		return nil, err
	}

	complMonths, err := s.classifyChunked(ctx, complKeys, complByEntity, complHistory, progress)
	if err != nil {
		return nil, err
	}

	wellRows := calculator.FormatWellRows(wellMonths)
	complRows := calculator.FormatCompletionRows(complMonths)

	if err := s.results.SaveWellTypeRows(ctx, operationID, wellRows); err != nil {
		return nil, fmt.Errorf("failed to save well type rows: %w", err)
	}
	if err := s.results.SaveCompletionStatusRows(ctx, operationID, complRows); err != nil {
		return nil, fmt.Errorf("failed to save completion status rows: %w", err)
	}

	return &RunResult{
		WellsClassified:       len(wellKeys),
		CompletionsClassified: len(complKeys),
		WellRows:              len(wellRows),
		CompletionRows:        len(complRows),
		SkippedReadings:       skipped,
	}, nil
}

// classifyChunked walks entities chunk by chunk. A chunk always holds whole
// entity timelines; cancellation is honored at chunk boundaries only.
func (s *ClassificationService) classifyChunked(
	ctx context.Context,
	keys []models.EntityKey,
	byEntity map[models.EntityKey][]models.MonthlyRate,
	history map[models.EntityKey]models.PresenceHistory,
	progress func(n int),
) ([]models.ClassifiedMonth, error) {
	var months []models.ClassifiedMonth

	for start := 0; start < len(keys); start += s.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("classification cancelled: %w", err)
		}

		end := start + s.chunkSize
		if end > len(keys) {
			end = len(keys)
		}

		chunk := keys[start:end]
		months = append(months, calculator.ClassifyEntities(chunk, byEntity, history)...)
		s.metrics.ClassificationChunkSize.Observe(float64(len(chunk)))
		progress(len(chunk))
	}

	return months, nil
}

// encodeParameters serializes run options for the operation record.
func encodeParameters(opts RunOptions) string {
	params := map[string]interface{}{
		"well_names": opts.WellNames,
	}
	if opts.StartDate != nil {
		params["start_date"] = opts.StartDate.Format("2006-01-02")
	}
	if opts.EndDate != nil {
		params["end_date"] = opts.EndDate.Format("2006-01-02")
	}

	data, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(data)
}
