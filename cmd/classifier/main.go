package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wellops-platform/internal/config"
	"wellops-platform/internal/repository"
	"wellops-platform/internal/services"
	"wellops-platform/pkg/database"
	"wellops-platform/pkg/logging"
	"wellops-platform/pkg/metrics"
)

func main() {
	// Parse command-line flags
	operationName := flag.String("operation", "", "Name for this classification run (required; re-using a name replaces the previous run)")
	description := flag.String("description", "", "Optional description stored with the run")
	wells := flag.String("wells", "", "Comma-separated list of well names to classify (default: all wells)")
	startDate := flag.String("start-date", "", "Only classify readings on or after this date (YYYY-MM-DD)")
	endDate := flag.String("end-date", "", "Only classify readings on or before this date (YYYY-MM-DD)")
	chunkSize := flag.Int("chunk-size", 0, "Entities classified per chunk (default: CLASSIFIER_CHUNK_SIZE)")
	flag.Parse()

	if *operationName == "" {
		fmt.Fprintln(os.Stderr, "Usage: classifier -operation <name> [-wells a,b,c] [-start-date YYYY-MM-DD] [-end-date YYYY-MM-DD]")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *chunkSize <= 0 {
		*chunkSize = cfg.Classifier.ChunkSize
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("wellops-classifier", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[CLASSIFIER_START] Starting well classification", logging.Fields{
		"version":        "1.0.0",
		"operation_name": *operationName,
		"chunk_size":     *chunkSize,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("wellops_classifier")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[CLASSIFIER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repositories and service
	sourceRepo := repository.NewSourceRepository(db, logger, metricsCollector)
	resultsRepo := repository.NewResultsRepository(db, logger, metricsCollector, cfg.Classifier.BatchSize)
	classificationService := services.NewClassificationService(sourceRepo, resultsRepo, logger, metricsCollector, *chunkSize)

	opts := services.RunOptions{
		OperationName: *operationName,
		Description:   *description,
		Progress: func(percent float64) {
			fmt.Printf("\rClassifying... %5.1f%%", percent)
		},
	}

	if *wells != "" {
		for _, name := range strings.Split(*wells, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				opts.WellNames = append(opts.WellNames, trimmed)
			}
		}
	}

	if *startDate != "" {
		parsed, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid start date %q, expected YYYY-MM-DD\n", *startDate)
			os.Exit(1)
		}
		opts.StartDate = &parsed
	}

	if *endDate != "" {
		parsed, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid end date %q, expected YYYY-MM-DD\n", *endDate)
			os.Exit(1)
		}
		opts.EndDate = &parsed
	}

	// Run classification
	result, err := classificationService.Run(ctx, opts)
	if err != nil {
		fmt.Println()
		logger.Fatal(ctx, "[CLASSIFIER_ERROR] Classification run failed", logging.Fields{
			"operation_name": *operationName,
		}, err)
	}
	fmt.Println()

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("CLASSIFICATION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Operation:              %s (id %d)\n", result.OperationName, result.OperationID)
	fmt.Printf("Wells Classified:       %d\n", result.WellsClassified)
	fmt.Printf("Completions Classified: %d\n", result.CompletionsClassified)
	fmt.Printf("Well Rows:              %d\n", result.WellRows)
	fmt.Printf("Completion Rows:        %d\n", result.CompletionRows)
	fmt.Printf("Skipped Readings:       %d\n", result.SkippedReadings)
	fmt.Printf("Duration:               %v\n", result.Duration)

	logger.Info(ctx, "[CLASSIFIER_COMPLETE] Classification completed successfully", logging.Fields{
		"operation_id":     result.OperationID,
		"well_rows":        result.WellRows,
		"completion_rows":  result.CompletionRows,
		"skipped_readings": result.SkippedReadings,
		"duration_seconds": result.Duration.Seconds(),
	})
}
