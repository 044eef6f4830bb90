package calculator

import (
	"wellops-platform/internal/models"
)

// Input is one full snapshot of raw source data. Every run recomputes the
// whole result from its snapshot; nothing is updated incrementally.
type Input struct {
	Production  []models.ProductionReading
	Injection   []models.InjectionReading
	Completions []models.WellCompletion
}

// Result carries both classification granularities for one run.
type Result struct {
	// WellMonths is keyed by well name; carried state is scoped to the
	// well as a whole (rates summed across its completions).
	WellMonths []models.ClassifiedMonth
	// CompletionMonths is keyed by (well, completion, reservoir); carried
	// state is scoped to the single completion.
	CompletionMonths []models.ClassifiedMonth
	// SkippedReadings counts raw rows dropped because their completion
	// has no well mapping.
	SkippedReadings int
}

// Run classifies one input snapshot at both granularities. The two runs
// are independent walks over the same raw readings, so a multi-completion
// well can be DUAL at the well level while each of its completions is
// purely PRODUCTION or INJECTION. Completion-level rates always sum to
// the well-level rates for the same (well, month).
func Run(input Input) Result {
	maps := BuildCompletionMaps(input.Completions)

	wellRates, wellSkipped := AggregateRates(input.Production, input.Injection, maps, GranularityWell)
	complRates, _ := AggregateRates(input.Production, input.Injection, maps, GranularityCompletion)

	wellHistory := BuildPresenceIndex(wellRates)
	complHistory := BuildPresenceIndex(complRates)

	return Result{
		WellMonths:       ClassifyMonthly(wellRates, wellHistory),
		CompletionMonths: ClassifyMonthly(complRates, complHistory),
		SkippedReadings:  wellSkipped,
	}
}
