package calculator

import (
	"testing"
	"time"

	"wellops-platform/internal/models"
)

func vol(v float64) *float64 {
	return &v
}

func monthDate(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func testCompletions() []models.WellCompletion {
	return []models.WellCompletion{
		{WellName: "SAC-001", CompletionName: "SAC-001-UI", Reservoir: "U INFERIOR"},
		{WellName: "SAC-001", CompletionName: "SAC-001-TS", Reservoir: "T SUPERIOR"},
		{WellName: "SAC-002", CompletionName: "SAC-002-UI", Reservoir: ""},
	}
}

func TestBuildCompletionMaps(t *testing.T) {
	maps := BuildCompletionMaps(testCompletions())

	if got := maps.CompletionToWell["SAC-001-TS"]; got != "SAC-001" {
		t.Errorf("CompletionToWell[SAC-001-TS] = %q, want %q", got, "SAC-001")
	}

	// Empty reservoir maps to the sentinel.
	if got := maps.CompletionToReservoir["SAC-002-UI"]; got != models.UnknownReservoir {
		t.Errorf("CompletionToReservoir[SAC-002-UI] = %q, want %q", got, models.UnknownReservoir)
	}

	if _, ok := maps.CompletionToWell["NO-SUCH"]; ok {
		t.Error("unknown completion should not be mapped")
	}
}

func TestAggregateRates_CalendarDayDivision(t *testing.T) {
	tests := []struct {
		name       string
		production []models.ProductionReading
		wantOil    float64
	}{
		{
			name: "31 day month",
			production: []models.ProductionReading{
				{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2024, 1), OilVolume: vol(310)},
			},
			wantOil: 10,
		},
		{
			name: "leap february",
			production: []models.ProductionReading{
				{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2024, 2), OilVolume: vol(290)},
			},
			wantOil: 10,
		},
		{
			name: "non-leap february",
			production: []models.ProductionReading{
				{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2023, 2), OilVolume: vol(280)},
			},
			wantOil: 10,
		},
	}

	maps := BuildCompletionMaps(testCompletions())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, skipped := AggregateRates(tt.production, nil, maps, GranularityWell)
			if skipped != 0 {
				t.Errorf("skipped = %d, want 0", skipped)
			}
			if len(rates) != 1 {
				t.Fatalf("len(rates) = %d, want 1", len(rates))
			}
			if rates[0].OilRate != tt.wantOil {
				t.Errorf("OilRate = %v, want %v", rates[0].OilRate, tt.wantOil)
			}
		})
	}
}

func TestAggregateRates_GroupsAndSums(t *testing.T) {
	maps := BuildCompletionMaps(testCompletions())

	// Two completions of the same well in the same month collapse into one
	// well-level group; injection joins the same group.
	production := []models.ProductionReading{
		{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2024, 1), OilVolume: vol(310), WaterVolume: vol(62)},
		{CompletionName: "SAC-001-TS", ReadingDate: monthDate(2024, 1), OilVolume: vol(155)},
	}
	injection := []models.InjectionReading{
		{CompletionName: "SAC-001-TS", ReadingDate: monthDate(2024, 1), WaterVolume: vol(93)},
	}

	rates, _ := AggregateRates(production, injection, maps, GranularityWell)
	if len(rates) != 1 {
		t.Fatalf("len(rates) = %d, want 1", len(rates))
	}

	r := rates[0]
	if r.Entity.WellName != "SAC-001" || r.Entity.CompletionName != "" {
		t.Errorf("entity = %v, want well-level SAC-001", r.Entity)
	}
	if r.OilRate != 15 {
		t.Errorf("OilRate = %v, want 15", r.OilRate)
	}
	if r.WaterRate != 2 {
		t.Errorf("WaterRate = %v, want 2", r.WaterRate)
	}
	if r.WaterInjRate != 3 {
		t.Errorf("WaterInjRate = %v, want 3", r.WaterInjRate)
	}

	// At completion granularity the same input stays split.
	complRates, _ := AggregateRates(production, injection, maps, GranularityCompletion)
	if len(complRates) != 2 {
		t.Fatalf("completion-level len(rates) = %d, want 2", len(complRates))
	}
	if complRates[0].Entity.Reservoir != "T SUPERIOR" {
		t.Errorf("first entity reservoir = %q, want %q", complRates[0].Entity.Reservoir, "T SUPERIOR")
	}
}

func TestAggregateRates_DropsUnmappedReadings(t *testing.T) {
	maps := BuildCompletionMaps(testCompletions())

	production := []models.ProductionReading{
		{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2024, 1), OilVolume: vol(310)},
		{CompletionName: "EXCLUDED-99", ReadingDate: monthDate(2024, 1), OilVolume: vol(500)},
	}
	injection := []models.InjectionReading{
		{CompletionName: "EXCLUDED-99", ReadingDate: monthDate(2024, 1), WaterVolume: vol(100)},
	}

	rates, skipped := AggregateRates(production, injection, maps, GranularityWell)
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(rates) != 1 {
		t.Fatalf("len(rates) = %d, want 1", len(rates))
	}
	if rates[0].Entity.WellName != "SAC-001" {
		t.Errorf("surviving entity = %v, want SAC-001", rates[0].Entity)
	}
}

func TestAggregateRates_NilVolumesDefaultToZero(t *testing.T) {
	maps := BuildCompletionMaps(testCompletions())

	production := []models.ProductionReading{
		{CompletionName: "SAC-001-UI", ReadingDate: monthDate(2024, 1)},
	}

	rates, _ := AggregateRates(production, nil, maps, GranularityWell)
	if len(rates) != 1 {
		t.Fatalf("len(rates) = %d, want 1", len(rates))
	}
	if rates[0].OilRate != 0 || rates[0].WaterRate != 0 || rates[0].WaterInjRate != 0 {
		t.Errorf("rates = %+v, want all zero", rates[0])
	}
}

func TestAggregateRates_EmptyInput(t *testing.T) {
	maps := BuildCompletionMaps(testCompletions())

	rates, skipped := AggregateRates(nil, nil, maps, GranularityWell)
	if len(rates) != 0 || skipped != 0 {
		t.Errorf("rates = %v skipped = %d, want empty result", rates, skipped)
	}
}
