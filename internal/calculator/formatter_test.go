package calculator

import (
	"sort"
	"testing"

	"wellops-platform/internal/models"
)

func TestFormatWellRows(t *testing.T) {
	months := []models.ClassifiedMonth{
		{
			Entity: wellEntity("SAC-300"), Year: 2024, Month: 2,
			WellType: models.WellTypeProduction, OilRate: 10, Remarks: "Producing well. Oil rate: 10.00 bbl/d, Water rate: 0.00 bbl/d.",
		},
		{
			Entity: wellEntity("SAC-300"), Year: 2024, Month: 1,
			WellType: models.WellTypeProduction, OilRate: 12, HasDualFunction: true,
		},
		// Missing well type is backfilled, not rejected.
		{Entity: wellEntity("SAC-299"), Year: 2024, Month: 1},
	}

	rows := FormatWellRows(months)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	ordered := sort.SliceIsSorted(rows, func(i, j int) bool {
		if rows[i].WellName != rows[j].WellName {
			return rows[i].WellName < rows[j].WellName
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	if !ordered {
		t.Error("rows must be ordered by (well_name, year, month)")
	}

	if rows[0].WellType != models.WellTypeUnknown {
		t.Errorf("backfilled well type = %q, want UNKNOWN", rows[0].WellType)
	}
	if rows[0].Remarks != "" || rows[0].OilRate != 0 {
		t.Errorf("backfilled row = %+v, want zero-valued defaults", rows[0])
	}
	if rows[1].HasDualFunction != 1 {
		t.Errorf("HasDualFunction = %d, want 1", rows[1].HasDualFunction)
	}
}

func TestFormatCompletionRows(t *testing.T) {
	months := []models.ClassifiedMonth{
		{
			Entity:   models.EntityKey{WellName: "SAC-300", CompletionName: "SAC-300-UI", Reservoir: "U INFERIOR"},
			Year:     2024,
			Month:    1,
			WellType: models.WellTypeInjection, WaterInjRate: 3, IsActive: true,
		},
		{
			// Empty reservoir gets the sentinel.
			Entity: models.EntityKey{WellName: "SAC-300", CompletionName: "SAC-300-XX"},
			Year:   2024,
			Month:  1,
		},
	}

	rows := FormatCompletionRows(months)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	if rows[0].IsActive != 1 {
		t.Errorf("IsActive = %d, want 1", rows[0].IsActive)
	}
	if rows[1].Reservoir != models.UnknownReservoir {
		t.Errorf("Reservoir = %q, want %q", rows[1].Reservoir, models.UnknownReservoir)
	}
	if rows[1].WellType != models.WellTypeUnknown {
		t.Errorf("WellType = %q, want UNKNOWN", rows[1].WellType)
	}
	if rows[1].IsActive != 0 {
		t.Errorf("IsActive = %d, want 0", rows[1].IsActive)
	}
}
