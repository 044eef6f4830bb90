package calculator

import (
	"sort"

	"wellops-platform/internal/models"
)

// FormatWellRows assembles the fixed-schema well-level output table.
// Missing expected values are backfilled with type-appropriate defaults
// rather than failing the batch: an empty well type becomes UNKNOWN and
// rates are already zero-valued. Rows come out ordered by
// (well_name, year, month).
func FormatWellRows(months []models.ClassifiedMonth) []models.WellTypeRow {
	rows := make([]models.WellTypeRow, 0, len(months))

	for _, m := range months {
		row := models.WellTypeRow{
			WellName:     m.Entity.WellName,
			Year:         m.Year,
			Month:        m.Month,
			WellType:     m.WellType,
			OilRate:      m.OilRate,
			WaterRate:    m.WaterRate,
			WaterInjRate: m.WaterInjRate,
			Remarks:      m.Remarks,
		}
		if row.WellType == "" {
			row.WellType = models.WellTypeUnknown
		}
		if m.HasDualFunction {
			row.HasDualFunction = 1
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WellName != rows[j].WellName {
			return rows[i].WellName < rows[j].WellName
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})

	return rows
}

// FormatCompletionRows assembles the fixed-schema completion-level output
// table, ordered by (well_name, completion_name, reservoir, year, month).
// An empty reservoir is backfilled with the UNKNOWN sentinel.
func FormatCompletionRows(months []models.ClassifiedMonth) []models.CompletionStatusRow {
	rows := make([]models.CompletionStatusRow, 0, len(months))

	for _, m := range months {
		row := models.CompletionStatusRow{
			WellName:       m.Entity.WellName,
			CompletionName: m.Entity.CompletionName,
			Reservoir:      m.Entity.Reservoir,
			Year:           m.Year,
			Month:          m.Month,
			WellType:       m.WellType,
			OilRate:        m.OilRate,
			WaterRate:      m.WaterRate,
			WaterInjRate:   m.WaterInjRate,
		}
		if row.WellType == "" {
			row.WellType = models.WellTypeUnknown
		}
		if row.Reservoir == "" {
			row.Reservoir = models.UnknownReservoir
		}
		if m.IsActive {
			row.IsActive = 1
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.WellName != b.WellName {
			return a.WellName < b.WellName
		}
		if a.CompletionName != b.CompletionName {
			return a.CompletionName < b.CompletionName
		}
		if a.Reservoir != b.Reservoir {
			return a.Reservoir < b.Reservoir
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	return rows
}
