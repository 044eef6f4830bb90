package calculator

import (
	"fmt"
	"sort"

	"wellops-platform/internal/models"
)

// seedState derives the carried state an entity starts in before any month
// is examined. An entity with both production and injection history seeds
// PRODUCTION: that tie-break is preserved from the operating rule this
// system inherited, a policy choice rather than a law of the domain.
func seedState(history models.PresenceHistory) string {
	switch {
	case history.HasProductionHistory && !history.HasInjectionHistory:
		return models.WellTypeProduction
	case !history.HasProductionHistory && history.HasInjectionHistory:
		return models.WellTypeInjection
	case history.HasProductionHistory && history.HasInjectionHistory:
		return models.WellTypeProduction
	default:
		return models.WellTypeUnknown
	}
}

// GroupByEntity splits a sorted rate slice into per-entity timelines and
// returns the entity keys in canonical order. Chunked callers must keep
// each entity's timeline whole: partition the returned keys, never the
// raw rows.
func GroupByEntity(rates []models.MonthlyRate) ([]models.EntityKey, map[models.EntityKey][]models.MonthlyRate) {
	byEntity := make(map[models.EntityKey][]models.MonthlyRate)
	for _, r := range rates {
		byEntity[r.Entity] = append(byEntity[r.Entity], r)
	}

	keys := make([]models.EntityKey, 0, len(byEntity))
	for key := range byEntity {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return lessEntity(keys[i], keys[j]) })

	return keys, byEntity
}

// ClassifyEntities runs the temporal walk for the given entities and
// returns their classified months in canonical order. Entities with no
// rate rows contribute no output rows.
func ClassifyEntities(
	keys []models.EntityKey,
	byEntity map[models.EntityKey][]models.MonthlyRate,
	history map[models.EntityKey]models.PresenceHistory,
) []models.ClassifiedMonth {
	var months []models.ClassifiedMonth
	for _, key := range keys {
		months = append(months, classifyEntity(key, byEntity[key], history[key])...)
	}
	return months
}

// ClassifyMonthly classifies every entity present in rates. Equivalent to
// grouping and classifying all entities in one chunk.
func ClassifyMonthly(
	rates []models.MonthlyRate,
	history map[models.EntityKey]models.PresenceHistory,
) []models.ClassifiedMonth {
	keys, byEntity := GroupByEntity(rates)
	return ClassifyEntities(keys, byEntity, history)
}

// classifyEntity walks one entity's months in ascending (year, month)
// order. Each month with observed data sets both the emitted mode and the
// carried state; a gap month reuses the carried state without changing it.
// After the walk, DUAL months (observed or carried) are resolved to the
// dominant side and remarks are attached.
func classifyEntity(
	entity models.EntityKey,
	timeline []models.MonthlyRate,
	history models.PresenceHistory,
) []models.ClassifiedMonth {
	if len(timeline) == 0 {
		return nil
	}

	sorted := make([]models.MonthlyRate, len(timeline))
	copy(sorted, timeline)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Month < sorted[j].Month
	})

	carried := seedState(history)
	months := make([]models.ClassifiedMonth, 0, len(sorted))

	for _, rate := range sorted {
		hasProd := rate.OilRate > 0 || rate.WaterRate > 0
		hasInj := rate.WaterInjRate > 0

		month := models.ClassifiedMonth{
			Entity:       entity,
			Year:         rate.Year,
			Month:        rate.Month,
			OilRate:      rate.OilRate,
			WaterRate:    rate.WaterRate,
			WaterInjRate: rate.WaterInjRate,
			IsActive:     hasProd || hasInj,
		}

		switch {
		case hasProd && hasInj:
			month.WellType = models.WellTypeDual
			month.HasDualFunction = true
			carried = models.WellTypeDual
		case hasProd:
			month.WellType = models.WellTypeProduction
			carried = models.WellTypeProduction
		case hasInj:
			month.WellType = models.WellTypeInjection
			carried = models.WellTypeInjection
		default:
			// Gap month: reuse the last observed mode, leave it unchanged.
			month.WellType = carried
		}

		months = append(months, month)
	}

	for i := range months {
		resolveDual(&months[i])
		months[i].Remarks = remarksFor(&months[i])
	}

	return months
}

// resolveDual collapses a DUAL mode to the dominant side: PRODUCTION when
// the combined liquid rate is at least the injection rate, INJECTION
// otherwise. HasDualFunction stays set on observed-dual months so the
// original classification remains identifiable downstream.
func resolveDual(month *models.ClassifiedMonth) {
	if month.WellType != models.WellTypeDual {
		return
	}
	if month.OilRate+month.WaterRate >= month.WaterInjRate {
		month.WellType = models.WellTypeProduction
	} else {
		month.WellType = models.WellTypeInjection
	}
}

// remarksFor builds the descriptive rate summary for a classified month.
// Remarks never influence classification.
func remarksFor(month *models.ClassifiedMonth) string {
	switch {
	case month.HasDualFunction:
		return fmt.Sprintf(
			"Dual function well. Total production: %.2f bbl/d, Total injection: %.2f bbl/d.",
			month.OilRate+month.WaterRate, month.WaterInjRate)
	case month.WellType == models.WellTypeProduction:
		return fmt.Sprintf(
			"Producing well. Oil rate: %.2f bbl/d, Water rate: %.2f bbl/d.",
			month.OilRate, month.WaterRate)
	case month.WellType == models.WellTypeInjection:
		return fmt.Sprintf(
			"Injection well. Injection rate: %.2f bbl/d.", month.WaterInjRate)
	default:
		return ""
	}
}
