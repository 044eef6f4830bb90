package calculator

import (
	"wellops-platform/internal/models"
)

// BuildPresenceIndex computes, per entity, whether it ever had nonzero
// production and/or injection anywhere in the observed range. The index is
// built once per run over the full rate set, before classification, and is
// read-only afterwards. It is what lets a well remember it used to produce
// through a dry spell.
func BuildPresenceIndex(rates []models.MonthlyRate) map[models.EntityKey]models.PresenceHistory {
	index := make(map[models.EntityKey]models.PresenceHistory)

	for _, r := range rates {
		history := index[r.Entity]
		if r.OilRate > 0 || r.WaterRate > 0 {
			history.HasProductionHistory = true
		}
		if r.WaterInjRate > 0 {
			history.HasInjectionHistory = true
		}
		index[r.Entity] = history
	}

	return index
}
