// Package calculator implements the monthly well classification core:
// calendar-day rate aggregation, historical presence indexing, the
// temporal classification walk, and result formatting. Everything in
// this package is a pure transform over in-memory slices; persistence
// and transport live elsewhere.
package calculator

import (
	"sort"
	"time"

	"wellops-platform/internal/models"
)

// Granularity selects the classification key.
type Granularity int

const (
	// GranularityWell keys rates and classifications by well name only.
	GranularityWell Granularity = iota
	// GranularityCompletion keys by (well, completion, reservoir).
	GranularityCompletion
)

// CompletionMaps are the immutable lookup tables built once per run from
// the source mapping rows. Completions absent from CompletionToWell are
// out of scope and their readings are dropped.
type CompletionMaps struct {
	CompletionToWell      map[string]string
	CompletionToReservoir map[string]string
}

// BuildCompletionMaps constructs the lookup maps from mapping rows.
// A completion with an empty reservoir maps to the UNKNOWN sentinel.
func BuildCompletionMaps(completions []models.WellCompletion) CompletionMaps {
	maps := CompletionMaps{
		CompletionToWell:      make(map[string]string, len(completions)),
		CompletionToReservoir: make(map[string]string, len(completions)),
	}

	for _, c := range completions {
		if c.WellName == "" || c.CompletionName == "" {
			continue
		}
		maps.CompletionToWell[c.CompletionName] = c.WellName

		reservoir := c.Reservoir
		if reservoir == "" {
			reservoir = models.UnknownReservoir
		}
		maps.CompletionToReservoir[c.CompletionName] = reservoir
	}

	return maps
}

// entityFor resolves the classification key for a completion at the given
// granularity. The second return is false for unmappable completions.
func (m CompletionMaps) entityFor(completionName string, granularity Granularity) (models.EntityKey, bool) {
	wellName, ok := m.CompletionToWell[completionName]
	if !ok {
		return models.EntityKey{}, false
	}

	if granularity == GranularityWell {
		return models.EntityKey{WellName: wellName}, true
	}

	reservoir, ok := m.CompletionToReservoir[completionName]
	if !ok {
		reservoir = models.UnknownReservoir
	}

	return models.EntityKey{
		WellName:       wellName,
		CompletionName: completionName,
		Reservoir:      reservoir,
	}, true
}

// rateKey identifies one aggregation group.
type rateKey struct {
	entity models.EntityKey
	year   int
	month  int
}

// AggregateRates groups raw readings by (entity, year, month), sums the
// volumes within each group and divides by the number of calendar days in
// the month. Readings for completions with no well mapping are silently
// excluded; the count of excluded readings is returned for run reporting.
// NULL volumes are treated as zero.
func AggregateRates(
	production []models.ProductionReading,
	injection []models.InjectionReading,
	maps CompletionMaps,
	granularity Granularity,
) ([]models.MonthlyRate, int) {
	groups := make(map[rateKey]*models.MonthlyRate)
	skipped := 0

	for _, r := range production {
		entity, ok := maps.entityFor(r.CompletionName, granularity)
		if !ok {
			skipped++
			continue
		}

		rate := groupFor(groups, entity, r.ReadingDate)
		days := daysInMonth(r.ReadingDate)
		rate.OilRate += volumeOrZero(r.OilVolume) / days
		rate.WaterRate += volumeOrZero(r.WaterVolume) / days
	}

	for _, r := range injection {
		entity, ok := maps.entityFor(r.CompletionName, granularity)
		if !ok {
			skipped++
			continue
		}

		rate := groupFor(groups, entity, r.ReadingDate)
		rate.WaterInjRate += volumeOrZero(r.WaterVolume) / daysInMonth(r.ReadingDate)
	}

	rates := make([]models.MonthlyRate, 0, len(groups))
	for _, rate := range groups {
		rates = append(rates, *rate)
	}
	SortRates(rates)

	return rates, skipped
}

// groupFor returns the accumulator for one (entity, year, month) group,
// creating it on first use.
func groupFor(groups map[rateKey]*models.MonthlyRate, entity models.EntityKey, date time.Time) *models.MonthlyRate {
	key := rateKey{entity: entity, year: date.Year(), month: int(date.Month())}
	if rate, ok := groups[key]; ok {
		return rate
	}

	rate := &models.MonthlyRate{
		Entity: entity,
		Year:   key.year,
		Month:  key.month,
	}
	groups[key] = rate
	return rate
}

// daysInMonth returns the number of calendar days in the month of date.
func daysInMonth(date time.Time) float64 {
	// Day zero of the next month is the last day of this month.
	return float64(time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day())
}

func volumeOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// SortRates orders rates by entity, then year, then month. Every slice the
// calculator hands out is in this order so repeated runs are byte-identical.
func SortRates(rates []models.MonthlyRate) {
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].Entity != rates[j].Entity {
			return lessEntity(rates[i].Entity, rates[j].Entity)
		}
		if rates[i].Year != rates[j].Year {
			return rates[i].Year < rates[j].Year
		}
		return rates[i].Month < rates[j].Month
	})
}

// lessEntity is the canonical ordering for classification keys.
func lessEntity(a, b models.EntityKey) bool {
	if a.WellName != b.WellName {
		return a.WellName < b.WellName
	}
	if a.CompletionName != b.CompletionName {
		return a.CompletionName < b.CompletionName
	}
	return a.Reservoir < b.Reservoir
}
