package models

import (
	"fmt"
	"time"
)

// Well operating modes assigned by the monthly classification.
const (
	WellTypeProduction = "PRODUCTION"
	WellTypeInjection  = "INJECTION"
	WellTypeDual       = "DUAL"
	WellTypeUnknown    = "UNKNOWN"
)

// UnknownReservoir is the sentinel for completions with no reservoir mapping.
const UnknownReservoir = "UNKNOWN"

// WellCompletion maps a completion to its parent well and reservoir.
// Supplied by the source database and treated as read-only lookup data.
type WellCompletion struct {
	WellName       string    `json:"well_name" db:"well_name"`
	CompletionName string    `json:"completion_name" db:"completion_name"`
	Reservoir      string    `json:"reservoir" db:"reservoir"`
	CoordinateX    *float64  `json:"coordinate_x,omitempty" db:"coordinate_x"`
	CoordinateY    *float64  `json:"coordinate_y,omitempty" db:"coordinate_y"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ProductionReading is one raw monthly production row for a completion.
// NULL volumes are represented as pointers and treated as zero downstream.
type ProductionReading struct {
	ID             int64     `json:"id" db:"id"`
	CompletionName string    `json:"completion_name" db:"completion_name"`
	ReadingDate    time.Time `json:"reading_date" db:"reading_date"`
	OilVolume      *float64  `json:"oil_volume,omitempty" db:"oil_volume"`
	WaterVolume    *float64  `json:"water_volume,omitempty" db:"water_volume"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// InjectionReading is one raw monthly water-injection row for a completion.
type InjectionReading struct {
	ID             int64     `json:"id" db:"id"`
	CompletionName string    `json:"completion_name" db:"completion_name"`
	ReadingDate    time.Time `json:"reading_date" db:"reading_date"`
	WaterVolume    *float64  `json:"water_volume,omitempty" db:"water_volume"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Validate checks a production reading for values the classifier cannot use.
func (r *ProductionReading) Validate() error {
	if r.ReadingDate.IsZero() {
		return &ValidationError{
			Field:   "reading_date",
			Value:   "",
			Message: "production reading has no resolvable date",
		}
	}
	if r.OilVolume != nil && *r.OilVolume < 0 {
		return &ValidationError{
			Field:   "oil_volume",
			Value:   fmt.Sprintf("%f", *r.OilVolume),
			Message: "oil volume must not be negative",
		}
	}
	if r.WaterVolume != nil && *r.WaterVolume < 0 {
		return &ValidationError{
			Field:   "water_volume",
			Value:   fmt.Sprintf("%f", *r.WaterVolume),
			Message: "water volume must not be negative",
		}
	}
	return nil
}

// Validate checks an injection reading for values the classifier cannot use.
func (r *InjectionReading) Validate() error {
	if r.ReadingDate.IsZero() {
		return &ValidationError{
			Field:   "reading_date",
			Value:   "",
			Message: "injection reading has no resolvable date",
		}
	}
	if r.WaterVolume != nil && *r.WaterVolume < 0 {
		return &ValidationError{
			Field:   "water_volume",
			Value:   fmt.Sprintf("%f", *r.WaterVolume),
			Message: "injected water volume must not be negative",
		}
	}
	return nil
}

// EntityKey identifies the unit being classified. At well granularity only
// WellName is set; at completion granularity all three fields are set.
type EntityKey struct {
	WellName       string `json:"well_name"`
	CompletionName string `json:"completion_name,omitempty"`
	Reservoir      string `json:"reservoir,omitempty"`
}

// String renders the key for logs and error messages.
func (k EntityKey) String() string {
	if k.CompletionName == "" {
		return k.WellName
	}
	return fmt.Sprintf("%s/%s/%s", k.WellName, k.CompletionName, k.Reservoir)
}

// MonthlyRate holds calendar-day rates for one entity and calendar month.
// Derived from raw volumes on every run and never persisted.
type MonthlyRate struct {
	Entity       EntityKey `json:"entity"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	OilRate      float64   `json:"oil_rate"`
	WaterRate    float64   `json:"water_rate"`
	WaterInjRate float64   `json:"water_inj_rate"`
}

// PresenceHistory records whether an entity ever produced or injected
// anywhere in the observed range.
type PresenceHistory struct {
	HasProductionHistory bool `json:"has_production_history"`
	HasInjectionHistory  bool `json:"has_injection_history"`
}

// ClassifiedMonth is the classifier output for one entity-month.
type ClassifiedMonth struct {
	Entity          EntityKey `json:"entity"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	WellType        string    `json:"well_type"`
	OilRate         float64   `json:"oil_rate"`
	WaterRate       float64   `json:"water_rate"`
	WaterInjRate    float64   `json:"water_inj_rate"`
	HasDualFunction bool      `json:"has_dual_function"`
	IsActive        bool      `json:"is_active"`
	Remarks         string    `json:"remarks"`
}

// WellTypeRow is the persisted well-level classification row.
type WellTypeRow struct {
	ID              int64   `json:"id" db:"id"`
	OperationID     int64   `json:"operation_id" db:"operation_id"`
	WellName        string  `json:"well_name" db:"well_name"`
	Year            int     `json:"year" db:"year"`
	Month           int     `json:"month" db:"month"`
	WellType        string  `json:"well_type" db:"well_type"`
	OilRate         float64 `json:"oil_rate" db:"oil_rate"`
	WaterRate       float64 `json:"water_rate" db:"water_rate"`
	WaterInjRate    float64 `json:"water_inj_rate" db:"water_inj_rate"`
	HasDualFunction int     `json:"has_dual_function" db:"has_dual_function"`
	Remarks         string  `json:"remarks" db:"remarks"`
}

// CompletionStatusRow is the persisted completion-level classification row.
type CompletionStatusRow struct {
	ID             int64   `json:"id" db:"id"`
	OperationID    int64   `json:"operation_id" db:"operation_id"`
	WellName       string  `json:"well_name" db:"well_name"`
	CompletionName string  `json:"completion_name" db:"completion_name"`
	Reservoir      string  `json:"reservoir" db:"reservoir"`
	Year           int     `json:"year" db:"year"`
	Month          int     `json:"month" db:"month"`
	IsActive       int     `json:"is_active" db:"is_active"`
	WellType       string  `json:"well_type" db:"well_type"`
	OilRate        float64 `json:"oil_rate" db:"oil_rate"`
	WaterRate      float64 `json:"water_rate" db:"water_rate"`
	WaterInjRate   float64 `json:"water_inj_rate" db:"water_inj_rate"`
}

// Operation is a named classification run. Re-running a name replaces the
// previous run and every row attached to it.
type Operation struct {
	OperationID int64     `json:"operation_id" db:"operation_id"`
	Name        string    `json:"operation_name" db:"operation_name"`
	Description string    `json:"description" db:"description"`
	Parameters  string    `json:"parameters" db:"parameters"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Operation statuses.
const (
	OperationStatusRunning   = "running"
	OperationStatusCompleted = "completed"
	OperationStatusFailed    = "failed"
)

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
