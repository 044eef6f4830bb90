package models

import (
	"testing"
	"time"
)

func f64(v float64) *float64 {
	return &v
}

func TestProductionReading_Validate(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		reading ProductionReading
		wantErr bool
	}{
		{
			name:    "valid reading",
			reading: ProductionReading{CompletionName: "SAC-001-UI", ReadingDate: date, OilVolume: f64(310), WaterVolume: f64(62)},
		},
		{
			name:    "nil volumes are allowed",
			reading: ProductionReading{CompletionName: "SAC-001-UI", ReadingDate: date},
		},
		{
			name:    "zero volumes are allowed",
			reading: ProductionReading{CompletionName: "SAC-001-UI", ReadingDate: date, OilVolume: f64(0)},
		},
		{
			name:    "missing date",
			reading: ProductionReading{CompletionName: "SAC-001-UI", OilVolume: f64(310)},
			wantErr: true,
		},
		{
			name:    "negative oil volume",
			reading: ProductionReading{CompletionName: "SAC-001-UI", ReadingDate: date, OilVolume: f64(-1)},
			wantErr: true,
		},
		{
			name:    "negative water volume",
			reading: ProductionReading{CompletionName: "SAC-001-UI", ReadingDate: date, WaterVolume: f64(-5)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reading.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInjectionReading_Validate(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := InjectionReading{CompletionName: "SAC-001-TS", ReadingDate: date, WaterVolume: f64(93)}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	negative := InjectionReading{CompletionName: "SAC-001-TS", ReadingDate: date, WaterVolume: f64(-93)}
	if err := negative.Validate(); err == nil {
		t.Error("Validate() = nil, want error for negative volume")
	}

	undated := InjectionReading{CompletionName: "SAC-001-TS", WaterVolume: f64(93)}
	if err := undated.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing date")
	}
}

func TestEntityKey_String(t *testing.T) {
	well := EntityKey{WellName: "SAC-001"}
	if got := well.String(); got != "SAC-001" {
		t.Errorf("String() = %q, want %q", got, "SAC-001")
	}

	completion := EntityKey{WellName: "SAC-001", CompletionName: "SAC-001-UI", Reservoir: "U INFERIOR"}
	if got := completion.String(); got != "SAC-001/SAC-001-UI/U INFERIOR" {
		t.Errorf("String() = %q, want %q", got, "SAC-001/SAC-001-UI/U INFERIOR")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "oil_volume",
		Value:   "-1",
		Message: "oil volume must not be negative",
	}

	if err.Error() != "oil volume must not be negative" {
		t.Errorf("Error() = %v, want message text", err.Error())
	}

	if err.IsTransient() {
		t.Error("ValidationError should not be transient")
	}
}
