package worker

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateConfig_Valid(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config
	}{
		{name: "defaults", cfg: config{AmbientLimit: DefaultLimit}},
		{name: "with rate gate", cfg: config{AmbientLimit: 1, RPS: 100, Burst: 10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateConfig(tc.cfg); err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateConfig_BadAmbientLimit(t *testing.T) {
	err := validateConfig(config{AmbientLimit: 0})
	if err == nil {
		t.Fatal("expected error for ambient limit below 1")
	}

	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}

	if !hasField(fields, "AmbientLimit") {
		t.Errorf("expected an AmbientLimit field error, got %v", fields)
	}
}

func TestValidateConfig_NegativeGate(t *testing.T) {
	err := validateConfig(config{AmbientLimit: 1, RPS: -1, Burst: -2})
	if err == nil {
		t.Fatal("expected error for negative rate settings")
	}

	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}

	if !hasField(fields, "RPS") {
		t.Errorf("expected an RPS field error, got %v", fields)
	}
	if !hasField(fields, "Burst") {
		t.Errorf("expected a Burst field error, got %v", fields)
	}
}

func TestFieldErrors_ErrorIsJSON(t *testing.T) {
	fields := FieldErrors{{Field: "RPS", Err: "must be 0 or greater"}}

	msg := fields.Error()
	if !strings.Contains(msg, `"field":"RPS"`) {
		t.Errorf("Error() = %s, want JSON carrying the field name", msg)
	}
}

func hasField(fields FieldErrors, name string) bool {
	for _, fe := range fields {
		if fe.Field == name {
			return true
		}
	}

	return false
}
