package parser

import (
	"testing"
	"time"
)

func TestParseLocalizedDecimal_ArgentineForm(t *testing.T) {
	result, conf, err := ParseLocalizedDecimal("1.234,56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1234.56" {
		t.Errorf("Expected '1234.56', got '%s'", result.String())
	}
	if conf != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", conf)
	}
}

func TestParseLocalizedDecimal_USForm(t *testing.T) {
	result, conf, err := ParseLocalizedDecimal("1,234.56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1234.56" {
		t.Errorf("Expected '1234.56', got '%s'", result.String())
	}
	if conf != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", conf)
	}
}

func TestParseLocalizedDecimal_SingleCommaDecimal(t *testing.T) {
	result, conf, err := ParseLocalizedDecimal("45,50")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "45.5" {
		t.Errorf("Expected '45.5', got '%s'", result.String())
	}
	if conf != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", conf)
	}
}

func TestParseLocalizedDecimal_ThreeTrailingDigitsIsGrouping(t *testing.T) {
	result, conf, err := ParseLocalizedDecimal("1.000")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1000" {
		t.Errorf("Expected '1000', got '%s'", result.String())
	}
	if conf != ConfidenceLow {
		t.Errorf("Expected low confidence for ambiguous grouping, got %s", conf)
	}
}

func TestParseLocalizedDecimal_RepeatedMarksAreGrouping(t *testing.T) {
	result, conf, err := ParseLocalizedDecimal("1.234.567")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1234567" {
		t.Errorf("Expected '1234567', got '%s'", result.String())
	}
	if conf != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", conf)
	}
}

func TestParseLocalizedDecimal_RepeatedMarksWithDecimalTail(t *testing.T) {
	result, _, err := ParseLocalizedDecimal("1.234.56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1234.56" {
		t.Errorf("Expected '1234.56', got '%s'", result.String())
	}
}

func TestParseLocalizedDecimal_PlainInteger(t *testing.T) {
	result, conf, err := ParseLocalizedDecimal("500")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "500" {
		t.Errorf("Expected '500', got '%s'", result.String())
	}
	if conf != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", conf)
	}
}

func TestParseLocalizedDecimal_Empty(t *testing.T) {
	_, _, err := ParseLocalizedDecimal("   ")
	if err == nil {
		t.Error("Expected error for empty token, got nil")
	}
}

func TestExpandYear_Pivot(t *testing.T) {
	if y := expandYear(24); y != 2024 {
		t.Errorf("Expected 2024, got %d", y)
	}
	if y := expandYear(99); y != 1999 {
		t.Errorf("Expected 1999, got %d", y)
	}
	if y := expandYear(49); y != 2049 {
		t.Errorf("Expected 2049, got %d", y)
	}
	if y := expandYear(50); y != 1950 {
		t.Errorf("Expected 1950, got %d", y)
	}
	if y := expandYear(2024); y != 2024 {
		t.Errorf("Expected four-digit year untouched, got %d", y)
	}
}

func TestNewDate_RejectsOverflow(t *testing.T) {
	_, err := newDate(2024, time.February, 31)
	if err == nil {
		t.Error("Expected error for 31 February, got nil")
	}
}

func TestNewDate_LeapDay(t *testing.T) {
	result, err := newDate(2024, time.February, 29)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Day() != 29 || result.Month() != time.February {
		t.Errorf("Expected 29 February, got %v", result)
	}
	if result.Location() != time.UTC {
		t.Errorf("Expected UTC, got %v", result.Location())
	}
}

func TestParseSpanishDate_MonthNames(t *testing.T) {
	result, err := parseSpanishDate([]string{"15", "noviembre", "2024"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Year() != 2024 || result.Month() != time.November || result.Day() != 15 {
		t.Errorf("Expected 2024-11-15, got %v", result)
	}
}

func TestParseSpanishDate_SetiembreVariant(t *testing.T) {
	result, err := parseSpanishDate([]string{"3", "setiembre", "2023"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Month() != time.September {
		t.Errorf("Expected September, got %v", result.Month())
	}
}

func TestParseSpanishDate_UnknownMonth(t *testing.T) {
	_, err := parseSpanishDate([]string{"3", "brumario", "2023"})
	if err == nil {
		t.Error("Expected error for unknown month name, got nil")
	}
}
