package money

import (
	"errors"
	"testing"
)

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"12.50", 1250},
		{"12.5", 1250},
		{"12", 1200},
		{"0.01", 1},
		{".50", 50},
		{"-3.25", -325},
		{"+7", 700},
		{" 10.00 ", 1000},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if err != nil {
			t.Fatalf("ParseMinor(%q): unexpected error %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseMinorRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "1,50", "-", "10.x"} {
		if _, err := ParseMinor(input); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseMinor(%q): expected ErrInvalidAmount, got %v", input, err)
		}
	}
}

func TestParseMinorRejectsOverflow(t *testing.T) {
	inputs := []string{
		"184467440737095517.00",
		"92233720368547758.08",
		"99999999999999999999",
	}
	for _, input := range inputs {
		if _, err := ParseMinor(input); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseMinor(%q): expected ErrInvalidAmount, got %v", input, err)
		}
	}
	// The largest representable amount still parses.
	if got, err := ParseMinor("92233720368547758.07"); err != nil || got != 9223372036854775807 {
		t.Fatalf("ParseMinor at int64 max = %d, %v", got, err)
	}
}

func TestParseMinorRejectsSubCentPrecision(t *testing.T) {
	if _, err := ParseMinor("1.005"); !errors.Is(err, ErrTooManyDecimals) {
		t.Fatalf("expected ErrTooManyDecimals, got %v", err)
	}
}

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		input int64
		want  string
	}{
		{1250, "12.50"},
		{1, "0.01"},
		{0, "0.00"},
		{-325, "-3.25"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := FormatMinor(tc.input); got != tc.want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
