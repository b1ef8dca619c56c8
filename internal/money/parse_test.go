package money

import (
	"math"
	"testing"
)

func TestParseValid(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2500", 2500},
		{"2 500", 2500},
		{"2500,50", 2500.50},
		{"2.500,75", 2500.75},
		{"2,500.75", 2500.75},
		{"1.234.567,89", 1234567.89},
		{"2к", 2000},
		{"2k", 2000},
		{"2K", 2000},
		{"1,5к", 1500},
		{"0", 0},
		{"0,00", 0},
		{"  42  ", 42},
		{"100₽", 100},
		{"2500 руб", 2500},
		{"3.5", 3.5},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		if !ok {
			t.Errorf("Parse(%q): unexpected invalid", tc.in)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"-5",
		"-0.01",
		"abc",
		"к",
		"...",
		"--",
	} {
		if got, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = %v, want invalid", in, got)
		}
	}
}

func TestParseRoundsToCents(t *testing.T) {
	got, ok := Parse("10.999")
	if !ok {
		t.Fatal("Parse: unexpected invalid")
	}
	if got != 11.0 {
		t.Errorf("Parse(10.999) = %v, want 11", got)
	}

	got, ok = Parse("0.005к")
	if !ok {
		t.Fatal("Parse: unexpected invalid")
	}
	if math.Round(got*100) != got*100 {
		t.Errorf("result %v has more than 2 decimal places", got)
	}
}
