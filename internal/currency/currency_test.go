package currency_test

import (
	"testing"

	"github.com/sreeharimv/auction-platform/internal/currency"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{50_000, "50000"},
		{100_000, "1L"},
		{500_000, "5L"},
		{550_000, "5.5L"},
		{5_000_000, "50L"},
		{10_000_000, "1Cr"},
		{25_000_000, "2.5Cr"},
		{12_500_000, "1.2Cr"},
	}
	for _, tt := range tests {
		if got := currency.Format(tt.amount); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"5L", 500_000, false},
		{"5l", 500_000, false},
		{"2.5Cr", 25_000_000, false},
		{"1cr", 10_000_000, false},
		{"₹5,00,000", 500_000, false},
		{"500000", 500_000, false},
		{" 50L ", 5_000_000, false},
		{"", 0, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := currency.Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, amount := range []int64{500_000, 1_250_000, 10_000_000, 25_000_000} {
		got, err := currency.Parse(currency.Format(amount))
		if err != nil {
			t.Fatalf("Parse(Format(%d)) error = %v", amount, err)
		}
		if got != amount {
			t.Errorf("round trip of %d = %d", amount, got)
		}
	}
}
