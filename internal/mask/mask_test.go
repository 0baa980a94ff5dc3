package mask

import (
	"errors"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"0", ""},
		{"000", ""},
		{"R$ 0,00", ""},
		{"1", "R$ 0,01"},
		{"1000", "R$ 10,00"},
		{"123456", "R$ 1.234,56"},
		{"123456789", "R$ 1.234.567,89"},
		{"abc12x3", "R$ 1,23"},
	}

	for _, tc := range tests {
		if got := Currency(tc.input); got != tc.want {
			t.Fatalf("Currency(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCurrencyKeystrokeSequence(t *testing.T) {
	field := ""
	for _, key := range "12345" {
		field = Currency(field + string(key))
	}
	if field != "R$ 123,45" {
		t.Fatalf("expected R$ 123,45, got %q", field)
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"01", "01"},
		{"010", "01/0"},
		{"0101", "01/01"},
		{"01012", "01/01/2"},
		{"01012024", "01/01/2024"},
		{"0101202499", "01/01/2024"},
	}

	for _, tc := range tests {
		if got := Date(tc.input); got != tc.want {
			t.Fatalf("Date(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"%", ""},
		{"5", "5%"},
		{"50", "50%"},
		{"1000", "100%"},
	}

	for _, tc := range tests {
		if got := Percentage(tc.input); got != tc.want {
			t.Fatalf("Percentage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"81", "81"},
		{"813", "(81) 3"},
		{"8133333333", "(81) 3333-3333"},
		{"11987654321", "(11) 98765-4321"},
		{"119876543210", "(11) 98765-4321"},
	}

	for _, tc := range tests {
		if got := Phone(tc.input); got != tc.want {
			t.Fatalf("Phone(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTaxID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5299", "529.9"},
		{"529982247", "529.982.247"},
		{"52998224725", "529.982.247-25"},
		{"112223330001", "11.222.333/0001"},
		{"11222333000181", "11.222.333/0001-81"},
	}

	for _, tc := range tests {
		if got := TaxID(tc.input); got != tc.want {
			t.Fatalf("TaxID(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCEP(t *testing.T) {
	if got := CEP("50030230"); got != "50030-230" {
		t.Fatalf("expected 50030-230, got %q", got)
	}
	if got := CEP("5003023099"); got != "50030-230" {
		t.Fatalf("expected truncation, got %q", got)
	}
}

func TestMasksAreIdempotentOnOwnOutput(t *testing.T) {
	inputs := []string{"1000", "01012024", "75", "11987654321", "11222333000181", "50030230", "R$ 10,00"}
	for _, kind := range Kinds() {
		for _, in := range inputs {
			once, err := Apply(kind, in)
			if err != nil {
				t.Fatalf("Apply(%q): %v", kind, err)
			}
			twice, _ := Apply(kind, once)
			if once != twice {
				t.Fatalf("%s mask not idempotent for %q: %q then %q", kind, in, once, twice)
			}
		}
	}
}

func TestApplyUnknownMask(t *testing.T) {
	_, err := Apply("roman", "12")
	if !errors.Is(err, ErrUnknownMask) {
		t.Fatalf("expected ErrUnknownMask, got %v", err)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FileSize(1536); got != "1.5 KiB" {
		t.Fatalf("unexpected file size %q", got)
	}
	if got := BRL(-250); got != "-R$ 2,50" {
		t.Fatalf("unexpected BRL %q", got)
	}
	if got := CompactNumber(1500); got != "1.5K" {
		t.Fatalf("unexpected compact number %q", got)
	}
	if got := CompactNumber(2_340_000); got != "2.3M" {
		t.Fatalf("unexpected compact number %q", got)
	}
	if got := CompactNumber(999); got != "999" {
		t.Fatalf("unexpected compact number %q", got)
	}
}
