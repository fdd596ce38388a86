package app

import (
	"strings"
	"testing"
	"time"
)

func TestIsValidLedgerAddress(t *testing.T) {
	valid := "0x" + strings.Repeat("a", 64)

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "valid lowercase", input: valid, want: true},
		{name: "valid mixed case", input: "0x" + strings.Repeat("Ab", 32), want: true},
		{name: "missing prefix", input: strings.Repeat("a", 66), want: false},
		{name: "too short", input: "0x" + strings.Repeat("a", 63), want: false},
		{name: "too long", input: "0x" + strings.Repeat("a", 65), want: false},
		{name: "non-hex character", input: "0x" + strings.Repeat("a", 63) + "g", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidLedgerAddress(tt.input); got != tt.want {
				t.Fatalf("IsValidLedgerAddress(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidHexHash(t *testing.T) {
	if !IsValidHexHash(strings.Repeat("0f", 32)) {
		t.Fatal("expected 64-char hex digest to be valid")
	}
	if IsValidHexHash("0x" + strings.Repeat("a", 64)) {
		t.Fatal("expected prefixed digest to be rejected")
	}
	if IsValidHexHash(strings.Repeat("a", 63)) {
		t.Fatal("expected 63-char digest to be rejected")
	}
}

func TestIsValidContentID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "QmXxxxxxxxxxxxxxxx", want: true},
		{input: "bafybeigdyrzt5example", want: true},
		{input: "Qm123", want: false},      // too short
		{input: "zb2rhe5P4gX", want: false}, // unrecognized prefix
		{input: "", want: false},
	}

	for _, tt := range tests {
		if got := IsValidContentID(tt.input); got != tt.want {
			t.Errorf("IsValidContentID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsPositiveInteger(t *testing.T) {
	tests := []struct {
		input float64
		want  bool
	}{
		{input: 1, want: true},
		{input: 100000, want: true},
		{input: 0, want: false},
		{input: -5, want: false},
		{input: 10.5, want: false},
	}

	for _, tt := range tests {
		if got := IsPositiveInteger(tt.input); got != tt.want {
			t.Errorf("IsPositiveInteger(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsFutureTimestamp(t *testing.T) {
	now := time.Now().Unix()

	if IsFutureTimestamp(float64(now-10), now) {
		t.Fatal("expected past timestamp to be rejected")
	}
	if IsFutureTimestamp(float64(now), now) {
		t.Fatal("expected current timestamp to be rejected")
	}
	if !IsFutureTimestamp(float64(now+3600), now) {
		t.Fatal("expected near-future timestamp to be accepted")
	}
	if !IsFutureTimestamp(float64(now+maxFutureSeconds-1), now) {
		t.Fatal("expected timestamp just inside the five-year horizon to be accepted")
	}
	if IsFutureTimestamp(float64(now+maxFutureSeconds), now) {
		t.Fatal("expected timestamp at the five-year horizon to be rejected")
	}
	if IsFutureTimestamp(float64(now)+0.5, now) {
		t.Fatal("expected fractional timestamp to be rejected")
	}
}

func TestIsValidDiscountBps(t *testing.T) {
	tests := []struct {
		input float64
		want  bool
	}{
		{input: 0, want: true},
		{input: 320, want: true},
		{input: 10000, want: true},
		{input: 10001, want: false},
		{input: -1, want: false},
		{input: 250.5, want: false},
	}

	for _, tt := range tests {
		if got := IsValidDiscountBps(tt.input); got != tt.want {
			t.Errorf("IsValidDiscountBps(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("supplier@example.com") {
		t.Fatal("expected plain address to be valid")
	}
	if IsValidEmail("not-an-email") {
		t.Fatal("expected missing @ to be rejected")
	}
	if IsValidEmail("a b@example.com") {
		t.Fatal("expected whitespace to be rejected")
	}
}
