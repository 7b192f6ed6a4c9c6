package ledger

import "testing"

func TestFloatAdd(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{a: 10.10, b: 5.05, want: 15.15},
		{a: 0.10, b: 0.20, want: 0.30},
		{a: 99.99, b: 0.01, want: 100.00},
		{a: 0, b: 0, want: 0},
		{a: 0.01, b: 0.02, want: 0.03},
		{a: 1234.56, b: 7890.12, want: 9124.68},
	}

	for _, tt := range tests {
		if got := FloatAdd(tt.a, tt.b); got != tt.want {
			t.Fatalf("FloatAdd(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFloatSubtract(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{a: 10.10, b: 5.05, want: 5.05},
		{a: 0.30, b: 0.10, want: 0.20},
		{a: 100.00, b: 0.01, want: 99.99},
		{a: 5.05, b: 5.05, want: 0},
	}

	for _, tt := range tests {
		if got := FloatSubtract(tt.a, tt.b); got != tt.want {
			t.Fatalf("FloatSubtract(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFloatAddNoDriftOverManySteps(t *testing.T) {
	// 0.01 added 100 times must land exactly on 1.00.
	sum := 0.0
	for i := 0; i < 100; i++ {
		sum = FloatAdd(sum, 0.01)
	}
	if sum != 1.00 {
		t.Fatalf("accumulated sum = %v, want 1.00", sum)
	}
}
