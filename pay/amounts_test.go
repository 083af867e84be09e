package pay

import "testing"

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{420, 42000},
		{1, 100},
		{0.5, 50},
		{99.99, 9999},
		{0.1 + 0.2, 30}, // float noise must not leak into paise
	}
	for _, tc := range cases {
		if got := ToMinorUnits(tc.in); got != tc.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClampToFloor(t *testing.T) {
	if got := ClampToFloor(0); got != GatewayFloor {
		t.Fatalf("expected floor for zero total, got %v", got)
	}
	if got := ClampToFloor(0.25); got != GatewayFloor {
		t.Fatalf("expected floor for sub-floor total, got %v", got)
	}
	if got := ClampToFloor(420); got != 420 {
		t.Fatalf("expected amount unchanged, got %v", got)
	}
}
