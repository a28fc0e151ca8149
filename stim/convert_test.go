package stim_test

import (
	"errors"
	"testing"

	"github.com/chuhuiyu/mxstim/stim"
)

func TestToDACBitsTruncates(t *testing.T) {
	cases := []struct {
		mv, lsb  float64
		expected int
	}{
		{100, 2.9, 34},  // documented vendor example, 34.48 truncates
		{100, 2.92, 34}, // 34.24 truncates, never rounds
		{75, 2.92, 25},
		{200, 2.9, 68},
		{0, 2.9, 0},
	}
	for _, tc := range cases {
		got, err := stim.ToDACBits(tc.mv, tc.lsb)
		if err != nil {
			t.Fatalf("ToDACBits(%g, %g): %v", tc.mv, tc.lsb, err)
		}
		if got != tc.expected {
			t.Errorf("ToDACBits(%g, %g) = %d, expected %d", tc.mv, tc.lsb, got, tc.expected)
		}
	}
}

func TestToDACBitsBadScale(t *testing.T) {
	for _, lsb := range []float64{0, -2.9} {
		_, err := stim.ToDACBits(100, lsb)
		var cfgErr stim.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("ToDACBits(100, %g): expected ConfigurationError, got %v", lsb, err)
		}
	}
}
