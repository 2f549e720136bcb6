package money

import (
	"testing"
)

func TestRound4(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{150, 150},
		{2.34567, 2.3457},
		{2.34564, 2.3456},
		{110.00000000000001, 110},
		{399.90000000000003, 399.9},
		{0.1, 0.1},
	}

	for _, c := range cases {
		if got := Round4(c.in); got != c.want {
			t.Errorf("Round4(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
