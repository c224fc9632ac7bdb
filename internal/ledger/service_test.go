package ledger

import "testing"

func TestSplitFee(t *testing.T) {
	cases := []struct {
		name         string
		amount       int64
		percent      int
		wantFee      int64
		wantEarnings int64
	}{
		{"even split", 10000, 10, 1000, 9000},
		{"rounding goes to earnings", 999, 10, 99, 900},
		{"one cent", 1, 10, 0, 1},
		{"zero amount", 0, 10, 0, 0},
		{"higher fee", 25000, 20, 5000, 20000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, earnings := SplitFee(tc.amount, tc.percent)
			if fee != tc.wantFee || earnings != tc.wantEarnings {
				t.Fatalf("SplitFee(%d, %d) = %d, %d; want %d, %d",
					tc.amount, tc.percent, fee, earnings, tc.wantFee, tc.wantEarnings)
			}
			if fee+earnings != tc.amount {
				t.Fatalf("fee %d + earnings %d must equal amount %d", fee, earnings, tc.amount)
			}
		})
	}
}
