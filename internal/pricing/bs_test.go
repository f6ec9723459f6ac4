package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// Known ATM scenario: S=100, K=100, r=5%, q=0, tau=1y, sigma=20%.
func TestPriceKnownScenario(t *testing.T) {
	price := Price(100, 100, 0.05, 0, 0.20, 1.0, Call)
	require.InDelta(t, 10.4506, price, 1e-3)

	delta := Delta(100, 100, 0.05, 0, 0.20, 1.0, Call)
	require.InDelta(t, 0.6368, delta, 1e-3)

	vega := Vega(100, 100, 0.05, 0, 0.20, 1.0)
	require.InDelta(t, 37.52, vega, 1e-2)
}

func TestPutCallParity(t *testing.T) {
	cases := []struct {
		S, K, r, q, sigma, tau float64
	}{
		{100, 100, 0.05, 0.00, 0.20, 1.0},
		{100, 120, 0.03, 0.01, 0.35, 0.5},
		{581.39, 600, 0.05, 0.015, 0.15, 30.0 / 365.0},
		{50, 45, 0.00, 0.00, 0.60, 2.0},
		{100, 100, 0.05, 0.02, 0.0001, 1.0},
	}

	for _, c := range cases {
		call := Price(c.S, c.K, c.r, c.q, c.sigma, c.tau, Call)
		put := Price(c.S, c.K, c.r, c.q, c.sigma, c.tau, Put)

		lhs := call - put
		rhs := c.S*math.Exp(-c.q*c.tau) - c.K*math.Exp(-c.r*c.tau)
		if math.Abs(lhs-rhs) > 1e-9 {
			t.Fatalf("put-call parity violated for %+v: LHS=%f RHS=%f", c, lhs, rhs)
		}
	}
}

// At expiry the price collapses to intrinsic and sigma is irrelevant.
func TestPriceAtExpiryIsIntrinsic(t *testing.T) {
	if got := Price(105, 100, 0.05, 0, 0.2, 0, Call); got != 5.0 {
		t.Fatalf("expected intrinsic 5.0, got %f", got)
	}
	if got := Price(105, 100, 0.05, 0, 0.2, 0, Put); got != 0.0 {
		t.Fatalf("expected intrinsic 0.0, got %f", got)
	}
	if got := Price(90, 100, 0.05, 0, 0.9, -0.01, Put); got != 10.0 {
		t.Fatalf("expected intrinsic 10.0, got %f", got)
	}
}

// Zero volatility is a degenerate case, not an error: the option is
// worth its discounted forward intrinsic value.
func TestPriceZeroVol(t *testing.T) {
	S, K, r, q, tau := 100.0, 90.0, 0.05, 0.01, 1.0
	want := math.Max(S*math.Exp(-q*tau)-K*math.Exp(-r*tau), 0)
	require.InDelta(t, want, Price(S, K, r, q, 0, tau, Call), 1e-12)

	// Deep OTM put with zero vol is worthless.
	require.Equal(t, 0.0, Price(100, 90, 0.05, 0, 0, 1.0, Put))
}

func TestPriceMonotonicInVol(t *testing.T) {
	prev := Price(100, 110, 0.05, 0.01, 0.05, 0.5, Call)
	for sigma := 0.10; sigma <= 2.0; sigma += 0.05 {
		cur := Price(100, 110, 0.05, 0.01, sigma, 0.5, Call)
		if cur <= prev {
			t.Fatalf("price not increasing in sigma at %.2f: %f <= %f", sigma, cur, prev)
		}
		prev = cur
	}
}

// Non-positive spot or strike must saturate, never NaN, so Greeks built
// on d1/d2 stay finite without explicit exception handling upstream.
func TestDegenerateInputsNeverNaN(t *testing.T) {
	cases := []struct {
		S, K float64
	}{
		{0, 100}, {-5, 100}, {100, 0}, {100, -5}, {0, 0},
	}
	for _, c := range cases {
		for _, kind := range []Kind{Call, Put} {
			if v := Price(c.S, c.K, 0.05, 0, 0.2, 1.0, kind); math.IsNaN(v) {
				t.Fatalf("Price NaN for S=%f K=%f %s", c.S, c.K, kind)
			}
			if v := Delta(c.S, c.K, 0.05, 0, 0.2, 1.0, kind); math.IsNaN(v) {
				t.Fatalf("Delta NaN for S=%f K=%f %s", c.S, c.K, kind)
			}
			if v := Gamma(c.S, c.K, 0.05, 0, 0.2, 1.0); math.IsNaN(v) {
				t.Fatalf("Gamma NaN for S=%f K=%f", c.S, c.K)
			}
			if v := Vega(c.S, c.K, 0.05, 0, 0.2, 1.0); math.IsNaN(v) {
				t.Fatalf("Vega NaN for S=%f K=%f", c.S, c.K)
			}
			if v := Theta(c.S, c.K, 0.05, 0, 0.2, 1.0, kind); math.IsNaN(v) {
				t.Fatalf("Theta NaN for S=%f K=%f %s", c.S, c.K, kind)
			}
			if v := Rho(c.S, c.K, 0.05, 0, 0.2, 1.0, kind); math.IsNaN(v) {
				t.Fatalf("Rho NaN for S=%f K=%f %s", c.S, c.K, kind)
			}
		}
	}
}

func TestGreekExpiryLimits(t *testing.T) {
	// ITM call at expiry
	require.Equal(t, 1.0, Delta(105, 100, 0.05, 0, 0.2, 0, Call))
	// OTM call at expiry
	require.Equal(t, 0.0, Delta(95, 100, 0.05, 0, 0.2, 0, Call))
	// ITM put at expiry
	require.Equal(t, -1.0, Delta(95, 100, 0.05, 0, 0.2, 0, Put))
	// OTM put at expiry
	require.Equal(t, 0.0, Delta(105, 100, 0.05, 0, 0.2, 0, Put))

	require.Equal(t, 0.0, Gamma(105, 100, 0.05, 0, 0.2, 0))
	require.Equal(t, 0.0, Theta(105, 100, 0.05, 0, 0.2, 0, Call))
	require.Equal(t, 0.0, Rho(105, 100, 0.05, 0, 0.2, 0, Put))
	require.Equal(t, 0.0, Vega(105, 100, 0.05, 0, 0.2, 0))
}

func TestVegaNonNegative(t *testing.T) {
	for _, K := range []float64{50, 80, 100, 120, 200} {
		for _, sigma := range []float64{0.01, 0.2, 1.0, 4.0} {
			if v := Vega(100, K, 0.05, 0.01, sigma, 0.25); v < 0 {
				t.Fatalf("negative vega K=%f sigma=%f: %f", K, sigma, v)
			}
		}
	}
}

// Vega matches a central finite difference of Price in sigma.
func TestVegaMatchesFiniteDifference(t *testing.T) {
	const h = 1e-5
	S, K, r, q, sigma, tau := 100.0, 105.0, 0.05, 0.01, 0.3, 0.75

	up := Price(S, K, r, q, sigma+h, tau, Call)
	down := Price(S, K, r, q, sigma-h, tau, Call)
	fd := (up - down) / (2 * h)

	require.InDelta(t, fd, Vega(S, K, r, q, sigma, tau), 1e-4)
}
