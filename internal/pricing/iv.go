package pricing

import (
	"math"

	"github.com/contactkeval/iv-surface/internal/logger"
)

// Solver defaults. Tolerance is in price space: two solvers with different
// tolerances will diverge slightly in the sigma they return but agree
// within tol once the sigma is priced back through the model.
const (
	DefaultInitialVol = 0.20
	DefaultTol        = 1e-6

	maxIterNewton    = 30
	maxIterBisection = 200

	sigmaFloor   = 1e-6 // clamp for Newton steps that go non-positive
	sigmaCeiling = 5.0  // 500% vol, bisection upper bracket
	vegaCutoff   = 1e-8 // below this a Newton step is numerically unstable
	boundsSlack  = 1e-12
)

// solverConfig holds the per-call tunables of ImpliedVolatility.
type solverConfig struct {
	initialVol float64
	tol        float64
}

// Option overrides a solver default for a single ImpliedVolatility call.
type Option func(*solverConfig)

// WithInitialVol sets the Newton-Raphson starting volatility. Non-positive
// values are ignored and the default is kept.
func WithInitialVol(sigma float64) Option {
	return func(c *solverConfig) {
		if sigma > 0 {
			c.initialVol = sigma
		}
	}
}

// WithTolerance sets the price-space convergence tolerance. Non-positive
// values are ignored and the default is kept.
func WithTolerance(tol float64) Option {
	return func(c *solverConfig) {
		if tol > 0 {
			c.tol = tol
		}
	}
}

// ImpliedVolatility recovers the volatility that makes the Black-Scholes
// price match marketPrice. Newton-Raphson is tried first for speed; if it
// stalls or exhausts its budget, the price is checked against no-arbitrage
// bounds and, when solvable, handed to bisection as the guaranteed
// fallback. Options override the starting volatility (DefaultInitialVol)
// and tolerance (DefaultTol).
//
// The second return value is false when no implied volatility exists:
// tau <= 0 (price is model-independent of sigma at expiry) or marketPrice
// outside the arbitrage bounds for the kind. That outcome is a legitimate
// "no solution", not an error, so nothing is returned through an error
// value.
//
// Safe for concurrent use; the solver holds no state between calls.
func ImpliedVolatility(marketPrice, S, K, r, q, tau float64, kind Kind, opts ...Option) (float64, bool) {
	cfg := solverConfig{initialVol: DefaultInitialVol, tol: DefaultTol}
	for _, opt := range opts {
		opt(&cfg)
	}

	if tau <= 0 {
		return 0, false
	}

	if sigma, ok := newtonIV(marketPrice, S, K, r, q, tau, kind, cfg); ok {
		return sigma, true
	}

	// Newton inconclusive. Only bisect if a root can exist at all.
	lower, upper := priceBounds(S, K, r, q, tau, kind)
	if marketPrice < lower-boundsSlack || marketPrice > upper+boundsSlack {
		logger.Debugf("iv: price %.6f outside bounds [%.6f, %.6f], no solution", marketPrice, lower, upper)
		return 0, false
	}

	return bisectionIV(marketPrice, S, K, r, q, tau, kind, cfg), true
}

// priceBounds returns the no-arbitrage (lower, upper) price bounds for a
// European option under continuous rates:
//
//	call: [max(0, S·e^{-qτ} - K·e^{-rτ}), S·e^{-qτ}]
//	put:  [max(0, K·e^{-rτ} - S·e^{-qτ}), K·e^{-rτ}]
func priceBounds(S, K, r, q, tau float64, kind Kind) (float64, float64) {
	dfR := math.Exp(-r * tau)
	dfQ := math.Exp(-q * tau)
	if kind.IsCall() {
		return math.Max(0, S*dfQ-K*dfR), S * dfQ
	}
	return math.Max(0, K*dfR-S*dfQ), K * dfR
}

// newtonIV runs the Newton-Raphson phase. A false return means the phase
// was inconclusive (flat vega or budget exhausted), not that no root
// exists; the caller decides whether to escalate to bisection.
func newtonIV(marketPrice, S, K, r, q, tau float64, kind Kind, cfg solverConfig) (float64, bool) {
	sigma := cfg.initialVol

	for i := 0; i < maxIterNewton; i++ {
		model := Price(S, K, r, q, sigma, tau, kind)
		diff := model - marketPrice
		v := Vega(S, K, r, q, sigma, tau)

		logger.Tracef("newton iter=%d sigma=%.6f model=%.6f market=%.6f diff=%.6f vega=%.6f",
			i, sigma, model, marketPrice, diff, v)

		if math.Abs(diff) < cfg.tol {
			return sigma, true
		}

		if v < vegaCutoff {
			logger.Tracef("newton stop: vega below cutoff at iter=%d", i)
			return 0, false
		}

		sigma -= diff / v

		if sigma <= 0 {
			sigma = sigmaFloor
		}
	}

	logger.Tracef("newton exhausted %d iterations without converging", maxIterNewton)
	return 0, false
}

// bisectionIV halves the bracket [sigmaFloor, sigmaCeiling] on the
// monotonic sigma→price relationship. Once invoked it always returns a
// sigma: the caller has already validated that the market price sits
// inside the arbitrage bounds, so the midpoint after the budget runs out
// is the best-effort answer.
func bisectionIV(marketPrice, S, K, r, q, tau float64, kind Kind, cfg solverConfig) float64 {
	low, high := sigmaFloor, sigmaCeiling

	for i := 0; i < maxIterBisection; i++ {
		mid := (low + high) / 2
		model := Price(S, K, r, q, mid, tau, kind)

		logger.Tracef("bisect iter=%d mid=%.6f model=%.6f low=%.6f high=%.6f",
			i, mid, model, low, high)

		if math.Abs(model-marketPrice) < cfg.tol {
			return mid
		}

		if model > marketPrice {
			high = mid
		} else {
			low = mid
		}
	}

	return (low + high) / 2
}
