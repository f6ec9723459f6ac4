package pricing

import (
	"math"
)

const sqrt2Pi = 2.5066282746310002

// Kind identifies the option style.
type Kind string

const (
	Call Kind = "C"
	Put  Kind = "P"
)

// IsCall reports whether the kind is a call. Anything that is not a
// recognized call spelling is treated as a put, mirroring how chains
// deliver the field ("C"/"P", occasionally lower case).
func (k Kind) IsCall() bool {
	return k == Call || k == "c" || k == "call" || k == "CALL"
}

// d1d2 computes the d1 and d2 terms of the Black-Scholes formula.
//
// Degenerate inputs (non-positive S, K, sigma or tau) drive both terms to
// +Inf so that normCDF saturates to 0 or 1 instead of producing NaN from a
// division by zero. Price and the Greeks special-case tau<=0 and sigma<=0
// before calling this; the guard covers the remaining paths.
func d1d2(S, K, r, q, sigma, tau float64) (float64, float64) {
	if tau <= 0 || sigma <= 0 || S <= 0 || K <= 0 {
		return math.Inf(1), math.Inf(1)
	}
	sqrtT := math.Sqrt(tau)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*tau) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	return d1, d2
}

// Price calculates the price of a European option using the Black-Scholes
// model with a continuous dividend yield.
//
// Parameters:
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - r: risk-free interest rate (annual, continuously compounded)
//   - q: dividend yield (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//   - tau: time to expiry in years
//   - kind: Call or Put
//
// Returns:
//
//	The theoretical price of the option. At or past expiry (tau <= 0) the
//	intrinsic value is returned and sigma is irrelevant. With zero
//	volatility the option is worth its discounted forward intrinsic value;
//	that is a legitimate degenerate case, not an error.
func Price(S, K, r, q, sigma, tau float64, kind Kind) float64 {
	if tau <= 0 {
		if kind.IsCall() {
			return math.Max(S-K, 0)
		}
		return math.Max(K-S, 0)
	}

	if sigma <= 0 {
		dfR := math.Exp(-r * tau)
		dfQ := math.Exp(-q * tau)
		if kind.IsCall() {
			return math.Max(S*dfQ-K*dfR, 0)
		}
		return math.Max(K*dfR-S*dfQ, 0)
	}

	d1, d2 := d1d2(S, K, r, q, sigma, tau)
	dfR := math.Exp(-r * tau)
	dfQ := math.Exp(-q * tau)

	if kind.IsCall() {
		return S*dfQ*normCDF(d1) - K*dfR*normCDF(d2)
	}
	return K*dfR*normCDF(-d2) - S*dfQ*normCDF(-d1)
}

// Vega calculates the sensitivity of the option price to changes in
// volatility, per unit (not per 1%) change in sigma.
//
// Returns 0 if tau or sigma is non-positive. Vega is identical for calls
// and puts, so no kind parameter is taken.
func Vega(S, K, r, q, sigma, tau float64) float64 {
	if tau <= 0 || sigma <= 0 {
		return 0
	}
	d1, _ := d1d2(S, K, r, q, sigma, tau)
	return S * math.Exp(-q*tau) * math.Sqrt(tau) * normPDF(d1)
}

// Delta calculates the sensitivity of the option price to the spot price.
// At expiry it collapses to the derivative of the payoff: 1/0 for calls,
// -1/0 for puts.
func Delta(S, K, r, q, sigma, tau float64, kind Kind) float64 {
	if tau <= 0 {
		if kind.IsCall() {
			if S > K {
				return 1
			}
			return 0
		}
		if S < K {
			return -1
		}
		return 0
	}

	d1, _ := d1d2(S, K, r, q, sigma, tau)
	if kind.IsCall() {
		return math.Exp(-q*tau) * normCDF(d1)
	}
	return math.Exp(-q*tau) * (normCDF(d1) - 1)
}

// Gamma calculates the second derivative of the option price with respect
// to the spot price. Returns 0 if tau or sigma is non-positive.
func Gamma(S, K, r, q, sigma, tau float64) float64 {
	// S also divides the result, so the d1d2 saturation alone would
	// leave a 0/0 here.
	if tau <= 0 || sigma <= 0 || S <= 0 {
		return 0
	}
	d1, _ := d1d2(S, K, r, q, sigma, tau)
	return math.Exp(-q*tau) * normPDF(d1) / (S * sigma * math.Sqrt(tau))
}

// Theta calculates time decay as an annualized rate (price change per
// year). Consumers wanting per-day decay divide by 365 themselves.
// Returns 0 at expiry, where continuous-time theta is undefined.
func Theta(S, K, r, q, sigma, tau float64, kind Kind) float64 {
	if tau <= 0 {
		return 0
	}

	d1, d2 := d1d2(S, K, r, q, sigma, tau)
	dfR := math.Exp(-r * tau)
	dfQ := math.Exp(-q * tau)

	term1 := -(S * dfQ * normPDF(d1) * sigma) / (2 * math.Sqrt(tau))
	if kind.IsCall() {
		return term1 + q*S*dfQ*normCDF(d1) - r*K*dfR*normCDF(d2)
	}
	return term1 - q*S*dfQ*normCDF(-d1) + r*K*dfR*normCDF(-d2)
}

// Rho calculates the sensitivity of the option price to the risk-free
// rate, per unit change in r. Returns 0 at expiry.
func Rho(S, K, r, q, sigma, tau float64, kind Kind) float64 {
	if tau <= 0 {
		return 0
	}

	_, d2 := d1d2(S, K, r, q, sigma, tau)
	dfR := math.Exp(-r * tau)

	if kind.IsCall() {
		return K * tau * dfR * normCDF(d2)
	}
	return -K * tau * dfR * normCDF(-d2)
}

// normPDF calculates the probability density function of the standard
// normal distribution at x: exp(-0.5 * x^2) / sqrt(2π).
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF computes the cumulative distribution function of the standard
// normal distribution for a given value x using the error function.
// +Inf maps to 1 and -Inf to 0, which is what lets d1d2's saturation
// stand in for explicit exception handling in the Greeks.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
