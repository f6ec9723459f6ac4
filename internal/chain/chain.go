// Package chain maps raw option quotes to priced points: mid price,
// implied volatility and Greeks for one spot and one time to maturity.
package chain

import (
	"math"

	"github.com/contactkeval/iv-surface/internal/logger"
	"github.com/contactkeval/iv-surface/internal/pricing"
)

// Quote is one raw option quote as delivered by the data loader.
// Bid and ask are nil when the venue published no quote on that side;
// the loader guarantees they are non-negative when present.
type Quote struct {
	Symbol string       `json:"symbol"`
	Expiry string       `json:"expiry"` // YYYY-MM-DD
	Strike float64      `json:"strike"`
	Kind   pricing.Kind `json:"kind"`
	Bid    *float64     `json:"bid,omitempty"`
	Ask    *float64     `json:"ask,omitempty"`

	// Liquid is set by the loader when liquidity tagging is enabled.
	Liquid *bool `json:"liquid,omitempty"`
}

// PricedPoint is a Quote plus the fields derived from it. ImpliedVol and
// the four Greeks are jointly present or jointly nil: Greeks are only
// computed at a recovered volatility. A PricedPoint is built once per
// quote and never mutated afterwards.
type PricedPoint struct {
	Quote

	Mid        *float64 `json:"mid,omitempty"`
	ImpliedVol *float64 `json:"implied_vol,omitempty"`
	Delta      *float64 `json:"delta,omitempty"`
	Gamma      *float64 `json:"gamma,omitempty"`
	Theta      *float64 `json:"theta,omitempty"`
	Rho        *float64 `json:"rho,omitempty"`
}

// Processor prices batches of quotes under fixed rate and yield
// assumptions. It holds no mutable state, so one Processor may serve
// concurrent batches.
type Processor struct {
	R float64 // risk-free rate, continuously compounded annual
	Q float64 // dividend yield, continuously compounded annual
}

func NewProcessor(riskFreeRate, dividendYield float64) *Processor {
	return &Processor{R: riskFreeRate, Q: dividendYield}
}

// ProcessBatch prices each quote against a shared spot and time to
// maturity, preserving input order. A quote that cannot be priced
// (missing side, non-positive mid, malformed strike, unsolvable IV)
// still yields a PricedPoint, just with its derived fields nil; one bad
// quote never aborts its siblings.
func (p *Processor) ProcessBatch(quotes []Quote, spot, tau float64) []PricedPoint {
	out := make([]PricedPoint, 0, len(quotes))

	for _, q := range quotes {
		pt := PricedPoint{Quote: q}

		if q.Strike <= 0 || math.IsNaN(q.Strike) || math.IsInf(q.Strike, 0) {
			logger.Debugf("chain: malformed strike %v for %s, emitting absent", q.Strike, q.Symbol)
			out = append(out, pt)
			continue
		}

		mid := midPrice(q.Bid, q.Ask)
		pt.Mid = mid
		if mid == nil || *mid <= 0 {
			out = append(out, pt)
			continue
		}

		sigma, ok := pricing.ImpliedVolatility(*mid, spot, q.Strike, p.R, p.Q, tau, q.Kind)
		if !ok {
			out = append(out, pt)
			continue
		}

		delta := pricing.Delta(spot, q.Strike, p.R, p.Q, sigma, tau, q.Kind)
		gamma := pricing.Gamma(spot, q.Strike, p.R, p.Q, sigma, tau)
		theta := pricing.Theta(spot, q.Strike, p.R, p.Q, sigma, tau, q.Kind)
		rho := pricing.Rho(spot, q.Strike, p.R, p.Q, sigma, tau, q.Kind)

		pt.ImpliedVol = &sigma
		pt.Delta = &delta
		pt.Gamma = &gamma
		pt.Theta = &theta
		pt.Rho = &rho

		out = append(out, pt)
	}

	return out
}

// midPrice averages bid and ask. Both sides are required: the core has no
// last-trade fallback, that belongs to the loader's raw contract handling.
func midPrice(bid, ask *float64) *float64 {
	if bid == nil || ask == nil {
		return nil
	}
	m := (*bid + *ask) / 2
	return &m
}
