// Package data provides market data providers and the chain loader.
//
// Providers follow a fallback-chaining pattern: each implementation can
// carry an optional secondary Provider that is consulted when the primary
// cannot serve a request. The Loader wraps a Provider with retries,
// bounded-concurrency expiry fetching and liquidity filtering, and hands
// the core fully-resolved per-expiry batches.
package data

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/contactkeval/iv-surface/internal/pricing"
)

// Provider supplies option chain market data for one underlying.
type Provider interface {
	// Secondary returns the fallback provider, or nil.
	Secondary() Provider
	// GetSpot returns the latest spot price of the underlying.
	GetSpot(underlying string) (float64, error)
	// GetExpiries lists the available expiry dates.
	GetExpiries(underlying string) ([]time.Time, error)
	// GetChain returns all contracts (calls and puts) for one expiry.
	GetChain(underlying string, expiry time.Time) ([]Contract, error)
}

// Contract is one raw option row as a provider delivers it, before any
// sanitization. Optional market data fields are pointers so "venue did
// not publish this" stays distinguishable from zero.
type Contract struct {
	Symbol       string
	Expiry       string // YYYY-MM-DD
	Strike       float64
	Kind         pricing.Kind
	Bid          *float64
	Ask          *float64
	Last         *float64
	Volume       *int64
	OpenInterest *int64
}

// Spread returns (ask-bid)/bid, or false when either side is missing or
// the bid is zero.
func (c Contract) Spread() (float64, bool) {
	if c.Bid == nil || c.Ask == nil || *c.Bid <= 0 {
		return 0, false
	}
	return (*c.Ask - *c.Bid) / *c.Bid, true
}

// OptionSymbolFromParts formats an OCC-style contract ticker:
// <root><YYMMDD><C|P><strike*1000 padded to 8 digits>.
func OptionSymbolFromParts(underlying string, expiry time.Time, kind pricing.Kind, strike float64) string {
	cp := "P"
	if kind.IsCall() {
		cp = "C"
	}
	strikeInt := int(math.Round(strike * 1000))
	return fmt.Sprintf("%s%s%s%08d",
		strings.ToUpper(underlying), expiry.UTC().Format("060102"), cp, strikeInt)
}

// YearsToExpiry computes tau in years on an ACT/365 basis, clamped at
// zero for dates at or before asOf. Whole calendar days only; intraday
// remainders are the loader's as-of convention, not the core's.
func YearsToExpiry(expiry, asOf time.Time) float64 {
	days := int(expiry.Sub(asOf).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return float64(days) / 365.0
}

// sortContracts orders contracts deterministically by (expiry, strike,
// kind) regardless of the order the provider returned them in.
func sortContracts(cs []Contract) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Expiry != cs[j].Expiry {
			return cs[i].Expiry < cs[j].Expiry
		}
		if cs[i].Strike != cs[j].Strike {
			return cs[i].Strike < cs[j].Strike
		}
		return cs[i].Kind < cs[j].Kind
	})
}
