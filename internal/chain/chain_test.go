package chain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contactkeval/iv-surface/internal/pricing"
)

func f(v float64) *float64 { return &v }

func TestProcessBatchComputesIVAndGreeks(t *testing.T) {
	proc := NewProcessor(0.05, 0.0)

	// Quote priced exactly at the sigma=0.20 model value, split into a
	// symmetric bid/ask so mid lands on it.
	fair := pricing.Price(100, 100, 0.05, 0, 0.20, 1.0, pricing.Call)
	quotes := []Quote{{
		Symbol: "XYZ260821C00100000",
		Expiry: "2026-08-21",
		Strike: 100,
		Kind:   pricing.Call,
		Bid:    f(fair - 0.05),
		Ask:    f(fair + 0.05),
	}}

	points := proc.ProcessBatch(quotes, 100, 1.0)
	require.Len(t, points, 1)

	pt := points[0]
	require.NotNil(t, pt.Mid)
	require.InDelta(t, fair, *pt.Mid, 1e-12)
	require.NotNil(t, pt.ImpliedVol)
	require.InDelta(t, 0.20, *pt.ImpliedVol, 1e-3)
	require.NotNil(t, pt.Delta)
	require.InDelta(t, 0.6368, *pt.Delta, 1e-2)
	require.NotNil(t, pt.Gamma)
	require.NotNil(t, pt.Theta)
	require.NotNil(t, pt.Rho)
}

// A batch of three quotes where the middle one has no bid/ask must still
// return three points, in order, with only the middle one's derived
// fields absent.
func TestProcessBatchIsolation(t *testing.T) {
	proc := NewProcessor(0.05, 0.0)

	fairC := pricing.Price(100, 95, 0.05, 0, 0.25, 0.5, pricing.Call)
	fairP := pricing.Price(100, 105, 0.05, 0, 0.25, 0.5, pricing.Put)

	quotes := []Quote{
		{Symbol: "A", Expiry: "2026-12-18", Strike: 95, Kind: pricing.Call, Bid: f(fairC - 0.1), Ask: f(fairC + 0.1)},
		{Symbol: "B", Expiry: "2026-12-18", Strike: 100, Kind: pricing.Call},
		{Symbol: "C", Expiry: "2026-12-18", Strike: 105, Kind: pricing.Put, Bid: f(fairP - 0.1), Ask: f(fairP + 0.1)},
	}

	points := proc.ProcessBatch(quotes, 100, 0.5)
	require.Len(t, points, 3)

	require.Equal(t, "A", points[0].Symbol)
	require.Equal(t, "B", points[1].Symbol)
	require.Equal(t, "C", points[2].Symbol)

	require.NotNil(t, points[0].ImpliedVol)
	require.NotNil(t, points[2].ImpliedVol)

	require.Nil(t, points[1].Mid)
	require.Nil(t, points[1].ImpliedVol)
	require.Nil(t, points[1].Delta)
	require.Nil(t, points[1].Gamma)
	require.Nil(t, points[1].Theta)
	require.Nil(t, points[1].Rho)
}

// One-sided quotes have no mid; there is no last-trade fallback here.
func TestProcessBatchOneSidedQuote(t *testing.T) {
	proc := NewProcessor(0.05, 0.0)

	points := proc.ProcessBatch([]Quote{
		{Symbol: "A", Strike: 100, Kind: pricing.Call, Bid: f(2.5)},
		{Symbol: "B", Strike: 100, Kind: pricing.Call, Ask: f(2.7)},
	}, 100, 0.5)

	require.Len(t, points, 2)
	for _, pt := range points {
		require.Nil(t, pt.Mid)
		require.Nil(t, pt.ImpliedVol)
	}
}

// Zero or negative mids (both sides zero) never reach the solver.
func TestProcessBatchZeroMid(t *testing.T) {
	proc := NewProcessor(0.05, 0.0)

	points := proc.ProcessBatch([]Quote{
		{Symbol: "A", Strike: 100, Kind: pricing.Put, Bid: f(0), Ask: f(0)},
	}, 100, 0.5)

	require.Len(t, points, 1)
	require.NotNil(t, points[0].Mid)
	require.Nil(t, points[0].ImpliedVol)
}

// At expiry IV is undefined: points come back with mid but no derived
// fields, and the batch does not abort.
func TestProcessBatchExpiredTau(t *testing.T) {
	proc := NewProcessor(0.05, 0.0)

	points := proc.ProcessBatch([]Quote{
		{Symbol: "A", Strike: 100, Kind: pricing.Call, Bid: f(4.9), Ask: f(5.1)},
	}, 105, 0)

	require.Len(t, points, 1)
	require.NotNil(t, points[0].Mid)
	require.Nil(t, points[0].ImpliedVol)
	require.Nil(t, points[0].Delta)
}

// Malformed strikes are defensively isolated, never propagated.
func TestProcessBatchMalformedStrike(t *testing.T) {
	proc := NewProcessor(0.05, 0.0)

	fair := pricing.Price(100, 100, 0.05, 0, 0.2, 1.0, pricing.Call)
	points := proc.ProcessBatch([]Quote{
		{Symbol: "BAD", Strike: -10, Kind: pricing.Call, Bid: f(1), Ask: f(1.2)},
		{Symbol: "OK", Strike: 100, Kind: pricing.Call, Bid: f(fair - 0.1), Ask: f(fair + 0.1)},
	}, 100, 1.0)

	require.Len(t, points, 2)
	require.Nil(t, points[0].ImpliedVol)
	require.NotNil(t, points[1].ImpliedVol)
}

// An out-of-bounds market price yields a point with mid present but IV
// and Greeks absent.
func TestProcessBatchUnsolvableQuote(t *testing.T) {
	proc := NewProcessor(0.05, 0.0)

	// Mid of 300 is far above the upper bound S=100 for a call.
	points := proc.ProcessBatch([]Quote{
		{Symbol: "A", Strike: 100, Kind: pricing.Call, Bid: f(299), Ask: f(301)},
	}, 100, 1.0)

	require.Len(t, points, 1)
	require.NotNil(t, points[0].Mid)
	require.Nil(t, points[0].ImpliedVol)
	require.Nil(t, points[0].Rho)
}
