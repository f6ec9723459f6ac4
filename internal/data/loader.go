package data

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/iv-surface/internal/chain"
	"github.com/contactkeval/iv-surface/internal/logger"
)

// LoaderConfig controls loader behavior. The zero value is unusable;
// call DefaultLoaderConfig and override what you need.
type LoaderConfig struct {
	MinOpenInterest int64   `json:"min_open_interest"`
	MinVolume       int64   `json:"min_volume"`
	MaxSpreadPct    float64 `json:"max_spread_pct"` // (ask-bid)/bid ceiling

	// Filter drops illiquid contracts; TagLiquidity keeps them and sets
	// Quote.Liquid instead. Both may be enabled, in which case filtering
	// wins and survivors are tagged.
	Filter       bool `json:"filter"`
	TagLiquidity bool `json:"tag_liquidity"`

	MaxWorkers int           `json:"max_workers"` // concurrent expiry fetches
	Retries    int           `json:"retries"`     // attempts beyond the first
	Backoff    time.Duration `json:"backoff"`     // base for exponential backoff
}

func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		MinOpenInterest: 10,
		MinVolume:       1,
		MaxSpreadPct:    0.25,
		Filter:          true,
		MaxWorkers:      8,
		Retries:         3,
		Backoff:         800 * time.Millisecond,
	}
}

// ExpiryBatch is one expiry's quotes plus the batch-scoped time to
// maturity, ready for chain.Processor.ProcessBatch.
type ExpiryBatch struct {
	Expiry time.Time     `json:"expiry"`
	Tau    float64       `json:"tau"` // years, ACT/365
	Quotes []chain.Quote `json:"quotes"`
}

// Chain is a loaded snapshot: spot plus per-expiry quote batches, sorted
// by expiry.
type Chain struct {
	Underlying string        `json:"underlying"`
	AsOf       time.Time     `json:"as_of"`
	Spot       float64       `json:"spot"`
	Batches    []ExpiryBatch `json:"batches"`
}

// Loader fetches and sanitizes option chains from a Provider.
type Loader struct {
	cfg  LoaderConfig
	prov Provider
}

func NewLoader(cfg LoaderConfig, prov Provider) *Loader {
	return &Loader{cfg: cfg, prov: prov}
}

// LoadChain downloads the full chain for an underlying: spot, expiry
// list, then every expiry's contracts on a bounded worker pool with
// per-call retries. A single failing expiry fails the load; a single bad
// contract does not.
func (l *Loader) LoadChain(ctx context.Context, underlying string, asOf time.Time) (*Chain, error) {
	var spot float64
	err := l.retry(ctx, "spot "+underlying, func() error {
		var err error
		spot, err = l.prov.GetSpot(underlying)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading spot for %s: %w", underlying, err)
	}

	var expiries []time.Time
	err = l.retry(ctx, "expiries "+underlying, func() error {
		var err error
		expiries, err = l.prov.GetExpiries(underlying)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading expiries for %s: %w", underlying, err)
	}
	logger.Infof("%s: %d expiries, spot=%.2f", underlying, len(expiries), spot)

	var (
		mu      sync.Mutex
		batches []ExpiryBatch
	)

	g, gctx := errgroup.WithContext(ctx)
	workers := l.cfg.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, expiry := range expiries {
		expiry := expiry
		tau := YearsToExpiry(expiry, asOf)
		if tau <= 0 {
			logger.Debugf("%s: skipping expired/same-day expiry %s", underlying, expiry.Format("2006-01-02"))
			continue
		}

		g.Go(func() error {
			var contracts []Contract
			err := l.retry(gctx, fmt.Sprintf("chain %s %s", underlying, expiry.Format("2006-01-02")), func() error {
				var err error
				contracts, err = l.prov.GetChain(underlying, expiry)
				return err
			})
			if err != nil {
				return fmt.Errorf("loading chain %s %s: %w", underlying, expiry.Format("2006-01-02"), err)
			}

			quotes := l.toQuotes(contracts)
			logger.Debugf("%s %s: %d contracts, %d quotes kept",
				underlying, expiry.Format("2006-01-02"), len(contracts), len(quotes))

			mu.Lock()
			batches = append(batches, ExpiryBatch{Expiry: expiry, Tau: tau, Quotes: quotes})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Workers finish in arbitrary order; re-sort for determinism.
	sort.Slice(batches, func(i, j int) bool { return batches[i].Expiry.Before(batches[j].Expiry) })

	return &Chain{Underlying: underlying, AsOf: asOf, Spot: spot, Batches: batches}, nil
}

// retry runs fn with exponential backoff: base, 2*base, 4*base, ...
func (l *Loader) retry(ctx context.Context, op string, fn func() error) error {
	backoff := l.cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= l.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == l.cfg.Retries {
			break
		}
		wait := backoff << uint(attempt)
		logger.Debugf("%s: attempt %d failed (%v), retrying in %v", op, attempt+1, lastErr, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

// toQuotes sanitizes contracts into core quotes: negative sides become
// absent, malformed strikes are dropped, liquidity policy is applied.
func (l *Loader) toQuotes(contracts []Contract) []chain.Quote {
	out := make([]chain.Quote, 0, len(contracts))
	for _, c := range contracts {
		if c.Strike <= 0 {
			logger.Debugf("dropping contract %s with strike %.4f", c.Symbol, c.Strike)
			continue
		}

		liquid := l.isLiquid(c)
		if l.cfg.Filter && !liquid {
			continue
		}

		q := chain.Quote{
			Symbol: c.Symbol,
			Expiry: c.Expiry,
			Strike: c.Strike,
			Kind:   c.Kind,
			Bid:    nonNegative(c.Bid),
			Ask:    nonNegative(c.Ask),
		}
		if l.cfg.TagLiquidity {
			tag := liquid
			q.Liquid = &tag
		}
		out = append(out, q)
	}
	return out
}

// isLiquid applies the configured open-interest, volume and spread
// thresholds. A contract with no computable mid is never liquid.
func (l *Loader) isLiquid(c Contract) bool {
	oi := int64(0)
	if c.OpenInterest != nil {
		oi = *c.OpenInterest
	}
	vol := int64(0)
	if c.Volume != nil {
		vol = *c.Volume
	}
	if oi < l.cfg.MinOpenInterest || vol < l.cfg.MinVolume {
		return false
	}

	spread, ok := c.Spread()
	if !ok {
		return false
	}
	if l.cfg.MaxSpreadPct > 0 && spread > l.cfg.MaxSpreadPct {
		return false
	}
	return true
}

func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
