package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/iv-surface/internal/pricing"
)

// csvDataProvider implements Provider from local CSV snapshots, one file
// per underlying at <dir>/<UNDERLYING>.csv. The spot column is
// denormalized onto every row so a snapshot stays a single file.
type csvDataProvider struct {
	dir       string
	secondary Provider

	mu    sync.Mutex
	cache map[string][]chainRow
}

// chainRow is the CSV schema of a snapshot file. Optional market data
// columns are read as raw strings: gocsv fills a *float64 with a
// pointer to zero on an empty cell, which would make "venue published
// nothing" indistinguishable from "quoted at zero". The strings are
// converted to pointers (nil on empty) in toContract.
type chainRow struct {
	Symbol       string  `csv:"symbol"`
	Expiry       string  `csv:"expiry"`
	Strike       float64 `csv:"strike"`
	Kind         string  `csv:"kind"`
	Bid          string  `csv:"bid"`
	Ask          string  `csv:"ask"`
	Last         string  `csv:"last"`
	Volume       string  `csv:"volume"`
	OpenInterest string  `csv:"open_interest"`
	Spot         float64 `csv:"spot"`
}

// toContract converts one snapshot row, keeping empty optional cells
// absent rather than zero.
func (row chainRow) toContract() (Contract, error) {
	bid, err := parseOptFloat(row.Bid)
	if err != nil {
		return Contract{}, fmt.Errorf("row %s: bad bid %q: %w", row.Symbol, row.Bid, err)
	}
	ask, err := parseOptFloat(row.Ask)
	if err != nil {
		return Contract{}, fmt.Errorf("row %s: bad ask %q: %w", row.Symbol, row.Ask, err)
	}
	last, err := parseOptFloat(row.Last)
	if err != nil {
		return Contract{}, fmt.Errorf("row %s: bad last %q: %w", row.Symbol, row.Last, err)
	}
	volume, err := parseOptInt(row.Volume)
	if err != nil {
		return Contract{}, fmt.Errorf("row %s: bad volume %q: %w", row.Symbol, row.Volume, err)
	}
	oi, err := parseOptInt(row.OpenInterest)
	if err != nil {
		return Contract{}, fmt.Errorf("row %s: bad open_interest %q: %w", row.Symbol, row.OpenInterest, err)
	}

	kind := pricing.Put
	if pricing.Kind(row.Kind).IsCall() {
		kind = pricing.Call
	}

	return Contract{
		Symbol:       row.Symbol,
		Expiry:       row.Expiry,
		Strike:       row.Strike,
		Kind:         kind,
		Bid:          bid,
		Ask:          ask,
		Last:         last,
		Volume:       volume,
		OpenInterest: oi,
	}, nil
}

// parseOptFloat maps the empty string to absent, anything else through
// strconv.
func parseOptFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptInt(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// NewCSVDataProvider builds a provider reading chain snapshots from dir,
// delegating to secondary when a file is missing.
func NewCSVDataProvider(dir string, secondary Provider) Provider {
	return &csvDataProvider{dir: dir, secondary: secondary, cache: map[string][]chainRow{}}
}

func (csvDataProv *csvDataProvider) Secondary() Provider {
	return csvDataProv.secondary
}

// load reads and caches the snapshot for one underlying.
func (csvDataProv *csvDataProvider) load(underlying string) ([]chainRow, error) {
	key := strings.ToUpper(underlying)

	csvDataProv.mu.Lock()
	defer csvDataProv.mu.Unlock()

	if rows, ok := csvDataProv.cache[key]; ok {
		return rows, nil
	}

	path := filepath.Join(csvDataProv.dir, key+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chain snapshot %s: %w", path, err)
	}
	defer f.Close()

	var rows []chainRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing chain snapshot %s: %w", path, err)
	}

	csvDataProv.cache[key] = rows
	return rows, nil
}

func (csvDataProv *csvDataProvider) GetSpot(underlying string) (float64, error) {
	rows, err := csvDataProv.load(underlying)
	if err != nil || len(rows) == 0 {
		if sec := csvDataProv.secondary; sec != nil {
			return sec.GetSpot(underlying)
		}
		if err == nil {
			err = fmt.Errorf("empty chain snapshot for %s", underlying)
		}
		return 0, err
	}
	return rows[0].Spot, nil
}

func (csvDataProv *csvDataProvider) GetExpiries(underlying string) ([]time.Time, error) {
	rows, err := csvDataProv.load(underlying)
	if err != nil {
		if sec := csvDataProv.secondary; sec != nil {
			return sec.GetExpiries(underlying)
		}
		return nil, err
	}

	seen := map[string]bool{}
	var out []time.Time
	for _, row := range rows {
		if seen[row.Expiry] {
			continue
		}
		seen[row.Expiry] = true
		dt, err := time.Parse("2006-01-02", row.Expiry)
		if err != nil {
			return nil, fmt.Errorf("bad expiry %q in %s snapshot: %w", row.Expiry, underlying, err)
		}
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (csvDataProv *csvDataProvider) GetChain(underlying string, expiry time.Time) ([]Contract, error) {
	rows, err := csvDataProv.load(underlying)
	if err != nil {
		if sec := csvDataProv.secondary; sec != nil {
			return sec.GetChain(underlying, expiry)
		}
		return nil, err
	}

	want := expiry.Format("2006-01-02")
	var out []Contract
	for _, row := range rows {
		if row.Expiry != want {
			continue
		}
		c, err := row.toContract()
		if err != nil {
			return nil, fmt.Errorf("%s snapshot: %w", underlying, err)
		}
		out = append(out, c)
	}
	sortContracts(out)
	return out, nil
}
