package data_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contactkeval/iv-surface/internal/data"
)

const snapshotCSV = `symbol,expiry,strike,kind,bid,ask,last,volume,open_interest,spot
AAPL260918C00180000,2026-09-18,180,C,9.10,9.40,9.25,120,1500,187.50
AAPL260918P00180000,2026-09-18,180,P,2.10,2.30,,80,900,187.50
AAPL261218C00190000,2026-12-18,190,C,8.00,8.50,8.20,40,300,187.50
AAPL261218P00170000,2026-12-18,170,P,,8.60,8.45,,250,187.50
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(snapshotCSV), 0644)
	require.NoError(t, err)
	return dir
}

func TestCSVProviderReadsSnapshot(t *testing.T) {
	prov := data.NewCSVDataProvider(writeSnapshot(t), nil)

	spot, err := prov.GetSpot("aapl") // case-insensitive lookup
	require.NoError(t, err)
	require.Equal(t, 187.50, spot)

	expiries, err := prov.GetExpiries("AAPL")
	require.NoError(t, err)
	require.Equal(t, []time.Time{
		time.Date(2026, time.September, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 18, 0, 0, 0, 0, time.UTC),
	}, expiries)

	contracts, err := prov.GetChain("AAPL", expiries[0])
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	// Sorted by (expiry, strike, kind): call before put at equal strike.
	require.Equal(t, "AAPL260918C00180000", contracts[0].Symbol)
	require.Equal(t, "AAPL260918P00180000", contracts[1].Symbol)
	require.NotNil(t, contracts[0].Bid)
	require.Equal(t, 9.10, *contracts[0].Bid)
	require.Nil(t, contracts[1].Last) // empty cell stays absent
}

// A one-sided quote must come back with the missing side absent, not
// zero: a zero bid would later produce a bogus mid of ask/2.
func TestCSVProviderEmptyCellsStayAbsent(t *testing.T) {
	prov := data.NewCSVDataProvider(writeSnapshot(t), nil)

	contracts, err := prov.GetChain("AAPL", time.Date(2026, time.December, 18, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	put := contracts[0] // strike 170 sorts before 190
	require.Equal(t, "AAPL261218P00170000", put.Symbol)
	require.Nil(t, put.Bid)
	require.Nil(t, put.Volume)
	require.NotNil(t, put.Ask)
	require.Equal(t, 8.60, *put.Ask)
	require.NotNil(t, put.OpenInterest)
	require.Equal(t, int64(250), *put.OpenInterest)

	// No bid means no computable spread.
	_, ok := put.Spread()
	require.False(t, ok)
}

func TestCSVProviderRejectsMalformedNumber(t *testing.T) {
	dir := t.TempDir()
	bad := "symbol,expiry,strike,kind,bid,ask,last,volume,open_interest,spot\n" +
		"AAPL260918C00180000,2026-09-18,180,C,n/a,9.40,9.25,120,1500,187.50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(bad), 0644))

	prov := data.NewCSVDataProvider(dir, nil)
	_, err := prov.GetChain("AAPL", time.Date(2026, time.September, 18, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad bid")
}

func TestCSVProviderMissingFileDelegates(t *testing.T) {
	dir := t.TempDir()

	secondary := data.NewSyntheticProvider(1, time.Date(2026, time.August, 21, 0, 0, 0, 0, time.UTC))
	prov := data.NewCSVDataProvider(dir, secondary)

	spot, err := prov.GetSpot("MSFT")
	require.NoError(t, err)
	require.Greater(t, spot, 0.0)
}

func TestCSVProviderMissingFileNoSecondary(t *testing.T) {
	prov := data.NewCSVDataProvider(t.TempDir(), nil)
	_, err := prov.GetSpot("MSFT")
	require.Error(t, err)
}
