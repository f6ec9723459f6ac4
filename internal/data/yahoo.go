package data

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/contactkeval/iv-surface/internal/logger"
	"github.com/contactkeval/iv-surface/internal/pricing"
)

// yahooDataProvider implements Provider against the Yahoo Finance v7
// options endpoint using raw HTTP calls, no SDK.
type yahooDataProvider struct {
	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint (e.g. https://query2.finance.yahoo.com).
	BaseURL string

	secondary Provider
}

// yahooOptionRow is one call or put row in the options response.
type yahooOptionRow struct {
	ContractSymbol string   `json:"contractSymbol"`
	Strike         float64  `json:"strike"`
	Bid            *float64 `json:"bid"`
	Ask            *float64 `json:"ask"`
	LastPrice      *float64 `json:"lastPrice"`
	Volume         *int64   `json:"volume"`
	OpenInterest   *int64   `json:"openInterest"`
}

// yahooChainResp models the /v7/finance/options response envelope.
type yahooChainResp struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64            `json:"expirationDate"`
				Calls          []yahooOptionRow `json:"calls"`
				Puts           []yahooOptionRow `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

// NewYahooDataProvider constructs a Yahoo-backed data provider with an
// HTTP client tuned for chain-sized responses (gzip on, HTTP/2,
// pooled connections).
func NewYahooDataProvider(secondary Provider) Provider {
	logger.Infof("initializing Yahoo data provider")

	return &yahooDataProvider{
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // must be false to enable gzip auto-decompression
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL:   "https://query2.finance.yahoo.com",
		secondary: secondary,
	}
}

func (yahooDataProv *yahooDataProvider) Secondary() Provider {
	return yahooDataProv.secondary
}

// fetchChain performs one GET against the options endpoint. With a zero
// expiry the endpoint returns the nearest expiry plus the full expiry
// list, which is how GetSpot and GetExpiries piggyback on it.
func (yahooDataProv *yahooDataProvider) fetchChain(underlying string, expiry time.Time) (*yahooChainResp, error) {
	url := fmt.Sprintf("%s/v7/finance/options/%s", yahooDataProv.BaseURL, underlying)
	if !expiry.IsZero() {
		url = fmt.Sprintf("%s?date=%d", url, expiry.UTC().Unix())
	}

	logger.Debugf("yahoo GET %s", url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "iv-surface/1.0")

	resp, err := yahooDataProv.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo options status %d for %s", resp.StatusCode, underlying)
	}

	var body yahooChainResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding yahoo chain: %w", err)
	}
	if body.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo chain error %s: %s",
			body.OptionChain.Error.Code, body.OptionChain.Error.Description)
	}
	if len(body.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("yahoo chain empty result for %s", underlying)
	}
	return &body, nil
}

func (yahooDataProv *yahooDataProvider) GetSpot(underlying string) (float64, error) {
	body, err := yahooDataProv.fetchChain(underlying, time.Time{})
	if err != nil {
		if sec := yahooDataProv.secondary; sec != nil {
			logger.Debugf("yahoo spot failed (%v), delegating to secondary", err)
			return sec.GetSpot(underlying)
		}
		return 0, err
	}
	px := body.OptionChain.Result[0].Quote.RegularMarketPrice
	if px == nil || *px <= 0 {
		return 0, fmt.Errorf("yahoo: no spot price for %s", underlying)
	}
	return *px, nil
}

func (yahooDataProv *yahooDataProvider) GetExpiries(underlying string) ([]time.Time, error) {
	body, err := yahooDataProv.fetchChain(underlying, time.Time{})
	if err != nil {
		if sec := yahooDataProv.secondary; sec != nil {
			logger.Debugf("yahoo expiries failed (%v), delegating to secondary", err)
			return sec.GetExpiries(underlying)
		}
		return nil, err
	}
	dates := body.OptionChain.Result[0].ExpirationDates
	out := make([]time.Time, 0, len(dates))
	for _, ts := range dates {
		out = append(out, time.Unix(ts, 0).UTC())
	}
	return out, nil
}

func (yahooDataProv *yahooDataProvider) GetChain(underlying string, expiry time.Time) ([]Contract, error) {
	body, err := yahooDataProv.fetchChain(underlying, expiry)
	if err != nil {
		if sec := yahooDataProv.secondary; sec != nil {
			logger.Debugf("yahoo chain failed (%v), delegating to secondary", err)
			return sec.GetChain(underlying, expiry)
		}
		return nil, err
	}

	var out []Contract
	for _, block := range body.OptionChain.Result[0].Options {
		expStr := time.Unix(block.ExpirationDate, 0).UTC().Format("2006-01-02")
		out = append(out, convertRows(block.Calls, pricing.Call, expStr)...)
		out = append(out, convertRows(block.Puts, pricing.Put, expStr)...)
	}
	sortContracts(out)

	logger.Debugf("yahoo chain %s %s: %d contracts", underlying, expiry.Format("2006-01-02"), len(out))
	return out, nil
}

// convertRows maps raw rows to Contracts, discarding rows with an
// unusable strike rather than failing the whole expiry.
func convertRows(rows []yahooOptionRow, kind pricing.Kind, expiry string) []Contract {
	out := make([]Contract, 0, len(rows))
	for _, row := range rows {
		if row.Strike <= 0 {
			logger.Tracef("yahoo: skipping row with strike %.4f", row.Strike)
			continue
		}
		out = append(out, Contract{
			Symbol:       row.ContractSymbol,
			Expiry:       expiry,
			Strike:       row.Strike,
			Kind:         kind,
			Bid:          row.Bid,
			Ask:          row.Ask,
			Last:         row.LastPrice,
			Volume:       row.Volume,
			OpenInterest: row.OpenInterest,
		})
	}
	return out
}
