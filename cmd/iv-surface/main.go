package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/contactkeval/iv-surface/internal/chain"
	"github.com/contactkeval/iv-surface/internal/data"
	"github.com/contactkeval/iv-surface/internal/logger"
	"github.com/contactkeval/iv-surface/internal/report"
	"github.com/contactkeval/iv-surface/internal/surface"
)

// Config drives one pipeline run. Defaults come from flags; a -config
// JSON file, when given, replaces the whole thing.
type Config struct {
	Ticker          string  `json:"ticker"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	DividendYield   float64 `json:"dividend_yield"`
	MinOpenInterest int64   `json:"min_open_interest"`
	MinVolume       int64   `json:"min_volume"`
	MaxSpreadPct    float64 `json:"max_spread_pct"`
	MaxWorkers      int     `json:"max_workers"`
	Retries         int     `json:"retries"`
	DataDir         string  `json:"data_dir,omitempty"` // local CSV snapshots; empty = live fetch
	Synthetic       bool    `json:"synthetic,omitempty"`
	OutputDir       string  `json:"output_dir,omitempty"`
	Verbosity       int     `json:"verbosity,omitempty"` // 0=errors,1=info,2=debug,3=trace
}

// Result is the REST/report payload of one run.
type Result struct {
	Ticker      string              `json:"ticker"`
	Spot        float64             `json:"spot"`
	AsOf        time.Time           `json:"as_of"`
	Points      []chain.PricedPoint `json:"points"`
	CallSurface surface.Surface     `json:"call_surface"`
	PutSurface  surface.Surface     `json:"put_surface"`
}

func main() {
	configPath := flag.String("config", "", "path to JSON config (optional)")
	ticker := flag.String("ticker", "AAPL", "underlying symbol")
	rate := flag.Float64("rate", 0.05, "risk-free rate (annual, continuous)")
	yield := flag.Float64("yield", 0.0, "dividend yield (annual, continuous)")
	dataDir := flag.String("data", "", "directory of local CSV chain snapshots")
	synthetic := flag.Bool("synthetic", false, "use the synthetic provider")
	outDir := flag.String("out", "./out", "report output directory")
	verbosity := flag.Int("v", 1, "verbosity: 0=errors,1=info,2=debug,3=trace")
	rest := flag.Bool("rest", false, "run as REST server")
	port := flag.String("port", ":8080", "REST server listen address")
	flag.Parse()

	cfg := Config{
		Ticker:          *ticker,
		RiskFreeRate:    *rate,
		DividendYield:   *yield,
		MinOpenInterest: 10,
		MinVolume:       1,
		MaxSpreadPct:    0.25,
		MaxWorkers:      8,
		Retries:         3,
		DataDir:         *dataDir,
		Synthetic:       *synthetic,
		OutputDir:       *outDir,
		Verbosity:       *verbosity,
	}
	if *configPath != "" {
		cfgData, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("reading config: %v", err)
		}
		if err := json.Unmarshal(cfgData, &cfg); err != nil {
			log.Fatalf("invalid config: %v", err)
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./out"
	}
	logger.SetVerbosity(cfg.Verbosity)

	prov := chooseProvider(&cfg)

	if *rest {
		mux := http.NewServeMux()
		mux.HandleFunc("/surface", func(w http.ResponseWriter, r *http.Request) {
			logger.Infof("received /surface request")
			res, err := run(r.Context(), &cfg, prov)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(res)
		})
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		logger.Infof("starting REST server on %s", *port)
		log.Fatal(http.ListenAndServe(*port, mux))
		return
	}

	start := time.Now()
	res, err := run(context.Background(), &cfg, prov)
	if err != nil {
		log.Fatalf("surface build failed: %v", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Errorf("could not create output dir %s: %v", cfg.OutputDir, err)
	}
	_ = report.WriteJSON(res.Points, cfg.OutputDir)
	_ = report.WriteCSV(res.Points, cfg.OutputDir)
	_ = report.WriteSurfaceCSV(res.CallSurface, "call_surface", cfg.OutputDir)
	_ = report.WriteSurfaceCSV(res.PutSurface, "put_surface", cfg.OutputDir)
	logger.Infof("finished in %v, wrote %d points to %s", time.Since(start), len(res.Points), cfg.OutputDir)
}

// chooseProvider picks the data source: local CSV snapshots with a live
// fallback, pure synthetic, or live Yahoo.
func chooseProvider(cfg *Config) data.Provider {
	switch {
	case cfg.Synthetic:
		logger.Infof("synthetic provider enabled")
		return data.NewSyntheticProvider(time.Now().UnixNano(), time.Now().UTC())
	case cfg.DataDir != "":
		logger.Infof("local CSV provider enabled (dir=%s)", cfg.DataDir)
		return data.NewCSVDataProvider(cfg.DataDir, data.NewYahooDataProvider(nil))
	default:
		logger.Infof("yahoo provider enabled")
		return data.NewYahooDataProvider(nil)
	}
}

// run executes the full pipeline: load chain, price every expiry batch,
// pivot into surfaces.
func run(ctx context.Context, cfg *Config, prov data.Provider) (*Result, error) {
	loaderCfg := data.DefaultLoaderConfig()
	loaderCfg.MinOpenInterest = cfg.MinOpenInterest
	loaderCfg.MinVolume = cfg.MinVolume
	loaderCfg.MaxSpreadPct = cfg.MaxSpreadPct
	loaderCfg.MaxWorkers = cfg.MaxWorkers
	loaderCfg.Retries = cfg.Retries

	loader := data.NewLoader(loaderCfg, prov)
	asOf := time.Now().UTC()

	loaded, err := loader.LoadChain(ctx, cfg.Ticker, asOf)
	if err != nil {
		return nil, err
	}

	proc := chain.NewProcessor(cfg.RiskFreeRate, cfg.DividendYield)

	var (
		points  []chain.PricedPoint
		samples []surface.Sample
	)
	for _, batch := range loaded.Batches {
		batchPoints := proc.ProcessBatch(batch.Quotes, loaded.Spot, batch.Tau)
		points = append(points, batchPoints...)
		samples = append(samples, surface.PointsToSamples(batchPoints, batch.Tau)...)
	}

	callSurf, putSurf := surface.Build(samples)
	logger.Infof("%s: %d points, call surface %dx%d, put surface %dx%d",
		cfg.Ticker, len(points),
		len(callSurf.Strikes), len(callSurf.Maturities),
		len(putSurf.Strikes), len(putSurf.Maturities))

	return &Result{
		Ticker:      cfg.Ticker,
		Spot:        loaded.Spot,
		AsOf:        asOf,
		Points:      points,
		CallSurface: callSurf,
		PutSurface:  putSurf,
	}, nil
}
