package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkoval/defectwatch/internal/cache"
	"github.com/mkoval/defectwatch/internal/config"
	"github.com/mkoval/defectwatch/internal/enrich"
	"github.com/mkoval/defectwatch/internal/nhtsa"
	"github.com/mkoval/defectwatch/internal/observability"
)

var (
	flagConfig   string
	flagCacheDir string
	flagLogLevel string
	flagFresh    bool
	vehicleMake  string
	vehicleModel string
	vehicleYear  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (default $DEFECTWATCH_CACHE_DIR or .defectwatch-cache)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagFresh, "fresh", false, "Bypass the cache and re-fetch, overwriting cached entries")
}

// addVehicleFlags registers the make/model/year flags shared by the vehicle
// lookup commands.
func addVehicleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&vehicleMake, "make", "", "Vehicle make, e.g. HONDA")
	cmd.Flags().StringVar(&vehicleModel, "model", "", "Vehicle model, e.g. CIVIC")
	cmd.Flags().IntVar(&vehicleYear, "year", 0, "Model year, e.g. 2016")
	_ = cmd.MarkFlagRequired("make")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("year")
}

// app bundles the wired core components for a command invocation.
type app struct {
	cfg      config.Config
	cache    *cache.DiskCache
	client   *nhtsa.Client
	pipeline *enrich.Pipeline
	log      *zap.Logger
}

// newApp loads configuration, applies flag overrides, and wires the cache,
// client, and enrichment pipeline.
func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	store := cache.New(cfg.CacheDir)

	clientCfg := nhtsa.DefaultConfig()
	clientCfg.BaseURL = orDefault(cfg.APIBase, clientCfg.BaseURL)
	clientCfg.VINBaseURL = orDefault(cfg.VINAPIBase, clientCfg.VINBaseURL)
	clientCfg.Timeout = cfg.HTTPTimeout()
	clientCfg.SkipCache = flagFresh

	client := nhtsa.NewClient(store, clientCfg, log)
	pipeline := enrich.New(client, log)

	return &app{
		cfg:      cfg,
		cache:    store,
		client:   client,
		pipeline: pipeline,
		log:      log,
	}, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
