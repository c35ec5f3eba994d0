package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/jz-wilson/sql-backup-pricing/api"
	"github.com/jz-wilson/sql-backup-pricing/config"
	"github.com/jz-wilson/sql-backup-pricing/pricing"
	"github.com/jz-wilson/sql-backup-pricing/pricing/azure"
	"github.com/jz-wilson/sql-backup-pricing/pricing/estimate"
)

var version = "dev"

func main() {
	loaded, err := config.LoadDotEnv(".env")
	if err != nil {
		log.WithError(err).Warn("Couldn't load .env file, using process environment")
	}
	for _, path := range loaded {
		log.Debugf("Loaded environment from %s", path)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sql-backup-pricing",
		Usage:   "Azure SQL Database backup storage pricing service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a YAML config file", EnvVars: []string{"PRICING_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level", EnvVars: []string{"LOG_LEVEL"}},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "log format (text, json)", EnvVars: []string{"LOG_FORMAT"}},
			&cli.StringFlag{Name: "base-url", Value: azure.RetailPricesBaseURL, Usage: "Azure Retail Prices API endpoint", EnvVars: []string{"PRICING_BASE_URL"}},
			&cli.DurationFlag{Name: "timeout", Value: azure.DefaultTimeout, Usage: "Timeout of each upstream request", EnvVars: []string{"PRICING_TIMEOUT"}},
			&cli.DurationFlag{Name: "retry-delay", Value: azure.DefaultRetryDelay, Usage: "Base delay between upstream retries", EnvVars: []string{"PRICING_RETRY_DELAY"}},
			&cli.StringFlag{Name: "listen-address", Value: ":8080", Usage: "The address to listen on for HTTP requests.", EnvVars: []string{"LISTEN_ADDRESS"}},
			&cli.StringFlag{Name: "port", Usage: "Port to listen on, overrides --listen-address", EnvVars: []string{"PORT"}},
			&cli.StringFlag{Name: "metrics-path", Value: "/metrics", Usage: "path to metrics endpoint", EnvVars: []string{"METRICS_PATH"}},
			&cli.IntFlag{Name: "max-pages", Value: azure.DefaultMaxPages, Usage: "Result pages read per upstream query", EnvVars: []string{"PRICING_MAX_PAGES"}},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the pricing HTTP API",
				Action: serve,
			},
			{
				Name:  "prices",
				Usage: "Print SQL Database backup storage prices for a region",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Value: "eastus", Usage: "Azure region"},
					&cli.BoolFlag{Name: "ltr", Usage: "Print long-term retention prices"},
				},
				Action: printPrices,
			},
			{
				Name:   "best-ltr",
				Usage:  "Print the best LTR backup storage price for a region",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Value: "eastus", Usage: "Azure region"}},
				Action: printBestLTR,
			},
			{
				Name:  "backup",
				Usage: "Print standard backup prices of a service by meter suffix",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "service", Required: true, Usage: "Service name, e.g. Backup"},
					&cli.StringFlag{Name: "meter-suffix", Required: true, Usage: "Meter name suffix, e.g. LRS Data Stored"},
					&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Usage: "Azure region (defaults to *all*)"},
				},
				Action: printBackup,
			},
			{
				Name:   "regions",
				Usage:  "Print the regions with SQL Database prices",
				Action: printRegions,
			},
			{
				Name:  "estimate",
				Usage: "Estimate the monthly LTR backup cost of a database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Value: "eastus", Usage: "Azure region"},
					&cli.Float64Flag{Name: "db-size", Required: true, Usage: "Database size in GB"},
					&cli.Float64Flag{Name: "growth-rate", Usage: "Annual growth in percent"},
					&cli.IntFlag{Name: "weekly", Usage: "Weekly backups retained"},
					&cli.IntFlag{Name: "monthly", Usage: "Monthly backups retained"},
					&cli.IntFlag{Name: "yearly", Usage: "Yearly backups retained"},
				},
				Action: printEstimate,
			},
		},
	}
}

// loadConfig layers the config file and any explicitly set flags over the defaults.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("retry-delay") {
		cfg.RetryDelay = c.Duration("retry-delay")
	}
	if c.IsSet("max-pages") {
		cfg.MaxPages = c.Int("max-pages")
	}
	if c.IsSet("listen-address") {
		cfg.ListenAddress = c.String("listen-address")
	}
	if c.IsSet("port") {
		cfg.ListenAddress = "0.0.0.0:" + c.String("port")
	}
	if c.IsSet("metrics-path") {
		cfg.MetricsPath = c.String("metrics-path")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	parsedLevel, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warnf("Couldn't parse log level, using default: %s", log.GetLevel())
	} else {
		log.SetLevel(parsedLevel)
		log.Debugf("Set log level to %s", parsedLevel)
	}
}

type service struct {
	resolver     *pricing.Resolver
	azureMetrics *azure.Metrics
	metrics      *pricing.Metrics
}

func newService(cfg config.Config) *service {
	azureMetrics := azure.NewMetrics()
	metrics := pricing.NewMetrics()
	client := azure.NewDefaultClientFactory(cfg.ClientOptions(), azureMetrics).NewRetailPricesClient()
	return &service{
		resolver:     pricing.NewResolver(client, metrics),
		azureMetrics: azureMetrics,
		metrics:      metrics,
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log.Infof("Starting SQL backup pricing service. [log-level=%s, base-url=%s, timeout=%s, max-pages=%d]", cfg.LogLevel, cfg.BaseURL, cfg.Timeout, cfg.MaxPages)

	svc := newService(cfg)
	prometheus.MustRegister(svc.azureMetrics, svc.metrics)

	srv := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      api.NewRouter(svc.resolver, cfg.MetricsPath, promhttp.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		log.Infof("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Infof("Starting http endpoint [address=%s, metrics-path=%s]", cfg.ListenAddress, cfg.MetricsPath)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func printPrices(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	resolver := newService(cfg).resolver

	var items []azure.PriceItem
	if c.Bool("ltr") {
		items, err = resolver.LTRBackupPricing(c.Context, c.String("region"))
	} else {
		items, err = resolver.SQLBackupPricing(c.Context, c.String("region"))
	}
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, items)
}

func printBestLTR(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	region := c.String("region")
	price, err := newService(cfg).resolver.BestLTRPrice(c.Context, region)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, api.PriceResponse{Price: price, Currency: pricing.DefaultCurrency, Region: region})
}

func printBackup(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	items, err := newService(cfg).resolver.BackupPricing(c.Context, c.String("service"), c.String("meter-suffix"), c.String("region"))
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, items)
}

func printRegions(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	regions, err := newService(cfg).resolver.AvailableRegions(c.Context)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, api.RegionsResponse{Regions: regions})
}

func printEstimate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	price, err := newService(cfg).resolver.BestLTRPrice(c.Context, c.String("region"))
	if err != nil {
		return err
	}
	breakdown, err := estimate.CurrentBreakdown(estimate.Parameters{
		DBSizeGB:            c.Float64("db-size"),
		AnnualGrowthPercent: c.Float64("growth-rate"),
		Retention: estimate.RetentionSettings{
			Weekly:  c.Int("weekly"),
			Monthly: c.Int("monthly"),
			Yearly:  c.Int("yearly"),
		},
		StoragePrice: price,
	})
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, breakdown)
}
