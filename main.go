package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soocke/zone-console/app"
	"github.com/soocke/zone-console/config"
)

func main() {
	cfgPath := flag.String("config", "console.json", "path to JSON config file")
	apiBase := flag.String("api", "", "backend REST base URL (overrides config)")
	videoURL := flag.String("video", "", "video websocket URL (overrides config)")
	alertsURL := flag.String("alerts", "", "alerts websocket URL (overrides config)")
	metricsAddr := flag.String("metrics", "", "prometheus listen address, e.g. :9100 (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	debugFlag := flag.Bool("debug", false, "enable debug logging and diagnostics")
	writeCfg := flag.Bool("write-config", false, "write the effective config to -config and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s: %v (using defaults)\n", *cfgPath, err)
	}
	overrides := map[*string]*string{
		apiBase:     &cfg.APIBase,
		videoURL:    &cfg.VideoURL,
		alertsURL:   &cfg.AlertsURL,
		metricsAddr: &cfg.MetricsAddr,
		logLevel:    &cfg.LogLevel,
	}
	for flagVal, field := range overrides {
		if *flagVal != "" {
			*field = *flagVal
		}
	}
	if *debugFlag {
		cfg.Debug = true
	}
	_ = cfg.Validate()

	if *writeCfg {
		if err := cfg.Save(*cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := NewLogger(os.Stdout, cfg.Level(), cfg.Debug)
	if err := app.NewApp("Zone Console", cfg, logger).Start(); err != nil {
		logger.Fatal().Err(err).Msg("console failed to start")
	}
}
