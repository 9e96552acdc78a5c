package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/elianafuentes/Dash/internal/config"
	"github.com/elianafuentes/Dash/internal/logger"
	"github.com/elianafuentes/Dash/internal/observability"
	"github.com/elianafuentes/Dash/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const defaultConfigFile = "config.yaml"

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file"                 default:"config.yaml"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on"                       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"                          default:"8051"`
	CSV        string `short:"d" long:"csv"    env:"CSV_FILE"       description:"Path to the price dataset, overrides config"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && opts.ConfigFile == defaultConfigFile {
			log.Warn().
				Str("path", opts.ConfigFile).
				Msg("Configuration file not found, using defaults")
			cfg = config.Default()
		} else {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}

	if opts.CSV != "" {
		cfg.CSV = opts.CSV
	}

	metrics := observability.NewMetrics()

	// Build the dashboard once at startup. A failed build still brings the
	// server up, serving an error page and 503s on the data endpoints.
	var srvCtx *server.ServerContext
	dash, err := server.BuildDashboard(cfg, metrics)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build dashboard, serving fallback page")

		srvCtx, err = server.NewFallbackContext(cfg, metrics)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build fallback context")
		}
	} else {
		srvCtx, err = server.NewServerContext(cfg, dash, metrics)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize server context")
		}
	}

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/charts", srvCtx.HandleChartsList)
	mux.HandleFunc("/api/geojson", srvCtx.HandleGeoJSON)
	mux.HandleFunc("/api/summary", srvCtx.HandleSummary)
	mux.HandleFunc("/healthz", srvCtx.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/charts/", srvCtx.HandleChart)
	mux.HandleFunc("/favicon.svg", srvCtx.HandleFavicon)
	mux.HandleFunc("/", srvCtx.HandleIndex)

	handler := server.RequestLogger(metrics, mux)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Bool("degraded", srvCtx.Degraded).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
