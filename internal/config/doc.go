// Package config loads the explorer configuration.
//
// # Configuration Sources
//
// Values are layered in the following order, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. config.yaml or configs/config.yaml, when present
//  3. Environment variables prefixed with RX_
//
// A .env file is read by the command entry points before Load runs.
//
// # Environment Variables
//
// Variable names follow the nesting of Config:
//
//	RX_SERVER_PORT=8080
//	RX_LOGGING_LEVEL=debug
//	RX_PATHS_DATA_DIR=/srv/prescribing
//	RX_EXPLORER_FILTER_COLUMNS=REGIONAL_OFFICE_NAME,PRACTICE_NAME
//	RX_EXPLORER_PLOT_LIMIT=-1
//	RX_EXPLORER_DEFAULT_DATASET=epd_202401.csv
//	RX_TELEMETRY_TRACE_EXPORTER=stdout
//
// List values are comma separated.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	srv := &http.Server{Addr: cfg.Server.Addr()}
package config
