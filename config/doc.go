// Package config loads flowview configuration.
//
// Values come from defaults, a config.yml found under ./cmd/<service>/,
// ./config/ or the working directory, an optional .env file, and finally
// FLOWVIEW_* environment variables (FLOWVIEW_ENGINE_BASE_URL overrides
// engine.base_url).
//
// # Usage
//
//	var cfg app.Config
//	err := config.LoadConfig("flowview", &cfg)
package config
