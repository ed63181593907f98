// Package logger provides structured logging for flowview using zerolog.
//
// It supports JSON and console output, level configuration, and component
// or instance scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("poller").WithInstance(id)
//	log.Warn("status fetch failed", logger.ErrorFields("status", err))
package logger
