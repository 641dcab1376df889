// Package logger provides structured logging for the Ribbit client using
// zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with map-based fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("httpclient")
//	log.Debug("signed request", logger.Fields(logger.FieldMethod, "GET"))
package logger
