// Package logger provides structured logging for kvbridge using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.GetGlobalLogger().WithComponent("bridge")
//	log.Error("Redis query error", logger.ErrorFields("query", err))
package logger
