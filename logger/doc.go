// Package logger provides structured logging for the render service using
// zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers. Every pipeline component receives a
// *Logger tagged with its component name.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("workspace")
//	log.Info("sweep finished", logger.Fields("removed", 3))
package logger
