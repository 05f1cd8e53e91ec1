// Package logger builds structured slog loggers and provides nil-safe
// attribute helpers for the attributes this module logs repeatedly.
//
// Create loggers with environment presets:
//
//	log := logger.New(logger.WithDevelopment("fileshare"))
//	log := logger.New(logger.WithProduction("fileshare"))
//
// and attach attributes through the helpers:
//
//	log.Info("download resolved",
//		logger.Component("retrieval"),
//		logger.File(fileID),
//	)
package logger
