package config

import (
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// SheetFormat selects the page spreadsheet reader.
type SheetFormat string

const (
	SheetFormatAuto SheetFormat = "auto"
	SheetFormatXLSX SheetFormat = "xlsx"
	SheetFormatCSV  SheetFormat = "csv"
)

var sheetFormatNormalizer = normalization.NewNormalizer("spreadsheet format", map[string]SheetFormat{
	"auto": SheetFormatAuto,
	"xlsx": SheetFormatXLSX,
	"csv":  SheetFormatCSV,
}, SheetFormatAuto)
