package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrInvalidLogLevel    = errors.New("unknown log level")
	ErrInvalidFormat      = errors.New("unknown transcript format")
	ErrInvalidHistorySize = errors.New("history_size out of range")
	ErrInvalidMaxLogLines = errors.New("max_log_lines out of range")
)

// Upper bounds for REPL settings.
const (
	MaxHistorySize = 10000
	MaxLogLines    = 100000
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Formats lists the transcript formats accepted by `broadcast run`.
var Formats = []string{"text", "markdown", "html"}

// ValidationError wraps a validation error with context.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateLogLevel validates a log level name. Empty means default.
func ValidateLogLevel(level string) error {
	if level == "" || validLogLevels[strings.ToLower(level)] {
		return nil
	}
	return &ValidationError{
		Field:   "log_level",
		Value:   level,
		Message: "must be one of debug, info, warn, error",
		Err:     ErrInvalidLogLevel,
	}
}

// ValidateFormat validates a transcript format name. Empty means default.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range Formats {
		if strings.EqualFold(f, format) {
			return nil
		}
	}
	return &ValidationError{
		Field:   "run.format",
		Value:   format,
		Message: "must be one of " + strings.Join(Formats, ", "),
		Err:     ErrInvalidFormat,
	}
}

func validateRange(field string, v, max int, sentinel error) error {
	if v < 0 || v > max {
		return &ValidationError{
			Field:   field,
			Value:   fmt.Sprintf("%d", v),
			Message: fmt.Sprintf("must be between 0 and %d", max),
			Err:     sentinel,
		}
	}
	return nil
}

// Validate checks every field of the configuration.
func (c *GlobalConfig) Validate() error {
	if c == nil {
		return nil
	}
	if err := ValidateLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := ValidateFormat(c.Run.Format); err != nil {
		return err
	}
	if err := validateRange("repl.history_size", c.REPL.HistorySize, MaxHistorySize, ErrInvalidHistorySize); err != nil {
		return err
	}
	return validateRange("repl.max_log_lines", c.REPL.MaxLogLines, MaxLogLines, ErrInvalidMaxLogLines)
}
