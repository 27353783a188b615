// Package common provides shared error handling and logging for the SmartEnergy analyzer
package common

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// ErrorCodeInfo contains metadata about error codes
type ErrorCodeInfo struct {
	Severity    ErrorSeverity
	Category    string
	Description string
}

// Predefined error codes with severity and category
var errorCodes = map[string]ErrorCodeInfo{
	"E1001": {SeverityWarning, "Input", "Malformed input record"},
	"E1002": {SeverityWarning, "Input", "Unparseable timestamp"},
	"E2001": {SeverityCritical, "Config", "Configuration load failure"},
	"E2002": {SeverityError, "Config", "Invalid configuration value"},
	"E3001": {SeverityError, "Data", "Data validation error"},
	"E3002": {SeverityWarning, "Data", "Incomplete incident timing"},
	"E4001": {SeverityError, "System", "Internal system error"},
	"E4002": {SeverityError, "System", "Output write failure"},
}

// Thread-safe per-code error counters
var (
	errorMetrics   = make(map[string]*atomic.Uint64)
	errorMetricsMu sync.Mutex
)

// AnalyzerError is the coded error type used across the analyzer
type AnalyzerError struct {
	Code      string
	Message   string
	Err       error
	Severity  ErrorSeverity
	Metadata  map[string]interface{}
	Timestamp time.Time
}

// Error implements the error interface
func (e *AnalyzerError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements error unwrapping with context preservation
func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// NewError creates a new AnalyzerError with code and severity validation
func NewError(code string, message string, metadata map[string]interface{}) *AnalyzerError {
	codeInfo, exists := errorCodes[code]
	if !exists {
		code = "E4001"
		codeInfo = errorCodes[code]
	}

	countError(code)

	return &AnalyzerError{
		Code:      code,
		Message:   message,
		Severity:  codeInfo.Severity,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// WrapError wraps an existing error with additional context, preserving the
// original code when the cause is already an AnalyzerError.
func WrapError(err error, message string, metadata map[string]interface{}) error {
	if err == nil {
		return nil
	}

	var aerr *AnalyzerError
	if errors.As(err, &aerr) {
		return &AnalyzerError{
			Code:      aerr.Code,
			Message:   message,
			Err:       err,
			Severity:  aerr.Severity,
			Metadata:  mergeMaps(aerr.Metadata, metadata),
			Timestamp: time.Now().UTC(),
		}
	}

	wrapped := NewError("E4001", message, metadata)
	wrapped.Err = err
	return wrapped
}

// IsErrorCode checks if an error carries a specific error code
func IsErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var aerr *AnalyzerError
	if !errors.As(err, &aerr) {
		return false
	}
	return aerr.Code == code
}

// ErrorCounts returns a snapshot of the per-code error counters
func ErrorCounts() map[string]uint64 {
	errorMetricsMu.Lock()
	defer errorMetricsMu.Unlock()

	counts := make(map[string]uint64, len(errorMetrics))
	for code, counter := range errorMetrics {
		counts[code] = counter.Load()
	}
	return counts
}

func countError(code string) {
	errorMetricsMu.Lock()
	counter, exists := errorMetrics[code]
	if !exists {
		counter = &atomic.Uint64{}
		errorMetrics[code] = counter
	}
	errorMetricsMu.Unlock()
	counter.Add(1)
}

func mergeMaps(m1, m2 map[string]interface{}) map[string]interface{} {
	if m1 == nil && m2 == nil {
		return nil
	}
	result := make(map[string]interface{}, len(m1)+len(m2))
	for k, v := range m1 {
		result[k] = v
	}
	for k, v := range m2 {
		result[k] = v
	}
	return result
}
