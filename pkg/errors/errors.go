package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents navigation and timeout errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypePersistence represents store write errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeValidation represents record validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlError represents a pipeline-specific error tagged with the supplier
// it occurred on.
type CrawlError struct {
	Type     ErrorType
	Supplier string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Supplier, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Supplier, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the walker may retry the failed operation.
// Only navigation failures are retried; everything else is either recovered
// locally or skipped.
func (e *CrawlError) IsRetryable() bool {
	return e.Type == ErrorTypeNetwork
}

// New creates a new CrawlError
func New(errType ErrorType, supplier, message string, err error) *CrawlError {
	return &CrawlError{
		Type:     errType,
		Supplier: supplier,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(supplier, message string, err error) *CrawlError {
	return New(ErrorTypeNetwork, supplier, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(supplier, message string, err error) *CrawlError {
	return New(ErrorTypeParsing, supplier, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(supplier string, duration time.Duration) *CrawlError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, supplier, message, nil)
}

// NewPersistence creates a new persistence error
func NewPersistence(supplier, message string, err error) *CrawlError {
	return New(ErrorTypePersistence, supplier, message, err)
}

// NewValidation creates a new validation error
func NewValidation(supplier, message string) *CrawlError {
	return New(ErrorTypeValidation, supplier, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// Retryable reports whether err (or anything it wraps) is a retryable
// CrawlError.
func Retryable(err error) bool {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.IsRetryable()
	}
	return false
}
