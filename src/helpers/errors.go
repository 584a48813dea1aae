package helpers

import "fmt"

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type PriceFeedError struct {
	Message string
	Cause   error
}

func (e *PriceFeedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PriceFeedError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------
// Distinct error types for boundary decisions.
//
// SourceUnavailableError aborts the current cycle after the error
// broadcast; LedgerWriteError is logged where it occurs and never rolls
// back prior steps; TransportError stays contained to the subscriber it
// came from.
// -----------------------------------------------------------------------------

type SourceUnavailableError struct{ PriceFeedError }
type LedgerWriteError struct{ PriceFeedError }
type TransportError struct{ PriceFeedError }
type ConfigurationError struct{ PriceFeedError }

// -----------------------------------------------------------------------------

func NewSourceUnavailable(message string, cause error) *SourceUnavailableError {
	return &SourceUnavailableError{PriceFeedError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

func NewLedgerWriteError(message string, cause error) *LedgerWriteError {
	return &LedgerWriteError{PriceFeedError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{PriceFeedError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{PriceFeedError{Message: message, Cause: cause}}
}
