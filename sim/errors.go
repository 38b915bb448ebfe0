package sim

import "fmt"

// ConfigurationError signals invalid RunOptions or batch parameters
// (replicate count, scan size). The caller
// gets a complete, actionable message; no side effects on any sink occur
// before a ConfigurationError is returned (spec §7).
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sim: configuration error: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvariantViolation signals an internal postcondition failure — a bug,
// not a user error. RunSimulation recovers a panic of this type at its
// top level and returns it as an error so one bad run cannot take down a
// batch (spec §7).
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("sim: invariant violation: %s: %s", e.Invariant, e.Detail)
}

// NumericOutOfRange signals a NaN/Inf value was about to be recorded
// somewhere that requires a finite number. No code path in this module
// returns it: PF training discards a non-finite step and metric
// finalization clips non-finite rates to 0, both locally.
type NumericOutOfRange struct {
	Where string
	Value float64
}

func (e *NumericOutOfRange) Error() string {
	return fmt.Sprintf("sim: numeric out of range at %s: %v", e.Where, e.Value)
}
