package synth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid generator configuration")
	ErrExhausted     = errors.New("not enough distinct accounts")
)

// ConfigurationError reports the first configuration constraint a run
// violated. It is returned before any generation work starts.
type ConfigurationError struct {
	Field      string // config field, as named in JSON
	Constraint string // the rule that failed, e.g. "gt=0" or "band_high<threshold"
	Details    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s violates %s: %s", ErrInvalidConfig, e.Field, e.Constraint, e.Details)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

// ExhaustionError is returned when an injector needs more distinct accounts
// than the population holds. Sampling never falls back to replacement.
type ExhaustionError struct {
	Injector  string
	Needed    int
	Available int
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("%v: %s injector needs %d distinct accounts, population has %d",
		ErrExhausted, e.Injector, e.Needed, e.Available)
}

func (e *ExhaustionError) Unwrap() error {
	return ErrExhausted
}
