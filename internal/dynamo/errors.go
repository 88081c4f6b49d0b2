package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a parameter outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrUnknownParameter indicates a parameter name with no known role.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrDegenerateGeometry indicates the mass reached the anchor, leaving the
	// spring direction undefined.
	ErrDegenerateGeometry = errors.New("dynamo: degenerate geometry (mass at anchor)")

	// ErrTooManySteps indicates Duration/Dt exceeds the configured step budget.
	ErrTooManySteps = errors.New("dynamo: step count exceeds limit")

	// ErrSeriesMismatch indicates times and elongations of different length.
	ErrSeriesMismatch = errors.New("dynamo: times and elongations differ in length")
)

// ParameterError reports which parameter failed validation.
type ParameterError struct {
	Name    string
	Value   float64
	Reason  string
	Wrapped error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%g (%s)", e.Wrapped.Error(), e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return e.Wrapped
}

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Wrapped.Error())
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
