package heatmap

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when bandwidth estimation gets fewer
	// than two samples.
	ErrInsufficientData = errors.New("insufficient data for bandwidth estimation")

	// ErrDegenerateBandwidth is returned when the sample spread is zero or
	// negative, which would produce a non-positive bandwidth.
	ErrDegenerateBandwidth = errors.New("degenerate bandwidth: sample spread is not positive")

	// ErrEmptyObservationSet is returned when density is requested without
	// any observations.
	ErrEmptyObservationSet = errors.New("empty observation set")
)

// InvalidIntensityError reports a direct-path intensity outside [1, 10].
type InvalidIntensityError struct {
	Index int
	Value int
}

func (e *InvalidIntensityError) Error() string {
	return fmt.Sprintf("observation %d: users_relative %d outside [%d, %d]", e.Index, e.Value, MinIntensity, MaxIntensity)
}

// InvalidConfigurationError reports a non-positive or otherwise unusable
// numeric setting.
type InvalidConfigurationError struct {
	Field string
	Value float64
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s must be positive, got %g", e.Field, e.Value)
}
