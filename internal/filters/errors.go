package filters

import "errors"

var (
	// ErrUnsupportedPredictor is returned when a Predictor value or a PNG row
	// tag is not one this package can reverse.
	ErrUnsupportedPredictor = errors.New("unsupported predictor")

	// ErrUnsupportedFilterParameter is returned when a decode parameter is
	// present but has an unusable type or value.
	ErrUnsupportedFilterParameter = errors.New("unsupported filter parameter")
)
