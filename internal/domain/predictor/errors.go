package predictor

import "errors"

// Sentinel kinds for predictor errors.
var (
	ErrNonNumeric       = errors.New("model returned a non-numeric value")
	ErrLoadModel        = errors.New("load model failed")
	ErrUnsupportedModel = errors.New("unsupported model")
	ErrFeatureMismatch  = errors.New("model features do not match schema")
	ErrMalformedTree    = errors.New("malformed tree")
)
