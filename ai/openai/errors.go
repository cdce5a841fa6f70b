package openai

import "errors"

// ErrEmptyResponse is returned when the model produces no usable text.
var ErrEmptyResponse = errors.New("model returned an empty response")
