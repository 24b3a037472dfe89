package api

import "errors"

// ErrMalformedPayload indicates that a wire payload failed decoding or validation
var ErrMalformedPayload = errors.New("malformed payload")
