package editor

import "errors"

// ErrUnknownMode indicates unsupported synchronization mode
var ErrUnknownMode = errors.New("unknown sync mode")
