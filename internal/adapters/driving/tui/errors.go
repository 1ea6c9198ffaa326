package tui

import "errors"

// ErrMissingShieldService is returned when the shield service is not provided.
var ErrMissingShieldService = errors.New("tui: shield service is required")
