package config

import "errors"

// Sentinel error kinds. Load wraps every failure in one of them.
var (
	ErrInvalidConfig = errors.New("invalid dugout config")
	ErrLoadConfig    = errors.New("load dugout config")
)
