package config

import (
	"errors"
)

// Errors returned by Load and Validate; match them with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	ErrDotEnv        = errors.New("load dotenv failed")
)
