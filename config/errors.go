package config

import "errors"

var (
	// ErrReadConfig indicates the config file or environment could not be decoded.
	ErrReadConfig = errors.New("config: read failed")

	// ErrInvalidConfig indicates a value failed validation.
	ErrInvalidConfig = errors.New("config: invalid")

	// ErrSecret indicates a credential reference could not be resolved.
	ErrSecret = errors.New("config: secret resolution failed")
)
