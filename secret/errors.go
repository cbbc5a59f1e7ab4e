package secret

import "errors"

var (
	// ErrProviderNotRegistered indicates a reference names an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrInvalidProvider indicates a nil factory or blank provider name.
	ErrInvalidProvider = errors.New("secret: invalid provider registration")

	// ErrDuplicateProvider indicates a provider name is already registered.
	ErrDuplicateProvider = errors.New("secret: provider already registered")

	// ErrNotFound indicates a provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmptySecret indicates a strict resolver received an empty value.
	ErrEmptySecret = errors.New("secret: empty value")

	// ErrMissingEnv indicates ${VAR} expansion referenced an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variables")
)
