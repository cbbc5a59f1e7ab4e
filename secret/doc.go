// Package secret resolves credentials referenced from configuration.
//
// Probe connection strings and passwords rarely belong in a config file. A
// value may instead reference a secret:
//
//	database:
//	  dsn: secretref:env:CLINIC_DB_DSN
//	mail:
//	  password: secretref:file:/run/secrets/smtp_password
//
// A full value is replaced by the secret; a reference embedded in a longer
// value is substituted in place. ${VAR} expansion runs first and fails on
// unset variables.
//
// The "env" and "file" providers are registered in DefaultRegistry.
package secret
