// Package config loads env-tagged configuration structs. A local .env
// file is read once per process if present; real environment variables
// always take precedence.
//
// Example:
//
//	var cfg session.Config
//	config.MustLoad(&cfg)
package config
