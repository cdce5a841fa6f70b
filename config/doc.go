// Package config loads the recollect service configuration from YAML.
//
// Values may reference the environment as ${VAR} or ${VAR:-default}.
// Empty fields take defaults; the result maps onto ai.Config and
// search.Config.
package config
