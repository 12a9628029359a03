// Package config loads kvbridge configuration.
//
// LoadConfig reads an optional config.yml with viper, applies a .env file
// through godotenv, and overlays the process environment so that variables
// such as REDIS_HOST and REDIS_PORT land on the redis.host and redis.port
// keys of the target struct. Every section struct follows the same
// ApplyDefaults then Validate convention.
//
//	var cfg AppConfig
//	if err := config.LoadConfig("kvbridge", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
