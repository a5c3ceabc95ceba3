// Package config loads service configuration from config.yml and .env files
// via viper and godotenv, with environment variables taking precedence.
// Every config struct follows the ApplyDefaults/Validate convention.
package config
