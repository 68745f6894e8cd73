// Package config loads service configuration from config.yml, .env files and
// environment variables.
//
// Viper reads the YAML file and godotenv loads a .env file into the process
// environment. Each mapstructure key of the target struct is then bound to
// an environment variable, so RENDERER_TIMEOUT_MS (or the service-prefixed
// DIAGRAMD_RENDERER_TIMEOUT_MS) overrides renderer.timeout_ms.
//
// # Usage
//
//	var cfg AppConfig
//	if err := config.LoadConfig("diagramd", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
