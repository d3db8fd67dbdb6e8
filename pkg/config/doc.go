// Package config loads typed configuration from environment variables.
//
// Config structs declare their variables with caarlos0/env tags. A .env file
// in the working directory, if present, is loaded once per process through
// godotenv before the first parse; variables already set in the environment
// win over the file.
//
// # Usage
//
//	type AuthConfig struct {
//		AccessSecret  string        `env:"JWT_ACCESS_SECRET,required"`
//		RefreshSecret string        `env:"JWT_REFRESH_SECRET,required"`
//		AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
//	}
//
//	func (c AuthConfig) Validate() error {
//		if c.AccessSecret == c.RefreshSecret {
//			return errors.New("access and refresh secrets must differ")
//		}
//		return nil
//	}
//
//	var cfg AuthConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Structs implementing Validator are checked right after parsing. MustLoad
// panics instead of returning an error and is meant for main.
//
// WithEnvironment parses from a map instead of the process environment,
// which keeps tests hermetic.
package config
