package config

import "time"

// DefaultConfig returns the baseline configuration applied before the
// yaml file and environment overrides.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8000,
			Auth: AuthConfig{
				TokenTTL:   Duration(200 * time.Minute),
				CookieName: "access_token",
				BcryptCost: 12,
			},
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:      true,
			TemplateGlob: "web/templates/*.html",
			StaticDir:    "web/static",
		},
		Database: DatabaseConfig{
			DSN: "data/todos.db",
		},
		Company: CompanyConfig{
			Name:      "Example company",
			Employees: 179,
		},
	}
}
