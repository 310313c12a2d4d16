package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "200m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Web      WebConfig      `yaml:"web"`
	Database DatabaseConfig `yaml:"database"`
	Company  CompanyConfig  `yaml:"company"`
}

type ServerConfig struct {
	IP   string     `yaml:"ip"`
	Port int        `yaml:"port"`
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig carries the token signing parameters. The secret is never
// read from the yaml file; it comes from the SECRET_KEY environment
// variable and is injected by the loader.
type AuthConfig struct {
	SecretKey  string   `yaml:"-"`
	TokenTTL   Duration `yaml:"token_ttl"`
	CookieName string   `yaml:"cookie_name"`
	BcryptCost int      `yaml:"bcrypt_cost"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled      bool   `yaml:"enabled"`
	TemplateGlob string `yaml:"template_glob"`
	StaticDir    string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// CompanyConfig backs the internal-only company endpoints, which are
// gated by a shared header token rather than user identity.
type CompanyConfig struct {
	Name          string `yaml:"name"`
	Employees     int    `yaml:"employees"`
	InternalToken string `yaml:"internal_token"`
}
