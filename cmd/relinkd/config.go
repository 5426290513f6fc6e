package main

import (
	"fmt"
	"os"
	"time"
)

// AppConfig is the application configuration, loaded from config files
// with environment overrides applied in main.
type AppConfig struct {
	Name        string      `json:"name" yaml:"name"`
	Env         string      `json:"env" yaml:"env"`
	Server      Server      `json:"server" yaml:"server"`
	Auth        Auth        `json:"auth" yaml:"auth"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
	Homepage    Homepage    `json:"homepage" yaml:"homepage"`
}

type Server struct {
	Port int `json:"port" yaml:"port"`
}

type Auth struct {
	SigningKey      string `json:"signing_key" yaml:"signing_key"`
	SigningMethod   string `json:"signing_method" yaml:"signing_method"`
	ContextKey      string `json:"context_key" yaml:"context_key"`
	TokenExpiration int    `json:"token_expiration" yaml:"token_expiration"`
	TokenLookup     string `json:"token_lookup" yaml:"token_lookup"`
	AuthScheme      string `json:"auth_scheme" yaml:"auth_scheme"`
	Issuer          string `json:"issuer" yaml:"issuer"`
	MaxPageSize     int    `json:"max_page_size" yaml:"max_page_size"`
}

type Persistence struct {
	Debug                 bool   `json:"debug" yaml:"debug"`
	Driver                string `json:"driver" yaml:"driver"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	PingTimeoutExpression string `json:"ping_timeout" yaml:"ping_timeout"`
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetDriver() string {
	return p.Driver
}

func (p Persistence) GetDSN() string {
	return p.DSN
}

func (p Persistence) GetServer() string {
	return p.DSN
}

func (p Persistence) GetOtelIdentifier() string {
	return ""
}

func (p Persistence) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

// Homepage controls what GET / does: render a message or redirect away.
type Homepage struct {
	Type    string `json:"type" yaml:"type"`
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// Validate fails startup when the token secret is missing anywhere but
// development. A signing key that silently defaults in production would
// make every deployment's tokens forgeable.
func (c *AppConfig) Validate() error {
	if c.Env != "development" && c.Auth.SigningKey == "" {
		return fmt.Errorf("no token signing key set (env %q)", c.Env)
	}
	return nil
}

// applyDefaults fills unset values and environment overrides.
func (c *AppConfig) applyDefaults() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.SigningKey = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("DSN"); v != "" {
		c.Persistence.DSN = v
	}

	if c.Name == "" {
		c.Name = "relink"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Env == "development" && c.Auth.SigningKey == "" {
		c.Auth.SigningKey = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.SigningMethod == "" {
		c.Auth.SigningMethod = "HS256"
	}
	if c.Auth.ContextKey == "" {
		c.Auth.ContextKey = "user"
	}
	if c.Auth.TokenExpiration == 0 {
		c.Auth.TokenExpiration = 28 * 24
	}
	if c.Auth.TokenLookup == "" {
		c.Auth.TokenLookup = "header:Authorization"
	}
	if c.Auth.AuthScheme == "" {
		c.Auth.AuthScheme = "Bearer"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.Name
	}
	if c.Auth.MaxPageSize == 0 {
		c.Auth.MaxPageSize = 100
	}
	if c.Persistence.Driver == "" {
		c.Persistence.Driver = "sqlite"
	}
	if c.Persistence.DSN == "" {
		c.Persistence.DSN = "file:relink.db?cache=shared&_fk=1"
	}
	if c.Persistence.PingTimeoutExpression == "" {
		c.Persistence.PingTimeoutExpression = "15s"
	}
	if c.Homepage.Type == "" {
		c.Homepage.Type = "message"
	}
	if c.Homepage.Message == "" {
		c.Homepage.Message = "Nothing to see here."
	}
}

// authConfig adapts AppConfig to the library Config interface.
type authConfig struct {
	app *AppConfig
}

func (c authConfig) GetSigningKey() string { return c.app.Auth.SigningKey }
func (c authConfig) GetSigningMethod() string { return c.app.Auth.SigningMethod }
func (c authConfig) GetContextKey() string { return c.app.Auth.ContextKey }
func (c authConfig) GetTokenExpiration() int { return c.app.Auth.TokenExpiration }
func (c authConfig) GetTokenLookup() string { return c.app.Auth.TokenLookup }
func (c authConfig) GetAuthScheme() string { return c.app.Auth.AuthScheme }
func (c authConfig) GetIssuer() string { return c.app.Auth.Issuer }
func (c authConfig) GetEnvironment() string { return c.app.Env }
func (c authConfig) GetMaxPageSize() int { return c.app.Auth.MaxPageSize }
