// Package config provides Viper-based configuration loading for the battle
// runner and server.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SKIRMISH_TELNET_PORT.
const EnvPrefix = "SKIRMISH"

// DatabaseConfig holds PostgreSQL connection settings for the survivor store.
type DatabaseConfig struct {
	// Enabled turns survivor persistence on. When false the party fixture's
	// survivor list is used as-is and nothing is written back.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection URL. User and password are escaped.
//
// Precondition: Host, Port, User, and Name must be non-empty.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxSessions caps concurrent battles; 0 means unlimited.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the "host:port" listen address.
func (t TelnetConfig) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig selects the content a session plays and how it is shown.
type BattleConfig struct {
	// ContentDir holds battles/, parties/, levels/ and scripts/.
	ContentDir string `mapstructure:"content_dir"`
	// Battle is the id of the battle definition to run.
	Battle string `mapstructure:"battle"`
	// Party is the party fixture file name under ContentDir/parties.
	Party string `mapstructure:"party"`
	// PartyID keys the persisted survivor list.
	PartyID    string `mapstructure:"party_id"`
	ViewWidth  int    `mapstructure:"view_width"`
	ViewHeight int    `mapstructure:"view_height"`
	// Trace enables the debug-level combat trace.
	Trace      bool `mapstructure:"trace"`
	ScrollStep int  `mapstructure:"scroll_step"`
	// ScriptLimit is the Lua instruction budget per hook call; 0 uses the default.
	ScriptLimit int `mapstructure:"script_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Battle   BattleConfig   `mapstructure:"battle"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
	sslModes   = []string{"disable", "require", "verify-ca", "verify-full"}
)

// problems collects the violations found in one section.
type problems []string

func (p *problems) require(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New(strings.Join(p, "; "))
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or one error naming
// every violation.
func (c Config) Validate() error {
	var all problems
	for _, err := range []error{
		c.Logging.Validate(),
		c.Database.Validate(),
		c.Telnet.Validate(),
		c.Battle.Validate(),
	} {
		if err != nil {
			all = append(all, err.Error())
		}
	}
	if err := all.err(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Validate checks the logging section.
func (l LoggingConfig) Validate() error {
	var p problems
	p.require(slices.Contains(logLevels, l.Level), "logging.level must be one of %v, got %q", logLevels, l.Level)
	p.require(slices.Contains(logFormats, l.Format), "logging.format must be one of %v, got %q", logFormats, l.Format)
	return p.err()
}

// Validate checks the database section. A disabled database is not checked.
func (d DatabaseConfig) Validate() error {
	if !d.Enabled {
		return nil
	}
	var p problems
	p.require(d.Host != "", "database.host must not be empty")
	p.require(d.Port >= 1 && d.Port <= 65535, "database.port must be 1-65535, got %d", d.Port)
	p.require(d.User != "", "database.user must not be empty")
	p.require(d.Name != "", "database.name must not be empty")
	p.require(slices.Contains(sslModes, d.SSLMode), "database.sslmode must be one of %v, got %q", sslModes, d.SSLMode)
	p.require(d.MaxConns >= 1, "database.max_conns must be >= 1, got %d", d.MaxConns)
	p.require(d.MinConns >= 0, "database.min_conns must be >= 0, got %d", d.MinConns)
	p.require(d.MinConns <= d.MaxConns, "database.min_conns must not exceed database.max_conns")
	return p.err()
}

// Validate checks the telnet section.
func (t TelnetConfig) Validate() error {
	var p problems
	p.require(t.Port >= 1 && t.Port <= 65535, "telnet.port must be 1-65535, got %d", t.Port)
	p.require(t.ReadTimeout >= 0, "telnet.read_timeout must not be negative")
	p.require(t.WriteTimeout >= 0, "telnet.write_timeout must not be negative")
	p.require(t.MaxSessions >= 0, "telnet.max_sessions must not be negative")
	return p.err()
}

// Validate checks the battle section.
func (b BattleConfig) Validate() error {
	var p problems
	p.require(b.ContentDir != "", "battle.content_dir must not be empty")
	p.require(b.Battle != "", "battle.battle must not be empty")
	p.require(b.Party != "", "battle.party must not be empty")
	p.require(b.ViewWidth >= 1 && b.ViewHeight >= 1,
		"battle.view_width and battle.view_height must be >= 1, got %dx%d", b.ViewWidth, b.ViewHeight)
	p.require(b.ScrollStep >= 1, "battle.scroll_step must be >= 1, got %d", b.ScrollStep)
	p.require(b.ScriptLimit >= 0, "battle.script_limit must not be negative")
	return p.err()
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and SKIRMISH_ environment
// overrides installed, for callers that add their own sources.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.max_sessions", 0)

	v.SetDefault("battle.content_dir", "content")
	v.SetDefault("battle.battle", "cellar")
	v.SetDefault("battle.party", "adventurers.yaml")
	v.SetDefault("battle.party_id", "default")
	v.SetDefault("battle.view_width", 16)
	v.SetDefault("battle.view_height", 10)
	v.SetDefault("battle.trace", false)
	v.SetDefault("battle.scroll_step", 1)
	v.SetDefault("battle.script_limit", 0)
}
