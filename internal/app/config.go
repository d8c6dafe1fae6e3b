package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config represents the runtime configuration for the AgriServe backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Email       EmailConfig       `mapstructure:"email"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	JWT    JWTSettings    `mapstructure:"jwt"`
	Google GoogleSettings `mapstructure:"google"`
	OTP    OTPSettings    `mapstructure:"otp"`
}

// JWTSettings configures JWT access tokens. The signing secret has no default
// on purpose; startup fails when it is absent.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// GoogleSettings configures Google federated login. The client ID has no
// default; startup fails when it is absent.
type GoogleSettings struct {
	ClientID string `mapstructure:"client_id"`
	Issuer   string `mapstructure:"issuer"`
}

// OTPSettings controls one-time code issuance.
type OTPSettings struct {
	Expiry           time.Duration `mapstructure:"expiry"`
	ExposeInResponse bool          `mapstructure:"expose_in_response"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MaintenanceConfig toggles background housekeeping jobs.
type MaintenanceConfig struct {
	OTPPurge OTPPurgeConfig `mapstructure:"otp_purge"`
}

// OTPPurgeConfig controls the periodic sweep of expired one-time codes.
type OTPPurgeConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("AGRISERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate reports every missing required setting at once so operators can fix
// a broken deployment in a single pass.
func (c *Config) Validate() error {
	var err error

	if c.Auth.JWT.Secret == "" {
		err = multierr.Append(err, errors.New("config: auth.jwt.secret is required"))
	}
	if c.Auth.Google.ClientID == "" {
		err = multierr.Append(err, errors.New("config: auth.google.client_id is required"))
	}
	if c.Auth.OTP.Expiry <= 0 {
		err = multierr.Append(err, errors.New("config: auth.otp.expiry must be positive"))
	}
	if c.Maintenance.OTPPurge.Enabled && c.Maintenance.OTPPurge.Schedule == "" {
		err = multierr.Append(err, errors.New("config: maintenance.otp_purge.schedule is required when the purge job is enabled"))
	}

	return err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/agriserve.sqlite")

	v.SetDefault("auth.jwt.issuer", "agriserve")
	v.SetDefault("auth.jwt.access_token_ttl", "30m")
	v.SetDefault("auth.google.issuer", "https://accounts.google.com")
	v.SetDefault("auth.otp.expiry", "5m")
	v.SetDefault("auth.otp.expose_in_response", true)

	v.SetDefault("maintenance.otp_purge.enabled", false)
	v.SetDefault("maintenance.otp_purge.schedule", "@hourly")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
