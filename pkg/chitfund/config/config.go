package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mikepea/chitfund/pkg/chitfund/calculator"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
)

// EnvPrefix is prepended to every environment override, e.g.
// CHITFUND_SERVER_PORT for server.port
const EnvPrefix = "CHITFUND"

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type StorageConfig struct {
	Driver     string      `mapstructure:"driver"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AuthConfig struct {
	JWTSecret       string          `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration   `mapstructure:"token_ttl"`
	OwnerSecretCode string          `mapstructure:"owner_secret_code"`
	AllowPhoneLogin bool            `mapstructure:"allow_phone_login"`
	SeedAdmin       SeedAdminConfig `mapstructure:"seed_admin"`
}

// SeedAdminConfig describes the built-in owner login. Leave Username empty
// to disable it.
type SeedAdminConfig struct {
	Username string `mapstructure:"username"`
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Phone    string `mapstructure:"phone"`
}

type LedgerConfig struct {
	NegativeInstallmentPolicy string `mapstructure:"negative_installment_policy"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.driver", string(kv.DriverSQLite))
	v.SetDefault("storage.sqlite_path", "chitfund.db")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "chitfund:")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.owner_secret_code", "")
	v.SetDefault("auth.allow_phone_login", true)
	v.SetDefault("auth.seed_admin.username", "")
	v.SetDefault("auth.seed_admin.id", "admin-seed")
	v.SetDefault("auth.seed_admin.name", "Administrator")
	v.SetDefault("auth.seed_admin.email", "admin@chitfund.local")
	v.SetDefault("auth.seed_admin.phone", "")
	v.SetDefault("ledger.negative_installment_policy", string(calculator.PolicyAllow))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from the optional YAML file at path and from
// CHITFUND_* environment variables, which take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would only fail later at startup
func (c *Config) Validate() error {
	switch kv.Driver(c.Storage.Driver) {
	case kv.DriverSQLite, kv.DriverRedis, kv.DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}
	if _, err := calculator.ParsePolicy(c.Ledger.NegativeInstallmentPolicy); err != nil {
		return err
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// StoreOptions converts the storage section for kv.Open
func (c *Config) StoreOptions() kv.Options {
	return kv.Options{
		Driver:     kv.Driver(c.Storage.Driver),
		SQLitePath: c.Storage.SQLitePath,
		Redis: kv.RedisOptions{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   c.Storage.Redis.Prefix,
		},
	}
}

// LedgerOptions converts the auth and ledger sections for ledger.New.
// Logger, Clock and NewID are left to ledger defaults.
func (c *Config) LedgerOptions() (ledger.Options, error) {
	policy, err := calculator.ParsePolicy(c.Ledger.NegativeInstallmentPolicy)
	if err != nil {
		return ledger.Options{}, err
	}
	return ledger.Options{
		OwnerSecretCode: c.Auth.OwnerSecretCode,
		AllowPhoneLogin: c.Auth.AllowPhoneLogin,
		NegativePolicy:  policy,
		SeedAdmin: ledger.SeedAdmin{
			Username: c.Auth.SeedAdmin.Username,
			ID:       c.Auth.SeedAdmin.ID,
			Name:     c.Auth.SeedAdmin.Name,
			Email:    c.Auth.SeedAdmin.Email,
			Phone:    c.Auth.SeedAdmin.Phone,
		},
	}, nil
}
