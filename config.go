package auth

import (
	"time"

	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Options is the concrete Config implementation. It is immutable after
// construction; components receive it once and never read ambient globals.
type Options struct {
	SigningKey           string `mapstructure:"signing_key"`
	TokenExpirationDays  int    `mapstructure:"token_expiration_days"`
	ResetTokenTTLMinutes int    `mapstructure:"reset_token_ttl_minutes"`
	CookieName           string `mapstructure:"cookie_name"`
	ResetURLBase         string `mapstructure:"reset_url_base"`
	Environment          string `mapstructure:"environment"`
}

func (o Options) GetSigningKey() string { return o.SigningKey }

func (o Options) GetTokenExpirationDays() int { return o.TokenExpirationDays }

func (o Options) GetResetTokenTTL() time.Duration {
	return time.Duration(o.ResetTokenTTLMinutes) * time.Minute
}

func (o Options) GetCookieName() string { return o.CookieName }

func (o Options) GetResetURLBase() string { return o.ResetURLBase }

func (o Options) IsProduction() bool { return o.Environment == "production" }

var _ Config = Options{}

// LoadConfig reads options from the environment (AUTH_* variables, with an
// optional .env bootstrap) and an optional auth.yml next to the binary.
func LoadConfig() (Options, error) {
	// best effort, local development only
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AUTH")
	v.AutomaticEnv()

	// keys without defaults need an explicit binding for Unmarshal to see them
	_ = v.BindEnv("signing_key")

	v.SetDefault("token_expiration_days", 90)
	v.SetDefault("reset_token_ttl_minutes", 30)
	v.SetDefault("cookie_name", DefaultCookieName)
	v.SetDefault("reset_url_base", "/api/v1/users/reset-password")
	v.SetDefault("environment", "development")

	v.SetConfigName("auth")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Options{}, errors.Wrap(err, errors.CategoryInternal, "failed to read config file")
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, errors.Wrap(err, errors.CategoryInternal, "failed to unmarshal config")
	}

	if opts.SigningKey == "" {
		return Options{}, errors.New("signing key is required", errors.CategoryValidation).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	return opts, nil
}
