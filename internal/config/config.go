package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabaseURL                   string   `mapstructure:"DATABASE_URL"`
	AppEnv                        string   `mapstructure:"APP_ENV"`
	TimeZone                      string   `mapstructure:"TIME_ZONE"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	OAuthClientID                 string   `mapstructure:"OAUTH_CLIENT_ID"`
	OAuthClientSecret             string   `mapstructure:"OAUTH_CLIENT_SECRET"`
	OAuthRedirectURL              string   `mapstructure:"OAUTH_REDIRECT_URL"`
	OAuthAuthURL                  string   `mapstructure:"OAUTH_AUTH_URL"`
	OAuthTokenURL                 string   `mapstructure:"OAUTH_TOKEN_URL"`
	OAuthUserInfoURL              string   `mapstructure:"OAUTH_USERINFO_URL"`
	FrontendURL                   string   `mapstructure:"FRONTEND_URL"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	StaffEmails                   []string `mapstructure:"STAFF_EMAILS"`
	MigrateOnStart                bool     `mapstructure:"MIGRATE_ON_START"`
}

// LoadConfig reads the environment, after loading a .env file if one exists.
func LoadConfig() (*Config, error) {
	// a missing .env file is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "sqlite://ausbildung.db")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("TIME_ZONE", "Europe/Zurich")
	v.SetDefault("OAUTH_REDIRECT_URL", "http://127.0.0.1:8080/auth/callback")
	v.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000/")
	v.SetDefault("ENABLE_CORS", false)
	v.SetDefault("STAFF_EMAILS", []string{})
	v.SetDefault("MIGRATE_ON_START", false)

	for _, key := range []string{
		"JWT_SECRET",
		"OAUTH_CLIENT_ID",
		"OAUTH_CLIENT_SECRET",
		"OAUTH_AUTH_URL",
		"OAUTH_TOKEN_URL",
		"OAUTH_USERINFO_URL",
		"DISCORD_BOT_TOKEN",
		"DISCORD_NOTIFICATIONS_CHANNEL_ID",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("viper.BindEnv(%s) -> %w", key, err)
		}
	}

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config -> %w", err)
	}
	config.StaffEmails = splitList(config.StaffEmails)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// splitList accepts both a proper list and a single comma separated value,
// which is what an environment variable yields.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, strings.ToLower(part))
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.DatabaseURL, "sqlite://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		errs = append(errs, fmt.Errorf("DATABASE_URL: unsupported scheme in %q", c.DatabaseURL))
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("TIME_ZONE: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the zone in which "today" is evaluated.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsStaffEmail reports whether email is listed in STAFF_EMAILS.
func (c *Config) IsStaffEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, s := range c.StaffEmails {
		if s == email {
			return true
		}
	}
	return false
}
