package bondkeeper

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

// Config is the agency configuration persisted in the config directory
// (separate from any GUI configuration).
type Config struct {
	viper            *viper.Viper
	ConfigDir        string `mapstructure:"config_dir"`          // Current config dir
	FirstRun         bool   `mapstructure:"first_run"`           // True until the embedding application finishes onboarding
	AgencyName       string `mapstructure:"agency_name"`         // Display name used when creating the first tenant
	PublicBaseURL    string `mapstructure:"public_base_url"`     // Base URL self check-in links are built against
	SelfLinkTTLHours int    `mapstructure:"self_link_ttl_hours"` // Lifetime of a self check-in link
	StaleCheckInDays int    `mapstructure:"stale_checkin_days"`  // Days without a check-in before a person counts as missed
}

// SetPublicBaseURL validates and persists the base URL used for self
// check-in links.
func (cfg *Config) SetPublicBaseURL(baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid base url %q", baseURL)
	}
	cfg.PublicBaseURL = baseURL
	cfg.viper.Set("public_base_url", cfg.PublicBaseURL)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// SetAgencyName persists the agency display name.
func (cfg *Config) SetAgencyName(name string) error {
	cfg.AgencyName = name
	cfg.viper.Set("agency_name", cfg.AgencyName)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// CompleteFirstRun clears the first-run flag after onboarding.
func (cfg *Config) CompleteFirstRun() error {
	cfg.FirstRun = false
	cfg.viper.Set("first_run", false)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
