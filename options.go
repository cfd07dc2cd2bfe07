package bondkeeper

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"bondkeeper/domain"
)

// WithOptions applies a series of configuration functions to the app instance.
// Each option function can modify the app configuration and return an error if it fails.
func (app *App) WithOptions(options ...func(*App) error) error {
	for _, option := range options {
		err := option(app)
		if err != nil {
			return fmt.Errorf("applying option on bondkeeper : %w", err)
		}
	}
	return nil
}

// WithConfigDir configures the app to use the specified configuration directory.
// It creates the directory if it doesn't exist and initializes the configuration file using Viper.
func WithConfigDir(appConfigDir string) func(*App) error {
	return func(app *App) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				log.Println("[*] creating config dir")
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}
		// At this point, the directory exists or was created successfully
		app.ConfigDir = appConfigDir

		// VIPER
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appConfigDir)
		viper.SetDefault("first_run", true)
		viper.SetDefault("agency_name", "Bondkeeper")
		viper.SetDefault("public_base_url", "http://localhost:8080")
		viper.SetDefault("self_link_ttl_hours", 7*24)
		viper.SetDefault("stale_checkin_days", 30)
		err = viper.ReadInConfig()
		if err != nil {
			// need to check if the error is config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				// Config file is not found
				err = viper.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}
		if err := viper.Unmarshal(&app.Config); err != nil {
			return fmt.Errorf("unmarshalling config to struct : %w", err)
		}

		app.Config.viper = viper.GetViper()
		app.Config.ConfigDir = appConfigDir
		// Rewrite entire file from struct
		err = viper.WriteConfig()
		if err != nil {
			return fmt.Errorf("writing config after unmarshalling : %w", err)
		}
		return nil
	}
}

// WithRepo will take the Repository interface and close any previously
// configured repository before swapping it in.
func WithRepo(repo Repository) func(*App) error {
	return func(app *App) error {
		// First we need to check if there is a repo
		if app.Repo != nil {
			if err := app.Repo.Close(); err != nil {
				return err
			}
			app.Repo = nil
		}
		app.Repo = repo
		return nil
	}
}

// WithLogger sets the structured logger used by the app. A nil logger falls
// back to slog.Default so callers never need nil checks.
func WithLogger(logger *slog.Logger) func(*App) error {
	return func(app *App) error {
		if logger == nil {
			logger = slog.Default()
		}
		app.Logger = logger
		return nil
	}
}

// WithNotifier sets the push delivery hook invoked for each subscription.
func WithNotifier(notifier Notifier) func(*App) error {
	return func(app *App) error {
		app.Notifier = notifier
		return nil
	}
}

// WithTenant activates a tenant during construction. A zero id activates the
// first configured tenant. Requires WithRepo to be applied first.
func WithTenant(id uuid.UUID) func(*App) error {
	return func(app *App) error {
		return app.ActivateTenant(id)
	}
}

// WithCheckInHandler takes a handler function that will be executed on each self check-in
func WithCheckInHandler(handler func(checkIn *domain.CheckIn) error) func(*App) error {
	return func(app *App) error {
		if app.OnCheckIn != nil {
			return fmt.Errorf("app already has a check-in handler defined")
		}
		app.OnCheckIn = handler
		return nil
	}
}

// AUDIT OPTIONS
func AuditWithContext(context map[string]any) func(entry *domain.AuditEntry) error {
	return func(entry *domain.AuditEntry) error {
		entry.Context = context
		return nil
	}
}

// AUDIT OPTIONS
func AuditWithPerson(id uuid.UUID) func(entry *domain.AuditEntry) error {
	return func(entry *domain.AuditEntry) error {
		personID := id
		entry.PersonID = &personID
		return nil
	}
}
