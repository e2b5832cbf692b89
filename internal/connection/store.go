// Package connection composes the settings-file profile store and the
// secret store into one profile persistence surface, and gates profile
// saves behind a successful connection attempt.
package connection

import (
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/logger"
	"github.com/sqlpilot/sqlpilot/internal/models"
	"github.com/sqlpilot/sqlpilot/internal/secrets"
)

const credentialsPrefix = "sqlpilot"

// FormatCredentialID derives the secret-store key for a profile identity.
func FormatCredentialID(profile *models.ConnectionProfile) string {
	return fmt.Sprintf("%s|itemtype:Profile|host:%s|db:%s|user:%s|profile:%s",
		credentialsPrefix, profile.Host, profile.DBName, profile.User, profile.ProfileName)
}

// SettingsStore is the plaintext-settings side of profile persistence,
// implemented by config.Store.
type SettingsStore interface {
	GetProfilesFromSettings() []models.ConnectionProfile
	SaveProfile(profile *models.ConnectionProfile) error
	RemoveProfile(profile *models.ConnectionProfile) (bool, error)
}

// Store keeps the settings file and the secret store consistent: a profile
// saved with SavePassword holds its password only in the secret store, and
// removal deletes both.
type Store struct {
	settings SettingsStore
	secrets  secrets.Store
}

// NewStore wires a settings store and a secret store together.
func NewStore(settings SettingsStore, secretStore secrets.Store) *Store {
	return &Store{settings: settings, secrets: secretStore}
}

// GetProfiles returns all stored profiles, passwords unresolved.
func (s *Store) GetProfiles() []models.ConnectionProfile {
	return s.settings.GetProfilesFromSettings()
}

// SaveProfile persists the profile. When SavePassword is set, the password
// (including a deliberately empty one) moves to the secret store and the
// settings record is written without it.
func (s *Store) SaveProfile(profile *models.ConnectionProfile) error {
	record := *profile
	if profile.SavePassword {
		if err := s.secrets.Set(FormatCredentialID(profile), profile.Password); err != nil {
			return fmt.Errorf("failed to store password for %s: %w", profile.DisplayName(), err)
		}
		record.Password = ""
	}
	return s.settings.SaveProfile(&record)
}

// RemoveProfile deletes the settings record and its stored secret. The
// secret delete is best-effort once the record is gone.
func (s *Store) RemoveProfile(profile *models.ConnectionProfile) (bool, error) {
	removed, err := s.settings.RemoveProfile(profile)
	if err != nil {
		return false, err
	}
	if removed {
		if err := s.secrets.Delete(FormatCredentialID(profile)); err != nil {
			logger.Warn("failed to delete stored password",
				"profile", profile.DisplayName(), "error", err)
		}
	}
	return removed, nil
}

// AddSavedPassword fills the profile's password from the secret store when
// the profile saved it there and no password is set yet.
func (s *Store) AddSavedPassword(profile *models.ConnectionProfile) error {
	if profile.Password != "" || !profile.SavePassword {
		return nil
	}
	secret, ok, err := s.secrets.Get(FormatCredentialID(profile))
	if err != nil {
		return err
	}
	if ok {
		profile.Password = secret
	}
	return nil
}
