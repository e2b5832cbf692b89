// Package config reads and writes the layered settings files that hold
// connection profiles. User-scope settings live under
// ~/.config/sqlpilot/settings.yml; a workspace-local .sqlpilot/settings.yml
// is merged over them. Writes always land in the user-scope file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sqlpilot/sqlpilot/internal/logger"
	"github.com/sqlpilot/sqlpilot/internal/models"
)

const (
	// ConnectionsArrayKey is the primary profile list in the settings file.
	ConnectionsArrayKey = "connections"
	// LegacyConnectionsKey is the resource-scoped key older releases wrote.
	// Entries found there are appended after the primary list.
	LegacyConnectionsKey = "sqlpilot.connections"

	settingsFileName = "settings.yml"
)

// Store reads profiles from the merged configuration scopes and writes
// profile changes back to the user-scope settings file.
type Store struct {
	v             *viper.Viper
	userPath      string
	workspacePath string
}

// NewStore opens the default settings locations.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return NewStoreAt(filepath.Join(home, ".config", "sqlpilot"), ".sqlpilot")
}

// NewStoreAt opens settings files under explicit user and workspace
// directories. Missing files are treated as empty settings.
func NewStoreAt(userDir, workspaceDir string) (*Store, error) {
	s := &Store{
		userPath:      filepath.Join(userDir, settingsFileName),
		workspacePath: filepath.Join(workspaceDir, settingsFileName),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload rebuilds the merged view: user scope first, workspace scope merged
// over it, environment variables (SQLPILOT_*) over both.
func (s *Store) reload() error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SQLPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(s.userPath); err == nil {
		v.SetConfigFile(s.userPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading settings file %s: %w", s.userPath, err)
		}
	}
	if _, err := os.Stat(s.workspacePath); err == nil {
		v.SetConfigFile(s.workspacePath)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("error reading workspace settings %s: %w", s.workspacePath, err)
		}
	}

	s.v = v
	return nil
}

// GetProfilesFromSettings returns the profiles from the primary connections
// array followed by the entries under the legacy resource-scoped key.
// Insertion order within each source is preserved and nothing is
// deduplicated: a record present in both scopes yields two entries. Missing
// keys read as empty lists.
//
// Legacy-scope records pass through a validated decode; records that do not
// decode into the profile shape are skipped with a logged diagnostic.
func (s *Store) GetProfilesFromSettings() []models.ConnectionProfile {
	var profiles []models.ConnectionProfile
	if err := s.v.UnmarshalKey(ConnectionsArrayKey, &profiles); err != nil {
		logger.Warn("ignoring malformed connections array", "error", err)
		profiles = nil
	}

	raw := s.v.Get(LegacyConnectionsKey)
	if raw == nil {
		return profiles
	}
	entries, ok := raw.([]any)
	if !ok {
		logger.Warn("legacy connections key is not a list", "key", LegacyConnectionsKey)
		return profiles
	}
	for i, entry := range entries {
		var p models.ConnectionProfile
		if err := mapstructure.Decode(entry, &p); err != nil {
			logger.Warn("skipping malformed legacy connection entry",
				"key", LegacyConnectionsKey, "index", i, "error", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}

// SaveProfile appends the profile record to the connections array in the
// user settings file.
func (s *Store) SaveProfile(profile *models.ConnectionProfile) error {
	settings, err := s.loadUserSettings()
	if err != nil {
		return err
	}

	record, err := profileToRecord(profile)
	if err != nil {
		return err
	}

	list, _ := settings[ConnectionsArrayKey].([]any)
	settings[ConnectionsArrayKey] = append(list, record)

	return s.writeUserSettings(settings)
}

// RemoveProfile deletes every record in the user settings file matching the
// profile's identity. It reports whether anything was removed.
func (s *Store) RemoveProfile(profile *models.ConnectionProfile) (bool, error) {
	settings, err := s.loadUserSettings()
	if err != nil {
		return false, err
	}

	list, _ := settings[ConnectionsArrayKey].([]any)
	if len(list) == 0 {
		return false, nil
	}

	kept := make([]any, 0, len(list))
	removed := false
	for _, entry := range list {
		var existing models.ConnectionProfile
		if err := mapstructure.Decode(entry, &existing); err != nil {
			kept = append(kept, entry)
			continue
		}
		if sameProfileIdentity(&existing, profile) {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}

	if !removed {
		return false, nil
	}

	settings[ConnectionsArrayKey] = kept
	if err := s.writeUserSettings(settings); err != nil {
		return false, err
	}
	return true, nil
}

// UserSettingsPath returns the file profile writes land in.
func (s *Store) UserSettingsPath() string {
	return s.userPath
}

// sameProfileIdentity reports whether two records describe the same stored
// profile.
func sameProfileIdentity(a, b *models.ConnectionProfile) bool {
	return a.Host == b.Host &&
		a.DBName == b.DBName &&
		a.User == b.User &&
		a.ProfileName == b.ProfileName &&
		a.ConnectionString == b.ConnectionString
}

// profileToRecord converts a profile into the plain map shape stored in the
// settings file, dropping zero-valued fields.
func profileToRecord(profile *models.ConnectionProfile) (map[string]any, error) {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	var record map[string]any
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return record, nil
}

// loadUserSettings reads the user-scope settings file into a generic map so
// unrelated keys survive rewrites. A missing file reads as empty settings.
func (s *Store) loadUserSettings() (map[string]any, error) {
	data, err := os.ReadFile(s.userPath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("error reading settings file %s: %w", s.userPath, err)
	}

	var settings map[string]any
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("error parsing settings file %s: %w", s.userPath, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

// writeUserSettings rewrites the user-scope settings file and refreshes the
// merged view.
func (s *Store) writeUserSettings(settings map[string]any) error {
	dir := filepath.Dir(s.userPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(s.userPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.userPath, err)
	}

	return s.reload()
}
