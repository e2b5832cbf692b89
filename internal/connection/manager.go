package connection

import (
	"context"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/logger"
	"github.com/sqlpilot/sqlpilot/internal/models"
	"github.com/sqlpilot/sqlpilot/internal/prompts"
)

// Connector opens a transport-level connection from a flat connection
// options mapping. Implemented by the tools-service client.
type Connector interface {
	Connect(ctx context.Context, options map[string]any) error
}

// ProfileStore is what the manager needs from profile persistence.
// *Store satisfies it.
type ProfileStore interface {
	models.ProfileStore
	GetProfiles() []models.ConnectionProfile
	AddSavedPassword(profile *models.ConnectionProfile) error
}

// Manager drives the interactive connection workflows: creating profiles,
// filling in missing credentials, and the connect-before-save gate.
type Manager struct {
	store     ProfileStore
	connector Connector
	prompter  prompts.Prompter
}

// NewManager wires the manager's collaborators explicitly; nothing is
// resolved from global state.
func NewManager(store ProfileStore, connector Connector, prompter prompts.Prompter) *Manager {
	return &Manager{store: store, connector: connector, prompter: prompter}
}

// CreateAndSaveProfile prompts for a new profile, validates it by opening a
// real connection, and saves it only after the connection succeeds. A
// failed connection attempt never reaches SaveProfile.
//
// Returns nil without error when the user cancels out of the prompts.
func (m *Manager) CreateAndSaveProfile(ctx context.Context, defaults *models.ConnectionProfile) (*models.ConnectionProfile, error) {
	profile, err := models.CreateProfile(m.prompter, defaults)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		logger.Debug("profile creation cancelled")
		return nil, nil
	}

	details := models.CreateConnectionDetails(&profile.ConnectionCredentials)
	if err := m.connector.Connect(ctx, details.Options); err != nil {
		return nil, fmt.Errorf("could not connect with the new profile: %w", err)
	}

	if err := m.store.SaveProfile(profile); err != nil {
		return nil, fmt.Errorf("connected, but the profile could not be saved: %w", err)
	}

	logger.Info("profile saved", "profile", profile.DisplayName())
	return profile, nil
}

// Connect resolves the profile's saved password, prompts for any still
// missing required fields, and opens the connection. It returns
// (false, nil) when the user cancels the prompts.
func (m *Manager) Connect(ctx context.Context, profile *models.ConnectionProfile) (bool, error) {
	// Whether the settings record held an empty password, before the secret
	// store fills it in; the persistence precedence depends on it.
	wasPasswordEmptyInConfig := profile.Password == ""

	if err := m.store.AddSavedPassword(profile); err != nil {
		logger.Warn("failed to look up saved password",
			"profile", profile.DisplayName(), "error", err)
	}

	ok, err := models.EnsureRequiredPropertiesSet(
		profile, true, false, wasPasswordEmptyInConfig, m.prompter, m.store, nil)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	details := models.CreateConnectionDetails(&profile.ConnectionCredentials)
	if err := m.connector.Connect(ctx, details.Options); err != nil {
		return false, fmt.Errorf("connection failed: %w", err)
	}
	return true, nil
}

// FindProfile returns the stored profile whose display name or profile name
// matches name.
func (m *Manager) FindProfile(name string) (*models.ConnectionProfile, bool) {
	for _, p := range m.store.GetProfiles() {
		if p.ProfileName == name || p.DisplayName() == name {
			profile := p
			return &profile, true
		}
	}
	return nil, false
}
