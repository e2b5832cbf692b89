package models

import (
	"github.com/sethvargo/go-password/password"
	"github.com/sqlpilot/sqlpilot/internal/prompts"
)

// ConnectionProfile is a named, persistable bundle of connection credentials
// plus save/display preferences.
type ConnectionProfile struct {
	ConnectionCredentials `mapstructure:",squash" yaml:",inline"`

	ProfileName  string `mapstructure:"profileName" yaml:"profileName,omitempty" json:"profileName,omitempty"`
	SavePassword bool   `mapstructure:"savePassword" yaml:"savePassword,omitempty" json:"savePassword,omitempty"`

	// EmptyPasswordInput distinguishes "password never set" from "user
	// intentionally left the password blank".
	EmptyPasswordInput bool `mapstructure:"emptyPasswordInput" yaml:"emptyPasswordInput,omitempty" json:"emptyPasswordInput,omitempty"`
}

// IsValidProfile reports whether the profile carries enough to connect:
// a host (or connection string, which fills the host slot) and a user.
func (p *ConnectionProfile) IsValidProfile() bool {
	return (p.Host != "" || p.ConnectionString != "") && p.User != ""
}

// DisplayName returns the user-facing label for the profile.
func (p *ConnectionProfile) DisplayName() string {
	if p.ProfileName != "" {
		return p.ProfileName
	}
	if p.ConnectionString != "" {
		return p.ConnectionString
	}
	if p.DBName != "" {
		return p.Host + "/" + p.DBName
	}
	return p.Host
}

// CreateProfile creates a new profile by prompting the user for the required
// connection fields plus a display name. It returns nil when the user
// cancels or the answers do not form a valid profile.
func CreateProfile(prompter prompts.Prompter, defaults *ConnectionProfile) (*ConnectionProfile, error) {
	profile := &ConnectionProfile{}

	// When only one authentication choice exists it is applied rather than
	// asked. An unset type is treated as SQL login downstream.
	if choices := AuthenticationTypeChoices(); len(choices) == 1 {
		profile.AuthenticationType = choices[0]
	}

	questions := requiredCredentialQuestions(profile, true, true, false, defaults)
	questions = append(questions, prompts.Question{
		Kind:        prompts.KindInput,
		Name:        ProfileNameQuestionName,
		Message:     profileNamePromptMessage,
		Placeholder: profileNamePlaceholder,
		Default: func() string {
			if defaults != nil {
				return defaults.ProfileName
			}
			return ""
		}(),
		OnAnswered: func(value string) {
			// An empty answer leaves the profile unnamed; DisplayName falls
			// back to the host.
			profile.ProfileName = value
		},
	})

	answers, err := prompter.Prompt(questions, true)
	if err != nil {
		return nil, err
	}
	if answers == nil || !profile.IsValidProfile() {
		return nil, nil
	}
	return profile, nil
}

// GeneratePassword returns a strong random password suitable as a default
// answer for profile creation.
func GeneratePassword() (string, error) {
	return password.Generate(20, 4, 4, false, false)
}
