package models

import (
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/logger"
	"github.com/sqlpilot/sqlpilot/internal/prompts"
)

// Question names. Tests and scripted answer sets key off these.
const (
	ServerQuestionName      = "server"
	DatabaseQuestionName    = "database"
	UsernameQuestionName    = "username"
	PasswordQuestionName    = "password"
	ProfileNameQuestionName = "profileName"
)

// Prompt messages shown for each question.
const (
	serverPromptMessage      = "Server name or connection string"
	databasePromptMessage    = "Database name"
	usernamePromptMessage    = "User name"
	passwordPromptMessage    = "Password"
	profileNamePromptMessage = "Profile name"

	serverPlaceholder      = "hostname or host,port"
	databasePlaceholder    = "database to connect to (optional)"
	usernamePlaceholder    = "database user"
	profileNamePlaceholder = "display name for this profile (optional)"

	msgIsRequired = " is required."
)

// connectionStringKeys mark a server answer as a raw connection string rather
// than a host name. Matching is case-insensitive substring.
var connectionStringKeys = []string{"data source=", "server=", "address=", "addr=", "network address="}

// ProfileStore persists connection profiles. Implemented by
// connection.Store; tests substitute recording doubles.
type ProfileStore interface {
	SaveProfile(profile *ConnectionProfile) error
	RemoveProfile(profile *ConnectionProfile) (bool, error)
}

// requiredCredentialQuestions builds the ordered question sequence that
// fills in the target's missing required fields. The order is fixed:
// server, database, username, password. Visibility predicates decide which
// of them are actually asked.
//
// The questions close over target and mutate it as answers arrive; target is
// owned by the calling flow for the duration of the prompt.
func requiredCredentialQuestions(target *ConnectionProfile, isProfile, promptForDBName, isPasswordRequired bool, defaults *ConnectionProfile) []prompts.Question {
	connectionStringSet := func() bool { return target.ConnectionString != "" }

	defaultValue := func(get func(*ConnectionProfile) string) string {
		if defaults == nil {
			return ""
		}
		return get(defaults)
	}

	return []prompts.Question{
		// Server or connection string must be present.
		{
			Kind:        prompts.KindInput,
			Name:        ServerQuestionName,
			Message:     serverPromptMessage,
			Placeholder: serverPlaceholder,
			Default:     defaultValue(func(p *ConnectionProfile) string { return p.Host }),
			ShouldPrompt: func(map[string]string) bool {
				return target.Host == ""
			},
			Validate: func(value string) string {
				return validateRequiredString(serverPromptMessage, value)
			},
			OnAnswered: func(value string) {
				applyServerOrConnectionString(target, value)
			},
		},
		// Database name is optional; the prompt itself is opt-in.
		{
			Kind:        prompts.KindInput,
			Name:        DatabaseQuestionName,
			Message:     databasePromptMessage,
			Placeholder: databasePlaceholder,
			Default:     defaultValue(func(p *ConnectionProfile) string { return p.DBName }),
			ShouldPrompt: func(map[string]string) bool {
				return !connectionStringSet() && promptForDBName
			},
			OnAnswered: func(value string) {
				target.DBName = value
			},
		},
		// Username must be present.
		{
			Kind:        prompts.KindInput,
			Name:        UsernameQuestionName,
			Message:     usernamePromptMessage,
			Placeholder: usernamePlaceholder,
			Default:     defaultValue(func(p *ConnectionProfile) string { return p.User }),
			Validate: func(value string) string {
				return validateRequiredString(usernamePromptMessage, value)
			},
			OnAnswered: func(value string) {
				target.User = value
			},
		},
		// Password may or may not be necessary.
		{
			Kind:    prompts.KindPassword,
			Name:    PasswordQuestionName,
			Message: passwordPromptMessage,
			Default: defaultValue(func(p *ConnectionProfile) string { return p.Password }),
			ShouldPrompt: func(map[string]string) bool {
				return !connectionStringSet() && shouldPromptForPassword(target)
			},
			Validate: func(value string) string {
				if isPasswordRequired {
					return validateRequiredString(passwordPromptMessage, value)
				}
				return ""
			},
			OnAnswered: func(value string) {
				target.Password = value
				if isProfile {
					target.EmptyPasswordInput = value == ""
				}
			},
		},
	}
}

// applyServerOrConnectionString classifies the server answer. A value
// containing a connection-string key is stored verbatim as the connection
// string; anything else is a host name.
func applyServerOrConnectionString(target *ConnectionProfile, value string) {
	lower := strings.ToLower(value)
	for _, key := range connectionStringKeys {
		if strings.Contains(lower, key) {
			target.ConnectionString = value
			return
		}
	}
	target.Host = value
}

// shouldPromptForPassword: prompt when the password is empty and the
// credential is password based, unless the stored profile already made the
// deliberate choice to save an empty password.
func shouldPromptForPassword(target *ConnectionProfile) bool {
	isSavedEmptyPassword := target.EmptyPasswordInput && target.SavePassword

	return target.Password == "" &&
		IsPasswordBasedCredential(&target.ConnectionCredentials) &&
		!isSavedEmptyPassword
}

// validateRequiredString returns a message when value is empty, else "".
func validateRequiredString(property, value string) string {
	if value == "" {
		return property + msgIsRequired
	}
	return ""
}

// EnsureRequiredPropertiesSet prompts for any required connection fields
// missing from target, then reconciles persisted state when the target is a
// profile. It returns (false, nil) when the user cancels; no persistence
// side effect occurs in that case.
//
// When isProfile is true and answers were obtained, the stored record is
// removed and re-saved (never updated in place) if either the user made a
// deliberate secret-save choice or any of the authentication type, the
// save-password flag, or the password changed during this prompt session.
// Persistence happens before returning, but failures are logged and
// swallowed: the caller never observes them.
func EnsureRequiredPropertiesSet(
	target *ConnectionProfile,
	isProfile bool,
	isPasswordRequired bool,
	wasPasswordEmptyInConfig bool,
	prompter prompts.Prompter,
	store ProfileStore,
	defaults *ConnectionProfile,
) (bool, error) {
	questions := requiredCredentialQuestions(target, isProfile, false, isPasswordRequired, defaults)
	unprocessed := *target

	answers, err := prompter.Prompt(questions, false)
	if err != nil {
		return false, err
	}
	if answers == nil {
		return false, nil
	}

	if isProfile && store != nil {
		// The user set save-password and either the password was not already
		// empty in the stored config, or they purposefully re-entered an
		// empty one: move the secret to the credential store.
		deliberateSecretSave := target.SavePassword &&
			(!wasPasswordEmptyInConfig || target.EmptyPasswordInput)

		// Or the answers changed something the stored record carries.
		changed := target.AuthenticationType != unprocessed.AuthenticationType ||
			target.SavePassword != unprocessed.SavePassword ||
			target.Password != unprocessed.Password

		if deliberateSecretSave || changed {
			if _, err := store.RemoveProfile(target); err != nil {
				logger.Warn("failed to remove profile before resave",
					"profile", target.DisplayName(), "error", err)
			}
			if err := store.SaveProfile(target); err != nil {
				logger.Warn("failed to save profile",
					"profile", target.DisplayName(), "error", err)
			}
		}
	}

	return true, nil
}
