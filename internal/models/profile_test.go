package models

import (
	"testing"

	"github.com/sqlpilot/sqlpilot/internal/prompts"
)

func TestCreateProfileFullAnswers(t *testing.T) {
	prompter := &prompts.Scripted{Answers: map[string]string{
		ServerQuestionName:      "my-server",
		DatabaseQuestionName:    "my_db",
		UsernameQuestionName:    "sa",
		PasswordQuestionName:    "12345678",
		ProfileNameQuestionName: "",
	}}

	profile, err := CreateProfile(prompter, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}

	if profile.Host != "my-server" {
		t.Errorf("expected host my-server, got %q", profile.Host)
	}
	if profile.DBName != "my_db" {
		t.Errorf("expected dbname my_db, got %q", profile.DBName)
	}
	if profile.User != "sa" {
		t.Errorf("expected user sa, got %q", profile.User)
	}
	if profile.Password != "12345678" {
		t.Errorf("expected password applied, got %q", profile.Password)
	}
	if profile.ProfileName != "" {
		t.Errorf("empty profile name answer should leave the profile unnamed, got %q", profile.ProfileName)
	}
	if profile.EmptyPasswordInput {
		t.Error("non-empty password must not mark EmptyPasswordInput")
	}
}

func TestCreateProfileEmptyPasswordMarksInput(t *testing.T) {
	prompter := &prompts.Scripted{Answers: map[string]string{
		ServerQuestionName:      "my-server",
		DatabaseQuestionName:    "",
		UsernameQuestionName:    "sa",
		PasswordQuestionName:    "",
		ProfileNameQuestionName: "dev",
	}}

	profile, err := CreateProfile(prompter, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}
	if !profile.EmptyPasswordInput {
		t.Error("empty password answer in the profile flow must set EmptyPasswordInput")
	}
	if profile.ProfileName != "dev" {
		t.Errorf("expected profile name dev, got %q", profile.ProfileName)
	}
}

func TestCreateProfileCancelled(t *testing.T) {
	prompter := &prompts.Scripted{} // nil Answers simulates cancel

	profile, err := CreateProfile(prompter, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile != nil {
		t.Error("cancelled prompt should produce no profile")
	}
}

func TestCreateProfileAsksProfileNameLast(t *testing.T) {
	prompter := &prompts.Scripted{Answers: map[string]string{
		ServerQuestionName:      "my-server",
		DatabaseQuestionName:    "db",
		UsernameQuestionName:    "sa",
		PasswordQuestionName:    "pw",
		ProfileNameQuestionName: "prod",
	}}

	if _, err := CreateProfile(prompter, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(prompter.Prompted) == 0 {
		t.Fatal("expected questions to be asked")
	}
	if last := prompter.Prompted[len(prompter.Prompted)-1]; last != ProfileNameQuestionName {
		t.Errorf("profile name should be the final question, got %s", last)
	}
}

func TestCreateProfileUsesDefaults(t *testing.T) {
	defaults := &ConnectionProfile{}
	defaults.Host = "default-host"
	defaults.User = "default-user"
	defaults.Password = "generated-pw"

	// No scripted answers for server/username/password: each falls back to
	// its default.
	prompter := &prompts.Scripted{Answers: map[string]string{
		DatabaseQuestionName:    "",
		ProfileNameQuestionName: "",
	}}

	profile, err := CreateProfile(prompter, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}
	if profile.Host != "default-host" {
		t.Errorf("expected default host, got %q", profile.Host)
	}
	if profile.User != "default-user" {
		t.Errorf("expected default user, got %q", profile.User)
	}
	if profile.Password != "generated-pw" {
		t.Errorf("expected default password, got %q", profile.Password)
	}
}

func TestIsValidProfile(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ConnectionProfile)
		want   bool
	}{
		{"host and user", func(p *ConnectionProfile) {
			p.Host = "h"
			p.User = "u"
		}, true},
		{"connection string and user", func(p *ConnectionProfile) {
			p.ConnectionString = "server=h"
			p.User = "u"
		}, true},
		{"missing user", func(p *ConnectionProfile) { p.Host = "h" }, false},
		{"missing host", func(p *ConnectionProfile) { p.User = "u" }, false},
		{"empty", func(p *ConnectionProfile) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ConnectionProfile{}
			tt.mutate(p)
			if got := p.IsValidProfile(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ConnectionProfile)
		want   string
	}{
		{"profile name wins", func(p *ConnectionProfile) {
			p.ProfileName = "prod"
			p.Host = "h"
		}, "prod"},
		{"connection string next", func(p *ConnectionProfile) {
			p.ConnectionString = "server=h"
			p.Host = "h"
		}, "server=h"},
		{"host and dbname", func(p *ConnectionProfile) {
			p.Host = "h"
			p.DBName = "d"
		}, "h/d"},
		{"host only", func(p *ConnectionProfile) { p.Host = "h" }, "h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ConnectionProfile{}
			tt.mutate(p)
			if got := p.DisplayName(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	first, err := GeneratePassword()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 20 {
		t.Errorf("expected 20 characters, got %d", len(first))
	}

	second, err := GeneratePassword()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("consecutive generated passwords should differ")
	}
}
