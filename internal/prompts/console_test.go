package prompts

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsolePromptReadsAnswersInOrder(t *testing.T) {
	in := strings.NewReader("db.example.com\napp\n")
	var out bytes.Buffer
	c := NewConsoleWith(in, &out)

	questions := []Question{
		{Kind: KindInput, Name: "server", Message: "Server"},
		{Kind: KindInput, Name: "user", Message: "User"},
	}

	answers, err := c.Prompt(questions, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answers["server"] != "db.example.com" {
		t.Errorf("expected server answer, got %q", answers["server"])
	}
	if answers["user"] != "app" {
		t.Errorf("expected user answer, got %q", answers["user"])
	}
}

func TestConsolePromptSkipsHiddenQuestions(t *testing.T) {
	in := strings.NewReader("only-answer\n")
	var out bytes.Buffer
	c := NewConsoleWith(in, &out)

	var applied []string
	questions := []Question{
		{
			Kind: KindInput, Name: "hidden", Message: "Hidden",
			ShouldPrompt: func(map[string]string) bool { return false },
			OnAnswered:   func(string) { applied = append(applied, "hidden") },
		},
		{
			Kind: KindInput, Name: "visible", Message: "Visible",
			OnAnswered: func(string) { applied = append(applied, "visible") },
		},
	}

	answers, err := c.Prompt(questions, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := answers["hidden"]; ok {
		t.Error("hidden question should not be answered")
	}
	if len(applied) != 1 || applied[0] != "visible" {
		t.Errorf("expected only the visible question applied, got %v", applied)
	}
}

func TestConsolePromptReasksOnValidationFailure(t *testing.T) {
	in := strings.NewReader("\nfinally\n")
	var out bytes.Buffer
	c := NewConsoleWith(in, &out)

	questions := []Question{{
		Kind: KindInput, Name: "required", Message: "Required",
		Validate: func(value string) string {
			if value == "" {
				return "Required is required."
			}
			return ""
		},
	}}

	answers, err := c.Prompt(questions, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answers["required"] != "finally" {
		t.Errorf("expected re-asked answer, got %q", answers["required"])
	}
	if !strings.Contains(out.String(), "Required is required.") {
		t.Error("validation message should be shown")
	}
}

func TestConsolePromptEmptyAnswerFallsBackToDefault(t *testing.T) {
	in := strings.NewReader("\n")
	var out bytes.Buffer
	c := NewConsoleWith(in, &out)

	questions := []Question{{Kind: KindInput, Name: "db", Message: "Database", Default: "postgres"}}

	answers, err := c.Prompt(questions, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answers["db"] != "postgres" {
		t.Errorf("expected default, got %q", answers["db"])
	}
}

func TestConsolePromptEOFCancels(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	c := NewConsoleWith(in, &out)

	questions := []Question{{Kind: KindInput, Name: "server", Message: "Server"}}

	answers, err := c.Prompt(questions, false)
	if err != nil {
		t.Fatalf("cancel must not be an error, got: %v", err)
	}
	if answers != nil {
		t.Errorf("cancel should yield a nil answer map, got %v", answers)
	}
}

func TestConsolePromptShowsDefaultAsHint(t *testing.T) {
	in := strings.NewReader("\n")
	var out bytes.Buffer
	c := NewConsoleWith(in, &out)

	questions := []Question{{
		Kind: KindInput, Name: "db", Message: "Database",
		Placeholder: "optional", Default: "postgres",
	}}

	if _, err := c.Prompt(questions, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "[postgres]") {
		t.Errorf("default should be shown as the hint, got %q", out.String())
	}
}

func TestScriptedPromptCancel(t *testing.T) {
	s := &Scripted{}
	answers, err := s.Prompt([]Question{{Name: "q"}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answers != nil {
		t.Error("nil answer set should cancel")
	}
}

func TestScriptedPromptValidationError(t *testing.T) {
	s := &Scripted{Answers: map[string]string{"q": ""}}
	questions := []Question{{
		Name: "q",
		Validate: func(value string) string {
			if value == "" {
				return "q is required."
			}
			return ""
		},
	}}

	if _, err := s.Prompt(questions, false); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestScriptedPromptRecordsVisibleQuestions(t *testing.T) {
	s := &Scripted{Answers: map[string]string{"b": "2"}}
	questions := []Question{
		{Name: "a", ShouldPrompt: func(map[string]string) bool { return false }},
		{Name: "b"},
	}

	if _, err := s.Prompt(questions, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Asked) != 2 {
		t.Errorf("Asked should hold the full sequence, got %d", len(s.Asked))
	}
	if len(s.Prompted) != 1 || s.Prompted[0] != "b" {
		t.Errorf("Prompted should hold only visible questions, got %v", s.Prompted)
	}
}
