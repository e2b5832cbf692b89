// Package prompts defines the question/answer abstraction used to collect
// missing connection fields from the user. Questions are plain data records;
// a Prompter drives them in order, honoring each question's visibility
// predicate and validator.
package prompts

// QuestionKind selects how a question's answer is collected.
type QuestionKind int

const (
	// KindInput is a plain single-line text input.
	KindInput QuestionKind = iota
	// KindPassword is a masked single-line input.
	KindPassword
)

// Question describes a single piece of input to collect.
type Question struct {
	Kind        QuestionKind
	Name        string
	Message     string
	Placeholder string
	Default     string

	// ShouldPrompt reports whether the question applies, given the answers
	// collected so far. A nil predicate means the question is always asked.
	ShouldPrompt func(answers map[string]string) bool

	// Validate returns a human-readable problem with the value, or the
	// empty string when the value is acceptable. Validation failures are
	// messages, never errors; the prompter decides how to re-ask.
	Validate func(value string) string

	// OnAnswered applies the final value to the flow's target.
	OnAnswered func(value string)
}

// Prompter collects answers for an ordered question sequence.
//
// A prompter must evaluate each question's ShouldPrompt predicate against the
// answers accumulated so far, skip questions whose predicate is false, apply
// validators, and invoke OnAnswered with the final value of every question it
// asks. A nil answer map with a nil error means the user cancelled the flow.
type Prompter interface {
	Prompt(questions []Question, inProfileFlow bool) (map[string]string, error)
}
