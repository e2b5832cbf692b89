package prompts

import "fmt"

// Scripted replays a fixed answer set through the same visibility,
// validation, and apply pipeline an interactive prompter uses. A nil answer
// set simulates the user cancelling out of the flow.
//
// Scripted is used by tests and by non-interactive automation that already
// knows every answer.
type Scripted struct {
	Answers map[string]string

	// Asked records the question sequence received by the last Prompt call,
	// before visibility filtering.
	Asked []Question
	// Prompted records the names of the questions actually asked.
	Prompted []string
}

// Prompt applies the scripted answers to every visible question in order.
// Questions without a scripted answer fall back to their default value.
func (s *Scripted) Prompt(questions []Question, _ bool) (map[string]string, error) {
	s.Asked = append([]Question(nil), questions...)
	s.Prompted = nil

	if s.Answers == nil {
		return nil, nil
	}

	answers := make(map[string]string)
	for i := range questions {
		q := &questions[i]
		if q.ShouldPrompt != nil && !q.ShouldPrompt(answers) {
			continue
		}
		s.Prompted = append(s.Prompted, q.Name)

		value, ok := s.Answers[q.Name]
		if !ok {
			value = q.Default
		}

		if q.Validate != nil {
			if msg := q.Validate(value); msg != "" {
				return nil, fmt.Errorf("invalid answer for %q: %s", q.Name, msg)
			}
		}

		if q.OnAnswered != nil {
			q.OnAnswered(value)
		}
		answers[q.Name] = value
	}

	return answers, nil
}
