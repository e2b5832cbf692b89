package prompts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console prompts on a terminal. Password questions read with echo disabled
// when stdin is a terminal, falling back to plain line input otherwise (pipes,
// test harnesses).
type Console struct {
	in  *bufio.Reader
	out io.Writer

	stdinFD    int
	isTerminal bool
}

// NewConsole creates a prompter reading from stdin and writing to stderr.
// Prompts go to stderr so piped stdout stays clean for query output.
func NewConsole() *Console {
	fd := int(os.Stdin.Fd())
	return &Console{
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stderr,
		stdinFD:    fd,
		isTerminal: term.IsTerminal(fd),
	}
}

// NewConsoleWith creates a prompter over arbitrary reader/writer pairs.
func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Prompt asks each applicable question in order. Invalid values are re-asked
// with the validation message shown inline. EOF on input cancels the flow.
func (c *Console) Prompt(questions []Question, _ bool) (map[string]string, error) {
	answers := make(map[string]string)

	for i := range questions {
		q := &questions[i]
		if q.ShouldPrompt != nil && !q.ShouldPrompt(answers) {
			continue
		}

		for {
			value, err := c.ask(q)
			if err != nil {
				if errors.Is(err, io.EOF) {
					// User backed out of the flow.
					fmt.Fprintln(c.out)
					return nil, nil
				}
				return nil, err
			}

			if value == "" {
				value = q.Default
			}

			if q.Validate != nil {
				if msg := q.Validate(value); msg != "" {
					fmt.Fprintln(c.out, msg)
					continue
				}
			}

			if q.OnAnswered != nil {
				q.OnAnswered(value)
			}
			answers[q.Name] = value
			break
		}
	}

	return answers, nil
}

// ask displays a single question and reads one value.
func (c *Console) ask(q *Question) (string, error) {
	hint := q.Placeholder
	if q.Default != "" {
		hint = q.Default
	}
	if hint != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", q.Message, hint)
	} else {
		fmt.Fprintf(c.out, "%s: ", q.Message)
	}

	if q.Kind == KindPassword && c.isTerminal {
		passwordBytes, err := term.ReadPassword(c.stdinFD)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(c.out)
		return string(passwordBytes), nil
	}

	line, err := c.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
