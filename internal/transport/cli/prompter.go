package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen, color.Bold)
)

// Prompter reads answers line by line. Closing the input (Ctrl-D) cancels the
// conversation with ErrCancelled.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Out() io.Writer { return p.out }

func (p *Prompter) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Prompter) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

func (p *Prompter) Heading(title string) {
	_, _ = headingColor.Fprintf(p.out, "\n%s\n%s\n\n", title, strings.Repeat("=", len(title)))
}

func (p *Prompter) Warn(format string, args ...any) {
	_, _ = warnColor.Fprintf(p.out, format+"\n", args...)
}

func (p *Prompter) Error(format string, args ...any) {
	_, _ = errorColor.Fprintf(p.out, format+"\n", args...)
}

func (p *Prompter) Success(format string, args ...any) {
	_, _ = successColor.Fprintf(p.out, format+"\n", args...)
}

// Ask prints the prompt and returns the trimmed answer.
func (p *Prompter) Ask(prompt string) (string, error) {
	p.Printf("%s", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", derr.ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) AskNonEmpty(prompt, errMsg string) (string, error) {
	for {
		answer, err := p.Ask(prompt)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		p.Warn("%s", errMsg)
	}
}

// AskInt keeps asking until the answer is a whole number in [min, max].
func (p *Prompter) AskInt(prompt string, min, max int, rangeMsg string) (int, error) {
	for {
		answer, err := p.Ask(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			p.Warn("Please enter a valid number.")
			continue
		}
		if n < min || n > max {
			p.Warn("%s", rangeMsg)
			continue
		}
		return n, nil
	}
}

// AskChoice accepts one of the given keys, case-insensitively.
func (p *Prompter) AskChoice(prompt string, keys ...string) (string, error) {
	for {
		answer, err := p.Ask(prompt)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		for _, key := range keys {
			if answer == key {
				return key, nil
			}
		}
		p.Warn("Please enter one of: %s", strings.Join(keys, ", "))
	}
}

func (p *Prompter) AskYesNo(prompt string) (bool, error) {
	answer, err := p.AskChoice(prompt, "y", "n")
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}
