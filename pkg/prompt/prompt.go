// Package prompt collects validated answers from an operator on a terminal.
// It reads any io.Reader so forms can be driven by canned input in tests.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrInputClosed is returned when input ends before a valid answer is read
var ErrInputClosed = errors.New("input closed before a valid answer was given")

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Validator checks a trimmed answer and explains why it is rejected
type Validator func(answer string) error

// Field is one question of a form
type Field struct {
	Label    string
	Validate Validator
}

// NonEmpty rejects blank answers
func NonEmpty(answer string) error {
	if answer == "" {
		return errors.New("value cannot be empty")
	}
	return nil
}

// PositiveInt accepts decimal integers greater than zero
func PositiveInt(answer string) error {
	if err := NonEmpty(answer); err != nil {
		return err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n <= 0 || strings.HasPrefix(answer, "+") {
		return errors.New("enter a positive integer")
	}
	return nil
}

// Prompter asks questions on out and reads answers from in
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask repeats the question until the answer passes validation
func (p *Prompter) Ask(f Field) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s ", labelStyle.Render(f.Label+":"))

		line, err := p.readLine()
		if err != nil {
			return "", err
		}

		answer := strings.TrimSpace(line)
		if f.Validate == nil {
			return answer, nil
		}
		if verr := f.Validate(answer); verr != nil {
			fmt.Fprintln(p.out, errorStyle.Render(verr.Error()+", please try again."))
			continue
		}
		return answer, nil
	}
}

// String asks for a non-empty answer
func (p *Prompter) String(label string) (string, error) {
	return p.Ask(Field{Label: label, Validate: NonEmpty})
}

// Int asks for a positive integer
func (p *Prompter) Int(label string) (int, error) {
	answer, err := p.Ask(Field{Label: label, Validate: PositiveInt})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(answer)
}

// YesNo asks a yes/no question; an empty answer selects def
func (p *Prompter) YesNo(label string, def bool) (bool, error) {
	suffix := "y/N"
	if def {
		suffix = "Y/n"
	}

	var result bool
	_, err := p.Ask(Field{
		Label: fmt.Sprintf("%s (%s)", label, suffix),
		Validate: func(answer string) error {
			switch strings.ToLower(answer) {
			case "":
				result = def
			case "y", "yes", "1", "true":
				result = true
			case "n", "no", "0", "false":
				result = false
			default:
				return errors.New("answer y or n")
			}
			return nil
		},
	})
	return result, err
}

// Text reads lines until one equals sentinel (after trimming) and returns
// them joined with newlines, trailing spaces of each line and surrounding
// blank space removed
func (p *Prompter) Text(label, sentinel string) (string, error) {
	fmt.Fprintln(p.out, labelStyle.Render(label))
	fmt.Fprintln(p.out, hintStyle.Render(fmt.Sprintf("(multiple lines allowed, finish with a line containing only %s)", sentinel)))

	var lines []string
	for {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == sentinel {
			break
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned; ErrInputClosed follows once input is exhausted.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
