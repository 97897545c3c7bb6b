package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ErrInputClosed is returned when the input ends before a legal column is read
var ErrInputClosed = errors.New("input closed")

// Prompter reads columns from a human, asking again until the answer is legal
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a prompter reading from in and writing prompts to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Column asks for a column until one in legal is entered
func (p *Prompter) Column(prompt string, legal []int) (int, error) {
	fmt.Fprint(p.out, prompt)
	for p.in.Scan() {
		col, err := strconv.Atoi(strings.TrimSpace(p.in.Text()))
		if err == nil && slices.Contains(legal, col) {
			return col, nil
		}
		fmt.Fprintf(p.out, "Invalid. Legal columns: %v\nTry again: ", legal)
	}
	if err := p.in.Err(); err != nil {
		return 0, err
	}
	return 0, ErrInputClosed
}

// Confirm asks a yes/no question; only "y" or "yes" count as yes
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(p.in.Text()))
	return answer == "y" || answer == "yes"
}
