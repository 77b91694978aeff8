// Package prompt asks the user to confirm risky settings.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Result is the outcome of Confirm.
type Result int

const (
	// Declined means the user answered no, gave an empty answer or closed input.
	Declined Result = iota
	// Accepted means the user answered yes.
	Accepted
	// Exhausted means every attempt got an unrecognized answer.
	Exhausted
)

func (r Result) String() string {
	switch r {
	case Declined:
		return "declined"
	case Accepted:
		return "accepted"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Confirm writes question to out and reads answers from in, one per line.
// It asks at most attempts times (at least once).
func Confirm(in io.Reader, out io.Writer, question string, attempts int) Result {
	if attempts < 1 {
		attempts = 1
	}
	sc := bufio.NewScanner(in)
	for i := 0; i < attempts; i++ {
		fmt.Fprintf(out, "%s [y/N]: ", question)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return Declined
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "y", "yes":
			return Accepted
		case "", "n", "no":
			return Declined
		}
		fmt.Fprintln(out, "Please answer 'y' or 'n'.")
	}
	return Exhausted
}
