package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin is a terminal a user can answer from.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	return readLine(os.Stdin, os.Stdout, label)
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	return Confirm(os.Stdin, os.Stdout, label)
}

// Confirm asks label on out and reads a yes/no answer from in. Anything
// other than y or yes is a no.
func Confirm(in io.Reader, out io.Writer, label string) (bool, error) {
	answer, err := readLine(in, out, label+" (y/n) ")
	if err != nil {
		return false, err
	}
	response := strings.ToLower(answer)
	return response == "y" || response == "yes", nil
}

func readLine(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
