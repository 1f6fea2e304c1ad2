package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// ReadPassphrase prompts the user for a passphrase without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// ReadPassphraseFromTTY prompts the user for a passphrase from /dev/tty (or CON on Windows).
// Used when stdin carries the secret itself.
func ReadPassphraseFromTTY(prompt string) ([]byte, error) {
	ttyPath := ttyDevice()

	tty, err := os.Open(ttyPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for passphrase input: %w", ttyPath, err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", ttyPath)
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// PromptPassphrase reads a passphrase from stdin when it is a terminal,
// falling back to the TTY device otherwise.
func PromptPassphrase(prompt string) ([]byte, error) {
	if IsTerminal() {
		return ReadPassphrase(prompt)
	}
	return ReadPassphraseFromTTY(prompt)
}

// ReadSecretTwice prompts for a secret and its confirmation, both hidden.
// The two inputs must match and must not be empty.
func ReadSecretTwice(prompt, confirmPrompt string) ([]byte, error) {
	first, err := PromptPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	second, err := PromptPassphrase(confirmPrompt)
	if err != nil {
		return nil, err
	}
	return matchSecrets(first, second)
}

func matchSecrets(first, second []byte) ([]byte, error) {
	if string(first) != string(second) {
		return nil, fmt.Errorf("the entered secrets do not match")
	}
	if len(first) == 0 {
		return nil, fmt.Errorf("secret cannot be empty")
	}
	return first, nil
}

// Confirm asks a yes/no question on out and reads the answer from in.
// Anything other than "y" or "yes" counts as no.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func ttyDevice() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}
