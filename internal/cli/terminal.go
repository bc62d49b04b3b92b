// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TERMINAL HELPERS
// =============================================================================

// IsInteractive reports whether stdin and stdout are attached to a TTY.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// ReadPassword prompts for a password without echoing it.
func ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	defer fmt.Println()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Piped input: read one line in the clear.
		var line string
		if _, err := fmt.Scanln(&line); err != nil {
			return "", err
		}
		return line, nil
	}

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// =============================================================================
// STYLED OUTPUT
// =============================================================================

var output = termenv.NewOutput(os.Stdout)

func printSuccess(msg string) {
	fmt.Println(output.String("[OK] " + msg).Foreground(output.Color("2")))
}

func printError(msg string) {
	fmt.Fprintln(os.Stderr, output.String("[X] "+msg).Foreground(output.Color("1")))
}

func printInfo(msg string) {
	fmt.Println(output.String(msg).Foreground(output.Color("6")))
}

func printMuted(msg string) {
	fmt.Println(output.String(msg).Faint())
}
