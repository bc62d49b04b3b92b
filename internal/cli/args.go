// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strings"
)

// =============================================================================
// COMMAND ROUTING
// =============================================================================

// Command identifies which subcommand was requested.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdLogin
	CmdLogout
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds the flags shared by all commands.
type Args struct {
	// Persona selects a built-in persona by name prefix (--persona lexi).
	Persona string

	// Endpoint overrides the configured chat channel URL (--url).
	Endpoint string

	// ConfigPath overrides the config file location (--config).
	ConfigPath string

	// NoGreeting suppresses the persona greeting at session start.
	NoGreeting bool

	// JSON switches status/version output to machine-readable form.
	JSON bool
}

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Parse reads os.Args and returns the requested command with its flags.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(raw []string) (Command, Args) {
	cmd := CmdTUI
	var args Args

	rest := raw
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		switch rest[0] {
		case "chat":
			cmd = CmdChat
		case "login":
			cmd = CmdLogin
		case "logout":
			cmd = CmdLogout
		case "status":
			cmd = CmdStatus
		case "version":
			cmd = CmdVersion
		case "help":
			cmd = CmdHelp
		default:
			cmd = CmdHelp
		}
		rest = rest[1:]
	}

	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		name, value, hasValue := splitFlag(arg)

		takeValue := func() string {
			if hasValue {
				return value
			}
			if i+1 < len(rest) && !strings.HasPrefix(rest[i+1], "-") {
				i++
				return rest[i]
			}
			return ""
		}

		switch name {
		case "persona", "p":
			args.Persona = takeValue()
		case "url", "u":
			args.Endpoint = takeValue()
		case "config", "c":
			args.ConfigPath = takeValue()
		case "no-greeting":
			args.NoGreeting = true
		case "json":
			args.JSON = true
		case "help", "h":
			cmd = CmdHelp
		case "version", "v":
			if cmd == CmdTUI {
				cmd = CmdVersion
			}
		}
	}

	return cmd, args
}

// splitFlag handles --flag, --flag=value, and -f forms.
func splitFlag(arg string) (name, value string, hasValue bool) {
	if !strings.HasPrefix(arg, "-") {
		return "", "", false
	}
	trimmed := strings.TrimLeft(arg, "-")
	if idx := strings.Index(trimmed, "="); idx >= 0 {
		return trimmed[:idx], trimmed[idx+1:], true
	}
	return trimmed, "", false
}
