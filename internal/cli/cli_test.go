// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		wantCmd Command
		want    Args
	}{
		{"no args runs the TUI", nil, CmdTUI, Args{}},
		{"chat subcommand", []string{"chat"}, CmdChat, Args{}},
		{"login subcommand", []string{"login"}, CmdLogin, Args{}},
		{"status with json", []string{"status", "--json"}, CmdStatus, Args{JSON: true}},
		{"version flag on bare invocation", []string{"--version"}, CmdVersion, Args{}},
		{"persona with space value", []string{"chat", "--persona", "lexi"}, CmdChat, Args{Persona: "lexi"}},
		{"persona with equals value", []string{"chat", "--persona=lexi"}, CmdChat, Args{Persona: "lexi"}},
		{"short persona flag", []string{"chat", "-p", "mark"}, CmdChat, Args{Persona: "mark"}},
		{"url override", []string{"--url", "ws://host:9000/ws"}, CmdTUI, Args{Endpoint: "ws://host:9000/ws"}},
		{"no-greeting boolean", []string{"chat", "--no-greeting"}, CmdChat, Args{NoGreeting: true}},
		{"unknown subcommand falls back to help", []string{"frobnicate"}, CmdHelp, Args{}},
		{"help flag wins", []string{"chat", "--help"}, CmdHelp, Args{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := parseArgs(tt.raw)
			if cmd != tt.wantCmd {
				t.Errorf("command = %v, want %v", cmd, tt.wantCmd)
			}
			if args != tt.want {
				t.Errorf("args = %+v, want %+v", args, tt.want)
			}
		})
	}
}

func TestResolvePersona(t *testing.T) {
	p, err := ResolvePersona("")
	if err != nil || !p.IsZero() {
		t.Errorf("Empty name should resolve to the plain assistant, got %+v, %v", p, err)
	}

	p, err = ResolvePersona("lexi")
	if err != nil || p.Name != "Lexi the Writer" {
		t.Errorf("lexi resolved to %q, %v", p.Name, err)
	}

	p, err = ResolvePersona("SAGE")
	if err != nil || p.Name != "Sage the Storyteller" {
		t.Errorf("SAGE resolved to %q, %v", p.Name, err)
	}

	if _, err = ResolvePersona("nobody"); err == nil {
		t.Error("Unknown persona should error")
	}
}
