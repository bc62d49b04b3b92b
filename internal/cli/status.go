// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mikilabs/miki-tui/internal/identity"
	"github.com/mikilabs/miki-tui/internal/storage"
)

// =============================================================================
// STATUS
// =============================================================================

// statusReport is the machine-readable form of `miki status --json`.
type statusReport struct {
	Version       string `json:"version"`
	ChatURL       string `json:"chat_url"`
	VoiceURL      string `json:"voice_url"`
	AuthURL       string `json:"auth_url"`
	SignedIn      bool   `json:"signed_in"`
	Email         string `json:"email,omitempty"`
	Conversations int    `json:"conversations"`
}

// HandleStatus prints the configured endpoints, auth state, and library size.
func HandleStatus(args Args) {
	cfg := loadConfig(args)

	report := statusReport{
		Version:  Version,
		ChatURL:  cfg.Server.ChatURL,
		VoiceURL: cfg.Server.VoiceURL,
		AuthURL:  cfg.Server.AuthURL,
	}

	client := identity.NewClient(identity.ClientConfig{
		BaseURL: cfg.Server.AuthURL,
		AnonKey: cfg.Server.AnonKey,
	})
	if sess := client.Session(); sess != nil {
		report.SignedIn = true
		report.Email = sess.User.Email
	}

	if lib, err := storage.OpenDefault(); err == nil {
		if metas, err := lib.List(); err == nil {
			report.Conversations = len(metas)
		}
		lib.Close()
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		return
	}

	printInfo("miki " + report.Version)
	fmt.Println("  chat endpoint   " + report.ChatURL)
	fmt.Println("  voice endpoint  " + report.VoiceURL)
	fmt.Println("  auth endpoint   " + report.AuthURL)
	if report.SignedIn {
		printSuccess("signed in as " + report.Email)
	} else {
		printMuted("  not signed in")
	}
	fmt.Printf("  library         %d saved conversations\n", report.Conversations)
}

// =============================================================================
// VERSION AND HELP
// =============================================================================

// HandleVersion prints version information.
func HandleVersion(args Args) {
	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
		})
		return
	}
	fmt.Printf("miki %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Println(`miki - terminal client for the Miki assistant

Usage:
  miki              start the TUI
  miki chat         line-based chat in the current terminal
  miki login        sign in and cache the session
  miki logout       discard the cached session
  miki status       show endpoints, auth state, and library size
  miki version      print version information

Flags:
  --persona NAME    start with a built-in persona (prefix match)
  --url URL         override the chat endpoint
  --config PATH     use an alternate config file
  --no-greeting     skip the persona greeting
  --json            machine-readable output (status, version)`)
}
