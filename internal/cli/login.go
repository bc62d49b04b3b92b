// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mikilabs/miki-tui/internal/identity"
)

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// HandleLogin signs in against the identity provider and caches the session
// so the TUI starts authenticated.
func HandleLogin(args Args) {
	cfg := loadConfig(args)

	var email string
	fmt.Print("Email: ")
	if _, err := fmt.Scanln(&email); err != nil {
		printError("Could not read email.")
		os.Exit(1)
	}
	email = strings.TrimSpace(email)

	password, err := ReadPassword("Password: ")
	if err != nil {
		printError("Could not read password.")
		os.Exit(1)
	}

	client := identity.NewClient(identity.ClientConfig{
		BaseURL: cfg.Server.AuthURL,
		AnonKey: cfg.Server.AnonKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := client.SignIn(ctx, email, password)
	if err != nil {
		if identity.IsInvalidCredentials(err) {
			printError("Invalid email or password.")
		} else {
			printError("Sign-in failed: " + err.Error())
		}
		os.Exit(1)
	}

	printSuccess("Signed in as " + sess.User.Email)
}

// HandleLogout discards the cached session.
func HandleLogout(args Args) {
	cfg := loadConfig(args)

	client := identity.NewClient(identity.ClientConfig{
		BaseURL: cfg.Server.AuthURL,
		AnonKey: cfg.Server.AnonKey,
	})
	if !client.SignedIn() {
		printMuted("Not signed in.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.SignOut(ctx); err != nil {
		printError("Sign-out failed: " + err.Error())
		os.Exit(1)
	}
	printSuccess("Signed out.")
}
