// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity provides the HTTP client for the Miki auth service.
//
// The service speaks the GoTrue API: password sign-up and sign-in, bearer
// token sessions, and a user endpoint for profile reads and updates. The
// client caches the session at ~/.miki/session.json so a login survives
// restarts.
package identity
