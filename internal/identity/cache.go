// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mikilabs/miki-tui/internal/util"
)

// =============================================================================
// SESSION CACHE
// =============================================================================

// defaultCachePath returns ~/.miki/session.json.
func defaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".miki", "session.json"), nil
}

func resolveCachePath(override string) (string, bool) {
	switch override {
	case "-":
		return "", false
	case "":
		path, err := defaultCachePath()
		if err != nil {
			return "", false
		}
		return path, true
	default:
		return override, true
	}
}

func loadCachedSession(override string) (*Session, error) {
	path, ok := resolveCachePath(override)
	if !ok {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// persistSession mirrors the session to disk. The file holds a bearer token,
// so it is written 0600 under a 0700 directory.
func persistSession(override string, sess *Session) {
	path, ok := resolveCachePath(override)
	if !ok {
		return
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return
	}
	util.AtomicWriteFileWithDir(path, data, 0600, 0700)
}

func removeCachedSession(override string) {
	path, ok := resolveCachePath(override)
	if !ok {
		return
	}
	os.Remove(path)
}
