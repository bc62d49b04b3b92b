// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", content, data)
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "settings.toml")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("replaced"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "replaced" {
		t.Errorf("Expected replaced content, got %q", content)
	}
}

func TestAtomicWriteFile_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	if err := AtomicWriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the target file, found %d entries", len(entries))
	}
}

func TestAtomicWriteFileWithDir_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix permission bits")
	}
	dir := filepath.Join(t.TempDir(), "private")
	path := filepath.Join(dir, "session.json")

	if err := AtomicWriteFileWithDir(path, []byte("{}"), 0600, 0700); err != nil {
		t.Fatalf("AtomicWriteFileWithDir failed: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("File perm: got %o, want 0600", fi.Mode().Perm())
	}

	di, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat dir failed: %v", err)
	}
	if di.Mode().Perm() != 0700 {
		t.Errorf("Dir perm: got %o, want 0700", di.Mode().Perm())
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"zero limit", "hello", 0, ""},
		{"unicode", "héllo wörld", 8, "héllo..."},
		{"cjk", "こんにちは世界", 5, "こん..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	if got := TruncateRunesNoEllipsis("héllo", 3); got != "hél" {
		t.Errorf("Got %q, want %q", got, "hél")
	}
	if got := TruncateRunesNoEllipsis("hi", 5); got != "hi" {
		t.Errorf("Got %q, want %q", got, "hi")
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK characters occupy two columns.
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", got)
	}
	if got := TruncateWidth("日本語テスト", 7); StringWidth(got) > 7 {
		t.Errorf("TruncateWidth result %q exceeds 7 columns", got)
	}
	if got := TruncateWidth("short", 20); got != "short" {
		t.Errorf("Got %q, want unchanged", got)
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("héllo"); got != 5 {
		t.Errorf("RuneLen = %d, want 5", got)
	}
	if got := RuneLen("日本語"); got != 3 {
		t.Errorf("RuneLen = %d, want 3", got)
	}
}
