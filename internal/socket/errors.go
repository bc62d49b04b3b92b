// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package socket

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ConnError represents an error from the session connection.
type ConnError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ConnError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ConnError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes connection errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotConnected
	ErrTypeAlreadyConnected
	ErrTypeSendFailed
	ErrTypeTransport
	ErrTypeClosed
)

// Sentinel errors for easy checking.
var (
	ErrNotConnected     = &ConnError{Type: ErrTypeNotConnected, Message: "channel is not open"}
	ErrAlreadyConnected = &ConnError{Type: ErrTypeAlreadyConnected, Message: "channel is already open"}
	ErrClosed           = &ConnError{Type: ErrTypeClosed, Message: "channel is closed; open a new session"}
)

// IsNotConnected checks if an error means the channel was not open.
func IsNotConnected(err error) bool {
	var connErr *ConnError
	if errors.As(err, &connErr) {
		return connErr.Type == ErrTypeNotConnected
	}
	return errors.Is(err, ErrNotConnected)
}

// IsAlreadyConnected checks if an error is a duplicate open attempt.
func IsAlreadyConnected(err error) bool {
	var connErr *ConnError
	if errors.As(err, &connErr) {
		return connErr.Type == ErrTypeAlreadyConnected
	}
	return errors.Is(err, ErrAlreadyConnected)
}

// IsSendFailed checks if an error is a transport-level send rejection.
func IsSendFailed(err error) bool {
	var connErr *ConnError
	if errors.As(err, &connErr) {
		return connErr.Type == ErrTypeSendFailed
	}
	return false
}

// IsTransport checks if an error is an underlying channel fault.
func IsTransport(err error) bool {
	var connErr *ConnError
	if errors.As(err, &connErr) {
		return connErr.Type == ErrTypeTransport
	}
	return false
}
