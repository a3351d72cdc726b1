// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	ErrMissingLogger     = errors.New("logger is required")
	ErrMissingAPIHandler = errors.New("API handler is required")
	ErrMissingManager    = errors.New("manager is required")

	// ErrManagerNotStarted is returned by Shutdown before Start.
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrServerStartFailed wraps listen and serve failures.
	ErrServerStartFailed = errors.New("server failed to start")

	// ErrUnknownHost is returned by Build for an unsupported host.kind.
	ErrUnknownHost = errors.New("unknown host kind")
)
