// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package instantapi provides shared helpers for the instant-api module.
//
// The actual RPC dispatch engine lives in the [rpc] package. This package
// only carries cross-cutting concerns which every subpackage relies on.
package instantapi

import (
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// Logger returns a [slog.Logger] backed by the OpenTelemetry slog bridge.
//
// Records are emitted through the global OTel logger provider, so the
// embedding application controls where they ultimately go.
func Logger(name string) *slog.Logger {
	return otelslog.NewLogger(name)
}
