// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package configstore

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// AuditLog appends one line per successful registry mutation to an
// append-only file the logging service tails. Audit failures are logged
// and swallowed so they never mask a successful mutation.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

// NewAuditLog returns an audit log writing to path.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Record appends a timestamped message. Nil receivers and empty paths
// are no-ops so stores can run without auditing in tests.
func (a *AuditLog) Record(message string) {
	if a == nil || a.path == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		slog.Error("Failed to open audit log", "path", a.path, "error", err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\n", time.Now().Format(time.RFC3339), message)
	if _, err := f.WriteString(line); err != nil {
		slog.Error("Failed to write audit log", "path", a.path, "error", err)
	}
}
