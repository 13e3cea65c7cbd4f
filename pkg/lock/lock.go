// Copyright (C) 2025 Network Direction
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package lock provides advisory file locking for the configuration store.
//
// # Description
//
// The core service and its sibling worker processes share YAML documents on
// local disk. Every read-modify-write cycle on those documents runs under an
// exclusive advisory lock on a sibling ".lock" file, so concurrent writers
// (in-process or multi-process) serialize instead of corrupting each other.
//
// Unix uses flock(2); Windows is a no-op stub (single-writer deployments).
//
// # Thread Safety
//
// Guard instances are not shared; acquire one per critical section.
package lock

import (
	"fmt"
	"os"
)

// Guard holds an exclusive advisory lock on a file until Release is called.
type Guard struct {
	f *os.File
}

// Acquire opens (creating if absent) the lock file at path and blocks until
// an exclusive advisory lock is held.
//
// # Inputs
//
//   - path: Lock file path, conventionally "<document>.lock".
//
// # Outputs
//
//   - *Guard: Held lock. Callers must Release, typically via defer.
//   - error: Non-nil if the lock file cannot be opened or locked.
func Acquire(path string) (*Guard, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0640)
	if err != nil {
		return nil, fmt.Errorf("opening lock file %s: %w", path, err)
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &Guard{f: f}, nil
}

// Release drops the advisory lock and closes the lock file.
//
// Safe to call once per Guard. The lock file itself is left in place.
func (g *Guard) Release() error {
	if g.f == nil {
		return nil
	}
	unlockErr := flockUnlock(g.f)
	closeErr := g.f.Close()
	g.f = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
